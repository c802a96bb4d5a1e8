package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

const DefaultWaterUnit = "L"

// Trip is a user-owned outing with an optional linked activity and a
// many-to-many item list carrying per-trip quantity and flags.
type Trip struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      string     `gorm:"type:varchar(64);not null;index" json:"user_id"`
	Name        string     `gorm:"type:varchar(200);not null" json:"name" validate:"required,max=200"`
	StartDate   *time.Time `gorm:"type:date;default:null" json:"start_date"`
	EndDate     *time.Time `gorm:"type:date;default:null" json:"end_date"`
	Notes       string     `gorm:"type:text" json:"notes"`
	ActivityID  *uint      `gorm:"default:null;index" json:"activity_id"`
	WaterVolume *float64   `gorm:"default:null" json:"water_volume"`
	WaterUnit   string     `gorm:"type:varchar(10);not null;default:'L'" json:"water_unit"`
	Activity    *Activity  `gorm:"foreignKey:ActivityID" json:"activity,omitempty"`
	TripItems   []TripItem `gorm:"foreignKey:TripID" json:"trip_items,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (t *Trip) Validate() error {
	v := validator.New()

	return v.Struct(t)
}

// TripItem associates an item with a trip. Worn items are carried on the
// body, consumable items are eaten/used up along the way; both matter for
// pack weight math and for the Carlo context rendering.
type TripItem struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	TripID       uint      `gorm:"not null;index:ux_trip_items_trip_item,unique,priority:1" json:"trip_id"`
	ItemID       uint      `gorm:"not null;index:ux_trip_items_trip_item,unique,priority:2" json:"item_id"`
	Quantity     int       `gorm:"not null;default:1" json:"quantity"`
	IsWorn       bool      `gorm:"not null;default:false" json:"is_worn"`
	IsConsumable bool      `gorm:"not null;default:false" json:"is_consumable"`
	Item         *Item     `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}
