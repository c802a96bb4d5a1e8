package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	ItemTypeGear = "gear"
	ItemTypeFood = "food"

	DefaultWeightUnit = "oz"
)

// ItemType distinguishes gear from food. Seeded by migration, never
// user-editable.
type ItemType struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:varchar(20);not null;uniqueIndex" json:"name"`
}

// Category is a user-owned named/colored grouping for items.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(64);not null;index" json:"user_id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Color     string    `gorm:"type:varchar(20);not null" json:"color"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Item is a gear or food entry owned by a user. Calories only apply to
// food items.
type Item struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      string    `gorm:"type:varchar(64);not null;index" json:"user_id"`
	ItemTypeID  uint      `gorm:"not null;index" json:"item_type_id" validate:"required"`
	CategoryID  *uint     `gorm:"default:null;index" json:"category_id"`
	Name        string    `gorm:"type:varchar(200);not null" json:"name" validate:"required,max=200"`
	Brand       string    `gorm:"type:varchar(100)" json:"brand"`
	Weight      *float64  `gorm:"default:null" json:"weight"`
	WeightUnit  string    `gorm:"type:varchar(10);not null;default:'oz'" json:"weight_unit"`
	Description string    `gorm:"type:text" json:"description"`
	ProductURL  string    `gorm:"type:varchar(500)" json:"product_url"`
	Calories    *int      `gorm:"default:null" json:"calories"`
	ItemType    *ItemType `gorm:"foreignKey:ItemTypeID" json:"item_type,omitempty"`
	Category    *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (i *Item) Validate() error {
	v := validator.New()

	return v.Struct(i)
}
