package models

import "time"

// Activity is a global catalog entry (hiking, bikepacking, ...). Activities
// are not user-owned; users opt in via UserActivity.
type Activity struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// UserActivity links a user to a catalog activity, optionally with a
// free-text note that feeds the Carlo profile context.
type UserActivity struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     string    `gorm:"type:varchar(64);not null;index:ux_user_activities_user_activity,unique,priority:1" json:"user_id"`
	ActivityID uint      `gorm:"not null;index:ux_user_activities_user_activity,unique,priority:2" json:"activity_id"`
	Notes      string    `gorm:"type:varchar(500)" json:"notes"`
	Activity   *Activity `gorm:"foreignKey:ActivityID" json:"activity,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}
