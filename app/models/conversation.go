package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Conversation is a user-owned Carlo chat thread. Title stays NULL until
// the first exchange derives one.
type Conversation struct {
	ID        string                `gorm:"primaryKey;type:char(36)" json:"id"`
	UserID    string                `gorm:"type:varchar(64);not null;index" json:"user_id"`
	Title     *string               `gorm:"type:varchar(200);default:null" json:"title"`
	Messages  []ConversationMessage `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
	CreatedAt time.Time             `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time             `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Conversation) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// ConversationMessage is one turn in a conversation. Rows are append-only
// and never mutated after creation; ordering is by created_at, then id for
// turns written within the same timestamp granularity.
type ConversationMessage struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID string    `gorm:"type:char(36);not null;index" json:"conversation_id"`
	Role           string    `gorm:"type:varchar(20);not null" json:"role"`
	Content        string    `gorm:"type:longtext;not null" json:"content"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}
