package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/yonderlust/yonderlust/app/models"
)

type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository creates a conversation repository backed by GORM.
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) Create(conv *models.Conversation) error {
	return r.db.Create(conv).Error
}

func (r *conversationRepository) GetByIDAndUser(id, userID string) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepository) ListByUser(userID string) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := r.db.Where("user_id = ?", userID).Order("updated_at DESC").Find(&convs).Error
	return convs, err
}

func (r *conversationRepository) UpdateTitle(id, title string) error {
	return r.db.Model(&models.Conversation{}).Where("id = ?", id).Updates(map[string]interface{}{
		"title":      title,
		"updated_at": time.Now(),
	}).Error
}

func (r *conversationRepository) Touch(id string) error {
	return r.db.Model(&models.Conversation{}).Where("id = ?", id).
		UpdateColumn("updated_at", time.Now()).Error
}

func (r *conversationRepository) Delete(id, userID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Conversation{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("conversation_id = ?", id).Delete(&models.ConversationMessage{}).Error
	})
}

// AppendMessage writes one turn. Messages are never updated or rewritten;
// the ledger only grows.
func (r *conversationRepository) AppendMessage(msg *models.ConversationMessage) error {
	return r.db.Create(msg).Error
}

func (r *conversationRepository) ListMessages(conversationID string) ([]models.ConversationMessage, error) {
	var msgs []models.ConversationMessage
	err := r.db.Where("conversation_id = ?", conversationID).
		Order("created_at, id").
		Find(&msgs).Error
	return msgs, err
}
