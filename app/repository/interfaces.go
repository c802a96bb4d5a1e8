package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/yonderlust/yonderlust/app/models"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id string) (*models.User, error)
	GetByStripeCustomerID(customerID string) (*models.User, error)
	Update(user *models.User) error
	UpdateFields(id string, fields map[string]interface{}) error
	ResetCarloQuota(id string, nextReset time.Time) error
	IncrementCarloConversations(id string) error
}

// ActivityRepository covers the global activity catalog and the per-user
// activity selection.
type ActivityRepository interface {
	ListAll() ([]models.Activity, error)
	ListByIDs(ids []uint) ([]models.Activity, error)
	ListUserActivities(userID string) ([]models.UserActivity, error)
	ReplaceUserActivities(userID string, entries []models.UserActivity) error
}

// CategoryRepository defines the interface for user-owned item categories
type CategoryRepository interface {
	ListByUser(userID string) ([]models.Category, error)
	CountByUser(userID string) (int64, error)
	Create(category *models.Category) error
}

// ItemRepository defines the interface for gear/food item operations
type ItemRepository interface {
	Create(item *models.Item) error
	CreateBatch(items []models.Item) error
	GetByID(id uint) (*models.Item, error)
	GetTypeByName(name string) (*models.ItemType, error)
	ListByUserAndType(userID string, itemTypeID uint) ([]models.Item, error)
	ListOwnedByIDs(userID string, ids []uint) ([]models.Item, error)
	Update(item *models.Item) error
	Delete(id uint) error
	CountTripReferences(itemID uint) (int64, error)
	DeleteTripReferences(itemID uint) error
}

// TripRepository defines the interface for trip operations
type TripRepository interface {
	Create(trip *models.Trip) error
	GetByIDAndUser(id uint, userID string) (*models.Trip, error)
	ListByUser(userID string) ([]models.Trip, error)
	ListOwnedByIDs(userID string, ids []uint) ([]models.Trip, error)
	Update(trip *models.Trip) error
	Delete(id uint) error
	AddItem(ti *models.TripItem) error
	UpdateItem(ti *models.TripItem) error
	RemoveItem(tripID, itemID uint) error
}

// ConversationRepository is the Carlo conversation ledger: conversations
// plus their append-only message sequences.
type ConversationRepository interface {
	Create(conv *models.Conversation) error
	GetByIDAndUser(id, userID string) (*models.Conversation, error)
	ListByUser(userID string) ([]models.Conversation, error)
	UpdateTitle(id, title string) error
	Touch(id string) error
	Delete(id, userID string) error
	AppendMessage(msg *models.ConversationMessage) error
	ListMessages(conversationID string) ([]models.ConversationMessage, error)
}

// WebhookEventRepository persists inbound webhook deliveries idempotently
type WebhookEventRepository interface {
	CreateIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error)
	MarkProcessed(id uint, processingError string) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	User         UserRepository
	Activity     ActivityRepository
	Category     CategoryRepository
	Item         ItemRepository
	Trip         TripRepository
	Conversation ConversationRepository
	WebhookEvent WebhookEventRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Activity:     NewActivityRepository(db),
		Category:     NewCategoryRepository(db),
		Item:         NewItemRepository(db),
		Trip:         NewTripRepository(db),
		Conversation: NewConversationRepository(db),
		WebhookEvent: NewWebhookEventRepository(db),
	}
}
