package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/yonderlust/yonderlust/app/models"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a user repository backed by GORM.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *userRepository) GetByID(id string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByStripeCustomerID(customerID string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("stripe_customer_id = ?", customerID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

func (r *userRepository) UpdateFields(id string, fields map[string]interface{}) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).Updates(fields).Error
}

// ResetCarloQuota zeroes the monthly counter and advances the reset
// timestamp in one write, so a concurrent check cannot observe a reset
// counter with a stale reset time.
func (r *userRepository) ResetCarloQuota(id string, nextReset time.Time) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"monthly_carlo_conversations":  0,
		"carlo_conversation_reset_at": nextReset,
	}).Error
}

// IncrementCarloConversations is a single atomic SQL increment; concurrent
// exchanges from the same user cannot under-count usage.
func (r *userRepository) IncrementCarloConversations(id string) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).
		UpdateColumn("monthly_carlo_conversations", gorm.Expr("monthly_carlo_conversations + 1")).Error
}
