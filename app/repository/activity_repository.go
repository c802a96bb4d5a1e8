package repository

import (
	"gorm.io/gorm"

	"github.com/yonderlust/yonderlust/app/models"
)

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository creates an activity repository backed by GORM.
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) ListAll() ([]models.Activity, error) {
	var activities []models.Activity
	err := r.db.Order("name").Find(&activities).Error
	return activities, err
}

// ListByIDs fetches catalog activities by ID. The catalog is global, so
// there is no owner filter here; ordering is by name for deterministic
// context rendering.
func (r *activityRepository) ListByIDs(ids []uint) ([]models.Activity, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var activities []models.Activity
	err := r.db.Where("id IN ?", ids).Order("name").Find(&activities).Error
	return activities, err
}

func (r *activityRepository) ListUserActivities(userID string) ([]models.UserActivity, error) {
	var entries []models.UserActivity
	err := r.db.Preload("Activity").Where("user_id = ?", userID).Find(&entries).Error
	return entries, err
}

// ReplaceUserActivities swaps the user's whole selection in one
// transaction (delete-then-insert, matching the profile form semantics).
func (r *activityRepository) ReplaceUserActivities(userID string, entries []models.UserActivity) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.UserActivity{}).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		for i := range entries {
			entries[i].UserID = userID
		}
		return tx.Create(&entries).Error
	})
}
