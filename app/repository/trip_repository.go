package repository

import (
	"gorm.io/gorm"

	"github.com/yonderlust/yonderlust/app/models"
)

type tripRepository struct {
	db *gorm.DB
}

// NewTripRepository creates a trip repository backed by GORM.
func NewTripRepository(db *gorm.DB) TripRepository {
	return &tripRepository{db: db}
}

func (r *tripRepository) Create(trip *models.Trip) error {
	return r.db.Create(trip).Error
}

func (r *tripRepository) GetByIDAndUser(id uint, userID string) (*models.Trip, error) {
	var trip models.Trip
	err := r.db.Preload("Activity").
		Preload("TripItems").
		Preload("TripItems.Item").
		Preload("TripItems.Item.Category").
		Preload("TripItems.Item.ItemType").
		Where("id = ? AND user_id = ?", id, userID).
		First(&trip).Error
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

func (r *tripRepository) ListByUser(userID string) ([]models.Trip, error) {
	var trips []models.Trip
	err := r.db.Preload("Activity").
		Where("user_id = ?", userID).
		Order("start_date IS NULL, start_date").
		Find(&trips).Error
	return trips, err
}

// ListOwnedByIDs fetches the requested trips with everything the context
// renderer needs preloaded. Foreign-owned IDs produce no rows.
func (r *tripRepository) ListOwnedByIDs(userID string, ids []uint) ([]models.Trip, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var trips []models.Trip
	err := r.db.Preload("Activity").
		Preload("TripItems").
		Preload("TripItems.Item").
		Preload("TripItems.Item.Category").
		Preload("TripItems.Item.ItemType").
		Where("user_id = ? AND id IN ?", userID, ids).
		Find(&trips).Error
	return trips, err
}

func (r *tripRepository) Update(trip *models.Trip) error {
	return r.db.Save(trip).Error
}

func (r *tripRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("trip_id = ?", id).Delete(&models.TripItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Trip{}, id).Error
	})
}

func (r *tripRepository) AddItem(ti *models.TripItem) error {
	return r.db.Create(ti).Error
}

func (r *tripRepository) UpdateItem(ti *models.TripItem) error {
	return r.db.Model(&models.TripItem{}).
		Where("trip_id = ? AND item_id = ?", ti.TripID, ti.ItemID).
		Updates(map[string]interface{}{
			"quantity":      ti.Quantity,
			"is_worn":       ti.IsWorn,
			"is_consumable": ti.IsConsumable,
		}).Error
}

func (r *tripRepository) RemoveItem(tripID, itemID uint) error {
	return r.db.Where("trip_id = ? AND item_id = ?", tripID, itemID).Delete(&models.TripItem{}).Error
}
