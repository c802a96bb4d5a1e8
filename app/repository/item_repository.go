package repository

import (
	"gorm.io/gorm"

	"github.com/yonderlust/yonderlust/app/models"
)

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a category repository backed by GORM.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) ListByUser(userID string) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.Where("user_id = ?", userID).Order("name").Find(&categories).Error
	return categories, err
}

func (r *categoryRepository) CountByUser(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Category{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *categoryRepository) Create(category *models.Category) error {
	return r.db.Create(category).Error
}

type itemRepository struct {
	db *gorm.DB
}

// NewItemRepository creates an item repository backed by GORM.
func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) Create(item *models.Item) error {
	return r.db.Create(item).Error
}

func (r *itemRepository) CreateBatch(items []models.Item) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.Create(&items).Error
}

func (r *itemRepository) GetByID(id uint) (*models.Item, error) {
	var item models.Item
	if err := r.db.Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepository) GetTypeByName(name string) (*models.ItemType, error) {
	var itemType models.ItemType
	if err := r.db.Where("name = ?", name).First(&itemType).Error; err != nil {
		return nil, err
	}
	return &itemType, nil
}

func (r *itemRepository) ListByUserAndType(userID string, itemTypeID uint) ([]models.Item, error) {
	var items []models.Item
	err := r.db.Preload("Category").
		Where("user_id = ? AND item_type_id = ?", userID, itemTypeID).
		Order("name").
		Find(&items).Error
	return items, err
}

// ListOwnedByIDs fetches the requested items scoped to their owner. IDs
// belonging to other users simply produce no rows; callers never see
// foreign records.
func (r *itemRepository) ListOwnedByIDs(userID string, ids []uint) ([]models.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []models.Item
	err := r.db.Preload("Category").Preload("ItemType").
		Where("user_id = ? AND id IN ?", userID, ids).
		Order("name").
		Find(&items).Error
	return items, err
}

func (r *itemRepository) Update(item *models.Item) error {
	return r.db.Save(item).Error
}

func (r *itemRepository) Delete(id uint) error {
	return r.db.Delete(&models.Item{}, id).Error
}

func (r *itemRepository) CountTripReferences(itemID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.TripItem{}).Where("item_id = ?", itemID).Count(&count).Error
	return count, err
}

func (r *itemRepository) DeleteTripReferences(itemID uint) error {
	return r.db.Where("item_id = ?", itemID).Delete(&models.TripItem{}).Error
}
