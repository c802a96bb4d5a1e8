package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yonderlust/yonderlust/app/models"
	"github.com/yonderlust/yonderlust/internal/pkg/constants"
)

type fakeItemStore struct {
	gearType *models.ItemType
	batches  [][]models.Item
}

func (f *fakeItemStore) Create(item *models.Item) error      { return nil }
func (f *fakeItemStore) CreateBatch(items []models.Item) error {
	f.batches = append(f.batches, items)
	return nil
}
func (f *fakeItemStore) GetByID(id uint) (*models.Item, error) { return nil, gorm.ErrRecordNotFound }
func (f *fakeItemStore) GetTypeByName(name string) (*models.ItemType, error) {
	if f.gearType != nil && f.gearType.Name == name {
		return f.gearType, nil
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeItemStore) ListByUserAndType(userID string, itemTypeID uint) ([]models.Item, error) {
	return nil, nil
}
func (f *fakeItemStore) ListOwnedByIDs(userID string, ids []uint) ([]models.Item, error) {
	return nil, nil
}
func (f *fakeItemStore) Update(item *models.Item) error            { return nil }
func (f *fakeItemStore) Delete(id uint) error                      { return nil }
func (f *fakeItemStore) CountTripReferences(itemID uint) (int64, error) { return 0, nil }
func (f *fakeItemStore) DeleteTripReferences(itemID uint) error    { return nil }

type fakeCategoryStore struct {
	existing []models.Category
	created  []*models.Category
	nextID   uint
}

func (f *fakeCategoryStore) ListByUser(userID string) ([]models.Category, error) {
	return f.existing, nil
}
func (f *fakeCategoryStore) CountByUser(userID string) (int64, error) {
	return int64(len(f.existing)), nil
}
func (f *fakeCategoryStore) Create(category *models.Category) error {
	f.nextID++
	category.ID = f.nextID + 100
	f.created = append(f.created, category)
	return nil
}

func ptrFloat(v float64) *float64 { return &v }

func newTestImporter() (*Service, *fakeItemStore, *fakeCategoryStore) {
	items := &fakeItemStore{gearType: &models.ItemType{ID: 1, Name: models.ItemTypeGear}}
	categories := &fakeCategoryStore{}
	return NewService(items, categories), items, categories
}

func TestImportCreatesMissingCategories(t *testing.T) {
	svc, items, categories := newTestImporter()
	categories.existing = []models.Category{{ID: 9, Name: "Shelter"}}

	result, err := svc.Import("user_1", []Row{
		{Name: "Tent", Category: "shelter", Weight: ptrFloat(28.5), WeightUnit: "oz"},
		{Name: "Quilt", Category: "Sleep"},
		{Name: "Pad", Category: "SLEEP"},
		{Name: "Spoon"},
	})
	require.NoError(t, err)

	assert.Equal(t, 4, result.ItemCount)
	assert.Equal(t, 1, result.CategoryCount)

	// "shelter" matched the existing category case-insensitively; only
	// "Sleep" was created, colored as the user's second category.
	require.Len(t, categories.created, 1)
	assert.Equal(t, "Sleep", categories.created[0].Name)
	assert.Equal(t, constants.CategoryColor(1), categories.created[0].Color)

	require.Len(t, items.batches, 1)
	batch := items.batches[0]
	require.Len(t, batch, 4)
	assert.Equal(t, uint(9), *batch[0].CategoryID)
	assert.Equal(t, *batch[1].CategoryID, *batch[2].CategoryID)
	assert.Nil(t, batch[3].CategoryID)
}

func TestImportDefaultsAndOwnership(t *testing.T) {
	svc, items, _ := newTestImporter()

	_, err := svc.Import("user_1", []Row{{Name: "  Stakes  "}})
	require.NoError(t, err)

	batch := items.batches[0]
	require.Len(t, batch, 1)
	assert.Equal(t, "Stakes", batch[0].Name)
	assert.Equal(t, "user_1", batch[0].UserID)
	assert.Equal(t, uint(1), batch[0].ItemTypeID)
	assert.Equal(t, models.DefaultWeightUnit, batch[0].WeightUnit)
}

func TestImportSkipsNamelessRows(t *testing.T) {
	svc, items, _ := newTestImporter()

	result, err := svc.Import("user_1", []Row{
		{Name: "   "},
		{Name: "Headlamp"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.ItemCount)
	assert.Len(t, items.batches[0], 1)
}

func TestImportRejectsEmpty(t *testing.T) {
	svc, _, _ := newTestImporter()

	_, err := svc.Import("user_1", nil)
	assert.ErrorIs(t, err, ErrNoRows)

	_, err = svc.Import("user_1", []Row{{Name: "  "}})
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestImportMissingGearType(t *testing.T) {
	svc, items, _ := newTestImporter()
	items.gearType = nil

	_, err := svc.Import("user_1", []Row{{Name: "Tent"}})
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestCategoryColorWraps(t *testing.T) {
	assert.Equal(t, constants.CategoryColor(0), constants.CategoryColor(12))
	assert.NotEqual(t, constants.CategoryColor(0), constants.CategoryColor(1))
	assert.Equal(t, constants.CategoryColor(0), constants.CategoryColor(-3))
}
