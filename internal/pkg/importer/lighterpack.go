// Package importer bulk-loads gear inventories exported from
// LighterPack. Rows arrive already parsed; the package normalizes them,
// reconciles categories, and inserts items in one batch.
package importer

import (
	"errors"
	"strings"

	"github.com/yonderlust/yonderlust/app/models"
	"github.com/yonderlust/yonderlust/app/repository"
	"github.com/yonderlust/yonderlust/internal/pkg/constants"
)

var (
	ErrNoRows      = errors.New("no items to import")
	ErrUnknownType = errors.New("gear item type not found")
)

// Row is one normalized LighterPack entry.
type Row struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Category    string   `json:"category"`
	Weight      *float64 `json:"weight"`
	WeightUnit  string   `json:"weight_unit"`
	Description string   `json:"description"`
	ProductURL  string   `json:"product_url"`
}

// Result reports what one import run created.
type Result struct {
	ItemCount     int `json:"item_count"`
	CategoryCount int `json:"category_count"`
}

// Service reconciles import rows against the user's existing categories
// and bulk-inserts the items as gear.
type Service struct {
	items      repository.ItemRepository
	categories repository.CategoryRepository
}

func NewService(items repository.ItemRepository, categories repository.CategoryRepository) *Service {
	return &Service{items: items, categories: categories}
}

// Import inserts all rows for the user as gear items. Category names are
// matched case-insensitively against the user's existing categories;
// missing ones are created with palette colors continuing from the
// user's current category count. Rows without a name are skipped.
func (s *Service) Import(userID string, rows []Row) (*Result, error) {
	cleaned := make([]Row, 0, len(rows))
	for _, row := range rows {
		row.Name = strings.TrimSpace(row.Name)
		row.Category = strings.TrimSpace(row.Category)
		if row.Name == "" {
			continue
		}
		cleaned = append(cleaned, row)
	}
	if len(cleaned) == 0 {
		return nil, ErrNoRows
	}

	gearType, err := s.items.GetTypeByName(models.ItemTypeGear)
	if err != nil {
		return nil, ErrUnknownType
	}

	existing, err := s.categories.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	categoryIDs := make(map[string]uint, len(existing))
	for _, cat := range existing {
		categoryIDs[strings.ToLower(cat.Name)] = cat.ID
	}

	created := 0
	colorIndex := len(existing)
	for _, row := range cleaned {
		if row.Category == "" {
			continue
		}
		key := strings.ToLower(row.Category)
		if _, ok := categoryIDs[key]; ok {
			continue
		}
		cat := &models.Category{
			UserID: userID,
			Name:   row.Category,
			Color:  constants.CategoryColor(colorIndex),
		}
		if err := s.categories.Create(cat); err != nil {
			return nil, err
		}
		categoryIDs[key] = cat.ID
		colorIndex++
		created++
	}

	items := make([]models.Item, 0, len(cleaned))
	for _, row := range cleaned {
		item := models.Item{
			UserID:      userID,
			ItemTypeID:  gearType.ID,
			Name:        row.Name,
			Weight:      row.Weight,
			WeightUnit:  row.WeightUnit,
			Description: row.Description,
			ProductURL:  row.ProductURL,
		}
		if item.WeightUnit == "" {
			item.WeightUnit = models.DefaultWeightUnit
		}
		if row.Category != "" {
			if id, ok := categoryIDs[strings.ToLower(row.Category)]; ok {
				catID := id
				item.CategoryID = &catID
			}
		}
		items = append(items, item)
	}

	if err := s.items.CreateBatch(items); err != nil {
		return nil, err
	}
	return &Result{ItemCount: len(items), CategoryCount: created}, nil
}
