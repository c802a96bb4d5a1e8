package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/yonderlust/yonderlust/app/models"
	"github.com/yonderlust/yonderlust/app/repository"
	"github.com/yonderlust/yonderlust/internal/pkg/constants"
	"github.com/yonderlust/yonderlust/internal/pkg/usercontext"
)

// HandleListItems returns the user's items of one type. The type comes
// from the "type" query param ("gear" or "food", default gear).
func HandleListItems(c *fiber.Ctx) error {
	userID := usercontext.UserID(c)
	repos := repository.GetGlobalRepositories()

	typeName := c.Query("type", models.ItemTypeGear)
	itemType, err := repos.Item.GetTypeByName(typeName)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Unknown item type")
	}

	items, err := repos.Item.ListByUserAndType(userID, itemType.ID)
	if err != nil {
		return jsonInternalError(c, "items: list", err)
	}
	return c.JSON(fiber.Map{"items": items})
}

// HandleListCategories returns the user's item categories.
func HandleListCategories(c *fiber.Ctx) error {
	categories, err := repository.GetGlobalRepositories().Category.ListByUser(usercontext.UserID(c))
	if err != nil {
		return jsonInternalError(c, "categories: list", err)
	}
	return c.JSON(fiber.Map{"categories": categories})
}

type itemRequest struct {
	Name            string   `json:"name"`
	ItemTypeID      uint     `json:"item_type_id"`
	Brand           string   `json:"brand"`
	CategoryID      *uint    `json:"category_id"`
	NewCategoryName string   `json:"new_category_name"`
	Weight          *float64 `json:"weight"`
	WeightUnit      string   `json:"weight_unit"`
	Description     string   `json:"description"`
	ProductURL      string   `json:"product_url"`
	Calories        *int     `json:"calories"`
}

// HandleAddItem creates an item. A new category name, when given, wins
// over category_id and is created with the next palette color. The first
// item a user adds sets the gear milestone.
func HandleAddItem(c *fiber.Ctx) error {
	userID := usercontext.UserID(c)
	repos := repository.GetGlobalRepositories()

	var req itemRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Name is required")
	}
	if req.ItemTypeID == 0 {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Type is required")
	}

	categoryID, err := resolveCategory(userID, req.CategoryID, req.NewCategoryName)
	if err != nil {
		return jsonInternalError(c, "items: resolve category", err)
	}

	item := &models.Item{
		UserID:      userID,
		ItemTypeID:  req.ItemTypeID,
		CategoryID:  categoryID,
		Name:        req.Name,
		Brand:       strings.TrimSpace(req.Brand),
		Weight:      req.Weight,
		WeightUnit:  req.WeightUnit,
		Description: req.Description,
		ProductURL:  req.ProductURL,
		Calories:    req.Calories,
	}
	if item.WeightUnit == "" {
		item.WeightUnit = models.DefaultWeightUnit
	}

	if err := repos.Item.Create(item); err != nil {
		return jsonInternalError(c, "items: create", err)
	}

	if user, err := repos.User.GetByID(userID); err == nil && !user.HasAddedGear {
		now := time.Now()
		_ = repos.User.UpdateFields(userID, map[string]interface{}{
			"has_added_gear":      true,
			"first_gear_added_at": &now,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"item": item})
}

// HandleUpdateItem updates an owned item in place.
func HandleUpdateItem(c *fiber.Ctx) error {
	userID := usercontext.UserID(c)
	repos := repository.GetGlobalRepositories()

	itemID, err := c.ParamsInt("id")
	if err != nil || itemID <= 0 {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid item ID")
	}

	item, err := repos.Item.GetByID(uint(itemID))
	if err != nil || item.UserID != userID {
		return jsonError(c, fiber.StatusNotFound, "not_found", "Item not found")
	}

	var req itemRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Name is required")
	}

	categoryID, err := resolveCategory(userID, req.CategoryID, req.NewCategoryName)
	if err != nil {
		return jsonInternalError(c, "items: resolve category", err)
	}

	item.Name = req.Name
	item.Brand = strings.TrimSpace(req.Brand)
	item.CategoryID = categoryID
	item.Weight = req.Weight
	item.Description = req.Description
	item.ProductURL = req.ProductURL
	item.Calories = req.Calories
	if req.ItemTypeID != 0 {
		item.ItemTypeID = req.ItemTypeID
	}
	if req.WeightUnit != "" {
		item.WeightUnit = req.WeightUnit
	}

	if err := repos.Item.Update(item); err != nil {
		return jsonInternalError(c, "items: update", err)
	}
	return c.JSON(fiber.Map{"item": item})
}

// HandleDeleteItem removes an owned item. References from trips are
// removed first; the response reports how many trips were touched.
func HandleDeleteItem(c *fiber.Ctx) error {
	userID := usercontext.UserID(c)
	repos := repository.GetGlobalRepositories()

	itemID, err := c.ParamsInt("id")
	if err != nil || itemID <= 0 {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid item ID")
	}

	item, err := repos.Item.GetByID(uint(itemID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Item not found")
		}
		return jsonInternalError(c, "items: load", err)
	}
	if item.UserID != userID {
		return jsonError(c, fiber.StatusNotFound, "not_found", "Item not found")
	}

	tripCount, err := repos.Item.CountTripReferences(item.ID)
	if err != nil {
		return jsonInternalError(c, "items: count trip refs", err)
	}
	if tripCount > 0 {
		if err := repos.Item.DeleteTripReferences(item.ID); err != nil {
			return jsonInternalError(c, "items: delete trip refs", err)
		}
	}

	if err := repos.Item.Delete(item.ID); err != nil {
		return jsonInternalError(c, "items: delete", err)
	}
	return c.JSON(fiber.Map{"success": true, "trip_count": tripCount})
}

// resolveCategory prefers a new category name over an existing ID. The
// new category's color continues the user's palette sequence.
func resolveCategory(userID string, categoryID *uint, newName string) (*uint, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return categoryID, nil
	}

	repos := repository.GetGlobalRepositories()
	count, err := repos.Category.CountByUser(userID)
	if err != nil {
		return nil, err
	}
	category := &models.Category{
		UserID: userID,
		Name:   newName,
		Color:  constants.CategoryColor(int(count)),
	}
	if err := repos.Category.Create(category); err != nil {
		return nil, err
	}
	return &category.ID, nil
}
