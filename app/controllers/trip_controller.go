package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/yonderlust/yonderlust/app/models"
	"github.com/yonderlust/yonderlust/app/repository"
	"github.com/yonderlust/yonderlust/internal/pkg/usercontext"
)

// HandleListTrips returns the user's trips with activities and items.
func HandleListTrips(c *fiber.Ctx) error {
	trips, err := repository.GetGlobalRepositories().Trip.ListByUser(usercontext.UserID(c))
	if err != nil {
		return jsonInternalError(c, "trips: list", err)
	}
	return c.JSON(fiber.Map{"trips": trips})
}

// HandleGetTrip returns one owned trip.
func HandleGetTrip(c *fiber.Ctx) error {
	trip, err := tripFromParams(c)
	if trip == nil {
		return err
	}
	return c.JSON(fiber.Map{"trip": trip})
}

type tripRequest struct {
	Name        string     `json:"name"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Notes       string     `json:"notes"`
	ActivityID  *uint      `json:"activity_id"`
	WaterVolume *float64   `json:"water_volume"`
	WaterUnit   string     `json:"water_unit"`
}

// HandleCreateTrip creates a trip for the user.
func HandleCreateTrip(c *fiber.Ctx) error {
	userID := usercontext.UserID(c)

	var req tripRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Name is required")
	}

	trip := &models.Trip{
		UserID:      userID,
		Name:        req.Name,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Notes:       req.Notes,
		ActivityID:  req.ActivityID,
		WaterVolume: req.WaterVolume,
		WaterUnit:   req.WaterUnit,
	}
	if trip.WaterUnit == "" {
		trip.WaterUnit = models.DefaultWaterUnit
	}

	if err := repository.GetGlobalRepositories().Trip.Create(trip); err != nil {
		return jsonInternalError(c, "trips: create", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"trip": trip})
}

// HandleUpdateTrip updates an owned trip's fields.
func HandleUpdateTrip(c *fiber.Ctx) error {
	trip, err := tripFromParams(c)
	if trip == nil {
		return err
	}

	var req tripRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Name is required")
	}

	trip.Name = req.Name
	trip.StartDate = req.StartDate
	trip.EndDate = req.EndDate
	trip.Notes = req.Notes
	trip.ActivityID = req.ActivityID
	trip.WaterVolume = req.WaterVolume
	if req.WaterUnit != "" {
		trip.WaterUnit = req.WaterUnit
	}

	if err := repository.GetGlobalRepositories().Trip.Update(trip); err != nil {
		return jsonInternalError(c, "trips: update", err)
	}
	return c.JSON(fiber.Map{"trip": trip})
}

// HandleDeleteTrip deletes an owned trip and its item links.
func HandleDeleteTrip(c *fiber.Ctx) error {
	trip, err := tripFromParams(c)
	if trip == nil {
		return err
	}

	if err := repository.GetGlobalRepositories().Trip.Delete(trip.ID); err != nil {
		return jsonInternalError(c, "trips: delete", err)
	}
	return c.JSON(fiber.Map{"success": true})
}

type tripItemRequest struct {
	ItemID       uint `json:"item_id"`
	Quantity     int  `json:"quantity"`
	IsWorn       bool `json:"is_worn"`
	IsConsumable bool `json:"is_consumable"`
}

// HandleAddTripItem links an owned item to an owned trip.
func HandleAddTripItem(c *fiber.Ctx) error {
	userID := usercontext.UserID(c)
	trip, err := tripFromParams(c)
	if trip == nil {
		return err
	}

	var req tripItemRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	if req.ItemID == 0 {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "item_id is required")
	}

	repos := repository.GetGlobalRepositories()
	item, err := repos.Item.GetByID(req.ItemID)
	if err != nil || item.UserID != userID {
		return jsonError(c, fiber.StatusNotFound, "not_found", "Item not found")
	}

	quantity := req.Quantity
	if quantity < 1 {
		quantity = 1
	}
	ti := &models.TripItem{
		TripID:       trip.ID,
		ItemID:       req.ItemID,
		Quantity:     quantity,
		IsWorn:       req.IsWorn,
		IsConsumable: req.IsConsumable,
	}
	if err := repos.Trip.AddItem(ti); err != nil {
		return jsonInternalError(c, "trips: add item", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"trip_item": ti})
}

// HandleUpdateTripItem changes quantity/worn/consumable on a trip item.
func HandleUpdateTripItem(c *fiber.Ctx) error {
	trip, err := tripFromParams(c)
	if trip == nil {
		return err
	}

	itemID, err := c.ParamsInt("itemId")
	if err != nil || itemID <= 0 {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid item ID")
	}

	var req tripItemRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}

	quantity := req.Quantity
	if quantity < 1 {
		quantity = 1
	}
	ti := &models.TripItem{
		TripID:       trip.ID,
		ItemID:       uint(itemID),
		Quantity:     quantity,
		IsWorn:       req.IsWorn,
		IsConsumable: req.IsConsumable,
	}
	if err := repository.GetGlobalRepositories().Trip.UpdateItem(ti); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Trip item not found")
		}
		return jsonInternalError(c, "trips: update item", err)
	}
	return c.JSON(fiber.Map{"trip_item": ti})
}

// HandleRemoveTripItem unlinks an item from a trip.
func HandleRemoveTripItem(c *fiber.Ctx) error {
	trip, err := tripFromParams(c)
	if trip == nil {
		return err
	}

	itemID, err := c.ParamsInt("itemId")
	if err != nil || itemID <= 0 {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid item ID")
	}

	if err := repository.GetGlobalRepositories().Trip.RemoveItem(trip.ID, uint(itemID)); err != nil {
		return jsonInternalError(c, "trips: remove item", err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// tripFromParams loads the :id trip and enforces ownership. A nil trip
// means the response has already been written.
func tripFromParams(c *fiber.Ctx) (*models.Trip, error) {
	tripID, err := c.ParamsInt("id")
	if err != nil || tripID <= 0 {
		return nil, jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid trip ID")
	}

	trip, err := repository.GetGlobalRepositories().Trip.GetByIDAndUser(uint(tripID), usercontext.UserID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, jsonError(c, fiber.StatusNotFound, "not_found", "Trip not found")
		}
		return nil, jsonInternalError(c, "trips: load", err)
	}
	return trip, nil
}
