package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/yonderlust/yonderlust/internal/pkg/importer"
	"github.com/yonderlust/yonderlust/internal/pkg/usercontext"
)

type importRequest struct {
	Items []importer.Row `json:"items"`
}

// HandleImportLighterPack bulk-imports parsed LighterPack rows as gear.
func HandleImportLighterPack(c *fiber.Ctx) error {
	userID := usercontext.UserID(c)

	var req importRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}

	result, err := importerService.Import(userID, req.Items)
	if err != nil {
		switch {
		case errors.Is(err, importer.ErrNoRows):
			return jsonError(c, fiber.StatusBadRequest, "bad_request", "No items to import")
		case errors.Is(err, importer.ErrUnknownType):
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Gear type not found")
		default:
			return jsonInternalError(c, "import: lighterpack", err)
		}
	}
	return c.JSON(fiber.Map{"success": true, "result": result})
}
