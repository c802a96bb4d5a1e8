package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/yonderlust/yonderlust/app/models"
	"github.com/yonderlust/yonderlust/app/repository"
	"github.com/yonderlust/yonderlust/internal/pkg/cache"
)

const (
	activityCatalogCacheKey = "activities:catalog"
	activityCatalogCacheTTL = time.Hour
)

// HandleListActivities returns the global activity catalog. The catalog
// only changes via migrations, so it is served from cache when redis is
// up and falls back to the database otherwise.
func HandleListActivities(c *fiber.Ctx) error {
	var cached []models.Activity
	if err := cache.GetJSON(activityCatalogCacheKey, &cached); err == nil && len(cached) > 0 {
		return c.JSON(fiber.Map{"activities": cached})
	}

	activities, err := repository.GetGlobalRepositories().Activity.ListAll()
	if err != nil {
		return jsonInternalError(c, "activities: list", err)
	}

	// Best effort: a cache miss next time just rereads the database.
	_ = cache.SetJSON(activityCatalogCacheKey, activities, activityCatalogCacheTTL)

	return c.JSON(fiber.Map{"activities": activities})
}
