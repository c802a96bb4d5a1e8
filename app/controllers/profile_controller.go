package controllers

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/yonderlust/yonderlust/app/models"
	"github.com/yonderlust/yonderlust/app/repository"
	"github.com/yonderlust/yonderlust/internal/pkg/usercontext"
	"github.com/yonderlust/yonderlust/internal/pkg/utils"
)

const aiContextMaxLen = 1000

// HandleGetProfile returns the user's account, the activity catalog, the
// selected activity IDs with their notes, and a subscription snapshot.
func HandleGetProfile(c *fiber.Ctx) error {
	userID := usercontext.UserID(c)
	repos := repository.GetGlobalRepositories()

	user, err := repos.User.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "User not found")
		}
		return jsonInternalError(c, "profile: load user", err)
	}

	catalog, err := repos.Activity.ListAll()
	if err != nil {
		return jsonInternalError(c, "profile: load activities", err)
	}

	selected, err := repos.Activity.ListUserActivities(userID)
	if err != nil {
		return jsonInternalError(c, "profile: load user activities", err)
	}

	selectedIDs := make([]uint, 0, len(selected))
	notes := make(map[uint]string)
	for _, ua := range selected {
		selectedIDs = append(selectedIDs, ua.ActivityID)
		if ua.Notes != "" {
			notes[ua.ActivityID] = ua.Notes
		}
	}

	sub, err := quotaEngine.SubscriptionInfo(userID)
	if err != nil {
		return jsonInternalError(c, "profile: subscription info", err)
	}

	return c.JSON(fiber.Map{
		"user": fiber.Map{
			"id":         user.ID,
			"email":      user.Email,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"ai_context": user.AIContext,
			"avatar_url": utils.GravatarURL(user.Email, 200),
			"created_at": user.CreatedAt,
		},
		"subscription":          sub,
		"activities":            catalog,
		"selected_activity_ids": selectedIDs,
		"activity_notes":        notes,
	})
}

type updateActivitiesRequest struct {
	ActivityIDs   []uint          `json:"activity_ids"`
	ActivityNotes map[uint]string `json:"activity_notes"`
}

// HandleUpdateActivities replaces the user's activity selection. A first
// non-empty selection sets the profile-completed milestone.
func HandleUpdateActivities(c *fiber.Ctx) error {
	userID := usercontext.UserID(c)

	var req updateActivitiesRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	if req.ActivityIDs == nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "activity_ids is required")
	}

	entries := make([]models.UserActivity, 0, len(req.ActivityIDs))
	for _, id := range req.ActivityIDs {
		entries = append(entries, models.UserActivity{
			UserID:     userID,
			ActivityID: id,
			Notes:      strings.TrimSpace(req.ActivityNotes[id]),
		})
	}

	repos := repository.GetGlobalRepositories()
	if err := repos.Activity.ReplaceUserActivities(userID, entries); err != nil {
		return jsonInternalError(c, "profile: replace activities", err)
	}

	if len(entries) > 0 {
		if user, err := repos.User.GetByID(userID); err == nil && !user.HasCompletedProfile {
			now := time.Now()
			_ = repos.User.UpdateFields(userID, map[string]interface{}{
				"has_completed_profile": true,
				"profile_completed_at":  &now,
			})
		}
	}

	return c.JSON(fiber.Map{"success": true})
}

type updateAIContextRequest struct {
	AIContext string `json:"ai_context"`
}

// normalizeAIContext trims the note and enforces the cap in characters,
// not bytes. An empty note becomes NULL so the assembler skips the
// section entirely.
func normalizeAIContext(raw string) (interface{}, bool) {
	note := strings.TrimSpace(raw)
	if utf8.RuneCountInString(note) > aiContextMaxLen {
		return nil, false
	}
	if note == "" {
		return nil, true
	}
	return note, true
}

// HandleUpdateAIContext stores the free-text note Carlo reads on every
// exchange. The note is trimmed and capped at 1000 characters.
func HandleUpdateAIContext(c *fiber.Ctx) error {
	userID := usercontext.UserID(c)

	var req updateAIContextRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}

	stored, ok := normalizeAIContext(req.AIContext)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Context too long (max 1000 characters)")
	}

	if err := repository.GetGlobalRepositories().User.UpdateFields(userID, map[string]interface{}{
		"ai_context": stored,
	}); err != nil {
		return jsonInternalError(c, "profile: update ai context", err)
	}

	return c.JSON(fiber.Map{"success": true})
}
