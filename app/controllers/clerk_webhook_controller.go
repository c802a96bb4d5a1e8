package controllers

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/yonderlust/yonderlust/app/models"
	"github.com/yonderlust/yonderlust/app/repository"
)

type clerkEmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

type clerkUserData struct {
	ID                    string              `json:"id"`
	FirstName             string              `json:"first_name"`
	LastName              string              `json:"last_name"`
	PrimaryEmailAddressID string              `json:"primary_email_address_id"`
	EmailAddresses        []clerkEmailAddress `json:"email_addresses"`
}

type clerkEvent struct {
	Type string        `json:"type"`
	Data clerkUserData `json:"data"`
}

// HandleClerkWebhook receives identity lifecycle events. user.created
// provisions the local user with a 7-day Trailblazer trial; user.updated
// syncs name and email. Deliveries are stored idempotently keyed by the
// svix message ID.
func HandleClerkWebhook(c *fiber.Ctx) error {
	if clerkWebhooks == nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Webhook not configured")
	}

	msgID := c.Get("svix-id")
	if err := clerkWebhooks.Verify(msgID, c.Get("svix-timestamp"), c.Get("svix-signature"), c.Body()); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Webhook verification failed")
	}

	var event clerkEvent
	if err := json.Unmarshal(c.Body(), &event); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid payload")
	}

	repos := repository.GetGlobalRepositories()
	created, stored, err := repos.WebhookEvent.CreateIfNotExists(&models.WebhookEvent{
		Provider:        models.WebhookProviderClerk,
		ProviderEventID: msgID,
		EventType:       event.Type,
		PayloadJSON:     string(c.Body()),
		SignatureValid:  true,
	})
	if err != nil {
		return jsonInternalError(c, "clerk: persist webhook event", err)
	}
	if !created {
		return c.JSON(fiber.Map{"status": "duplicate"})
	}

	processingErr := ""
	if err := applyClerkEvent(repos, event); err != nil {
		processingErr = err.Error()
	}
	if err := repos.WebhookEvent.MarkProcessed(stored.ID, processingErr); err != nil {
		return jsonInternalError(c, "clerk: mark webhook processed", err)
	}
	if processingErr != "" {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to process event")
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func applyClerkEvent(repos *repository.Repositories, event clerkEvent) error {
	switch event.Type {
	case "user.created":
		user := models.NewTrialUser(
			event.Data.ID,
			primaryEmail(event.Data),
			strings.TrimSpace(event.Data.FirstName),
			strings.TrimSpace(event.Data.LastName),
			time.Now(),
		)
		return repos.User.Create(user)

	case "user.updated":
		return repos.User.UpdateFields(event.Data.ID, map[string]interface{}{
			"email":      primaryEmail(event.Data),
			"first_name": strings.TrimSpace(event.Data.FirstName),
			"last_name":  strings.TrimSpace(event.Data.LastName),
		})

	default:
		return nil
	}
}

func primaryEmail(data clerkUserData) string {
	for _, addr := range data.EmailAddresses {
		if addr.ID == data.PrimaryEmailAddressID {
			return addr.EmailAddress
		}
	}
	if len(data.EmailAddresses) > 0 {
		return data.EmailAddresses[0].EmailAddress
	}
	return ""
}
