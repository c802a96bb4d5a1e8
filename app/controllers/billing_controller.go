package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v79/webhook"
	"gorm.io/gorm"

	"github.com/yonderlust/yonderlust/app/models"
	"github.com/yonderlust/yonderlust/app/repository"
	"github.com/yonderlust/yonderlust/internal/pkg/billing"
	"github.com/yonderlust/yonderlust/internal/pkg/env"
	"github.com/yonderlust/yonderlust/internal/pkg/usercontext"
)

type checkoutRequest struct {
	Interval string `json:"interval"`
}

// HandleCreateCheckoutSession starts a Trailblazer checkout and returns
// the hosted page URL.
func HandleCreateCheckoutSession(c *fiber.Ctx) error {
	userID := usercontext.UserID(c)

	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	if req.Interval == "" {
		req.Interval = billing.IntervalMonthly
	}

	user, err := repository.GetGlobalRepositories().User.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "User not found")
		}
		return jsonInternalError(c, "billing: load user", err)
	}

	url, err := billingService.CreateCheckoutSession(user, req.Interval)
	if err != nil {
		if errors.Is(err, billing.ErrBadInterval) {
			return jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
		}
		return jsonInternalError(c, "billing: create checkout", err)
	}
	return c.JSON(fiber.Map{"url": url})
}

// HandleCreatePortalSession opens the Stripe customer portal.
func HandleCreatePortalSession(c *fiber.Ctx) error {
	userID := usercontext.UserID(c)

	user, err := repository.GetGlobalRepositories().User.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "User not found")
		}
		return jsonInternalError(c, "billing: load user", err)
	}

	url, err := billingService.CreatePortalSession(user)
	if err != nil {
		if errors.Is(err, billing.ErrNoCustomer) {
			return jsonError(c, fiber.StatusBadRequest, "bad_request", "No billing profile for user")
		}
		return jsonInternalError(c, "billing: create portal", err)
	}
	return c.JSON(fiber.Map{"url": url})
}

// HandleStripeWebhook verifies, persists, and applies a Stripe event.
// Verified deliveries are stored with a unique (provider, event ID) key,
// so Stripe's redeliveries are acknowledged without reprocessing.
func HandleStripeWebhook(c *fiber.Ctx) error {
	secret := env.GetEnv("STRIPE_WEBHOOK_SECRET", "")
	if secret == "" {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Webhook not configured")
	}

	event, err := webhook.ConstructEventWithOptions(
		c.Body(),
		c.Get("Stripe-Signature"),
		secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Signature verification failed")
	}

	repos := repository.GetGlobalRepositories()
	created, stored, err := repos.WebhookEvent.CreateIfNotExists(&models.WebhookEvent{
		Provider:        models.WebhookProviderStripe,
		ProviderEventID: event.ID,
		EventType:       string(event.Type),
		PayloadJSON:     string(c.Body()),
		SignatureValid:  true,
	})
	if err != nil {
		return jsonInternalError(c, "billing: persist webhook event", err)
	}
	if !created {
		return c.JSON(fiber.Map{"status": "duplicate"})
	}

	processingErr := ""
	if err := billingService.HandleEvent(event); err != nil {
		processingErr = err.Error()
	}
	if err := repos.WebhookEvent.MarkProcessed(stored.ID, processingErr); err != nil {
		return jsonInternalError(c, "billing: mark webhook processed", err)
	}
	if processingErr != "" {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to process event")
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
