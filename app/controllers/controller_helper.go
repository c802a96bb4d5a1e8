// Package controllers holds the Fiber request handlers for the JSON API.
package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/yonderlust/yonderlust/app/repository"
	"github.com/yonderlust/yonderlust/internal/pkg/advisor"
	"github.com/yonderlust/yonderlust/internal/pkg/billing"
	"github.com/yonderlust/yonderlust/internal/pkg/env"
	"github.com/yonderlust/yonderlust/internal/pkg/identity"
	"github.com/yonderlust/yonderlust/internal/pkg/importer"
	"github.com/yonderlust/yonderlust/internal/pkg/llm"
	"github.com/yonderlust/yonderlust/internal/pkg/quota"
)

var (
	quotaEngine     *quota.Engine
	advisorService  *advisor.Service
	billingService  *billing.Service
	importerService *importer.Service
	clerkWebhooks   *identity.WebhookVerifier
)

// Setup wires the controller-level services. Call once at startup after
// the repository factory is initialized.
func Setup() error {
	repos := repository.GetGlobalRepositories()

	quotaEngine = quota.NewEngine(repos.User)
	assembler := advisor.NewAssembler(repos.User, repos.Activity, repos.Item, repos.Trip)
	advisorService = advisor.NewService(repos.Conversation, repos.User, quotaEngine, assembler, llm.NewGeneratorFromEnv())
	billingService = billing.NewService(repos.User)
	importerService = importer.NewService(repos.Item, repos.Category)

	secret := env.GetEnv("CLERK_WEBHOOK_SECRET", "")
	if secret != "" {
		verifier, err := identity.NewWebhookVerifier(secret)
		if err != nil {
			return err
		}
		clerkWebhooks = verifier
	} else {
		log.Print("CLERK_WEBHOOK_SECRET not set, Clerk webhooks will be rejected")
	}

	billing.Setup()
	return nil
}

func jsonError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": code, "message": message})
}

func jsonInternalError(c *fiber.Ctx, context string, err error) error {
	log.Printf("%s: %v", context, err)
	return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Something went wrong")
}
