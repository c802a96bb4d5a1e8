package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/yonderlust/yonderlust/app/controllers"
	"github.com/yonderlust/yonderlust/internal/pkg/identity"
	"github.com/yonderlust/yonderlust/internal/pkg/middleware"
)

// ApiDeps carries the externally-constructed collaborators the API
// routes need.
type ApiDeps struct {
	SessionVerifier *identity.Verifier
}

type ApiRouter struct {
	deps ApiDeps
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())

	v1 := api.Group("/v1")

	// Webhooks authenticate by signature, not session.
	v1.Post("/webhooks/stripe", controllers.HandleStripeWebhook)
	v1.Post("/webhooks/clerk", controllers.HandleClerkWebhook)

	authed := v1.Group("", middleware.SessionAuth(h.deps.SessionVerifier))

	authed.Get("/profile", controllers.HandleGetProfile)
	authed.Put("/profile/activities", controllers.HandleUpdateActivities)
	authed.Put("/profile/ai-context", controllers.HandleUpdateAIContext)

	authed.Get("/activities", controllers.HandleListActivities)

	authed.Get("/categories", controllers.HandleListCategories)
	authed.Get("/items", controllers.HandleListItems)
	authed.Post("/items", controllers.HandleAddItem)
	authed.Put("/items/:id", controllers.HandleUpdateItem)
	authed.Delete("/items/:id", controllers.HandleDeleteItem)

	authed.Get("/trips", controllers.HandleListTrips)
	authed.Post("/trips", controllers.HandleCreateTrip)
	authed.Get("/trips/:id", controllers.HandleGetTrip)
	authed.Put("/trips/:id", controllers.HandleUpdateTrip)
	authed.Delete("/trips/:id", controllers.HandleDeleteTrip)
	authed.Post("/trips/:id/items", controllers.HandleAddTripItem)
	authed.Put("/trips/:id/items/:itemId", controllers.HandleUpdateTripItem)
	authed.Delete("/trips/:id/items/:itemId", controllers.HandleRemoveTripItem)

	authed.Get("/carlo/access", controllers.HandleCheckCarloAccess)
	authed.Get("/conversations", controllers.HandleListConversations)
	authed.Post("/conversations", controllers.HandleCreateConversation)
	authed.Get("/conversations/:id", controllers.HandleGetConversation)
	authed.Put("/conversations/:id", controllers.HandleRenameConversation)
	authed.Delete("/conversations/:id", controllers.HandleDeleteConversation)
	authed.Post("/conversations/:id/messages", controllers.HandleSendMessage)

	authed.Post("/import/lighterpack", controllers.HandleImportLighterPack)

	authed.Post("/billing/checkout", controllers.HandleCreateCheckoutSession)
	authed.Post("/billing/portal", controllers.HandleCreatePortalSession)
}

func NewApiRouter(deps ApiDeps) *ApiRouter {
	return &ApiRouter{deps: deps}
}
