// Package router installs the HTTP route tree.
package router

import (
	"github.com/gofiber/fiber/v2"
)

// Router is one installable route group.
type Router interface {
	InstallRouter(app *fiber.App)
}

// InstallRouter registers all route groups on the app.
func InstallRouter(app *fiber.App, verifierDeps ApiDeps) {
	setup(app, NewHttpRouter(), NewApiRouter(verifierDeps))
}

func setup(app *fiber.App, routers ...Router) {
	for _, r := range routers {
		r.InstallRouter(app)
	}
}
