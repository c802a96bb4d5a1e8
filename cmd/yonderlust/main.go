package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/yonderlust/yonderlust/app/controllers"
	"github.com/yonderlust/yonderlust/app/repository"
	"github.com/yonderlust/yonderlust/internal/pkg/cache"
	"github.com/yonderlust/yonderlust/internal/pkg/database"
	"github.com/yonderlust/yonderlust/internal/pkg/env"
	"github.com/yonderlust/yonderlust/internal/pkg/identity"
	"github.com/yonderlust/yonderlust/internal/pkg/router"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	repository.InitializeFactory(database.GetDB())
	if err := controllers.Setup(); err != nil {
		log.Fatalf("controller setup failed: %v", err)
	}

	verifier, err := identity.NewVerifierFromEnv()
	if err != nil {
		log.Fatalf("session verifier setup failed: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName: "Yonderlust",
	})

	app.Use(recover.New(), logger.New())

	router.InstallRouter(app, router.ApiDeps{SessionVerifier: verifier})

	return app
}
