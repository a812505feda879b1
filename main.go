package main

import (
	"context"
	"log"
	"os"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"

	"renovision/config"
	controller "renovision/controllers"
	"renovision/middleware"
	"renovision/routes"
	"renovision/utils"
	"renovision/worker"
)

func main() {
	// Initialize logger
	logger := log.New(os.Stdout, "RENOVISION: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Error reporting
	if config.AppConfig.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         config.AppConfig.SentryDSN,
			Environment: config.AppConfig.Environment,
		}); err != nil {
			logger.Printf("Sentry initialization failed: %v", err)
		}
	}

	// Initialize database connection
	if err := config.ConnectDB(); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit: 20 * 1024 * 1024, // widget photo uploads
	})

	// Add CORS middleware
	app.Use(middleware.CORS())

	// Image generation provider selected by configuration
	transformer, err := utils.NewImageTransformer(config.AppConfig)
	if err != nil {
		logger.Fatalf("Failed to configure image provider: %v", err)
	}
	logger.Printf("Image provider: %s", transformer.Name())

	mailer := utils.NewMailer(config.AppConfig)
	hub := controller.NewLeadHub()

	// Initialize and start the daily follow-up worker
	followUpWorker := worker.NewFollowUpWorker(
		config.DB,
		mailer,
		log.New(os.Stdout, "FOLLOWUP: ", log.LstdFlags),
		config.AppConfig.FollowUpHour,
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go followUpWorker.Start(ctx)

	// Setup routes
	routes.SetupRoutes(app, config.DB, mailer, hub, transformer, config.AppConfig.UploadDir)

	// Start server
	logger.Printf("🚀 Server starting on port %s", config.AppConfig.ServerPort)
	if err := app.Listen(":" + config.AppConfig.ServerPort); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
