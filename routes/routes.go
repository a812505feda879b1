package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"

	controller "renovision/controllers"
	"renovision/middleware"
	"renovision/utils"
)

func SetupAuthRoutes(app *fiber.App) {
	auth := app.Group("/api/auth", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Public auth endpoints (no authentication required)
	auth.Post("/register", controller.Register)
	auth.Post("/login", controller.Login)
	auth.Post("/refresh", controller.RefreshToken)

	// Protected auth endpoints (require valid JWT)
	protectedAuth := auth.Group("", middleware.Protected())
	protectedAuth.Get("/me", controller.GetCurrentCompany)
}

func SetupAPIRoutes(app *fiber.App, db *gorm.DB, mailer *utils.Mailer, hub *controller.LeadHub, transformer utils.ImageTransformer, uploadDir string) {
	leadController := controller.NewLeadController(db, mailer, hub, log.New(os.Stdout, "LEAD: ", log.LstdFlags))
	companyController := controller.NewCompanyController(db, log.New(os.Stdout, "COMPANY: ", log.LstdFlags))
	statsController := controller.NewStatsController(db, log.New(os.Stdout, "STATS: ", log.LstdFlags))
	generationController := controller.NewGenerationController(transformer, uploadDir)

	api := app.Group("/api", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Public widget endpoints, rate limited per IP
	widget := api.Group("", middleware.CaptureRateLimiter())
	widget.Post("/lead", leadController.CaptureLead)
	widget.Post("/upload", generationController.UploadImage)
	widget.Post("/generate", generationController.GenerateImage)

	// Demo seeding for the landing page
	api.Post("/demo/create", controller.CreateDemoCompany)

	// Dashboard endpoints
	protected := api.Group("", middleware.Protected())

	company := protected.Group("/company/:companyId", middleware.RequireCompanyParam())
	company.Get("/", companyController.GetCompany)
	company.Get("/leads", leadController.GetLeads)
	company.Get("/stats", statsController.GetCompanyStats)
	company.Get("/embed", companyController.GetEmbedCode)

	protected.Put("/lead/:leadId", leadController.UpdateLead)

	// WebSocket feed of newly captured leads
	protected.Get("/leads/stream", websocket.New(hub.HandleLeadStreamWS))
}

func SetupRoutes(app *fiber.App, db *gorm.DB, mailer *utils.Mailer, hub *controller.LeadHub, transformer utils.ImageTransformer, uploadDir string) {
	// Health check reports store connectivity separately for diagnostics
	app.Get("/health", func(c *fiber.Ctx) error {
		dbStatus := "ok"
		if sqlDB, err := db.DB(); err != nil || sqlDB.Ping() != nil {
			dbStatus = "unreachable"
		}
		return c.JSON(fiber.Map{
			"status":   "ok",
			"database": dbStatus,
		})
	})

	// Uploaded and generated images
	app.Static("/uploads", uploadDir)

	SetupAuthRoutes(app)
	SetupAPIRoutes(app, db, mailer, hub, transformer, uploadDir)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}
