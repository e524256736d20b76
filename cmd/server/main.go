package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"gearbook-backend/internal/adapters/http/middleware"
	"gearbook-backend/internal/adapters/http/routes"
	"gearbook-backend/internal/adapters/persistence/models"
	"gearbook-backend/internal/adapters/persistence/repositories"
	"gearbook-backend/internal/config"
	"gearbook-backend/internal/core/services"
	"gearbook-backend/internal/pkg/locker"

	"github.com/gofiber/fiber/v2"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed demo catalog in development
	if cfg.IsDev() {
		if err := config.NewSeeder(db).Run(); err != nil {
			log.Printf("⚠️ Warning: Failed to seed resources: %v", err)
		}
	}

	// Approval serialization: Redis lease when configured, in-process
	// locker for single-instance deployments
	redisClient, err := config.ConnectRedis(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to redis: %v", err)
	}
	var resourceLocker locker.Locker
	if redisClient != nil {
		resourceLocker = locker.NewRedisLocker(redisClient, "gearbook")
	} else {
		resourceLocker = locker.NewMemoryLocker()
		log.Println("⚠️ REDIS_ADDR not set, using in-process locker")
	}

	// Notifier for webhook events
	notifier := services.NewNotificationService(cfg.Notify.WebhookURL)

	// Background automation: interval sweep plus daily cron jobs
	reservationRepo := repositories.NewReservationRepository(db)
	autoService := services.NewReservationAutoService(reservationRepo, notifier)
	autoService.Start()
	defer autoService.Stop()

	cronService := services.NewCronService(reservationRepo, autoService, notifier)
	if err := cronService.Start(); err != nil {
		log.Fatalf("❌ Failed to start cron service: %v", err)
	}
	defer cronService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Gearbook Reservations API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes
	routes.Setup(app, db, cfg, resourceLocker, notifier)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
