package main

import (
	"encoding/hex"
	"log"
	"os"
	"os/signal"
	"syscall"

	"insureadmin/internal/adapters/http/middleware"
	"insureadmin/internal/adapters/http/routes"
	"insureadmin/internal/adapters/persistence/models"
	"insureadmin/internal/config"
	"insureadmin/internal/core/session"

	"github.com/gofiber/fiber/v2"

	_ "insureadmin/docs" // Swagger docs
)

// @title InsureAdmin API
// @version 1.0
// @description Role-based insurance administration API

// @contact.name API Support
// @contact.email support@insureadmin.local

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

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

	// Seed roles, admin user and starter catalog
	if err := config.NewSeeder(db).Run(); err != nil {
		log.Printf("⚠️ Warning: Failed to seed data: %v", err)
	}

	// Open the encrypted session store
	sessions, err := openSessionStore(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to open session store: %v", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "InsureAdmin API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)
	app.Use(middleware.Metrics())

	// Setup routes (pass db and cfg for dependency injection)
	cronService := routes.Setup(app, db, cfg, routes.Deps{Sessions: sessions})

	// Nightly enrollment lapsing and token purge
	if err := cronService.Start(); err != nil {
		log.Fatalf("❌ Failed to start cron jobs: %v", err)
	}
	defer cronService.Stop()

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// openSessionStore decodes the session key and opens the store file
func openSessionStore(cfg *config.Config) (*session.Store, error) {
	key, err := hex.DecodeString(cfg.Session.Key)
	if err != nil || len(key) != 32 {
		if cfg.IsProd() {
			return nil, session.ErrBadKeySize
		}
		// Dev fallback: a fixed key so restarts keep sessions readable
		key = []byte("insureadmin-dev-session-key-0001")
		log.Println("⚠️ SESSION_KEY not set, using dev session key")
	}

	path, err := session.DefaultPath(cfg.Session.Dir)
	if err != nil {
		return nil, err
	}
	return session.New(path, key)
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
