// cmd/server/main.go
package main

import (
	"fmt"
	"log"
	_ "shiftness-api/docs" // Required for Swagger
	"shiftness-api/internal/api"
	"shiftness-api/internal/auth"
	"shiftness-api/internal/config"
	"shiftness-api/internal/storage"
	"shiftness-api/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// @title           Shiftness API
// @version         1.0
// @description     Multi-tenant user, business and membership API with share-code onboarding

// @BasePath  /

// @securityDefinitions.apikey  BearerAuth
// @in                         header
// @name                       Authorization
func main() {
	// Load configuration from .env
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using system environment variables")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.InitLogger(cfg.Log.File, cfg.Env)
	defer logger.Logger.Sync()

	// Initialize JWT with config
	auth.InitJWT(cfg)

	db, err := storage.NewDB(storage.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
	})
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := storage.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Set up and start the server
	router := api.SetupRouter(db, logger.Logger)

	serverAddr := fmt.Sprintf(":%s", cfg.Server.Port)
	if cfg.Env == "development" {
		log.Printf("Server starting on http://localhost%s", serverAddr)
		log.Printf("Swagger UI available at http://localhost%s/swagger/index.html", serverAddr)
	}

	if err := router.Run(serverAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
