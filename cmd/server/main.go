package main

import (
	"context"                         // context package is needed for Redis operations
	"jotshi_backend/internal/ai"      // Model clients
	"jotshi_backend/internal/api"     // Custom package for API handlers
	"jotshi_backend/internal/astro"   // Chart readings
	"jotshi_backend/internal/config"  // Custom package for configuration
	"jotshi_backend/internal/db"      // Database connection
	"jotshi_backend/internal/prompts" // Prompt catalogue
	"jotshi_backend/internal/storage" // Object storage

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	if cfg.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET must be set")
	}

	// Connect to the database
	gdb, err := db.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Model clients
	gateway := ai.NewGateway(ai.GatewayConfig{
		APIKey:  cfg.AIGatewayKey,
		BaseURL: cfg.AIGatewayURL,
		Model:   cfg.AIModel,
	})
	var text ai.Completer = gateway
	var vision ai.Vision
	if gemini, err := ai.NewGemini(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel); err == nil {
		vision = gemini
		if cfg.AIGatewayKey == "" {
			text = gemini // Gemini covers text when no gateway key is set
		}
	} else {
		logrus.WithError(err).Warn("Gemini unavailable, chart scans will return the fallback")
	}
	if cfg.AIGatewayKey == "" {
		logrus.Warn("AI gateway key not set, AstroBot chat is disabled")
	}
	svc := astro.NewService(text, gateway, vision, prompts.MustLoad(), redisClient)

	var store storage.Uploader
	if cfg.StorageURL != "" {
		store = storage.New(cfg.StorageURL, cfg.StorageKey, cfg.StorageBucket)
	} else {
		logrus.Warn("Storage not configured, avatar uploads are disabled")
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	api.RegisterRoutes(r, api.Deps{
		DB:                gdb,
		Redis:             redisClient,
		Astro:             svc,
		Storage:           store,
		JWTSecret:         cfg.JWTSecret,
		MinConsultMinutes: cfg.MinConsultMinutes,
	})

	logrus.Info("Server running on " + cfg.AppPort) // Log server start
	if err := r.Run(":" + cfg.AppPort); err != nil {
		logrus.Fatalf("server stopped: %v", err)
	}
}
