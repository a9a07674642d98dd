package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	config "github.com/pitchapp/pitch-api/configs"
	"github.com/pitchapp/pitch-api/internal/application/services"
	"github.com/pitchapp/pitch-api/internal/core/ports"
	"github.com/pitchapp/pitch-api/internal/infrastructure/db"
	"github.com/pitchapp/pitch-api/internal/infrastructure/email"
	"github.com/pitchapp/pitch-api/internal/infrastructure/health"
	"github.com/pitchapp/pitch-api/internal/infrastructure/httpserver"
	"github.com/pitchapp/pitch-api/internal/infrastructure/redis"
	"github.com/pitchapp/pitch-api/internal/infrastructure/repositories"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Setup logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}

	logger.Info("Starting pitch API...")

	// Initialize database (apply pool settings from config)
	database, err := db.NewDatabaseWithConfig(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	logger.Info("Connected to database successfully")

	// Initialize Redis client
	redisClient, err := redis.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	logger.Info("Connected to Redis successfully")

	// Run migrations
	if err := database.Migrate("./migrations"); err != nil {
		logger.Warn("Failed to run migrations:", err)
	}

	// Repository implementations
	accountRepo := repositories.NewAccountRepository(database, logger)
	verificationRepo := repositories.NewVerificationRepository(database, logger)
	pitchRepo := repositories.NewPitchRepository(database, logger)
	favoriteRepo := repositories.NewFavoriteRepository(database, logger)
	tokenRepo := repositories.NewTokenRepository(database, logger)
	rateLimitRepo := repositories.NewRateLimitRedisRepository(redisClient)

	// Generic Redis cache for read-heavy pitch lookups
	redisCache := redis.NewRedisCache(redisClient, "pitchcache")

	// Email service
	emailConfig := &email.EmailConfig{
		SendGridAPIKey: cfg.Email.SendGridAPIKey,
		FromEmail:      cfg.Email.FromEmail,
		FromName:       cfg.Email.FromName,
		AppName:        cfg.Email.AppName,
		BaseURL:        cfg.Email.BaseURL,
	}
	emailService, err := email.NewEmailService(emailConfig, logger)
	if err != nil {
		logger.Fatal("Failed to initialize email service:", err)
	}

	// Wire all services with their repository dependencies
	accountService := services.NewAccountService(accountRepo, verificationRepo, emailService, logger)
	authService := services.NewAuthService(accountRepo, tokenRepo, &cfg.JWT, logger)
	pitchService := services.NewPitchService(pitchRepo, favoriteRepo, redisCache, 5*time.Minute, logger)

	rateLimiterConfig := &services.RateLimiterConfig{
		DefaultRequestsPerMinute: cfg.RateLimit.DefaultRequestsPerMinute,
		BurstMultiplier:          cfg.RateLimit.BurstMultiplier,
		Window:                   cfg.RateLimit.Window,
		KeyPrefix:                cfg.RateLimit.KeyPrefix,
	}
	rateLimiterService := services.NewRateLimiterService(rateLimitRepo, rateLimiterConfig, logger)

	hcSlice := []ports.HealthChecker{health.NewDBHealthChecker(database), health.NewRedisHealthChecker(redisClient)}

	// Create server configuration
	serverConfig := &httpserver.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		TLSCertFile:    cfg.Server.TLSCertFile,
		TLSKeyFile:     cfg.Server.TLSKeyFile,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Environment:    cfg.Server.Environment,
	}

	deps := httpserver.ServerDeps{
		AccountService:     accountService,
		AuthService:        authService,
		PitchService:       pitchService,
		RateLimiterService: rateLimiterService,
		HealthCheckers:     hcSlice,
	}

	server := httpserver.NewServer(serverConfig, logger, deps)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Failed to start server:", err)
		}
	}()

	logger.Infof("Server started on %s:%s", cfg.Server.Host, cfg.Server.Port)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
