package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"github.com/gavin100305/Auraflix-sub000/internal/caching"
	"github.com/gavin100305/Auraflix-sub000/internal/config"
	"github.com/gavin100305/Auraflix-sub000/internal/handlers"
	"github.com/gavin100305/Auraflix-sub000/internal/jobs/background"
	"github.com/gavin100305/Auraflix-sub000/internal/middleware"
	"github.com/gavin100305/Auraflix-sub000/internal/repositories"
	"github.com/gavin100305/Auraflix-sub000/internal/services"
	"github.com/gavin100305/Auraflix-sub000/pkg/database"
)

const version = "1.0.0"

func main() {
	cfg := config.Load()

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	if err := database.RunMigrations(cfg.DatabaseURL, "migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	pool, err := database.NewPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: JWT_SECRET not set, using a generated secret; tokens will not survive restarts")
	}

	recommenderCfg, err := config.LoadRecommenderConfig("recommender.toml")
	if err != nil {
		log.Fatalf("Failed to load recommender config: %v", err)
	}

	// External integrations
	recommender := services.NewRecommenderClient(
		recommenderCfg.Recommender.SuggestionURL,
		recommenderCfg.Recommender.AnalyticsURL,
		time.Duration(recommenderCfg.Timeouts.FetchSeconds)*time.Second,
	)

	cacheSvc := caching.NewRedisCacheService(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	archiveSvc, err := services.NewMinioArchiveService(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL, cfg.ArchiveBucket)
	if err != nil {
		log.Fatalf("Failed to initialize archive service: %v", err)
	}

	bucketCtx, cancelBucket := context.WithTimeout(context.Background(), 10*time.Second)
	if err := archiveSvc.EnsureBucketExists(bucketCtx); err != nil {
		log.Printf("WARNING: could not ensure archive bucket %q exists: %v", cfg.ArchiveBucket, err)
	}
	cancelBucket()

	// Repositories and services
	userRepo := repositories.NewBusinessUserRepo(pool)
	suggestionSvc := services.NewSuggestionService(userRepo, recommender, cacheSvc, archiveSvc)
	authSvc := services.NewAuthService(
		userRepo,
		recommender,
		suggestionSvc,
		jwtSecret,
		time.Duration(recommenderCfg.Timeouts.FetchSeconds)*time.Second,
		time.Duration(recommenderCfg.Timeouts.RefreshSeconds)*time.Second,
	)

	// Handlers
	authHandlers := handlers.NewAuthHandlers(authSvc)
	suggestionHandlers := handlers.NewSuggestionHandlers(suggestionSvc, recommender)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc, archiveSvc)

	// Background jobs
	scheduler, err := background.NewJobScheduler(suggestionSvc, userRepo, cfg.SuggestionRefreshHours)
	if err != nil {
		log.Fatalf("Failed to create job scheduler: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Create Echo instance
	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)

	api := e.Group("/api")

	// Authentication routes (no JWT required)
	auth := api.Group("/auth")
	auth.POST("/register", authHandlers.Register)
	auth.POST("/login", authHandlers.Login)

	// Protected routes
	protected := api.Group("")
	protected.Use(middleware.JWTMiddleware(authSvc))

	protected.GET("/auth/suggestions", suggestionHandlers.GetSuggestions)
	protected.GET("/auth/me", authHandlers.Me)
	protected.PUT("/auth/me", authHandlers.UpdateMe)
	protected.GET("/influencers/rank/:rank", suggestionHandlers.GetInfluencerByRank)

	log.Printf("AuraFlix server v%s starting on port %d", version, cfg.Port)

	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", cfg.Port)))
}
