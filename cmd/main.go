package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"
	echoSwagger "github.com/swaggo/echo-swagger"

	"ubuxa-console/internal/caching"
	"ubuxa-console/internal/config"
	"ubuxa-console/internal/handlers"
	"ubuxa-console/internal/jobs/background"
	"ubuxa-console/internal/middleware"
	"ubuxa-console/internal/models"
	"ubuxa-console/internal/repositories"
	"ubuxa-console/internal/services"
	"ubuxa-console/pkg/database"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	if cfg.Server.JWTSecret == "" {
		cfg.Server.JWTSecret = random.String(32)
		log.Printf("WARNING: JWT_SECRET not set, using a generated secret")
	}

	pool, err := database.NewPool(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	cacheSvc := caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)

	brandingSvc, err := services.NewBrandingService(
		cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey,
		cfg.Minio.Bucket, cfg.Minio.UseSSL,
	)
	if err != nil {
		log.Fatalf("Failed to initialize branding storage: %v", err)
	}
	if err := brandingSvc.EnsureBucketExists(context.Background()); err != nil {
		log.Printf("WARNING: Could not ensure branding bucket exists: %v", err)
	}

	tenantRepo := repositories.NewTenantRepository(pool)
	tenantAdminRepo := repositories.NewTenantAdminRepository(pool)
	adminRepo := repositories.NewAdminRepository(pool)

	flutterwaveSvc := services.NewFlutterwaveService(cfg.Flutterwave.SecretKey)
	notificationSvc := services.NewNotificationService(cfg.Email.RelayURL, cfg.Server.ConsoleURL)
	tenantSvc := services.NewTenantService(pool, tenantRepo, tenantAdminRepo, flutterwaveSvc, notificationSvc, cacheSvc, cfg.Flutterwave.Currency)
	authSvc := services.NewAuthService(adminRepo, cacheSvc, notificationSvc, cfg.Server.JWTSecret, cfg.Server.TokenTTL)

	scheduler := background.NewJobScheduler(tenantSvc, tenantRepo, notificationSvc)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start job scheduler: %v", err)
	}
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Printf("Failed to stop job scheduler: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())

	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/ready", healthHandlers.ReadinessCheck)

	if cfg.Server.EnableSwagger {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	api := middleware.VersionRoute(e, middleware.CurrentAPIVersion)

	protected := e.Group("/api/" + middleware.CurrentAPIVersion)
	protected.Use(middleware.VersionHeader(middleware.CurrentAPIVersion))
	protected.Use(middleware.JWTMiddleware(authSvc))
	protected.Use(middleware.ActionLog())

	tenantHandlers := handlers.NewTenantHandlers(tenantSvc, brandingSvc)
	tenantHandlers.RegisterRoutes(api, protected, middleware.RateLimit(cacheSvc, 10, time.Hour))

	authHandlers := handlers.NewAuthHandlers(authSvc)
	authHandlers.RegisterRoutes(api, protected, middleware.RequireRole(models.AdminRoleOwner))

	jobHandlers := handlers.NewJobHandlers(scheduler)
	jobHandlers.RegisterRoutes(protected)

	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
