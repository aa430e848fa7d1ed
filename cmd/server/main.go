package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/devenirpromoteur/realify-api/internal/config"
	"github.com/devenirpromoteur/realify-api/internal/database"
	"github.com/devenirpromoteur/realify-api/internal/handlers"
	"github.com/devenirpromoteur/realify-api/internal/logger"
	"github.com/devenirpromoteur/realify-api/internal/middleware"
	"github.com/devenirpromoteur/realify-api/internal/notify"
	"github.com/devenirpromoteur/realify-api/internal/repository"
	"github.com/devenirpromoteur/realify-api/internal/services"
	"github.com/devenirpromoteur/realify-api/internal/session"
	"github.com/devenirpromoteur/realify-api/internal/store"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.Server.Env)
	log.Info("Starting RealiFy API", map[string]interface{}{
		"version":     "0.1.0",
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
	})

	// Create database connection pool
	ctx := context.Background()
	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", err, map[string]interface{}{
			"host": cfg.Database.Host,
			"port": cfg.Database.Port,
			"name": cfg.Database.Name,
		})
	}
	defer db.Close()

	log.Info("Database connection established", map[string]interface{}{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Name,
		"pool_min": cfg.Database.PoolMin,
		"pool_max": cfg.Database.PoolMax,
	})

	// Connect to the Redis session store
	sessions, err := database.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to session store", err, map[string]interface{}{
			"addr": cfg.Redis.Addr,
		})
	}
	defer sessions.Close()

	// Toast notifications go to the broker when one is configured, to the
	// structured log otherwise
	var notifier notify.Notifier
	if cfg.Broker.Enabled {
		amqpNotifier, err := notify.NewAMQPNotifier(cfg.Broker.URL, cfg.Broker.Queue, log)
		if err != nil {
			log.Fatal("Failed to connect to notification broker", err, map[string]interface{}{
				"queue": cfg.Broker.Queue,
			})
		}
		defer amqpNotifier.Close()
		notifier = amqpNotifier
	} else {
		notifier = notify.NewLogNotifier(log)
	}

	// Initialize repository layer
	ficheRepo := repository.NewFicheRepository(db)
	parcelRepo := repository.NewParcelRepository(db)
	existingValueRepo := repository.NewExistingValueRepository(db)
	landRecapRepo := repository.NewLandRecapRepository(db)

	// Initialize the synchronized store manager and service layer
	manager := store.NewManager(parcelRepo, existingValueRepo, landRecapRepo, notifier, log, cfg.Sync)
	ficheService := services.NewFicheService(ficheRepo, manager, log)
	parcelService := services.NewParcelService(parcelRepo, manager, log)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, sessions, cfg.Server.Env)
	ficheHandler := handlers.NewFicheHandler(ficheService)
	parcelHandler := handlers.NewParcelHandler(parcelService)
	existingValueHandler := handlers.NewExistingValueHandler(manager)
	landRecapHandler := handlers.NewLandRecapHandler(manager)
	programHandler := handlers.NewProgramHandler()

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	// Register health check routes
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/api/v1/info", healthHandler.Info)

	// Register API v1 routes
	sessionProvider := session.NewRedisProvider(sessions, cfg.Auth.JWTSecret)
	v1 := router.Group("/api/v1", middleware.Auth(sessionProvider, log))
	{
		fiches := v1.Group("/fiches")
		{
			fiches.GET("", ficheHandler.List)
			fiches.POST("", ficheHandler.Create)
			fiches.GET("/:ficheId", ficheHandler.Get)
			fiches.PUT("/:ficheId", ficheHandler.Update)
			fiches.DELETE("/:ficheId", ficheHandler.Delete)

			parcels := fiches.Group("/:ficheId/parcels")
			{
				parcels.GET("", parcelHandler.List)
				parcels.POST("", parcelHandler.Create)
				parcels.PUT("/:parcelId", parcelHandler.Update)
				parcels.DELETE("/:parcelId", parcelHandler.Delete)
			}

			existingValues := fiches.Group("/:ficheId/existing-values")
			{
				existingValues.GET("", existingValueHandler.List)
				existingValues.GET("/totals", existingValueHandler.Totals)
				existingValues.POST("", existingValueHandler.Add)
				existingValues.PATCH("/:entryId", existingValueHandler.Update)
				existingValues.PATCH("/:entryId/parcel", existingValueHandler.AssignParcel)
				existingValues.DELETE("/:entryId", existingValueHandler.Delete)
			}

			landRecaps := fiches.Group("/:ficheId/land-recaps")
			{
				landRecaps.GET("", landRecapHandler.List)
				landRecaps.POST("", landRecapHandler.Add)
				landRecaps.PATCH("/:entryId", landRecapHandler.Update)
				landRecaps.PATCH("/:entryId/parcel", landRecapHandler.AssignParcel)
				landRecaps.DELETE("/:entryId", landRecapHandler.Delete)
			}
		}

		v1.POST("/program/summary", programHandler.Summarize)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	// Give pending debounced writes a moment to drain before the pools close
	manager.Drain(shutdownCtx)

	log.Info("Server exited", nil)
}
