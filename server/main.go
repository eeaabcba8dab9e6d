package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ticketly/api/routes"
	"ticketly/internal/availability"
	"ticketly/internal/shared/config"
	"ticketly/internal/shared/database"
	"ticketly/internal/shared/middleware"
	"ticketly/internal/tickets"
	"ticketly/pkg/cache"
	"ticketly/pkg/logger"
	"ticketly/pkg/resilience"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	appLogger := logger.New()

	// Smart environment loading
	if err := godotenv.Load(); err != nil {
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}

	// Load config
	cfg := config.Load()

	// Set Gin mode (debug/release)
	gin.SetMode(cfg.GinMode)

	// Initialize DB
	db, err := database.InitDB(cfg)
	if err != nil {
		appLogger.Error("failed to connect:", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Snapshot cache in front of the availability services
	var snapshots cache.Service
	if db.Redis != nil {
		snapshots = cache.NewService(db.Redis)
	}

	// Resilient clients, one breaker per external dependency
	resilienceCfg := resilience.Config{
		CallTimeout:      cfg.Resilience.CallTimeout,
		MaxRetries:       cfg.Resilience.MaxRetries,
		RetryBackoff:     cfg.Resilience.RetryBackoff,
		FailureThreshold: cfg.Resilience.FailureThreshold,
		OpenDuration:     cfg.Resilience.OpenDuration,
	}
	eventClient := availability.NewEventClient(
		cfg.Services.EventsBaseURL,
		resilience.NewClient("events", resilienceCfg, appLogger),
		snapshots,
		cfg.Redis.SnapshotTTL,
		appLogger,
	)
	seatClient := availability.NewSeatClient(
		cfg.Services.SeatsBaseURL,
		resilience.NewClient("seats", resilienceCfg, appLogger),
		snapshots,
		cfg.Redis.SnapshotTTL,
		appLogger,
	)

	// Kafka publisher for TicketCreated events
	publisher, err := tickets.NewKafkaEventPublisher(&tickets.KafkaPublisherConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    cfg.Kafka.TicketCreatedTopic,
		RetryMax: cfg.Kafka.RetryMax,
		Timeout:  cfg.Kafka.Timeout,
	}, appLogger)
	if err != nil {
		appLogger.Error("failed to create Kafka publisher", slog.Any("error", err))
		os.Exit(1)
	}
	defer publisher.Close()

	// Ticket service wiring
	ticketRepo := tickets.NewRepository(db.GetPostgreSQL())
	ticketMetrics := tickets.NewMetrics(prometheus.DefaultRegisterer)
	uowFactory := func() tickets.UnitOfWork {
		return database.NewUnitOfWork(db.GetPostgreSQL(), appLogger)
	}
	ticketService := tickets.NewService(
		eventClient,
		seatClient,
		ticketRepo,
		publisher,
		tickets.NewCodeGenerator(),
		uowFactory,
		ticketMetrics,
		appLogger,
		cfg.Services.SeatReservationTTL,
	)

	// Setup router
	router := setupRouter(cfg, db, ticketService, appLogger)

	// HTTP server
	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		appLogger.Info("🚀 Server running",
			slog.String("address", srv.Addr),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("version", cfg.APIVersion),
			slog.Bool("redis_cache", db.Redis != nil),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	appLogger.Info("Server exited gracefully")
}

func setupRouter(cfg *config.Config, db *database.DB, ticketService tickets.Service, appLogger *logger.Logger) *gin.Engine {
	engine := gin.New()

	// Built-in middleware: logs requests + recovers from panics
	engine.Use(middleware.RequestLogger(appLogger), middleware.Recovery(appLogger))

	// CORS configuration
	engine.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true // allow every origin dynamically
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Initialize and setup routes
	appRouter := routes.NewRouter(cfg, db, ticketService, appLogger)
	appRouter.SetupRoutes(engine)

	return engine
}
