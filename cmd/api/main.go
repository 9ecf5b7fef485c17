package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/riversideu/studentrisk/backend/internal/adapters/cache"
	"github.com/riversideu/studentrisk/backend/internal/adapters/database"
	"github.com/riversideu/studentrisk/backend/internal/api/handlers"
	"github.com/riversideu/studentrisk/backend/internal/api/routes"
	"github.com/riversideu/studentrisk/backend/internal/application/services"
	"github.com/riversideu/studentrisk/backend/internal/domain/repositories"
	"github.com/riversideu/studentrisk/backend/internal/infrastructure/clients/postgres"
	"github.com/riversideu/studentrisk/backend/internal/infrastructure/clients/redis"
	"github.com/riversideu/studentrisk/backend/internal/infrastructure/clients/serving"
	"github.com/riversideu/studentrisk/backend/internal/infrastructure/observability"
	"github.com/riversideu/studentrisk/backend/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)
	logger := observability.GetLogger()

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	var shutdown func(context.Context) error
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err = observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					logger.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			logger.Info().Msg("OpenTelemetry initialized")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Per-request database connector. Connections are opened with the
	// calling advisor's forwarded credentials, so there is no shared pool.
	connector := postgres.NewConnector(&cfg.Database)

	// Initialize Redis client. The roster cache is an optimization; the
	// application works without it.
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to initialize Redis client, caching disabled")
	} else {
		defer redisClient.Close()
		logger.Info().Msg("Redis client initialized")
	}

	// Initialize adapters
	var studentRepo repositories.StudentRepository = database.NewStudentAdapter(connector)
	if redisClient != nil {
		studentRepo = database.NewCachedStudentAdapter(studentRepo, cache.NewRedisAdapter(redisClient))
		logger.Info().Msg("student adapter wrapped with caching layer")
	} else {
		logger.Warn().Msg("student adapter running without cache")
	}

	interventionRepo := database.NewInterventionAdapter(connector)

	// Initialize serving endpoint client
	endpoint := serving.NewClient(&cfg.Serving)
	if endpoint.Configured() {
		logger.Info().Str("endpoint", cfg.Serving.Endpoint).Msg("serving endpoint configured")
	} else {
		logger.Warn().Msg("serving endpoint not configured, AI recommendations disabled")
	}

	// Initialize services
	studentService := services.NewStudentService(studentRepo)
	interventionService := services.NewInterventionService(interventionRepo, studentRepo)
	recommendationService := services.NewRecommendationService(endpoint, studentRepo)

	// Initialize handlers
	studentHandler := handlers.NewStudentHandler(studentService)
	interventionHandler := handlers.NewInterventionHandler(interventionService)
	recommendationHandler := handlers.NewRecommendationHandler(recommendationService, studentService)

	// Set up router
	router := routes.NewRouter(
		studentHandler,
		interventionHandler,
		recommendationHandler,
		metrics,
	)
	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:    serverAddr,
		Handler: handler,
		// Write timeout is generous so SSE recommendation streams are not
		// cut off mid-generation.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("server shutting down")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("error during server shutdown")
	}

	logger.Info().Msg("server stopped")
}
