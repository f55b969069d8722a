package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ledger-service/internal/auth"
	"ledger-service/internal/cache"
	"ledger-service/internal/config"
	"ledger-service/internal/database"
	"ledger-service/internal/events"
	"ledger-service/internal/handlers"
	"ledger-service/internal/kafka"
	"ledger-service/internal/observability"
	"ledger-service/internal/repository"
	"ledger-service/internal/service"
	"ledger-service/pkg/logger"
	"ledger-service/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "ledger-service/docs" // Import docs for Swagger
)

// @title           Ledger Service API
// @version         1.0
// @description     Multi-tenant inventory ledger: orders, stock movements and their journal

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1

// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	appLogger := logger.New(cfg.Environment, cfg.LogLevel)
	defer appLogger.Sync()

	appLogger.Info("Starting ledger service",
		zap.String("environment", cfg.Environment),
		zap.String("port", cfg.Port),
		zap.String("db_driver", cfg.DBDriver),
		zap.Bool("use_kafka", cfg.UseKafka),
		zap.Bool("use_cache", cfg.UseCache),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	db, err := database.New(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	scope := repository.NewTransactionScope(db, appLogger)
	appCache := cache.NewCache(cfg, appLogger)

	publisher, closePublisher := newPublisher(cfg, appLogger)
	defer closePublisher()

	notifier := events.NewQueueNotifier(publisher, cfg.NotifyQueueSize, cfg.NotifyWorkers, appLogger)
	notifier.Start(ctx)

	ledger := service.New(scope, notifier, appCache, service.Options{
		CompensateToSource: cfg.CompensateToSource,
		CacheTTL:           cache.TTL(cfg.CacheTTL),
	}, appLogger)

	reconciler := service.NewReconciler(scope, appLogger)
	scheduler := cron.New()
	if _, err := reconciler.Schedule(scheduler, cfg.ReconcileSchedule); err != nil {
		appLogger.Fatal("Invalid reconcile schedule",
			zap.String("schedule", cfg.ReconcileSchedule),
			zap.Error(err),
		)
	}
	scheduler.Start()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	idempotencyTTL := time.Duration(cfg.IdempotencyTTLSeconds) * time.Second
	requestIDStore := middleware.NewCacheRequestIDStore(appCache)

	router := gin.New()
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RecoveryHandler(appLogger))
	router.Use(logger.GinMiddleware(appLogger))
	router.Use(middleware.RequestIDMiddleware(appLogger))
	router.Use(middleware.ErrorHandler(appLogger))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, appLogger)
	handlers.RegisterRoutes(router, handlers.Handlers{
		Orders:     handlers.NewOrderHandler(ledger, appLogger),
		Inventory:  handlers.NewInventoryHandler(ledger, appLogger),
		Monitoring: handlers.NewMonitoringHandler(db, notifier, reconciler, appLogger),
	}, middleware.AuthMiddleware(jwtManager, appLogger), appLogger,
		middleware.IdempotencyMiddleware(requestIDStore, appLogger),
		middleware.StoreResponseMiddleware(requestIDStore, appLogger, idempotencyTTL),
	)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		appLogger.Info("HTTP server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	appLogger.Info("Shutting down server...", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	<-scheduler.Stop().Done()
	// Drain pending notifications before the publisher closes
	notifier.Stop()

	if err := shutdownTracing(shutdownCtx); err != nil {
		appLogger.Warn("Failed to flush traces", zap.Error(err))
	}

	appLogger.Info("Server exited")
}

// newPublisher returns the Kafka producer when enabled and reachable, otherwise the in-memory publisher
func newPublisher(cfg *config.Config, logger *zap.Logger) (events.EventPublisher, func()) {
	if !cfg.UseKafka {
		logger.Info("Kafka disabled, using in-memory event publisher")
		return events.NewInMemoryEventPublisher(logger), func() {}
	}

	producer, err := kafka.NewProducer(cfg, logger)
	if err != nil {
		logger.Warn("Failed to initialize Kafka producer, using in-memory fallback", zap.Error(err))
		return events.NewInMemoryEventPublisher(logger), func() {}
	}

	return producer, func() {
		if err := producer.Close(); err != nil {
			logger.Warn("Failed to close Kafka producer", zap.Error(err))
		}
	}
}
