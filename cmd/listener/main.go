package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"ledger-service/internal/cache"
	"ledger-service/internal/config"
	"ledger-service/internal/kafka"
	"ledger-service/pkg/logger"

	"go.uber.org/zap"
)

// The listener keeps this instance's cache coherent with writes made by other API
// instances: every DataChanged event drops the tenant's cached reads.
func main() {
	cfg := config.Load()

	appLogger := logger.New(cfg.Environment, cfg.LogLevel)
	defer appLogger.Sync()

	appLogger.Info("Starting ledger listener",
		zap.String("environment", cfg.Environment),
		zap.Strings("kafka_brokers", cfg.KafkaBrokers),
		zap.String("topic", cfg.KafkaTopicChanges),
		zap.String("group_id", cfg.KafkaGroupID),
		zap.String("dlq_topic", cfg.DLQTopic),
	)

	appCache := cache.NewCache(cfg, appLogger)
	invalidator := cache.NewInvalidator(appCache, appLogger)

	var dlq kafka.DeadLetterWriter
	producer, err := kafka.NewProducer(cfg, appLogger)
	if err != nil {
		appLogger.Warn("DLQ producer unavailable, failed messages will only be logged", zap.Error(err))
	} else {
		defer producer.Close()
		dlq = producer
	}

	consumer, err := kafka.NewConsumer(cfg, invalidator, dlq, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize Kafka consumer", zap.Error(err))
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		if err := consumer.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		appLogger.Error("Consumer error", zap.Error(err))
	case sig := <-quit:
		appLogger.Info("Shutting down listener", zap.String("signal", sig.String()))
	}
	cancel()

	appLogger.Info("Listener exited")
}
