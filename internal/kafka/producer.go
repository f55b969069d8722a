package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ledger-service/internal/config"
	"ledger-service/internal/events"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// Producer publishes DataChanged events to Kafka. It implements events.EventPublisher.
type Producer struct {
	producer   sarama.SyncProducer
	logger     *zap.Logger
	topic      string
	maxRetries int
	baseDelay  time.Duration
}

// NewSaramaConfig builds the producer settings shared by the publisher and the DLQ writer
func NewSaramaConfig(cfg *config.Config) *sarama.Config {
	saramaConfig := sarama.NewConfig()
	saramaConfig.ClientID = cfg.KafkaClientID
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.Retry.Max = cfg.KafkaRetries
	saramaConfig.Producer.Retry.Backoff = 100 * time.Millisecond
	saramaConfig.Version = sarama.V2_8_0_0

	switch cfg.KafkaAcks {
	case "0":
		saramaConfig.Producer.RequiredAcks = sarama.NoResponse
	case "1":
		saramaConfig.Producer.RequiredAcks = sarama.WaitForLocal
	default:
		saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	}

	saramaConfig.Net.DialTimeout = 10 * time.Second
	saramaConfig.Net.ReadTimeout = 10 * time.Second
	saramaConfig.Net.WriteTimeout = 10 * time.Second

	return saramaConfig
}

// NewProducer connects a sync producer to the configured brokers
func NewProducer(cfg *config.Config, logger *zap.Logger) (*Producer, error) {
	logger.Info("Creating Kafka producer",
		zap.Strings("brokers", cfg.KafkaBrokers),
		zap.String("topic", cfg.KafkaTopicChanges),
	)

	producer, err := sarama.NewSyncProducer(cfg.KafkaBrokers, NewSaramaConfig(cfg))
	if err != nil {
		logger.Error("Failed to create Kafka producer",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}

	return NewProducerWithClient(producer, cfg.KafkaTopicChanges, cfg.KafkaRetries, logger), nil
}

// NewProducerWithClient wraps an existing sync producer
func NewProducerWithClient(producer sarama.SyncProducer, topic string, maxRetries int, logger *zap.Logger) *Producer {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Producer{
		producer:   producer,
		logger:     logger,
		topic:      topic,
		maxRetries: maxRetries,
		baseDelay:  100 * time.Millisecond,
	}
}

// Publish sends the event keyed by tenant, retrying with exponential backoff
func (p *Producer) Publish(ctx context.Context, event events.DataChangedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.TenantID),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(events.EventTypeDataChanged)},
			{Key: []byte("event-id"), Value: []byte(event.EventID)},
			{Key: []byte("timestamp"), Value: []byte(event.OccurredAt.Format(time.RFC3339))},
		},
	}

	var lastErr error
	for attempt := 0; attempt < p.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("context cancelled: %w", err)
		}

		partition, offset, err := p.producer.SendMessage(message)
		if err == nil {
			p.logger.Debug("Event published to Kafka",
				zap.String("topic", p.topic),
				zap.Int32("partition", partition),
				zap.Int64("offset", offset),
				zap.String("tenant_id", event.TenantID),
				zap.String("domain", event.Domain),
				zap.Int("attempt", attempt+1),
			)
			return nil
		}

		lastErr = err
		p.logger.Warn("Failed to publish event to Kafka, retrying",
			zap.String("topic", p.topic),
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", p.maxRetries),
		)

		if attempt < p.maxRetries-1 {
			delay := p.baseDelay * time.Duration(1<<uint(attempt))
			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled during backoff: %w", ctx.Err())
			case <-time.After(delay):
			}
		}
	}

	return fmt.Errorf("failed to publish event to Kafka after %d attempts: %w", p.maxRetries, lastErr)
}

// SendRaw forwards a message body and headers to topic unchanged
func (p *Producer) SendRaw(topic string, key, value []byte, headers []sarama.RecordHeader) error {
	message := &sarama.ProducerMessage{
		Topic:   topic,
		Key:     sarama.ByteEncoder(key),
		Value:   sarama.ByteEncoder(value),
		Headers: headers,
	}
	if _, _, err := p.producer.SendMessage(message); err != nil {
		return fmt.Errorf("failed to send message to %s: %w", topic, err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.producer.Close()
}
