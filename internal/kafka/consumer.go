package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ledger-service/internal/config"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// Processor handles one decoded message
type Processor interface {
	ProcessEvent(ctx context.Context, eventType string, data []byte) error
}

// DeadLetterWriter receives messages that failed every retry
type DeadLetterWriter interface {
	SendRaw(topic string, key, value []byte, headers []sarama.RecordHeader) error
}

// Consumer reads DataChanged events from a consumer group
type Consumer struct {
	consumerGroup sarama.ConsumerGroup
	handler       *consumerGroupHandler
	logger        *zap.Logger
	groupID       string
	topics        []string
}

// NewConsumer joins cfg.KafkaGroupID on the change topic. dlq may be nil.
func NewConsumer(cfg *config.Config, processor Processor, dlq DeadLetterWriter, logger *zap.Logger) (*Consumer, error) {
	logger.Info("Creating Kafka consumer",
		zap.Strings("brokers", cfg.KafkaBrokers),
		zap.String("group_id", cfg.KafkaGroupID),
	)

	saramaConfig := sarama.NewConfig()
	saramaConfig.ClientID = cfg.KafkaClientID
	saramaConfig.Consumer.Group.Rebalance.Strategy = sarama.NewBalanceStrategyRoundRobin()
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Version = sarama.V2_8_0_0
	saramaConfig.Net.DialTimeout = 10 * time.Second
	saramaConfig.Net.ReadTimeout = 10 * time.Second
	saramaConfig.Net.WriteTimeout = 10 * time.Second
	saramaConfig.Metadata.Retry.Max = 3
	saramaConfig.Metadata.Retry.Backoff = 250 * time.Millisecond

	consumerGroup, err := sarama.NewConsumerGroup(cfg.KafkaBrokers, cfg.KafkaGroupID, saramaConfig)
	if err != nil {
		logger.Error("Failed to create Kafka consumer group",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &Consumer{
		consumerGroup: consumerGroup,
		handler:       newConsumerGroupHandler(cfg, processor, dlq, logger),
		logger:        logger,
		groupID:       cfg.KafkaGroupID,
		topics:        []string{cfg.KafkaTopicChanges},
	}, nil
}

// Start consumes until ctx is cancelled or the group is closed
func (c *Consumer) Start(ctx context.Context) error {
	go func() {
		for err := range c.consumerGroup.Errors() {
			c.logger.Error("Consumer error", zap.Error(err))
		}
	}()

	c.logger.Info("Kafka consumer started",
		zap.Strings("topics", c.topics),
		zap.String("group_id", c.groupID),
	)

	for {
		if err := c.consumerGroup.Consume(ctx, c.topics, c.handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			return fmt.Errorf("consumer group error: %w", err)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (c *Consumer) Close() error {
	return c.consumerGroup.Close()
}

type consumerGroupHandler struct {
	processor  Processor
	dlq        DeadLetterWriter
	dlqTopic   string
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger
}

func newConsumerGroupHandler(cfg *config.Config, processor Processor, dlq DeadLetterWriter, logger *zap.Logger) *consumerGroupHandler {
	return &consumerGroupHandler{
		processor:  processor,
		dlq:        dlq,
		dlqTopic:   cfg.DLQTopic,
		maxRetries: cfg.MaxRetries,
		retryDelay: time.Duration(cfg.RetryDelayMs) * time.Millisecond,
		logger:     logger,
	}
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			h.handle(session.Context(), message)
			// Failed messages are marked too, after they reach the DLQ.
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *consumerGroupHandler) handle(ctx context.Context, message *sarama.ConsumerMessage) {
	eventType := extractEventType(message.Headers)
	if eventType == "" {
		h.logger.Warn("Message without event type, skipping",
			zap.String("topic", message.Topic),
			zap.Int32("partition", message.Partition),
			zap.Int64("offset", message.Offset),
		)
		return
	}

	err := h.processWithRetry(ctx, eventType, message.Value)
	if err == nil {
		return
	}

	h.logger.Error("Failed to process event after retries",
		zap.String("event_type", eventType),
		zap.String("topic", message.Topic),
		zap.Error(err),
	)
	h.sendToDLQ(message, err)
}

func (h *consumerGroupHandler) processWithRetry(ctx context.Context, eventType string, data []byte) error {
	var lastErr error
	for attempt := 0; attempt <= h.maxRetries; attempt++ {
		if attempt > 0 {
			delay := h.retryDelay * time.Duration(attempt)
			h.logger.Info("Retrying event processing",
				zap.String("event_type", eventType),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := h.processor.ProcessEvent(ctx, eventType, data)
		if err == nil {
			return nil
		}
		lastErr = err

		h.logger.Warn("Event processing failed",
			zap.String("event_type", eventType),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}

	return fmt.Errorf("failed after %d attempts: %w", h.maxRetries+1, lastErr)
}

func (h *consumerGroupHandler) sendToDLQ(message *sarama.ConsumerMessage, cause error) {
	if h.dlq == nil || h.dlqTopic == "" {
		return
	}

	headers := make([]sarama.RecordHeader, 0, len(message.Headers)+2)
	for _, header := range message.Headers {
		if header != nil {
			headers = append(headers, *header)
		}
	}
	headers = append(headers,
		sarama.RecordHeader{Key: []byte("dlq-reason"), Value: []byte(cause.Error())},
		sarama.RecordHeader{Key: []byte("dlq-source-topic"), Value: []byte(message.Topic)},
	)

	if err := h.dlq.SendRaw(h.dlqTopic, message.Key, message.Value, headers); err != nil {
		h.logger.Error("Failed to send to DLQ", zap.String("dlq_topic", h.dlqTopic), zap.Error(err))
		return
	}

	h.logger.Warn("Message sent to DLQ",
		zap.String("topic", message.Topic),
		zap.String("dlq_topic", h.dlqTopic),
		zap.Int64("offset", message.Offset),
	)
}

func extractEventType(headers []*sarama.RecordHeader) string {
	for _, header := range headers {
		if header != nil && string(header.Key) == "event-type" {
			return string(header.Value)
		}
	}
	return ""
}
