package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/temcen/storerank/internal/config"
	"github.com/temcen/storerank/pkg/models"
)

const (
	maxRetries       = 3
	defaultBaseDelay = time.Second
	publishTimeout   = 10 * time.Second
)

// EventHandler applies one interaction event. Returning an error triggers a retry.
type EventHandler func(ctx context.Context, event models.InteractionEvent) error

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Stats() kafka.ReaderStats
	Close() error
}

type EventBus struct {
	writer    messageWriter
	reader    messageReader
	dlqWriter messageWriter
	topic     string
	dlqTopic  string
	baseDelay time.Duration
	logger    *logrus.Logger
}

func NewEventBus(cfg *config.Config, logger *logrus.Logger) *EventBus {
	topic := cfg.Kafka.Topics.UserInteractions
	dlqTopic := cfg.Kafka.Topics.UserInteractionsDLQ

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Kafka.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // Key by user so a user's events stay ordered
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Kafka.Brokers,
		Topic:          topic,
		GroupID:        cfg.Kafka.ConsumerGroup,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
		StartOffset:    kafka.FirstOffset,
	})

	dlqWriter := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Kafka.Brokers...),
		Topic:        dlqTopic,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	return newEventBus(writer, reader, dlqWriter, topic, dlqTopic, logger)
}

func newEventBus(writer messageWriter, reader messageReader, dlqWriter messageWriter, topic, dlqTopic string, logger *logrus.Logger) *EventBus {
	return &EventBus{
		writer:    writer,
		reader:    reader,
		dlqWriter: dlqWriter,
		topic:     topic,
		dlqTopic:  dlqTopic,
		baseDelay: defaultBaseDelay,
		logger:    logger,
	}
}

func (b *EventBus) Publish(ctx context.Context, event models.InteractionEvent) error {
	if event.PublishedAt.IsZero() {
		event.PublishedAt = time.Now().UTC()
	}

	messageBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal interaction event: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(event.UserID.String()),
		Value: messageBytes,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.EventID.String())},
			{Key: "user_id", Value: []byte(event.UserID.String())},
			{Key: "kind", Value: []byte(event.Interaction.Kind)},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := b.writer.WriteMessages(ctx, message); err != nil {
		b.logger.WithError(err).WithField("event_id", event.EventID).Error("Failed to publish interaction event")
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	b.logger.WithFields(logrus.Fields{
		"event_id": event.EventID,
		"user_id":  event.UserID,
		"kind":     event.Interaction.Kind,
		"topic":    b.topic,
	}).Debug("Interaction event published")

	return nil
}

// Consume reads events until ctx is cancelled. Events that still fail after retries, and
// messages that cannot be decoded, go to the dead-letter topic. Offsets are committed once
// a message has been handled either way.
func (b *EventBus) Consume(ctx context.Context, handler EventHandler) error {
	for {
		message, err := b.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.logger.WithError(err).Error("Failed to read message from Kafka")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(b.baseDelay):
			}
			continue
		}

		var event models.InteractionEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			b.logger.WithError(err).WithField("offset", message.Offset).Error("Failed to unmarshal interaction event")
			if dlqErr := b.sendToDLQ(ctx, message.Value, string(message.Key), err); dlqErr != nil {
				b.logger.WithError(dlqErr).Error("Failed to send message to DLQ")
			}
		} else if err := b.processWithRetry(ctx, &event, handler); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.logger.WithError(err).WithField("event_id", event.EventID).Error("Failed to process event after retries")
			if dlqErr := b.sendToDLQ(ctx, event, event.EventID.String(), err); dlqErr != nil {
				b.logger.WithError(dlqErr).Error("Failed to send message to DLQ")
			}
		}

		if err := b.reader.CommitMessages(ctx, message); err != nil {
			b.logger.WithError(err).WithField("offset", message.Offset).Warn("Failed to commit offset")
		}
	}
}

func (b *EventBus) processWithRetry(ctx context.Context, event *models.InteractionEvent, handler EventHandler) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff
			delay := b.baseDelay * time.Duration(1<<uint(attempt-1))
			b.logger.WithFields(logrus.Fields{
				"event_id": event.EventID,
				"attempt":  attempt,
				"delay":    delay,
			}).Info("Retrying interaction event")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		event.RetryCount = attempt
		if err := handler(ctx, *event); err != nil {
			b.logger.WithError(err).WithFields(logrus.Fields{
				"event_id": event.EventID,
				"attempt":  attempt,
			}).Warn("Interaction event processing failed")

			if attempt == maxRetries {
				return fmt.Errorf("max retries exceeded: %w", err)
			}
			continue
		}

		return nil
	}

	return fmt.Errorf("unexpected retry loop exit")
}

func (b *EventBus) sendToDLQ(ctx context.Context, original interface{}, key string, originalError error) error {
	dlqMessage := map[string]interface{}{
		"original_message": original,
		"error":            originalError.Error(),
		"dlq_timestamp":    time.Now().UTC(),
	}

	dlqBytes, err := json.Marshal(dlqMessage)
	if err != nil {
		return fmt.Errorf("failed to marshal DLQ message: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(key),
		Value: dlqBytes,
		Headers: []kafka.Header{
			{Key: "original_topic", Value: []byte(b.topic)},
			{Key: "error", Value: []byte(originalError.Error())},
		},
	}

	if err := b.dlqWriter.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write message to DLQ: %w", err)
	}

	b.logger.WithFields(logrus.Fields{
		"key":   key,
		"topic": b.dlqTopic,
		"error": originalError.Error(),
	}).Warn("Message sent to DLQ")

	return nil
}

func (b *EventBus) Close() error {
	var errors []error

	if err := b.writer.Close(); err != nil {
		errors = append(errors, fmt.Errorf("failed to close producer: %w", err))
	}

	if err := b.reader.Close(); err != nil {
		errors = append(errors, fmt.Errorf("failed to close consumer: %w", err))
	}

	if err := b.dlqWriter.Close(); err != nil {
		errors = append(errors, fmt.Errorf("failed to close DLQ writer: %w", err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("errors closing event bus: %v", errors)
	}

	return nil
}

// Metrics returns consumer statistics for the health endpoint.
func (b *EventBus) Metrics() map[string]interface{} {
	stats := b.reader.Stats()
	return map[string]interface{}{
		"consumer_lag":    stats.Lag,
		"consumer_offset": stats.Offset,
		"messages_read":   stats.Messages,
		"bytes_read":      stats.Bytes,
		"rebalances":      stats.Rebalances,
		"timeouts":        stats.Timeouts,
		"errors":          stats.Errors,
	}
}
