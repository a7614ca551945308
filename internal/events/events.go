// Package events publishes domain events to Kafka after state changes
// have been committed. Downstream services (notifications, search
// indexing) consume the stream.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/feedstack/social-feed-service/internal/config"
	"github.com/feedstack/social-feed-service/internal/domain"
	"github.com/feedstack/social-feed-service/internal/observability"
)

// Publisher delivers domain events to the event stream.
type Publisher interface {
	// Publish sends a single event. Callers invoke it after the
	// surrounding transaction has committed; a publish failure does not
	// roll the state change back.
	Publish(ctx context.Context, event domain.Event) error

	// Close flushes buffered events and releases the underlying
	// connection.
	Close() error
}

// messageWriter is the subset of kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events to a Kafka topic, keyed by aggregate ID
// so events for the same entity land on the same partition in order.
type KafkaPublisher struct {
	writer  messageWriter
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// NewKafkaPublisher creates a publisher from the Kafka section of the
// service configuration.
func NewKafkaPublisher(cfg config.KafkaConfig, logger zerolog.Logger, metrics *observability.Metrics) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: cfg.BatchTimeout,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaPublisher{
		writer:  writer,
		logger:  logger.With().Str("component", "event_publisher").Logger(),
		metrics: metrics,
	}
}

// Publish encodes the event as JSON and writes it to the topic.
func (p *KafkaPublisher) Publish(ctx context.Context, event domain.Event) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	value, err := json.Marshal(event)
	if err != nil {
		p.metrics.RecordEventFailed(event.Type)
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("%d", event.AggregateID)),
		Value: value,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.metrics.RecordEventFailed(event.Type)
		p.logger.Error().Err(err).
			Str("event_type", event.Type).
			Int64("aggregate_id", event.AggregateID).
			Msg("failed to publish event")
		return fmt.Errorf("write message: %w", err)
	}

	p.metrics.RecordEventPublished(event.Type)
	p.logger.Debug().
		Str("event_type", event.Type).
		Int64("aggregate_id", event.AggregateID).
		Msg("published event")
	return nil
}

// Close flushes and closes the Kafka writer.
func (p *KafkaPublisher) Close() error {
	p.logger.Info().Msg("closing event publisher")
	return p.writer.Close()
}

// NoopPublisher discards events. Used when Kafka is disabled in
// configuration.
type NoopPublisher struct{}

// NewNoopPublisher creates a publisher that drops every event.
func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

// Publish discards the event.
func (*NoopPublisher) Publish(context.Context, domain.Event) error { return nil }

// Close is a no-op.
func (*NoopPublisher) Close() error { return nil }
