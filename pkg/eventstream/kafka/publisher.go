// Package kafka provides an eventstream publisher backed by Apache Kafka.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/thinkbooklabs/thinkbook/pkg/eventstream"
)

// DefaultTopic is the Kafka topic events are written to when none is configured.
const DefaultTopic = "thinkbook.events"

// Config holds configuration for the Kafka publisher.
type Config struct {
	// Brokers is the list of Kafka broker addresses.
	Brokers []string

	// Topic is the topic events are written to. Defaults to DefaultTopic if empty.
	Topic string
}

// Publisher publishes events to a Kafka topic, keyed by session ID so events
// for one session stay ordered within a partition.
type Publisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// NewPublisher creates a Kafka-backed eventstream publisher.
func NewPublisher(cfg Config, logger *zap.Logger) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one kafka broker is required")
	}

	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}

	return &Publisher{
		writer: writer,
		logger: logger,
	}, nil
}

// PublishSourceIngested writes a source-ingested event to the topic.
func (p *Publisher) PublishSourceIngested(ctx context.Context, event *eventstream.SourceIngestedEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	return p.publish(ctx, event.SessionID, event.EventType, event)
}

// PublishTurnCompleted writes a turn-completed event to the topic.
func (p *Publisher) PublishTurnCompleted(ctx context.Context, event *eventstream.TurnCompletedEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	return p.publish(ctx, event.SessionID, event.EventType, event)
}

func (p *Publisher) publish(ctx context.Context, key, eventType string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("writing event: %w", err)
	}

	p.logger.Debug("published event",
		zap.String("event_type", eventType),
		zap.String("session_id", key),
	)

	return nil
}

// Close flushes pending writes and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// Ensure Publisher implements eventstream.Publisher
var _ eventstream.Publisher = (*Publisher)(nil)
