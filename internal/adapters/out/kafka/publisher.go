// Package kafka streams domain events to a kafka topic. Messages are keyed by
// load id so every change to one load lands on one partition in order.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"freight/internal/core/ports"

	skafka "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const HeaderEventType = "event-type"

var _ ports.Publisher = (*EventPublisher)(nil)

// Writer is the subset of kafka.Writer the publisher needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...skafka.Message) error
	Close() error
}

type EventPublisher struct {
	writer Writer
	logger *zap.Logger
}

// NewWriter builds a writer that hashes keys onto partitions.
func NewWriter(brokers []string, topic string, writeTimeout time.Duration) *skafka.Writer {
	return &skafka.Writer{
		Addr:                   skafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &skafka.Hash{},
		RequiredAcks:           skafka.RequireAll,
		WriteTimeout:           writeTimeout,
		AllowAutoTopicCreation: true,
	}
}

func NewEventPublisher(writer Writer, logger *zap.Logger) (*EventPublisher, error) {
	if writer == nil {
		return nil, errors.New("kafka writer is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventPublisher{writer: writer, logger: logger.With(zap.String("component", "kafka.publisher"))}, nil
}

func (p *EventPublisher) Publish(ctx context.Context, event ports.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.Type, err)
	}

	msg := skafka.Message{
		Key:     []byte(event.LoadID.String()),
		Value:   value,
		Headers: []skafka.Header{{Key: HeaderEventType, Value: []byte(event.Type)}},
		Time:    event.OccurredAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Warn("kafka write failed",
			zap.String("event", string(event.Type)),
			zap.String("load_id", event.LoadID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("kafka write %s: %w", event.Type, err)
	}
	return nil
}

func (p *EventPublisher) Close() error {
	return p.writer.Close()
}
