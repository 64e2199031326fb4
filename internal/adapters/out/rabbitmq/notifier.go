// Package rabbitmq queues notification jobs for events addressed to a single
// user. A mailer or push worker consumes the queue outside the engine.
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/user"
	"freight/internal/core/ports"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const DefaultQueue = "freight.notifications"

var _ ports.Publisher = (*Notifier)(nil)

// Channel is the subset of *amqp.Channel the notifier needs.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Job is the message body a notification worker receives.
type Job struct {
	EventType  ports.EventType `json:"eventType"`
	Recipient  kernel.UUID     `json:"recipientId"`
	Role       user.Role       `json:"role"`
	LoadID     kernel.UUID     `json:"loadId"`
	Payload    any             `json:"payload"`
	OccurredAt time.Time       `json:"occurredAt"`
}

type Notifier struct {
	channel Channel
	queue   string
	logger  *zap.Logger
}

// Dial opens a connection and a channel. The caller closes both.
func Dial(url string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	return conn, ch, nil
}

// NewNotifier declares the durable queue and returns a notifier publishing to it.
func NewNotifier(channel Channel, queue string, logger *zap.Logger) (*Notifier, error) {
	if channel == nil {
		return nil, errors.New("rabbitmq channel is required")
	}
	if queue == "" {
		queue = DefaultQueue
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := channel.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	return &Notifier{
		channel: channel,
		queue:   queue,
		logger:  logger.With(zap.String("component", "rabbitmq.notifier")),
	}, nil
}

// Publish enqueues a job when the event names a recipient. Role-wide
// broadcasts are not notifications and are skipped.
func (n *Notifier) Publish(ctx context.Context, event ports.Event) error {
	if event.Scope.UserID == nil {
		return nil
	}

	body, err := json.Marshal(Job{
		EventType:  event.Type,
		Recipient:  *event.Scope.UserID,
		Role:       event.Scope.Role,
		LoadID:     event.LoadID,
		Payload:    event.Payload,
		OccurredAt: event.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("encode notification %s: %w", event.Type, err)
	}

	err = n.channel.PublishWithContext(ctx, "", n.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         string(event.Type),
		Timestamp:    event.OccurredAt,
		Body:         body,
	})
	if err != nil {
		n.logger.Warn("notification publish failed",
			zap.String("event", string(event.Type)),
			zap.String("recipient", event.Scope.UserID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("rabbitmq publish %s: %w", event.Type, err)
	}
	return nil
}

func (n *Notifier) Close() error {
	return n.channel.Close()
}
