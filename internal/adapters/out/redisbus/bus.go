// Package redisbus spreads events across engine instances. Every instance
// publishes to one redis channel and relays what it receives into its local
// hub, so a websocket client sees events no matter which instance
// committed the change.
package redisbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/ports"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultChannel = "freight:events"

var _ ports.Publisher = (*Bus)(nil)

// envelope is the wire form. The payload stays raw so the relay re-emits it
// byte for byte.
type envelope struct {
	Origin     string          `json:"origin"`
	Type       ports.EventType `json:"type"`
	Scope      ports.Scope     `json:"scope"`
	LoadID     kernel.UUID     `json:"loadId"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurredAt"`
}

type Bus struct {
	client  redis.UniversalClient
	channel string
	origin  string
	logger  *zap.Logger
}

func NewBus(client redis.UniversalClient, channel string, logger *zap.Logger) (*Bus, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		client:  client,
		channel: channel,
		origin:  kernel.NewUUID().String(),
		logger:  logger.With(zap.String("component", "redisbus")),
	}, nil
}

func (b *Bus) Publish(ctx context.Context, event ports.Event) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("encode payload of %s: %w", event.Type, err)
	}
	data, err := json.Marshal(envelope{
		Origin:     b.origin,
		Type:       event.Type,
		Scope:      event.Scope,
		LoadID:     event.LoadID,
		Payload:    payload,
		OccurredAt: event.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.Type, err)
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", event.Type, err)
	}
	return nil
}

// Relay subscribes to the channel and hands every event to local. It returns
// once the subscription is confirmed; delivery continues in the background
// until ctx is cancelled or Close is called.
func (b *Bus) Relay(ctx context.Context, local ports.Publisher) (*Relay, error) {
	if local == nil {
		return nil, errors.New("local publisher is required")
	}
	sub := b.client.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("redis subscribe %s: %w", b.channel, err)
	}

	r := &Relay{sub: sub, local: local, logger: b.logger, done: make(chan struct{})}
	go r.run(ctx)

	b.logger.Info("relay subscribed", zap.String("channel", b.channel))
	return r, nil
}

type Relay struct {
	sub    *redis.PubSub
	local  ports.Publisher
	logger *zap.Logger

	done      chan struct{}
	closeOnce sync.Once
}

func (r *Relay) run(ctx context.Context) {
	defer close(r.done)
	ch := r.sub.Channel()
	for {
		select {
		case <-ctx.Done():
			_ = r.Close()
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			r.deliver(ctx, msg.Payload)
		}
	}
}

func (r *Relay) deliver(ctx context.Context, raw string) {
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		r.logger.Warn("malformed event skipped", zap.Error(err))
		return
	}
	event := ports.Event{
		Type:       env.Type,
		Scope:      env.Scope,
		LoadID:     env.LoadID,
		Payload:    env.Payload,
		OccurredAt: env.OccurredAt,
	}
	if err := r.local.Publish(ctx, event); err != nil {
		r.logger.Warn("local delivery failed",
			zap.String("event", string(env.Type)),
			zap.String("origin", env.Origin),
			zap.Error(err),
		)
	}
}

// Close stops the relay. Safe to call more than once.
func (r *Relay) Close() error {
	var err error
	r.closeOnce.Do(func() { err = r.sub.Close() })
	return err
}

// Done is closed when the delivery loop has exited.
func (r *Relay) Done() <-chan struct{} { return r.done }
