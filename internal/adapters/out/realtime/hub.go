// Package realtime delivers committed events to connected clients. The hub
// keeps one bounded queue per subscriber and routes each event only to the
// subscribers its scope addresses.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/user"
	"freight/internal/core/ports"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var _ ports.Publisher = (*Hub)(nil)

type Config struct {
	SendBuffer     int
	WriteTimeout   time.Duration
	PongTimeout    time.Duration
	PingPeriod     time.Duration
	MaxMessageSize int64
}

func DefaultConfig() Config {
	return Config{
		SendBuffer:     64,
		WriteTimeout:   10 * time.Second,
		PongTimeout:    60 * time.Second,
		PingPeriod:     54 * time.Second, // must stay below PongTimeout
		MaxMessageSize: 4 * 1024,
	}
}

// Subscriber is one registered receiver. Messages are pre-encoded JSON events.
type Subscriber struct {
	id     kernel.UUID
	role   user.Role
	userID kernel.UUID

	send    chan []byte
	dropped atomic.Uint64
	once    sync.Once
}

func (s *Subscriber) ID() kernel.UUID         { return s.id }
func (s *Subscriber) Messages() <-chan []byte { return s.send }

// Dropped counts events discarded because the queue was full.
func (s *Subscriber) Dropped() uint64 { return s.dropped.Load() }

func (s *Subscriber) close() {
	s.once.Do(func() { close(s.send) })
}

type Hub struct {
	mu          sync.RWMutex
	subscribers map[kernel.UUID]*Subscriber
	closed      bool

	config Config
	logger *zap.Logger
	tracer trace.Tracer
}

func NewHub(config Config, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := DefaultConfig()
	if config.SendBuffer <= 0 {
		config.SendBuffer = defaults.SendBuffer
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = defaults.WriteTimeout
	}
	if config.PongTimeout <= 0 || config.PingPeriod <= 0 || config.PingPeriod >= config.PongTimeout {
		config.PongTimeout = defaults.PongTimeout
		config.PingPeriod = defaults.PingPeriod
	}
	if config.MaxMessageSize <= 0 {
		config.MaxMessageSize = defaults.MaxMessageSize
	}
	return &Hub{
		subscribers: make(map[kernel.UUID]*Subscriber),
		config:      config,
		logger:      logger.With(zap.String("component", "realtime.hub")),
		tracer:      otel.Tracer("freight/realtime"),
	}
}

// Subscribe registers a receiver for events addressed to the actor.
func (h *Hub) Subscribe(actor user.Actor) (*Subscriber, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}

	s := &Subscriber{
		id:     kernel.NewUUID(),
		role:   actor.Role,
		userID: actor.ID,
		send:   make(chan []byte, h.config.SendBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, fmt.Errorf("hub is closed")
	}
	h.subscribers[s.id] = s

	h.logger.Debug("subscriber registered",
		zap.String("subscriber_id", s.id.String()),
		zap.String("role", string(s.role)),
		zap.String("user_id", s.userID.String()),
	)
	return s, nil
}

// Unsubscribe removes the subscriber and closes its queue. Calling it twice is safe.
func (h *Hub) Unsubscribe(s *Subscriber) {
	h.mu.Lock()
	if _, ok := h.subscribers[s.id]; ok {
		delete(h.subscribers, s.id)
		s.close()
	}
	h.mu.Unlock()
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Publish encodes the event once and enqueues it on every matching subscriber.
// A full queue drops the event for that subscriber only.
func (h *Hub) Publish(ctx context.Context, event ports.Event) error {
	_, span := h.tracer.Start(ctx, "realtime.publish",
		trace.WithAttributes(
			attribute.String("event_type", string(event.Type)),
			attribute.String("load_id", event.LoadID.String()),
		),
	)
	defer span.End()

	data, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("encode event %s: %w", event.Type, err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, s := range h.subscribers {
		if !event.Scope.Matches(s.role, s.userID) {
			continue
		}
		select {
		case s.send <- data:
			delivered++
		default:
			s.dropped.Add(1)
			h.logger.Warn("subscriber queue full, event dropped",
				zap.String("subscriber_id", s.id.String()),
				zap.String("event", string(event.Type)),
			)
		}
	}
	span.SetAttributes(attribute.Int("delivered", delivered))
	return nil
}

// Close unregisters every subscriber. Later subscriptions fail.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, s := range h.subscribers {
		delete(h.subscribers, id)
		s.close()
	}
}
