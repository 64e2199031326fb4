package cmd

import (
	"context"
	"errors"
	"fmt"

	"freight/internal/adapters/out/fanout"
	"freight/internal/adapters/out/kafka"
	"freight/internal/adapters/out/rabbitmq"
	"freight/internal/adapters/out/realtime"
	"freight/internal/adapters/out/redisbus"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// EventPipeline is everything committed events flow through: the local
// websocket hub, and whichever of redis, kafka and rabbitmq are configured.
type EventPipeline struct {
	Hub       *realtime.Hub
	Publisher *fanout.Publisher

	closers []func() error
}

// NewEventPipeline connects the configured brokers. With redis the hub is fed
// only through the relay, so every instance (this one included) delivers each
// event exactly once. Without redis events go to the hub directly.
func NewEventPipeline(ctx context.Context, cfg Config, reg prometheus.Registerer, logger *zap.Logger) (*EventPipeline, error) {
	p := &EventPipeline{Hub: realtime.NewHub(realtime.DefaultConfig(), logger)}
	p.closers = append(p.closers, func() error { p.Hub.Close(); return nil })

	var targets []fanout.Target
	fail := func(err error) (*EventPipeline, error) {
		_ = p.Close()
		return nil, err
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		p.closers = append(p.closers, client.Close)

		bus, err := redisbus.NewBus(client, cfg.Redis.Channel, logger)
		if err != nil {
			return fail(err)
		}
		relay, err := bus.Relay(ctx, p.Hub)
		if err != nil {
			return fail(fmt.Errorf("starting redis relay: %w", err))
		}
		p.closers = append(p.closers, relay.Close)
		targets = append(targets, fanout.Target{Name: "redis", Publisher: bus})
	} else {
		targets = append(targets, fanout.Target{Name: "realtime", Publisher: p.Hub})
	}

	if len(cfg.Kafka.Brokers) > 0 {
		stream, err := kafka.NewEventPublisher(
			kafka.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.WriteTimeout),
			logger,
		)
		if err != nil {
			return fail(err)
		}
		p.closers = append(p.closers, stream.Close)
		targets = append(targets, fanout.Target{Name: "kafka", Publisher: stream})
	}

	if cfg.RabbitMQ.URL != "" {
		conn, ch, err := rabbitmq.Dial(cfg.RabbitMQ.URL)
		if err != nil {
			return fail(err)
		}
		p.closers = append(p.closers, conn.Close)

		notifier, err := rabbitmq.NewNotifier(ch, cfg.RabbitMQ.Queue, logger)
		if err != nil {
			return fail(err)
		}
		p.closers = append(p.closers, notifier.Close)
		targets = append(targets, fanout.Target{Name: "rabbitmq", Publisher: notifier})
	}

	p.Publisher = fanout.New(fanout.NewMetrics(reg), logger, targets...).WithTimeout(cfg.Events.PublishTimeout)
	logger.Info("event pipeline ready", zap.Strings("targets", p.Publisher.Targets()))
	return p, nil
}

// Close releases the brokers in reverse order of acquisition.
func (p *EventPipeline) Close() error {
	var errList []error
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i](); err != nil {
			errList = append(errList, err)
		}
	}
	p.closers = nil
	return errors.Join(errList...)
}
