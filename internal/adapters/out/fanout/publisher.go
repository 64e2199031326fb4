// Package fanout delivers each event to every configured transport and
// records per-transport outcomes.
package fanout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"freight/internal/core/ports"

	"go.uber.org/zap"
)

var _ ports.Publisher = (*Publisher)(nil)

// Target is a named downstream publisher. The name labels metrics and errors.
type Target struct {
	Name      string
	Publisher ports.Publisher
}

type Publisher struct {
	targets []Target
	metrics *Metrics
	timeout time.Duration
	logger  *zap.Logger
}

// New builds a fanout over targets. Nil publishers are skipped so optional
// transports can be passed unconditionally. metrics may be nil.
func New(metrics *Metrics, logger *zap.Logger, targets ...Target) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	kept := make([]Target, 0, len(targets))
	for _, t := range targets {
		if t.Publisher != nil {
			kept = append(kept, t)
		}
	}
	return &Publisher{targets: kept, metrics: metrics, logger: logger.With(zap.String("component", "fanout"))}
}

// WithTimeout bounds each target's Publish call. Zero leaves the caller's
// deadline alone.
func (p *Publisher) WithTimeout(d time.Duration) *Publisher {
	p.timeout = d
	return p
}

func (p *Publisher) Targets() []string {
	names := make([]string, 0, len(p.targets))
	for _, t := range p.targets {
		names = append(names, t.Name)
	}
	return names
}

// Publish tries every target even when an earlier one fails. The returned
// error joins each failure.
func (p *Publisher) Publish(ctx context.Context, event ports.Event) error {
	var failures []error
	for _, t := range p.targets {
		start := time.Now()
		err := p.publishOne(ctx, t, event)
		p.metrics.observe(t.Name, event.Type, time.Since(start), err)
		if err != nil {
			p.logger.Debug("target publish failed",
				zap.String("target", t.Name),
				zap.String("event", string(event.Type)),
				zap.Error(err),
			)
			failures = append(failures, fmt.Errorf("%s: %w", t.Name, err))
		}
	}
	return errors.Join(failures...)
}

func (p *Publisher) publishOne(ctx context.Context, t Target, event ports.Event) error {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	return t.Publisher.Publish(ctx, event)
}
