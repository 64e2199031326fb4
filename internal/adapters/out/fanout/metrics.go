package fanout

import (
	"time"

	"freight/internal/core/ports"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	published *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		published: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "freight",
				Subsystem: "events",
				Name:      "published_total",
				Help:      "Events handed to each transport, by outcome",
			},
			[]string{"target", "event", "result"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "freight",
				Subsystem: "events",
				Name:      "publish_duration_seconds",
				Help:      "Time spent publishing one event to a transport",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
			},
			[]string{"target"},
		),
	}
}

func (m *Metrics) observe(target string, event ports.EventType, took time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.published.WithLabelValues(target, string(event), result).Inc()
	m.duration.WithLabelValues(target).Observe(took.Seconds())
}
