package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/clubnotify/pkg/eventbus"
	"github.com/dmitrymomot/clubnotify/pkg/notifications"
	"github.com/dmitrymomot/clubnotify/pkg/stream"
)

const namespace = "clubnotify"

var (
	_ notifications.DeliveryRecorder = (*Collector)(nil)
	_ stream.Observer                = (*Collector)(nil)
)

// Collector holds the notification metrics.
type Collector struct {
	registry *prometheus.Registry

	created     *prometheus.CounterVec
	deliveries  *prometheus.CounterVec
	connections prometheus.Gauge
	closed      *prometheus.CounterVec
}

// Option configures a Collector.
type Option func(*options)

type options struct {
	runtime bool
}

// WithRuntimeMetrics adds the Go runtime and process collectors.
func WithRuntimeMetrics() Option {
	return func(o *options) {
		o.runtime = true
	}
}

// New creates a Collector with a private registry.
func New(opts ...Option) *Collector {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	reg := prometheus.NewRegistry()
	if o.runtime {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		created: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_created_total",
			Help:      "Notifications persisted, by category.",
		}, []string{"category"}),
		deliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Delivery attempts, by channel and result.",
		}, []string{"channel", "result"}),
		connections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stream_connections",
			Help:      "Live stream connections on this instance.",
		}),
		closed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_disconnects_total",
			Help:      "Ended stream connections, by reason.",
		}, []string{"reason"}),
	}
}

// Register subscribes the collector to notification events.
func (c *Collector) Register(bus *eventbus.Bus) {
	eventbus.Subscribe(bus, func(_ context.Context, ev notifications.NotificationCreated) error {
		c.created.WithLabelValues(string(ev.Notification.Category)).Inc()
		return nil
	})
}

// RecordDelivery counts a delivery attempt on channel.
func (c *Collector) RecordDelivery(channel string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.deliveries.WithLabelValues(channel, result).Inc()
}

func (c *Collector) ConnectionOpened() {
	c.connections.Inc()
}

func (c *Collector) ConnectionClosed(reason string) {
	c.connections.Dec()
	c.closed.WithLabelValues(reason).Inc()
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
