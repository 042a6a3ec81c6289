// Package metrics exposes prometheus counters for the message pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mqttdash"

// Metrics implements dashboard.Recorder on its own registry.
type Metrics struct {
	registry      *prometheus.Registry
	received      *prometheus.CounterVec
	dropped       *prometheus.CounterVec
	updates       *prometheus.CounterVec
	subscriptions prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		received: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Messages delivered by broker connections.",
		}, []string{"broker"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_dropped_total",
			Help:      "Messages no subscription accepted.",
		}, []string{"broker"}),
		updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subscription_updates_total",
			Help:      "Messages applied to a subscription.",
		}, []string{"broker", "topic"}),
		subscriptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "subscriptions",
			Help:      "Configured subscriptions.",
		}),
	}
	m.registry.MustRegister(m.received, m.dropped, m.updates, m.subscriptions)
	return m
}

func (m *Metrics) Received(broker string) {
	m.received.WithLabelValues(broker).Inc()
}

func (m *Metrics) Dropped(broker string) {
	m.dropped.WithLabelValues(broker).Inc()
}

func (m *Metrics) Updated(broker, topic string) {
	m.updates.WithLabelValues(broker, topic).Inc()
}

func (m *Metrics) SetSubscriptions(n int) {
	m.subscriptions.Set(float64(n))
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
