// Package metrics exposes Prometheus collectors for the race and an optional
// scrape endpoint.
package metrics

import (
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors. A dedicated registry keeps the scrape surface
// limited to slotrace series.
type Metrics struct {
	registry *prometheus.Registry

	// SlotNotifications counts slot notifications per stream.
	SlotNotifications *prometheus.CounterVec

	// PassthroughUpdates counts non-race payloads per stream and kind.
	PassthroughUpdates *prometheus.CounterVec

	// Reconnects counts connection failures that triggered a retry, per stream.
	Reconnects *prometheus.CounterVec

	// TrackedSlots is the current race ledger length.
	TrackedSlots prometheus.Gauge
}

// New creates the registry and all collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	auto := promauto.With(registry)

	return &Metrics{
		registry: registry,
		SlotNotifications: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slotrace",
			Name:      "slot_notifications_total",
			Help:      "Slot notifications received, per stream.",
		}, []string{"stream"}),
		PassthroughUpdates: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slotrace",
			Name:      "passthrough_updates_total",
			Help:      "Account, transaction and block updates passed through, per stream and kind.",
		}, []string{"stream", "kind"}),
		Reconnects: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slotrace",
			Name:      "reconnects_total",
			Help:      "Stream failures that triggered a reconnect, per stream.",
		}, []string{"stream"}),
		TrackedSlots: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: "slotrace",
			Name:      "tracked_slots",
			Help:      "Slots currently held in the race ledger.",
		}),
	}
}

// Handler returns the scrape handler for the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on the listener. It blocks until the listener closes.
func (m *Metrics) Serve(lis net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return http.Serve(lis, mux)
}
