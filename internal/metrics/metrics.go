// Package metrics exposes hub activity as Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vovakirdan/palchat-server/internal/core"
)

const namespace = "palchat"

var _ core.Observer = (*Hub)(nil)

// Hub implements core.Observer on top of Prometheus collectors.
type Hub struct {
	broadcasts *prometheus.CounterVec
	dropped    prometheus.Counter
	clients    prometheus.Gauge
	channels   prometheus.Gauge
	sessions   prometheus.Gauge
}

// NewHub creates the hub collectors and registers them with reg.
func NewHub(reg prometheus.Registerer) (*Hub, error) {
	h := &Hub{
		broadcasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "hub",
			Name:      "broadcasts_total",
			Help:      "Broadcasts produced by the model, by command and outcome.",
		}, []string{"command", "result", "code"}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "hub",
			Name:      "dropped_events_total",
			Help:      "Events dropped because a session queue was full.",
		}),
		clients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "model",
			Name:      "clients",
			Help:      "Registered clients.",
		}),
		channels: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "model",
			Name:      "channels",
			Help:      "Live channels.",
		}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "hub",
			Name:      "sessions",
			Help:      "Open sessions.",
		}),
	}

	for _, c := range []prometheus.Collector{h.broadcasts, h.dropped, h.clients, h.channels, h.sessions} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// BroadcastProduced counts one model outcome.
func (h *Hub) BroadcastProduced(b *core.Broadcast) {
	command := "-"
	if b.Command.Kind != 0 {
		command = b.Command.Kind.String()
	}
	h.broadcasts.WithLabelValues(command, b.Kind.String(), string(b.Code())).Inc()
}

// EventDropped counts one event lost to a slow consumer.
func (h *Hub) EventDropped() {
	h.dropped.Inc()
}

// StateChanged updates the entity gauges.
func (h *Hub) StateChanged(stats core.Stats, sessions int) {
	h.clients.Set(float64(stats.Clients))
	h.channels.Set(float64(stats.Channels))
	h.sessions.Set(float64(sessions))
}
