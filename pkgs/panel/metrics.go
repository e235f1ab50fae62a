package panel

import (
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the bridge's instrumentation, backed by a private registry so
// the panel server only exposes its own series.
type Metrics struct {
	reg *prom.Registry

	StateUpdates     prom.Counter
	PollErrors       prom.Counter
	SerialReconnects prom.Counter
	SSEClients       prom.Gauge
}

// NewMetrics registers the bridge metric set on a fresh registry.
func NewMetrics() *Metrics {
	reg := prom.NewRegistry()
	m := &Metrics{
		reg: reg,
		StateUpdates: prom.NewCounter(prom.CounterOpts{
			Name: "trainbridge_state_updates_total",
			Help: "Train state updates received from the active source",
		}),
		PollErrors: prom.NewCounter(prom.CounterOpts{
			Name: "trainbridge_poll_errors_total",
			Help: "Failed endpoint polls",
		}),
		SerialReconnects: prom.NewCounter(prom.CounterOpts{
			Name: "trainbridge_serial_reconnects_total",
			Help: "Arduino serial port reconnects",
		}),
		SSEClients: prom.NewGauge(prom.GaugeOpts{
			Name: "trainbridge_sse_clients",
			Help: "Connected SSE panel clients",
		}),
	}
	reg.MustRegister(m.StateUpdates, m.PollErrors, m.SerialReconnects, m.SSEClients)
	return m
}

// Handler exposes the registry for GET /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
