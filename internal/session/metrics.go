package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storeOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calculator_session_store_ops_total",
			Help: "Session store operations by backend, operation and status",
		},
		[]string{"backend", "op", "status"},
	)

	activeSessions = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "calculator_sessions_active",
			Help: "Number of sessions held by the store",
		},
		[]string{"backend"},
	)

	sweptSessions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "calculator_sessions_swept_total",
			Help: "Sessions evicted from the memory store after going idle",
		},
	)

	breakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "calculator_session_store_breaker_state",
			Help: "Redis circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)
)

func recordOp(backend, op string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	storeOps.WithLabelValues(backend, op, status).Inc()
}
