package metrics

import (
	"net/http"
	"time"

	"ciboway/internal/llm"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ciboway",
		Name:      "session_operations_total",
		Help:      "Session operations applied, by operation.",
	}, []string{"operation"})

	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ciboway",
		Name:      "session_operation_duration_seconds",
		Help:      "Time spent applying a session operation, reconciliation included.",
		Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
	}, []string{"operation"})

	llmTokensTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ciboway",
		Name:      "llm_tokens_total",
		Help:      "Tokens consumed by LLM agents.",
	}, []string{"agent", "direction"})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "ciboway",
		Name:      "active_sessions",
		Help:      "Sessions currently held in memory.",
	})
)

func observeOperation(operation string, latency time.Duration) {
	operationsTotal.WithLabelValues(operation).Inc()
	operationDuration.WithLabelValues(operation).Observe(latency.Seconds())
}

func observeTokens(meta llm.AgentMeta) {
	llmTokensTotal.WithLabelValues(meta.AgentName, "prompt").Add(float64(meta.Usage.PromptTokens))
	llmTokensTotal.WithLabelValues(meta.AgentName, "completion").Add(float64(meta.Usage.CompletionTokens))
}

// SetActiveSessions publishes the number of in-memory sessions.
func SetActiveSessions(n int) {
	activeSessions.Set(float64(n))
}

// Handler exposes the Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
