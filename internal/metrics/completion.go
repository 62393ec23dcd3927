package metrics

import "github.com/prometheus/client_golang/prometheus"

// Completion metrics are registered explicitly from the composition root
// (no init()) so tests importing this package do not pollute the default
// registry.
var (
	// CompletionRequestsTotal counts completion requests by outcome.
	CompletionRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prodex",
			Name:      "completion_requests_total",
			Help:      "Total completion requests by provider, model and status",
		},
		[]string{"provider", "model", "status"},
	)

	// CompletionErrorsTotal counts completion failures by reason.
	CompletionErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prodex",
			Name:      "completion_errors_total",
			Help:      "Completion errors by provider, model and reason",
		},
		[]string{"provider", "model", "reason"},
	)

	// CompletionTokensTotal accumulates token usage.
	CompletionTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prodex",
			Name:      "completion_tokens_total",
			Help:      "Token usage by provider, model and kind (prompt/completion)",
		},
		[]string{"provider", "model", "kind"},
	)

	// CompletionRequestDuration observes completion latency.
	CompletionRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "prodex",
			Name:      "completion_request_duration_seconds",
			Help:      "Completion request duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 80},
		},
		[]string{"provider", "model"},
	)
)

// RegisterCompletionMetrics registers completion metrics with the default
// registry. Call once from the composition root.
func RegisterCompletionMetrics() {
	prometheus.MustRegister(CompletionRequestsTotal)
	prometheus.MustRegister(CompletionErrorsTotal)
	prometheus.MustRegister(CompletionTokensTotal)
	prometheus.MustRegister(CompletionRequestDuration)
}
