package tripplanner

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Request outcomes recorded by Metrics.
const (
	OutcomeSuccess        = "success"
	OutcomeInvalidRequest = "invalid_request"
	OutcomeModelError     = "model_error"
	OutcomeUnparseable    = "unparseable"
)

// Metrics tracks planner activity.
type Metrics struct {
	requests          *prometheus.CounterVec
	modelLatency      prometheus.Histogram
	skippedCalls      *prometheus.CounterVec
	fallbacks         prometheus.Counter
	synthesizedRoutes prometheus.Counter
}

// NewMetrics creates the planner collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tripplanner",
			Name:      "requests_total",
			Help:      "Trip plan requests by outcome.",
		}, []string{"outcome"}),
		modelLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tripplanner",
			Name:      "model_latency_seconds",
			Help:      "Latency of the itinerary model call.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
		}),
		skippedCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tripplanner",
			Name:      "skipped_tool_calls_total",
			Help:      "Tool calls dropped during extraction, by reason.",
		}, []string{"reason"}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tripplanner",
			Name:      "text_fallback_total",
			Help:      "Responses parsed from legacy text because the model made no tool calls.",
		}),
		synthesizedRoutes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tripplanner",
			Name:      "synthesized_routes_total",
			Help:      "Routes synthesized because the model drew none.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.modelLatency, m.skippedCalls, m.fallbacks, m.synthesizedRoutes)
	}
	return m
}

func (m *Metrics) observeOutcome(outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeModelLatency(seconds float64) {
	if m == nil {
		return
	}
	m.modelLatency.Observe(seconds)
}

func (m *Metrics) observeExtraction(ex Extraction) {
	if m == nil {
		return
	}
	m.skippedCalls.WithLabelValues("invalid").Add(float64(ex.Skipped))
	m.skippedCalls.WithLabelValues("unmatched").Add(float64(ex.Unmatched))
	m.skippedCalls.WithLabelValues("unknown_tool").Add(float64(ex.Ignored))
}

func (m *Metrics) observeFallback() {
	if m == nil {
		return
	}
	m.fallbacks.Inc()
}

func (m *Metrics) observeSynthesized(n int) {
	if m == nil {
		return
	}
	m.synthesizedRoutes.Add(float64(n))
}
