package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	ActiveRuns       prometheus.Gauge
	RunEvents        *prometheus.CounterVec
	GenerationTokens *prometheus.CounterVec
	ProviderErrors   *prometheus.CounterVec
	SynthesisRetries prometheus.Counter
	ChunkLatency     prometheus.Histogram
	ScriptWords      prometheus.Histogram
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ActiveRuns: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_runs",
			Help:      "Number of episode runs currently in flight.",
		}),
		RunEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "run_events_total",
			Help:      "Run lifecycle events by stage and outcome.",
		}, []string{"stage", "outcome"}),
		GenerationTokens: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_tokens_total",
			Help:      "Tokens consumed by the generation service by direction.",
		}, []string{"direction"}),
		ProviderErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_errors_total",
			Help:      "Provider errors by provider and code.",
		}, []string{"provider", "code"}),
		SynthesisRetries: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "synthesis_retries_total",
			Help:      "Synthesis requests that were retried.",
		}),
		ChunkLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chunk_synthesis_seconds",
			Help:      "Wall time per synthesized chunk in seconds.",
			Buckets:   []float64{1, 2, 5, 10, 20, 40, 80, 160},
		}),
		ScriptWords: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "script_words",
			Help:      "Word count of finished scripts.",
			Buckets:   []float64{500, 1000, 2000, 4000, 8000, 16000},
		}),
	}
}

func (m *Metrics) ObserveChunkLatency(d time.Duration) {
	m.ChunkLatency.Observe(d.Seconds())
}

func (m *Metrics) AddTokens(input, output int) {
	m.GenerationTokens.WithLabelValues("input").Add(float64(input))
	m.GenerationTokens.WithLabelValues("output").Add(float64(output))
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
