package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "trendoscope"

// Provider kinds used as the "kind" label.
const (
	KindEmbedding  = "embedding"
	KindGeneration = "generation"
)

// Provider metrics shared by embedding and text generation adapters.
var (
	ProviderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Total number of embedding and generation provider requests",
		},
		[]string{"kind", "provider", "model", "status"},
	)

	ProviderRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Provider request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"kind", "provider", "model"},
	)

	ProviderTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_tokens_total",
			Help:      "Total provider tokens consumed",
		},
		[]string{"kind", "provider", "model", "type"},
	)

	ProviderErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_errors_total",
			Help:      "Total provider errors",
		},
		[]string{"kind", "provider", "model", "error_type"},
	)

	BudgetTokensRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "budget_tokens_remaining",
			Help:      "Remaining token budget",
		},
		[]string{"provider", "period"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

// Content pipeline metrics.
var (
	VectorStoreDocuments = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "vector_store_documents",
			Help:      "Number of documents in the vector store",
		},
	)

	IngestDocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_documents_total",
			Help:      "Ingested documents by pipeline and outcome",
		},
		[]string{"pipeline", "status"}, // pipeline: blog/news; status: added/duplicate/error
	)

	FeedFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_fetch_total",
			Help:      "RSS feed fetches by feed and status",
		},
		[]string{"feed", "status"},
	)

	GenerationParseTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_parse_total",
			Help:      "Generated post parse outcomes",
		},
		[]string{"result"}, // ok / repaired / failed
	)

	TrendRefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trend_refresh_total",
			Help:      "Trend snapshot refreshes by status",
		},
		[]string{"status"},
	)
)

var registered bool

// Register registers the application metrics with the default registry. Must be called once from main.
func Register() {
	if registered {
		return
	}
	prometheus.MustRegister(
		ProviderRequestsTotal,
		ProviderRequestDuration,
		ProviderTokensTotal,
		ProviderErrorsTotal,
		BudgetTokensRemaining,
		EmbeddingCacheTotal,
		VectorStoreDocuments,
		IngestDocumentsTotal,
		FeedFetchTotal,
		GenerationParseTotal,
		TrendRefreshTotal,
	)
	registered = true
}
