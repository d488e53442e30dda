package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Personalization pipeline metrics
	PipelineRequests *prometheus.CounterVec
	PipelineDuration *prometheus.HistogramVec
	ConfidenceScore  prometheus.Histogram

	// Image cascade metrics
	StrategyAttempts  *prometheus.CounterVec
	StrategyDuration  *prometheus.HistogramVec
	ImageCacheHits    *prometheus.CounterVec
	CoalescedRequests prometheus.Counter

	// Vector store metrics
	VectorStoreOps *prometheus.CounterVec

	// Patient backend metrics
	ProfileFetches *prometheus.CounterVec
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		PipelineRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_requests_total",
			Help:      "Total personalization pipeline runs by outcome",
		}, []string{"outcome"}),
		PipelineDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "Duration of personalization pipeline stages",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"stage"}),
		ConfidenceScore: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "confidence_score",
			Help:      "Distribution of personalization confidence scores",
			Buckets:   []float64{.5, .6, .7, .8, .9, 1},
		}),
		StrategyAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_strategy_attempts_total",
			Help:      "Image strategy invocations by strategy and outcome",
		}, []string{"strategy", "outcome"}),
		StrategyDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "image_strategy_duration_seconds",
			Help:      "Duration of image strategy invocations",
			Buckets:   []float64{.005, .01, .05, .1, .5, 1, 5, 15, 30, 60},
		}, []string{"strategy"}),
		ImageCacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_cache_requests_total",
			Help:      "Image artifact cache lookups by result",
		}, []string{"result"}),
		CoalescedRequests: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_coalesced_requests_total",
			Help:      "Concurrent generation requests folded into an in-flight call",
		}),
		VectorStoreOps: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vector_store_operations_total",
			Help:      "Vector store operations by type and status",
		}, []string{"operation", "status"}),
		ProfileFetches: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "profile_fetches_total",
			Help:      "Patient profile fetches by source and status",
		}, []string{"source", "status"}),
	}
}

// NewTestMetrics creates metrics on a private registry so parallel tests
// do not collide on the default registerer.
func NewTestMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		PipelineRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pipeline_requests_total", Help: "test",
		}, []string{"outcome"}),
		PipelineDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name: "pipeline_duration_seconds", Help: "test",
		}, []string{"stage"}),
		ConfidenceScore: factory.NewHistogram(prometheus.HistogramOpts{
			Name: "confidence_score", Help: "test",
		}),
		StrategyAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "image_strategy_attempts_total", Help: "test",
		}, []string{"strategy", "outcome"}),
		StrategyDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name: "image_strategy_duration_seconds", Help: "test",
		}, []string{"strategy"}),
		ImageCacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "image_cache_requests_total", Help: "test",
		}, []string{"result"}),
		CoalescedRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "image_coalesced_requests_total", Help: "test",
		}),
		VectorStoreOps: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vector_store_operations_total", Help: "test",
		}, []string{"operation", "status"}),
		ProfileFetches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "profile_fetches_total", Help: "test",
		}, []string{"source", "status"}),
	}
}
