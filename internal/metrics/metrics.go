// Package metrics provides the centralized Prometheus metrics registry for
// the edge detection engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	DetectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sharpline",
		Name:      "detections_total",
		Help:      "Total number of edge detection calls",
	})
	EdgesDetectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sharpline",
		Name:      "edges_detected_total",
		Help:      "Total number of edges emitted by market and strength",
	}, []string{"market", "strength"})
	InsufficientDataTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sharpline",
		Name:      "insufficient_data_total",
		Help:      "Total number of estimates short of the minimum sample size",
	})
	ArbitrageOpportunitiesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sharpline",
		Name:      "arbitrage_opportunities_total",
		Help:      "Total number of arbitrage opportunities detected",
	})
	RecommendationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sharpline",
		Name:      "recommendations_total",
		Help:      "Total number of execution recommendations produced",
	})
	IndexRebuildsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sharpline",
		Name:      "index_rebuilds_total",
		Help:      "Total number of vector index rebuilds",
	})
	ProviderFetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sharpline",
		Name:      "provider_fetches_total",
		Help:      "Total provider fetches by provider and result",
	}, []string{"provider", "result"})
)

// Gauge metrics
var (
	StoreRecords = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "sharpline",
		Name:      "store_records",
		Help:      "Number of historical records in the vector store",
	})
	TrackedGames = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "sharpline",
		Name:      "tracked_games",
		Help:      "Number of games with line history",
	})
)

// Histogram metrics
var (
	StoreQueryDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sharpline",
		Name:      "store_query_duration_seconds",
		Help:      "Latency of vector store similarity queries in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	DetectionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sharpline",
		Name:      "detection_duration_seconds",
		Help:      "Duration of full detection calls in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	ProviderFetchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sharpline",
		Name:      "provider_fetch_duration_seconds",
		Help:      "Latency of provider fetches in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"provider"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(DetectionsTotal)
		registry.MustRegister(EdgesDetectedTotal)
		registry.MustRegister(InsufficientDataTotal)
		registry.MustRegister(ArbitrageOpportunitiesTotal)
		registry.MustRegister(RecommendationsTotal)
		registry.MustRegister(IndexRebuildsTotal)
		registry.MustRegister(ProviderFetchesTotal)

		registry.MustRegister(StoreRecords)
		registry.MustRegister(TrackedGames)

		registry.MustRegister(StoreQueryDuration)
		registry.MustRegister(DetectionDuration)
		registry.MustRegister(ProviderFetchDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}
