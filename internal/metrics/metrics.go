// Package metrics provides the centralized Prometheus metrics registry for
// the edge finder.
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
	RecommendationsServedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "edge_finder",
		Name:      "recommendations_served_total",
		Help:      "Total number of recommendation requests served",
	}, []string{"provider", "model"})
	OddsFetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "edge_finder",
		Name:      "odds_fetches_total",
		Help:      "Total number of odds provider fetches",
	}, []string{"provider", "status"})
	PredictionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "edge_finder",
		Name:      "predictions_total",
		Help:      "Total number of model predictions made",
	}, []string{"model", "cache_hit"})
	BetsRecordedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "edge_finder",
		Name:      "bets_recorded_total",
		Help:      "Total number of bets recorded against user history",
	})
	QuotesIngestedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "edge_finder",
		Name:      "quotes_ingested_total",
		Help:      "Total number of odds quote snapshots written to storage",
	}, []string{"provider"})
	ProviderFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "edge_finder",
		Name:      "provider_failures_total",
		Help:      "Total number of odds provider failures",
	}, []string{"provider", "code"})
)

// Gauge metrics
var (
	EnabledProviders = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "edge_finder",
		Name:      "enabled_providers",
		Help:      "Number of enabled odds providers",
	})
	RegisteredModels = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "edge_finder",
		Name:      "registered_models",
		Help:      "Number of registered prediction models",
	})
	PredictionCacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "edge_finder",
		Name:      "prediction_cache_hit_ratio",
		Help:      "Prediction cache hit ratio",
	})
)

// Histogram metrics
var (
	OddsFetchLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "edge_finder",
		Name:      "odds_fetch_latency_seconds",
		Help:      "Latency of odds provider fetches in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"provider"})
	PredictionLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "edge_finder",
		Name:      "prediction_latency_seconds",
		Help:      "Latency of model predictions in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	RecommendationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "edge_finder",
		Name:      "recommendation_duration_seconds",
		Help:      "End-to-end duration of recommendation requests in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	ExpectedValueDistribution = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "edge_finder",
		Name:      "expected_value_distribution",
		Help:      "Distribution of expected values of served candidates",
		Buckets:   []float64{-0.5, -0.25, -0.1, 0, 0.05, 0.1, 0.25, 0.5, 1, 2},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(RecommendationsServedTotal)
		registry.MustRegister(OddsFetchesTotal)
		registry.MustRegister(PredictionsTotal)
		registry.MustRegister(BetsRecordedTotal)
		registry.MustRegister(QuotesIngestedTotal)
		registry.MustRegister(ProviderFailuresTotal)

		registry.MustRegister(EnabledProviders)
		registry.MustRegister(RegisteredModels)
		registry.MustRegister(PredictionCacheHitRatio)

		registry.MustRegister(OddsFetchLatency)
		registry.MustRegister(PredictionLatency)
		registry.MustRegister(RecommendationDuration)
		registry.MustRegister(ExpectedValueDistribution)
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

// RecordOddsFetch records an odds provider fetch with its outcome.
func RecordOddsFetch(provider, status string, durationSeconds float64) {
	OddsFetchesTotal.WithLabelValues(provider, status).Inc()
	OddsFetchLatency.WithLabelValues(provider).Observe(durationSeconds)
}

// RecordRecommendation records a served recommendation request.
func RecordRecommendation(provider, model string, durationSeconds float64) {
	RecommendationsServedTotal.WithLabelValues(provider, model).Inc()
	RecommendationDuration.Observe(durationSeconds)
}

// RecordPrediction records a model prediction.
func RecordPrediction(model string, cacheHit bool, durationSeconds float64) {
	hit := "false"
	if cacheHit {
		hit = "true"
	}
	PredictionsTotal.WithLabelValues(model, hit).Inc()
	if !cacheHit {
		PredictionLatency.Observe(durationSeconds)
	}
}

// RecordProviderFailure records a provider error by code.
func RecordProviderFailure(provider, code string) {
	ProviderFailuresTotal.WithLabelValues(provider, code).Inc()
}

// RecordBetRecorded records a bet written to user history.
func RecordBetRecorded() {
	BetsRecordedTotal.Inc()
}

// ObserveExpectedValue records the EV of a served candidate.
func ObserveExpectedValue(ev float64) {
	ExpectedValueDistribution.Observe(ev)
}
