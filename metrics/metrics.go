// Package metrics holds the Prometheus registry of the scoring service.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	ResultsSubmittedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sailscore",
		Name:      "results_submitted_total",
		Help:      "Race result submissions by outcome",
	}, []string{"outcome"})
	StandingsCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sailscore",
		Name:      "standings_cache_total",
		Help:      "Standings cache lookups by result (hit or miss)",
	}, []string{"result"})
	FleetSetsCreatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sailscore",
		Name:      "fleet_sets_created_total",
		Help:      "Fleet sets created by kind",
	}, []string{"kind"})
	SideEffectFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sailscore",
		Name:      "side_effect_failures_total",
		Help:      "Best-effort side effects that failed, by kind",
	}, []string{"kind"})
	CounterRetriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sailscore",
		Name:      "sequence_counter_retries_total",
		Help:      "Sequence counter transactions retried after a serialization failure",
	})
)

// Histogram metrics
var (
	RankingDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sailscore",
		Name:      "ranking_duration_seconds",
		Help:      "Time spent computing a class ranking",
		Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector())
		registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		registry.MustRegister(ResultsSubmittedTotal)
		registry.MustRegister(StandingsCacheTotal)
		registry.MustRegister(FleetSetsCreatedTotal)
		registry.MustRegister(SideEffectFailuresTotal)
		registry.MustRegister(CounterRetriesTotal)
		registry.MustRegister(RankingDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordSubmission counts a result submission; outcome is "ok" or an error code.
func RecordSubmission(outcome string) {
	ResultsSubmittedTotal.WithLabelValues(outcome).Inc()
}

// RecordCacheLookup counts a standings cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		StandingsCacheTotal.WithLabelValues("hit").Inc()
		return
	}
	StandingsCacheTotal.WithLabelValues("miss").Inc()
}

// RecordFleetSet counts a created fleet set ("initial", "reshuffle", "finals").
func RecordFleetSet(kind string) {
	FleetSetsCreatedTotal.WithLabelValues(kind).Inc()
}

// RecordSideEffectFailure counts a failed document or notification.
func RecordSideEffectFailure(kind string) {
	SideEffectFailuresTotal.WithLabelValues(kind).Inc()
}

// RecordCounterRetry counts one retried counter transaction.
func RecordCounterRetry() {
	CounterRetriesTotal.Inc()
}

// ObserveRanking records how long a ranking took since start.
func ObserveRanking(start time.Time) {
	RankingDuration.Observe(time.Since(start).Seconds())
}
