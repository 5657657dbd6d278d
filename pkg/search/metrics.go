package search

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// queriesTotal counts answered queries by result mode.
	queriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cercaclasse",
		Subsystem: "search",
		Name:      "queries_total",
		Help:      "Total answered queries by result mode",
	}, []string{"mode"})

	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cercaclasse",
		Subsystem: "search",
		Name:      "cache_hits_total",
		Help:      "Queries answered from the response cache",
	})

	loadFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cercaclasse",
		Subsystem: "search",
		Name:      "load_failures_total",
		Help:      "Queries that failed because the record store could not be loaded",
	})

	searchDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cercaclasse",
		Subsystem: "search",
		Name:      "duration_seconds",
		Help:      "Query latency by result mode",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	}, []string{"mode"})

	recordsLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "cercaclasse",
		Subsystem: "store",
		Name:      "records",
		Help:      "Number of records held by the record store",
	})
)
