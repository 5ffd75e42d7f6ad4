package recommend

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK          = "ok"
	outcomeInvalid     = "invalid"
	outcomeUnavailable = "unavailable"
	outcomeError       = "error"
)

var (
	// RequestsTotal counts recommendation calls by strategy and outcome.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelfgraph_recommend_requests_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"strategy", "outcome"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shelfgraph_recommend_duration_seconds",
			Help:    "Duration of recommendation requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"strategy"},
	)

	ResultsReturned = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shelfgraph_recommend_results",
			Help:    "Number of results returned per successful request",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
		[]string{"strategy"},
	)
)
