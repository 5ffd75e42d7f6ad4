package driver

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// QueryDuration tracks executor round trips by outcome.
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shelfgraph_graph_query_duration_seconds",
			Help:    "Duration of graph query round trips in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"outcome"},
	)

	// BreakerState is 0 closed, 1 half-open, 2 open.
	BreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shelfgraph_graph_breaker_state",
			Help: "Circuit breaker state for the graph executor (0 closed, 1 half-open, 2 open)",
		},
	)
)

func observeQuery(start time.Time, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case isUnavailable(err), errors.Is(err, ErrUnavailable):
		outcome = "unavailable"
	default:
		outcome = "error"
	}
	QueryDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}
