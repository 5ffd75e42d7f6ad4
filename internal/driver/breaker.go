package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/agenthands/shelfgraph/internal/config"
)

// BreakerDriver fails fast with ErrUnavailable once the wrapped executor has
// reported too many consecutive unavailability errors. Query errors (bad
// Cypher, constraint violations) never trip it. It does not retry.
type BreakerDriver struct {
	next GraphDriver
	cb   *gobreaker.CircuitBreaker[neo4j.EagerResult]
}

func NewBreakerDriver(next GraphDriver, cfg config.BreakerConfig, logger zerolog.Logger) *BreakerDriver {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	logger = logger.With().Str("component", "breaker").Logger()

	settings := gobreaker.Settings{
		Name:        "graph-executor",
		MaxRequests: 1,
		Timeout:     time.Duration(cfg.OpenSeconds) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// Query errors and the caller's own context errors leave the breaker alone.
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, ErrUnavailable)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			BreakerState.Set(float64(to))
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("breaker state changed")
		},
	}

	return &BreakerDriver{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[neo4j.EagerResult](settings),
	}
}

func (b *BreakerDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	result, err := b.cb.Execute(func() (neo4j.EagerResult, error) {
		return b.next.ExecuteQuery(ctx, query, params)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return neo4j.EagerResult{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return result, err
}

// State reports the breaker state name, for health output.
func (b *BreakerDriver) State() string {
	return b.cb.State().String()
}

func (b *BreakerDriver) BuildIndices(ctx context.Context) error {
	return b.next.BuildIndices(ctx)
}

func (b *BreakerDriver) Close(ctx context.Context) error {
	return b.next.Close(ctx)
}
