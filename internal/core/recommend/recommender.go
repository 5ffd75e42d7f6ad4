// Package recommend computes book recommendations from the library graph.
//
// Each strategy is one traversal issued through driver.GraphDriver followed by
// scoring, ordering and truncation on the Go side. The Recommender holds no
// mutable state; every call is independent and may run concurrently with any
// other. There is no caching and no internal retry: a driver.ErrUnavailable
// from the executor is returned to the caller as is.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agenthands/shelfgraph/internal/core/model"
	"github.com/agenthands/shelfgraph/internal/driver"
)

// ErrInvalidInput is returned, before any query is issued, for an empty
// identifier or a non-positive limit.
var ErrInvalidInput = errors.New("invalid recommendation input")

const defaultCandidatePool = 500

type Strategy string

const (
	StrategyCollaborative Strategy = "collaborative"
	StrategySimilar       Strategy = "similar"
	StrategyGenre         Strategy = "genre"
	StrategySocial        Strategy = "social"
	StrategyAuthor        Strategy = "author"
	StrategyTrending      Strategy = "trending"
	StrategyHybrid        Strategy = "hybrid"
)

var Strategies = []Strategy{
	StrategyCollaborative,
	StrategySimilar,
	StrategyGenre,
	StrategySocial,
	StrategyAuthor,
	StrategyTrending,
	StrategyHybrid,
}

func ParseStrategy(s string) (Strategy, error) {
	for _, st := range Strategies {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: unknown strategy %q", ErrInvalidInput, s)
}

// DefaultLimit is the limit adapters apply when the caller gives none.
func DefaultLimit(s Strategy) int {
	if s == StrategySimilar {
		return 5
	}
	return 10
}

// NeedsSubject reports whether the strategy is keyed on a user or book id.
func (s Strategy) NeedsSubject() bool {
	return s != StrategyTrending
}

type Recommender struct {
	Driver        driver.GraphDriver
	logger        zerolog.Logger
	candidatePool int
}

type Option func(*Recommender)

// WithCandidatePool sets how many candidates each hybrid branch may return
// before merging. Values <= 0 are ignored.
func WithCandidatePool(n int) Option {
	return func(r *Recommender) {
		if n > 0 {
			r.candidatePool = n
		}
	}
}

func NewRecommender(d driver.GraphDriver, logger zerolog.Logger, opts ...Option) *Recommender {
	r := &Recommender{
		Driver:        d,
		logger:        logger.With().Str("component", "recommend").Logger(),
		candidatePool: defaultCandidatePool,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Recommend dispatches to the named strategy. subjectID is the user id, the
// book id for StrategySimilar, and ignored for StrategyTrending.
func (r *Recommender) Recommend(ctx context.Context, s Strategy, subjectID string, limit int) ([]model.RecommendationResult, error) {
	switch s {
	case StrategyCollaborative:
		return r.ForUser(ctx, subjectID, limit)
	case StrategySimilar:
		return r.FromBook(ctx, subjectID, limit)
	case StrategyGenre:
		return r.ByPreferredGenres(ctx, subjectID, limit)
	case StrategySocial:
		return r.FromFollowing(ctx, subjectID, limit)
	case StrategyAuthor:
		return r.ByFavoriteAuthors(ctx, subjectID, limit)
	case StrategyTrending:
		return r.Trending(ctx, limit)
	case StrategyHybrid:
		return r.Hybrid(ctx, subjectID, limit)
	}
	return nil, fmt.Errorf("%w: unknown strategy %q", ErrInvalidInput, s)
}

type strategyFunc func(ctx context.Context) ([]model.RecommendationResult, error)

// observe validates input, runs fn and records metrics and a debug line.
// subjectID is checked only when the strategy needs one.
func (r *Recommender) observe(ctx context.Context, s Strategy, subjectID string, limit int, fn strategyFunc) ([]model.RecommendationResult, error) {
	if err := validate(s, subjectID, limit); err != nil {
		RequestsTotal.WithLabelValues(string(s), outcomeInvalid).Inc()
		return nil, err
	}

	start := time.Now()
	results, err := fn(ctx)
	elapsed := time.Since(start)
	RequestDuration.WithLabelValues(string(s)).Observe(elapsed.Seconds())

	if err != nil {
		outcome := outcomeError
		if errors.Is(err, driver.ErrUnavailable) {
			outcome = outcomeUnavailable
		}
		RequestsTotal.WithLabelValues(string(s), outcome).Inc()
		r.logger.Error().Err(err).
			Str("strategy", string(s)).
			Str("subject", subjectID).
			Msg("recommendation failed")
		return nil, fmt.Errorf("%s recommendations: %w", s, err)
	}

	RequestsTotal.WithLabelValues(string(s), outcomeOK).Inc()
	ResultsReturned.WithLabelValues(string(s)).Observe(float64(len(results)))
	r.logger.Debug().
		Str("strategy", string(s)).
		Str("subject", subjectID).
		Int("limit", limit).
		Int("returned", len(results)).
		Dur("elapsed", elapsed).
		Msg("recommendation complete")

	return results, nil
}

func validate(s Strategy, subjectID string, limit int) error {
	if s.NeedsSubject() && strings.TrimSpace(subjectID) == "" {
		return fmt.Errorf("%w: identifier is required", ErrInvalidInput)
	}
	if limit <= 0 {
		return fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidInput, limit)
	}
	return nil
}

// rankByScore orders by score descending and keeps at most limit results.
// The sort is stable, so equal scores keep the executor's row order.
func rankByScore(results []model.RecommendationResult, limit int) []model.RecommendationResult {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return truncate(results, limit)
}

func truncate[T any](items []T, limit int) []T {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}
