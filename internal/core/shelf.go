// Package core wires the recommendation engine, the graph executor and the
// optional LLM explainer behind one entry point used by the HTTP server and
// the CLI.
package core

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/agenthands/shelfgraph/internal/core/explain"
	"github.com/agenthands/shelfgraph/internal/core/model"
	"github.com/agenthands/shelfgraph/internal/core/projection"
	"github.com/agenthands/shelfgraph/internal/core/recommend"
	"github.com/agenthands/shelfgraph/internal/driver"
)

type Shelf struct {
	Driver      driver.GraphDriver
	Recommender *recommend.Recommender
	Explainer   *explain.Explainer
	logger      zerolog.Logger
}

// ExplainedRecommendations is a hybrid result list with a prose summary.
type ExplainedRecommendations struct {
	Results []model.RecommendationResult `json:"results"`
	Summary string                       `json:"summary"`
}

func NewShelf(d driver.GraphDriver, rec *recommend.Recommender, exp *explain.Explainer, logger zerolog.Logger) *Shelf {
	return &Shelf{
		Driver:      d,
		Recommender: rec,
		Explainer:   exp,
		logger:      logger.With().Str("component", "shelf").Logger(),
	}
}

func (s *Shelf) BuildIndices(ctx context.Context) error {
	return s.Driver.BuildIndices(ctx)
}

// UserActivity loads a user with read and follow counts. found is false for
// an unknown id.
func (s *Shelf) UserActivity(ctx context.Context, userID string) (model.UserWithActivity, bool, error) {
	res, err := s.Driver.ExecuteQuery(ctx, driver.UserActivityQuery, map[string]interface{}{
		"userId": userID,
	})
	if err != nil {
		return model.UserWithActivity{}, false, fmt.Errorf("user activity: %w", err)
	}
	for _, rec := range res.Records {
		if u, ok := projection.UserWithActivity(rec); ok {
			return u, true, nil
		}
	}
	return model.UserWithActivity{}, false, nil
}

// BookDetails loads books with their authors and genres, in the order of ids.
// Unknown ids are skipped.
func (s *Shelf) BookDetails(ctx context.Context, ids []string) ([]model.BookWithDetails, error) {
	if len(ids) == 0 {
		return []model.BookWithDetails{}, nil
	}
	res, err := s.Driver.ExecuteQuery(ctx, driver.BookDetailsQuery, map[string]interface{}{
		"bookIds": ids,
	})
	if err != nil {
		return nil, fmt.Errorf("book details: %w", err)
	}

	byID := make(map[string]model.BookWithDetails, len(res.Records))
	for _, rec := range res.Records {
		if b, ok := projection.BookWithDetails(rec); ok {
			byID[b.ID] = b
		}
	}

	books := make([]model.BookWithDetails, 0, len(ids))
	for _, id := range ids {
		if b, ok := byID[id]; ok {
			books = append(books, b)
		}
	}
	return books, nil
}

// ExplainHybrid runs the hybrid strategy and asks the LLM to describe the
// result for the reader. An empty result list gets an empty summary.
func (s *Shelf) ExplainHybrid(ctx context.Context, userID string, limit int) (ExplainedRecommendations, error) {
	if !s.Explainer.Enabled() {
		return ExplainedRecommendations{}, explain.ErrDisabled
	}

	results, err := s.Recommender.Hybrid(ctx, userID, limit)
	if err != nil {
		return ExplainedRecommendations{}, err
	}
	out := ExplainedRecommendations{Results: results}
	if len(results) == 0 {
		return out, nil
	}

	reader, _, err := s.UserActivity(ctx, userID)
	if err != nil {
		return ExplainedRecommendations{}, err
	}

	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.Book.ID
	}
	books, err := s.BookDetails(ctx, ids)
	if err != nil {
		return ExplainedRecommendations{}, err
	}

	out.Summary, err = s.Explainer.Explain(ctx, reader, books)
	if err != nil {
		s.logger.Warn().Err(err).Str("user", userID).Msg("explanation failed")
		return ExplainedRecommendations{}, err
	}
	return out, nil
}

// Close releases the graph executor and, when it holds a connection, the LLM
// client.
func (s *Shelf) Close(ctx context.Context) error {
	err := s.Driver.Close(ctx)
	if s.Explainer != nil {
		if c, ok := s.Explainer.LLM.(io.Closer); ok {
			err = errors.Join(err, c.Close())
		}
	}
	return err
}
