package recommend

import (
	"context"
	"fmt"

	"github.com/agenthands/shelfgraph/internal/core/model"
	"github.com/agenthands/shelfgraph/internal/core/projection"
	"github.com/agenthands/shelfgraph/internal/driver"
)

// genreMatchWeight makes overlap with several preferred genres outweigh
// the book's own rating.
const genreMatchWeight = 2

func genreScore(genreMatches int, rating float64) float64 {
	return float64(genreMatches)*genreMatchWeight + rating
}

// ByPreferredGenres recommends unread, unwishlisted books in the genres named
// by the user's preferredGenres. Matching is by genre name.
func (r *Recommender) ByPreferredGenres(ctx context.Context, userID string, limit int) ([]model.RecommendationResult, error) {
	return r.observe(ctx, StrategyGenre, userID, limit, func(ctx context.Context) ([]model.RecommendationResult, error) {
		return r.preferredGenres(ctx, userID, limit)
	})
}

func (r *Recommender) preferredGenres(ctx context.Context, userID string, limit int) ([]model.RecommendationResult, error) {
	res, err := r.Driver.ExecuteQuery(ctx, driver.PreferredGenresQuery, map[string]interface{}{
		"userId":      userID,
		"matchWeight": genreMatchWeight,
		"limit":       limit,
	})
	if err != nil {
		return nil, err
	}

	results := make([]model.RecommendationResult, 0, len(res.Records))
	for _, rec := range res.Records {
		book, ok := projection.RecordBook(rec, "book")
		if !ok {
			continue
		}
		matches := projection.RecordInt(rec, "genreMatches")
		results = append(results, model.RecommendationResult{
			Book:   book,
			Score:  genreScore(matches, book.Rating),
			Reason: fmt.Sprintf("Matches %d of your preferred genres", matches),
		})
	}
	return rankByScore(results, limit), nil
}
