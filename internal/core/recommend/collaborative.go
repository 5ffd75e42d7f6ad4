package recommend

import (
	"context"
	"fmt"

	"github.com/agenthands/shelfgraph/internal/core/model"
	"github.com/agenthands/shelfgraph/internal/core/projection"
	"github.com/agenthands/shelfgraph/internal/driver"
)

// minLikedRating is the lowest READ rating that counts as an endorsement.
const minLikedRating = 4

const (
	collabReaderWeight = 0.4
	collabRatingWeight = 0.6
)

func collaborativeScore(commonReaders int, avgRating float64) float64 {
	return float64(commonReaders)*collabReaderWeight + avgRating*collabRatingWeight
}

// ForUser recommends books that peer readers, users sharing at least one read
// book with userID, rated highly. Books the user has read or wishlisted are
// excluded. A user with no reading history gets an empty result.
func (r *Recommender) ForUser(ctx context.Context, userID string, limit int) ([]model.RecommendationResult, error) {
	return r.observe(ctx, StrategyCollaborative, userID, limit, func(ctx context.Context) ([]model.RecommendationResult, error) {
		return r.collaborative(ctx, userID, limit)
	})
}

func (r *Recommender) collaborative(ctx context.Context, userID string, limit int) ([]model.RecommendationResult, error) {
	res, err := r.Driver.ExecuteQuery(ctx, driver.CollaborativeQuery, map[string]interface{}{
		"userId":       userID,
		"minRating":    minLikedRating,
		"readerWeight": collabReaderWeight,
		"ratingWeight": collabRatingWeight,
		"limit":        limit,
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
		commonReaders := projection.RecordInt(rec, "commonReaders")
		results = append(results, model.RecommendationResult{
			Book:   book,
			Score:  collaborativeScore(commonReaders, projection.RecordFloat(rec, "avgRating")),
			Reason: fmt.Sprintf("Recommended by %d users with similar taste", commonReaders),
		})
	}
	return rankByScore(results, limit), nil
}
