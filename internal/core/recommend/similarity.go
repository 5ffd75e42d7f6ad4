package recommend

import (
	"context"

	"github.com/agenthands/shelfgraph/internal/core/model"
	"github.com/agenthands/shelfgraph/internal/core/projection"
	"github.com/agenthands/shelfgraph/internal/driver"
)

// FromBook follows outgoing SIMILAR_TO edges from bookID, best edge score
// first. Only the outgoing direction is read; symmetry is not assumed.
func (r *Recommender) FromBook(ctx context.Context, bookID string, limit int) ([]model.RecommendationResult, error) {
	return r.observe(ctx, StrategySimilar, bookID, limit, func(ctx context.Context) ([]model.RecommendationResult, error) {
		return r.similar(ctx, bookID, limit)
	})
}

func (r *Recommender) similar(ctx context.Context, bookID string, limit int) ([]model.RecommendationResult, error) {
	res, err := r.Driver.ExecuteQuery(ctx, driver.SimilarBooksQuery, map[string]interface{}{
		"bookId": bookID,
		"limit":  limit,
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
		results = append(results, model.RecommendationResult{
			Book:   book,
			Score:  projection.RecordFloat(rec, "score"),
			Reason: "Similar to a book you viewed",
		})
	}
	return rankByScore(results, limit), nil
}
