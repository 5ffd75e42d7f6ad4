package recommend

import (
	"context"
	"fmt"

	"github.com/agenthands/shelfgraph/internal/core/model"
	"github.com/agenthands/shelfgraph/internal/core/projection"
	"github.com/agenthands/shelfgraph/internal/driver"
)

// ByFavoriteAuthors recommends unread books by authors of books the user
// rated highly, scored by the best rating the user gave that author.
//
// A co-authored book is returned once per matching author. Callers that need
// one row per book must dedupe; Hybrid does.
func (r *Recommender) ByFavoriteAuthors(ctx context.Context, userID string, limit int) ([]model.RecommendationResult, error) {
	return r.observe(ctx, StrategyAuthor, userID, limit, func(ctx context.Context) ([]model.RecommendationResult, error) {
		return r.favoriteAuthors(ctx, userID, limit)
	})
}

func (r *Recommender) favoriteAuthors(ctx context.Context, userID string, limit int) ([]model.RecommendationResult, error) {
	res, err := r.Driver.ExecuteQuery(ctx, driver.FavoriteAuthorsQuery, map[string]interface{}{
		"userId":    userID,
		"minRating": minLikedRating,
		"limit":     limit,
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
			Score:  projection.RecordFloat(rec, "userRating"),
			Reason: fmt.Sprintf("More from %s, an author you enjoyed", projection.RecordString(rec, "authorName")),
		})
	}
	return rankByScore(results, limit), nil
}
