package recommend

import (
	"context"
	"fmt"

	"github.com/agenthands/shelfgraph/internal/core/model"
	"github.com/agenthands/shelfgraph/internal/core/projection"
	"github.com/agenthands/shelfgraph/internal/driver"
)

const (
	trendingMinReaders   = 2
	trendingReaderWeight = 0.3
	trendingRatingWeight = 0.7
)

func trendingScore(readers int, avgRating float64) float64 {
	return float64(readers)*trendingReaderWeight + avgRating*trendingRatingWeight
}

// Trending ranks books read at least twice across all users. It is not
// personalised and is never used as an implicit fallback by Hybrid.
func (r *Recommender) Trending(ctx context.Context, limit int) ([]model.RecommendationResult, error) {
	return r.observe(ctx, StrategyTrending, "", limit, func(ctx context.Context) ([]model.RecommendationResult, error) {
		return r.trending(ctx, limit)
	})
}

func (r *Recommender) trending(ctx context.Context, limit int) ([]model.RecommendationResult, error) {
	res, err := r.Driver.ExecuteQuery(ctx, driver.TrendingQuery, map[string]interface{}{
		"minReaders":   trendingMinReaders,
		"readerWeight": trendingReaderWeight,
		"ratingWeight": trendingRatingWeight,
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
		readers := projection.RecordInt(rec, "readers")
		avg := projection.RecordFloat(rec, "avgRating")
		results = append(results, model.RecommendationResult{
			Book:   book,
			Score:  trendingScore(readers, avg),
			Reason: fmt.Sprintf("Popular: %d readers, %.1f avg rating", readers, avg),
		})
	}
	return rankByScore(results, limit), nil
}
