package recommend

import (
	"context"
	"sort"
	"strings"

	"github.com/agenthands/shelfgraph/internal/core/model"
	"github.com/agenthands/shelfgraph/internal/core/projection"
	"github.com/agenthands/shelfgraph/internal/driver"
)

// FromFollowing recommends books rated highly by users that userID follows
// directly. Score is the average rating across those users; ties go to the
// book endorsed by more distinct followed readers.
func (r *Recommender) FromFollowing(ctx context.Context, userID string, limit int) ([]model.RecommendationResult, error) {
	return r.observe(ctx, StrategySocial, userID, limit, func(ctx context.Context) ([]model.RecommendationResult, error) {
		return r.following(ctx, userID, limit)
	})
}

type endorsed struct {
	result    model.RecommendationResult
	endorsers int
}

func (r *Recommender) following(ctx context.Context, userID string, limit int) ([]model.RecommendationResult, error) {
	res, err := r.Driver.ExecuteQuery(ctx, driver.FollowingQuery, map[string]interface{}{
		"userId":    userID,
		"minRating": minLikedRating,
		"limit":     limit,
	})
	if err != nil {
		return nil, err
	}

	candidates := make([]endorsed, 0, len(res.Records))
	for _, rec := range res.Records {
		book, ok := projection.RecordBook(rec, "book")
		if !ok {
			continue
		}
		names := projection.RecordStrings(rec, "recommenders")
		sort.Strings(names)
		candidates = append(candidates, endorsed{
			result: model.RecommendationResult{
				Book:   book,
				Score:  projection.RecordFloat(rec, "avgRating"),
				Reason: "Liked by " + strings.Join(names, ", "),
			},
			endorsers: projection.RecordInt(rec, "endorsers"),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].result.Score != candidates[j].result.Score {
			return candidates[i].result.Score > candidates[j].result.Score
		}
		return candidates[i].endorsers > candidates[j].endorsers
	})

	candidates = truncate(candidates, limit)
	results := make([]model.RecommendationResult, len(candidates))
	for i, c := range candidates {
		results[i] = c.result
	}
	return results, nil
}
