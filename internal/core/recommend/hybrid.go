package recommend

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/agenthands/shelfgraph/internal/core/model"
)

const hybridReason = "Personalized recommendation based on your reading history"

// Hybrid merges the collaborative, genre and author candidates for userID.
// Each branch is fetched with the candidate pool limit, the union is deduped
// by book id and re-ranked by the book's own rating, ties by id.
//
// A user with neither history nor preferences gets an empty result; Trending
// is never used as a fallback. Any branch error fails the whole call.
func (r *Recommender) Hybrid(ctx context.Context, userID string, limit int) ([]model.RecommendationResult, error) {
	return r.observe(ctx, StrategyHybrid, userID, limit, func(ctx context.Context) ([]model.RecommendationResult, error) {
		return r.hybrid(ctx, userID, limit)
	})
}

func (r *Recommender) hybrid(ctx context.Context, userID string, limit int) ([]model.RecommendationResult, error) {
	branches := []func(context.Context, string, int) ([]model.RecommendationResult, error){
		r.collaborative,
		r.preferredGenres,
		r.favoriteAuthors,
	}
	candidates := make([][]model.RecommendationResult, len(branches))

	g, gctx := errgroup.WithContext(ctx)
	for i, branch := range branches {
		i, branch := i, branch
		g.Go(func() error {
			res, err := branch(gctx, userID, r.candidatePool)
			if err != nil {
				return err
			}
			candidates[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return mergeCandidates(candidates, limit), nil
}

// mergeCandidates unions the branch results in order, keeping the first
// occurrence of each book, and ranks by book rating desc then id asc.
func mergeCandidates(branches [][]model.RecommendationResult, limit int) []model.RecommendationResult {
	seen := make(map[string]struct{})
	var merged []model.RecommendationResult
	for _, results := range branches {
		for _, res := range results {
			if _, ok := seen[res.Book.ID]; ok {
				continue
			}
			seen[res.Book.ID] = struct{}{}
			merged = append(merged, model.RecommendationResult{
				Book:   res.Book,
				Score:  res.Book.Rating,
				Reason: hybridReason,
			})
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Score != merged[j].Score {
			return merged[i].Score > merged[j].Score
		}
		return merged[i].Book.ID < merged[j].Book.ID
	})

	if merged == nil {
		return []model.RecommendationResult{}
	}
	return truncate(merged, limit)
}
