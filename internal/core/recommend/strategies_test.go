package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/shelfgraph/internal/core/model"
	"github.com/agenthands/shelfgraph/internal/driver"
)

var (
	collabKeys   = []string{"book", "commonReaders", "avgRating"}
	genreKeys    = []string{"book", "genreMatches"}
	socialKeys   = []string{"book", "recommenders", "endorsers", "avgRating"}
	authorKeys   = []string{"book", "authorName", "userRating"}
	trendingKeys = []string{"book", "readers", "avgRating"}
	similarKeys  = []string{"book", "score"}
)

func TestForUser_SinglePeer(t *testing.T) {
	d := &MockDriver{Results: map[string]neo4j.EagerResult{
		driver.CollaborativeQuery: rows(collabKeys,
			[]any{bookNode("b2", "Dune Messiah", 4.1), int64(1), int64(5)},
		),
	}}
	r := newTestRecommender(d)

	res, err := r.ForUser(context.Background(), "u1", 10)
	require.NoError(t, err)
	require.Len(t, res, 1)

	assert.Equal(t, "b2", res[0].Book.ID)
	assert.Equal(t, "Dune Messiah", res[0].Book.Title)
	assert.InDelta(t, 1*0.4+5*0.6, res[0].Score, 1e-9)
	assert.Equal(t, "Recommended by 1 users with similar taste", res[0].Reason)

	calls := d.callsFor(driver.CollaborativeQuery)
	require.Len(t, calls, 1)
	assert.Equal(t, "u1", calls[0].Params["userId"])
	assert.Equal(t, 10, calls[0].Params["limit"])
	assert.Equal(t, minLikedRating, calls[0].Params["minRating"])
}

func TestForUser_OrdersByScoreAndDropsNullRows(t *testing.T) {
	d := &MockDriver{Results: map[string]neo4j.EagerResult{
		driver.CollaborativeQuery: rows(collabKeys,
			[]any{bookNode("low", "Low", 3.0), int64(1), 4.0},
			[]any{nil, int64(9), 5.0},
			[]any{bookNode("high", "High", 3.0), int64(3), 4.5},
		),
	}}
	r := newTestRecommender(d)

	res, err := r.ForUser(context.Background(), "u1", 10)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "high", res[0].Book.ID)
	assert.Equal(t, "low", res[1].Book.ID)
	assert.GreaterOrEqual(t, res[0].Score, res[1].Score)
}

func TestByPreferredGenres_RatingBreaksEqualMatches(t *testing.T) {
	d := &MockDriver{Results: map[string]neo4j.EagerResult{
		driver.PreferredGenresQuery: rows(genreKeys,
			[]any{bookNode("b40", "Four", 4.0), int64(1)},
			[]any{bookNode("b45", "Four Five", 4.5), int64(1)},
		),
	}}
	r := newTestRecommender(d)

	res, err := r.ByPreferredGenres(context.Background(), "u1", 10)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "b45", res[0].Book.ID)
	assert.InDelta(t, 6.5, res[0].Score, 1e-9)
	assert.Equal(t, "b40", res[1].Book.ID)
	assert.InDelta(t, 6.0, res[1].Score, 1e-9)
	assert.Equal(t, "Matches 1 of your preferred genres", res[0].Reason)
}

func TestByPreferredGenres_MoreMatchesWin(t *testing.T) {
	d := &MockDriver{Results: map[string]neo4j.EagerResult{
		driver.PreferredGenresQuery: rows(genreKeys,
			[]any{bookNode("great", "Great", 5.0), int64(1)},
			[]any{bookNode("fit", "Fit", 3.5), int64(2)},
		),
	}}
	r := newTestRecommender(d)

	res, err := r.ByPreferredGenres(context.Background(), "u1", 10)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "fit", res[0].Book.ID)
	assert.Equal(t, "Matches 2 of your preferred genres", res[0].Reason)
}

func TestFromFollowing_ReasonAndTies(t *testing.T) {
	d := &MockDriver{Results: map[string]neo4j.EagerResult{
		driver.FollowingQuery: rows(socialKeys,
			[]any{bookNode("solo", "Solo", 4.0), []any{"zoe"}, int64(1), 5.0},
			[]any{bookNode("pair", "Pair", 4.0), []any{"mia", "ben"}, int64(2), 5.0},
			[]any{bookNode("meh", "Meh", 4.0), []any{"ann"}, int64(1), 4.0},
		),
	}}
	r := newTestRecommender(d)

	res, err := r.FromFollowing(context.Background(), "u1", 10)
	require.NoError(t, err)
	require.Len(t, res, 3)

	assert.Equal(t, "pair", res[0].Book.ID)
	assert.Equal(t, "Liked by ben, mia", res[0].Reason)
	assert.InDelta(t, 5.0, res[0].Score, 1e-9)
	assert.Equal(t, "solo", res[1].Book.ID)
	assert.Equal(t, "Liked by zoe", res[1].Reason)
	assert.Equal(t, "meh", res[2].Book.ID)
}

func TestFromFollowing_TiesCountDistinctReaders(t *testing.T) {
	// Two followed readers share a username, so only one name is collected.
	d := &MockDriver{Results: map[string]neo4j.EagerResult{
		driver.FollowingQuery: rows(socialKeys,
			[]any{bookNode("a", "A", 4.0), []any{"ann", "bo"}, int64(2), 4.5},
			[]any{bookNode("b", "B", 4.0), []any{"sam"}, int64(3), 4.5},
		),
	}}
	r := newTestRecommender(d)

	res, err := r.FromFollowing(context.Background(), "u1", 10)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "b", res[0].Book.ID)
	assert.Equal(t, "Liked by sam", res[0].Reason)
	assert.Equal(t, "a", res[1].Book.ID)
}

func TestByFavoriteAuthors(t *testing.T) {
	d := &MockDriver{Results: map[string]neo4j.EagerResult{
		driver.FavoriteAuthorsQuery: rows(authorKeys,
			[]any{bookNode("b7", "Children of Time", 4.3), "Adrian Tchaikovsky", int64(4)},
			[]any{bookNode("b8", "The Left Hand of Darkness", 4.1), "Ursula K. Le Guin", int64(5)},
		),
	}}
	r := newTestRecommender(d)

	res, err := r.ByFavoriteAuthors(context.Background(), "u1", 10)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "b8", res[0].Book.ID)
	assert.InDelta(t, 5.0, res[0].Score, 1e-9)
	assert.Equal(t, "More from Ursula K. Le Guin, an author you enjoyed", res[0].Reason)
	assert.Equal(t, "b7", res[1].Book.ID)
}

func TestByFavoriteAuthors_CoAuthoredBook(t *testing.T) {
	d := &MockDriver{Results: map[string]neo4j.EagerResult{
		driver.FavoriteAuthorsQuery: rows(authorKeys,
			[]any{bookNode("b9", "Good Omens", 4.2), "Neil Gaiman", int64(5)},
			[]any{bookNode("b9", "Good Omens", 4.2), "Terry Pratchett", int64(4)},
		),
	}}
	r := newTestRecommender(d)

	res, err := r.ByFavoriteAuthors(context.Background(), "u1", 10)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "b9", res[0].Book.ID)
	assert.Equal(t, "More from Neil Gaiman, an author you enjoyed", res[0].Reason)
	assert.Equal(t, "b9", res[1].Book.ID)
	assert.Equal(t, "More from Terry Pratchett, an author you enjoyed", res[1].Reason)

	merged, err := r.Hybrid(context.Background(), "u1", 10)
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, "b9", merged[0].Book.ID)
	assert.InDelta(t, 4.2, merged[0].Score, 1e-9)
}

func TestTrending_RatingOutweighsReaders(t *testing.T) {
	d := &MockDriver{Results: map[string]neo4j.EagerResult{
		driver.TrendingQuery: rows(trendingKeys,
			[]any{bookNode("crowd", "Crowd", 3.0), int64(3), 2.7},
			[]any{bookNode("loved", "Loved", 4.8), int64(2), 5.0},
		),
	}}
	r := newTestRecommender(d)

	res, err := r.Trending(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, res, 2)

	assert.Equal(t, "loved", res[0].Book.ID)
	assert.InDelta(t, 2*0.3+5.0*0.7, res[0].Score, 1e-9)
	assert.Equal(t, "Popular: 2 readers, 5.0 avg rating", res[0].Reason)
	assert.Equal(t, "crowd", res[1].Book.ID)
	assert.Equal(t, "Popular: 3 readers, 2.7 avg rating", res[1].Reason)

	calls := d.callsFor(driver.TrendingQuery)
	require.Len(t, calls, 1)
	assert.Equal(t, trendingMinReaders, calls[0].Params["minReaders"])
}

func TestFromBook(t *testing.T) {
	d := &MockDriver{Results: map[string]neo4j.EagerResult{
		driver.SimilarBooksQuery: rows(similarKeys,
			[]any{bookNode("b3", "Three", 4.0), 0.75},
			[]any{bookNode("b2", "Two", 4.0), 0.92},
		),
	}}
	r := newTestRecommender(d)

	res, err := r.FromBook(context.Background(), "b1", 5)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "b2", res[0].Book.ID)
	assert.InDelta(t, 0.92, res[0].Score, 1e-9)
	assert.Equal(t, "Similar to a book you viewed", res[0].Reason)

	calls := d.callsFor(driver.SimilarBooksQuery)
	require.Len(t, calls, 1)
	assert.Equal(t, "b1", calls[0].Params["bookId"])
}

func hybridDriver() *MockDriver {
	return &MockDriver{Results: map[string]neo4j.EagerResult{
		driver.CollaborativeQuery: rows(collabKeys,
			[]any{bookNode("b1", "One", 4.2), int64(2), 4.5},
			[]any{bookNode("b2", "Two", 3.9), int64(1), 5.0},
		),
		driver.PreferredGenresQuery: rows(genreKeys,
			[]any{bookNode("b2", "Two", 3.9), int64(2)},
			[]any{bookNode("b4", "Four", 4.2), int64(1)},
		),
		driver.FavoriteAuthorsQuery: rows(authorKeys,
			[]any{bookNode("b3", "Three", 4.8), "A. Writer", int64(5)},
			[]any{bookNode("b3", "Three", 4.8), "B. Writer", int64(4)},
			[]any{bookNode("b1", "One", 4.2), "A. Writer", int64(5)},
		),
	}}
}

func TestHybrid_MergesDedupesAndRanksByRating(t *testing.T) {
	d := hybridDriver()
	r := newTestRecommender(d, WithCandidatePool(50))

	res, err := r.Hybrid(context.Background(), "u1", 10)
	require.NoError(t, err)
	require.Len(t, res, 4)

	ids := make([]string, len(res))
	for i, rec := range res {
		ids[i] = rec.Book.ID
		assert.Equal(t, hybridReason, rec.Reason)
		assert.InDelta(t, rec.Book.Rating, rec.Score, 1e-9)
	}
	// b1 and b4 tie on 4.2 and are ordered by id.
	assert.Equal(t, []string{"b3", "b1", "b4", "b2"}, ids)

	for _, q := range []string{driver.CollaborativeQuery, driver.PreferredGenresQuery, driver.FavoriteAuthorsQuery} {
		calls := d.callsFor(q)
		require.Len(t, calls, 1)
		assert.Equal(t, 50, calls[0].Params["limit"])
	}
	assert.Empty(t, d.callsFor(driver.TrendingQuery))
}

func TestHybrid_TruncatesAndIsIdempotent(t *testing.T) {
	r := newTestRecommender(hybridDriver())

	first, err := r.Hybrid(context.Background(), "u1", 2)
	require.NoError(t, err)
	second, err := r.Hybrid(context.Background(), "u1", 2)
	require.NoError(t, err)

	require.Len(t, first, 2)
	assert.Equal(t, first, second)
	assert.Equal(t, "b3", first[0].Book.ID)
	assert.Equal(t, "b1", first[1].Book.ID)
}

func TestHybrid_NoHistoryNoFallback(t *testing.T) {
	d := &MockDriver{}
	r := newTestRecommender(d)

	res, err := r.Hybrid(context.Background(), "newbie", 10)
	require.NoError(t, err)
	assert.Empty(t, res)
	assert.Len(t, d.Calls, 3)
	assert.Empty(t, d.callsFor(driver.TrendingQuery))
}

func TestHybrid_BranchFailureFailsCall(t *testing.T) {
	boom := errors.New("syntax error")
	d := hybridDriver()
	d.Errs = map[string]error{driver.PreferredGenresQuery: boom}
	r := newTestRecommender(d)

	res, err := r.Hybrid(context.Background(), "u1", 10)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, res)
}

func TestMergeCandidates_KeepsFirstOccurrence(t *testing.T) {
	first := model.RecommendationResult{Book: model.Book{ID: "b1", Rating: 4.0}, Score: 9, Reason: "first"}
	dup := model.RecommendationResult{Book: model.Book{ID: "b1", Title: "later copy", Rating: 4.0}, Score: 1, Reason: "dup"}

	merged := mergeCandidates([][]model.RecommendationResult{{first}, nil, {dup}}, 10)
	require.Len(t, merged, 1)
	assert.Empty(t, merged[0].Book.Title)
	assert.Equal(t, hybridReason, merged[0].Reason)
	assert.InDelta(t, 4.0, merged[0].Score, 1e-9)

	assert.NotNil(t, mergeCandidates(nil, 10))
}
