//go:build integration

package integration

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/shelfgraph/internal/config"
	"github.com/agenthands/shelfgraph/internal/core/recommend"
	"github.com/agenthands/shelfgraph/internal/core/seed"
	"github.com/agenthands/shelfgraph/internal/driver"
)

const deleteFixtureQuery = `MATCH (n) WHERE n.id STARTS WITH $prefix DETACH DELETE n`

// fixture is a small graph whose ids share a random prefix, so tests can
// run against a database that already holds other data.
type fixture struct {
	prefix string
	rec    *recommend.Recommender
	driver driver.GraphDriver
}

func (f *fixture) id(s string) string { return f.prefix + s }

func setup(t *testing.T) *fixture {
	t.Helper()
	_ = godotenv.Load("../../.env")

	cfg := config.Default()
	cfg.ApplyEnv()
	if os.Getenv("NEO4J_URI") == "" {
		t.Skip("Skipping integration test: NEO4J_URI not set")
	}

	ctx := context.Background()
	logger := zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.InfoLevel)

	d, err := driver.NewNeo4jDriver(ctx, cfg.Neo4j, logger)
	require.NoError(t, err)

	f := &fixture{prefix: "it-" + uuid.NewString()[:8] + "-", driver: d}
	t.Cleanup(func() {
		_, _ = d.ExecuteQuery(context.Background(), deleteFixtureQuery, map[string]interface{}{"prefix": f.prefix})
		_ = d.Close(context.Background())
	})

	_, err = seed.NewLoader(d, logger).Load(ctx, f.dataset(), seed.Options{})
	require.NoError(t, err)

	f.rec = recommend.NewRecommender(d, logger)
	return f
}

// dataset builds the graph the tests assert against:
//
//	u1 read b1(5), wishlists b3, follows u3, prefers genres A and B
//	u2 read b1(4) b2(5) b3(5)          -> collaborative b2 for u1
//	u3 read b6(5)                      -> social b6 for u1
//	a1 wrote b1 and b5                 -> author b5 for u1
//	b4(4.5) b5(4.0) b1 b3 in genre A   -> genre b4 then b5 for u1
//	t1 read twice at 5, t2 three times at ~2.7
//	b1 SIMILAR_TO b2(0.9) b4(0.6)
//	u4 has no history and no preferences
func (f *fixture) dataset() *seed.Dataset {
	id := f.id
	book := func(key, title string, rating float64) seed.BookRow {
		return seed.BookRow{ID: id(key), Title: title, Rating: rating}
	}
	user := func(key string, genres ...string) seed.UserRow {
		return seed.UserRow{ID: id(key), Username: id(key), CreatedAt: "2024-01-15", PreferredGenres: genres}
	}
	read := func(u, b string, rating int) seed.ReadRow {
		return seed.ReadRow{UserID: id(u), BookID: id(b), Rating: rating, ReadDate: "2024-03-01"}
	}
	genreA, genreB := id("Fantasy"), id("Mystery")

	return &seed.Dataset{
		Authors: []seed.AuthorRow{{ID: id("a1"), Name: id("Author One")}},
		Genres:  []seed.GenreRow{{ID: id("gA"), Name: genreA}, {ID: id("gB"), Name: genreB}},
		Books: []seed.BookRow{
			book("b1", "First", 4.0),
			book("b2", "Second", 4.2),
			book("b3", "Third", 4.9),
			book("b4", "Fourth", 4.5),
			book("b5", "Fifth", 4.0),
			book("b6", "Sixth", 3.8),
			book("t1", "Loved", 4.8),
			book("t2", "Crowded", 3.0),
		},
		Users: []seed.UserRow{
			user("u1", genreA, genreB),
			user("u2"), user("u3"), user("u4"),
			user("u5"), user("u6"), user("u7"), user("u8"), user("u9"),
		},
		Wrote: []seed.WroteRow{
			{AuthorID: id("a1"), BookID: id("b1")},
			{AuthorID: id("a1"), BookID: id("b5")},
		},
		BelongsTo: []seed.BelongsToRow{
			{BookID: id("b1"), GenreID: id("gA")},
			{BookID: id("b3"), GenreID: id("gA")},
			{BookID: id("b4"), GenreID: id("gA")},
			{BookID: id("b5"), GenreID: id("gA")},
		},
		Reads: []seed.ReadRow{
			read("u1", "b1", 5),
			read("u2", "b1", 4), read("u2", "b2", 5), read("u2", "b3", 5),
			read("u3", "b6", 5),
			read("u5", "t1", 5), read("u6", "t1", 5),
			read("u7", "t2", 3), read("u8", "t2", 3), read("u9", "t2", 2),
		},
		WantsToRead: []seed.WantsToReadRow{{UserID: id("u1"), BookID: id("b3")}},
		Follows:     []seed.FollowsRow{{FollowerID: id("u1"), FollowedID: id("u3")}},
		SimilarTo: []seed.SimilarRow{
			{SourceID: id("b1"), TargetID: id("b2"), Score: 0.9},
			{SourceID: id("b1"), TargetID: id("b4"), Score: 0.6},
		},
	}
}
