package seed

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/agenthands/shelfgraph/internal/driver"
)

type Options struct {
	// Reset deletes every node before loading.
	Reset bool
	// SkipIndices leaves constraints and indexes untouched.
	SkipIndices bool
}

// Stats counts rows sent per step, keyed by step name.
type Stats map[string]int

type Loader struct {
	Driver driver.GraphDriver
	logger zerolog.Logger
}

func NewLoader(d driver.GraphDriver, logger zerolog.Logger) *Loader {
	return &Loader{
		Driver: d,
		logger: logger.With().Str("component", "seed").Logger(),
	}
}

type step struct {
	name  string
	query string
	rows  []any
}

// Load writes ds into the graph. Nodes are merged before relationships so
// every MATCH in a relationship step finds its endpoints. Loading the same
// dataset twice leaves the graph unchanged.
func (l *Loader) Load(ctx context.Context, ds *Dataset, opts Options) (Stats, error) {
	if err := ds.Validate(); err != nil {
		return nil, err
	}

	if opts.Reset {
		if _, err := l.Driver.ExecuteQuery(ctx, driver.ClearGraphQuery, nil); err != nil {
			return nil, fmt.Errorf("failed to clear graph: %w", err)
		}
		l.logger.Info().Msg("cleared existing data")
	}

	if !opts.SkipIndices {
		if err := l.Driver.BuildIndices(ctx); err != nil {
			return nil, fmt.Errorf("failed to build indices: %w", err)
		}
	}

	stats := make(Stats)
	for _, s := range ds.steps() {
		if len(s.rows) == 0 {
			continue
		}
		if _, err := l.Driver.ExecuteQuery(ctx, s.query, map[string]interface{}{"rows": s.rows}); err != nil {
			return stats, fmt.Errorf("failed to seed %s: %w", s.name, err)
		}
		stats[s.name] = len(s.rows)
		l.logger.Info().Str("step", s.name).Int("rows", len(s.rows)).Msg("seeded")
	}
	return stats, nil
}

func (d *Dataset) steps() []step {
	return []step{
		{"authors", driver.SaveAuthorsQuery, mapRows(d.Authors, func(a AuthorRow) map[string]any {
			return map[string]any{"id": a.ID, "name": a.Name, "birthYear": a.BirthYear, "nationality": a.Nationality}
		})},
		{"genres", driver.SaveGenresQuery, mapRows(d.Genres, func(g GenreRow) map[string]any {
			return map[string]any{"id": g.ID, "name": g.Name, "description": g.Description}
		})},
		{"books", driver.SaveBooksQuery, mapRows(d.Books, func(b BookRow) map[string]any {
			return map[string]any{
				"id":            b.ID,
				"title":         b.Title,
				"publishedYear": b.PublishedYear,
				"pages":         b.Pages,
				"isbn":          b.ISBN,
				"rating":        b.Rating,
				"description":   b.Description,
			}
		})},
		{"users", driver.SaveUsersQuery, mapRows(d.Users, func(u UserRow) map[string]any {
			genres := u.PreferredGenres
			if genres == nil {
				genres = []string{}
			}
			return map[string]any{
				"id":              u.ID,
				"username":        u.Username,
				"email":           u.Email,
				"createdAt":       optional(u.CreatedAt),
				"preferredGenres": genres,
			}
		})},
		{"wrote", driver.SaveWroteEdgesQuery, mapRows(d.Wrote, func(w WroteRow) map[string]any {
			return map[string]any{"authorId": w.AuthorID, "bookId": w.BookID}
		})},
		{"belongs_to", driver.SaveBelongsToEdgesQuery, mapRows(d.BelongsTo, func(b BelongsToRow) map[string]any {
			return map[string]any{"bookId": b.BookID, "genreId": b.GenreID}
		})},
		{"read", driver.SaveReadEdgesQuery, mapRows(d.Reads, func(r ReadRow) map[string]any {
			return map[string]any{
				"userId":   r.UserID,
				"bookId":   r.BookID,
				"rating":   r.Rating,
				"readDate": optional(r.ReadDate),
				"review":   r.Review,
			}
		})},
		{"wants_to_read", driver.SaveWantsToReadEdgesQuery, mapRows(d.WantsToRead, func(w WantsToReadRow) map[string]any {
			return map[string]any{"userId": w.UserID, "bookId": w.BookID, "addedDate": optional(w.AddedDate)}
		})},
		{"follows", driver.SaveFollowsEdgesQuery, mapRows(d.Follows, func(f FollowsRow) map[string]any {
			return map[string]any{"followerId": f.FollowerID, "followedId": f.FollowedID}
		})},
		{"similar_to", driver.SaveSimilarToEdgesQuery, mapRows(d.SimilarTo, func(s SimilarRow) map[string]any {
			return map[string]any{"sourceId": s.SourceID, "targetId": s.TargetID, "score": s.Score}
		})},
	}
}

func mapRows[T any](items []T, fn func(T) map[string]any) []any {
	rows := make([]any, len(items))
	for i, item := range items {
		rows[i] = fn(item)
	}
	return rows
}

// optional turns an empty string into a Cypher null.
func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}
