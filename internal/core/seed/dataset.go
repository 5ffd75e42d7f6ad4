// Package seed loads a demo or fixture catalog into the graph.
//
// A dataset is a TOML document with one array of tables per node label and
// per relationship type. Every write is a constant UNWIND query from the
// driver package; values only ever travel as parameters.
package seed

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

var ErrInvalidDataset = errors.New("invalid seed dataset")

type AuthorRow struct {
	ID          string `toml:"id"`
	Name        string `toml:"name"`
	BirthYear   int    `toml:"birth_year"`
	Nationality string `toml:"nationality"`
}

type GenreRow struct {
	ID          string `toml:"id"`
	Name        string `toml:"name"`
	Description string `toml:"description"`
}

type BookRow struct {
	ID            string  `toml:"id"`
	Title         string  `toml:"title"`
	PublishedYear int     `toml:"published_year"`
	Pages         int     `toml:"pages"`
	ISBN          string  `toml:"isbn"`
	Rating        float64 `toml:"rating"`
	Description   string  `toml:"description"`
}

type UserRow struct {
	ID              string   `toml:"id"`
	Username        string   `toml:"username"`
	Email           string   `toml:"email"`
	CreatedAt       string   `toml:"created_at"`
	PreferredGenres []string `toml:"preferred_genres"`
}

type WroteRow struct {
	AuthorID string `toml:"author"`
	BookID   string `toml:"book"`
}

type BelongsToRow struct {
	BookID  string `toml:"book"`
	GenreID string `toml:"genre"`
}

type ReadRow struct {
	UserID   string `toml:"user"`
	BookID   string `toml:"book"`
	Rating   int    `toml:"rating"`
	ReadDate string `toml:"date"`
	Review   string `toml:"review"`
}

type WantsToReadRow struct {
	UserID    string `toml:"user"`
	BookID    string `toml:"book"`
	AddedDate string `toml:"date"`
}

type FollowsRow struct {
	FollowerID string `toml:"follower"`
	FollowedID string `toml:"followed"`
}

// SimilarRow is stored in both directions.
type SimilarRow struct {
	SourceID string  `toml:"source"`
	TargetID string  `toml:"target"`
	Score    float64 `toml:"score"`
}

type Dataset struct {
	Authors     []AuthorRow      `toml:"authors"`
	Genres      []GenreRow       `toml:"genres"`
	Books       []BookRow        `toml:"books"`
	Users       []UserRow        `toml:"users"`
	Wrote       []WroteRow       `toml:"wrote"`
	BelongsTo   []BelongsToRow   `toml:"belongs_to"`
	Reads       []ReadRow        `toml:"read"`
	WantsToRead []WantsToReadRow `toml:"wants_to_read"`
	Follows     []FollowsRow     `toml:"follows"`
	SimilarTo   []SimilarRow     `toml:"similar_to"`
}

func LoadFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file '%s': %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a dataset.
func Parse(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := toml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse seed TOML: %w", err)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// Validate checks ids are present and unique, relationships point at known
// nodes, ratings are 1..5 and dates parse as YYYY-MM-DD.
func (d *Dataset) Validate() error {
	authors, err := idSet("author", len(d.Authors), func(i int) string { return d.Authors[i].ID })
	if err != nil {
		return err
	}
	genres, err := idSet("genre", len(d.Genres), func(i int) string { return d.Genres[i].ID })
	if err != nil {
		return err
	}
	books, err := idSet("book", len(d.Books), func(i int) string { return d.Books[i].ID })
	if err != nil {
		return err
	}
	users, err := idSet("user", len(d.Users), func(i int) string { return d.Users[i].ID })
	if err != nil {
		return err
	}

	for _, b := range d.Books {
		if b.Rating < 0 || b.Rating > 5 {
			return invalid("book %s: rating %.1f outside 0..5", b.ID, b.Rating)
		}
	}
	for _, u := range d.Users {
		if err := checkDate("user "+u.ID, u.CreatedAt); err != nil {
			return err
		}
	}
	for _, w := range d.Wrote {
		if err := refs("wrote", authors, w.AuthorID, books, w.BookID); err != nil {
			return err
		}
	}
	for _, b := range d.BelongsTo {
		if err := refs("belongs_to", books, b.BookID, genres, b.GenreID); err != nil {
			return err
		}
	}
	for _, r := range d.Reads {
		if err := refs("read", users, r.UserID, books, r.BookID); err != nil {
			return err
		}
		if r.Rating < 1 || r.Rating > 5 {
			return invalid("read %s->%s: rating %d outside 1..5", r.UserID, r.BookID, r.Rating)
		}
		if err := checkDate("read "+r.UserID+"->"+r.BookID, r.ReadDate); err != nil {
			return err
		}
	}
	for _, w := range d.WantsToRead {
		if err := refs("wants_to_read", users, w.UserID, books, w.BookID); err != nil {
			return err
		}
		if err := checkDate("wants_to_read "+w.UserID+"->"+w.BookID, w.AddedDate); err != nil {
			return err
		}
	}
	for _, f := range d.Follows {
		if err := refs("follows", users, f.FollowerID, users, f.FollowedID); err != nil {
			return err
		}
		if f.FollowerID == f.FollowedID {
			return invalid("follows: user %s follows itself", f.FollowerID)
		}
	}
	for _, s := range d.SimilarTo {
		if err := refs("similar_to", books, s.SourceID, books, s.TargetID); err != nil {
			return err
		}
		if s.Score < 0 || s.Score > 1 {
			return invalid("similar_to %s->%s: score %.2f outside 0..1", s.SourceID, s.TargetID, s.Score)
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidDataset, fmt.Sprintf(format, args...))
}

func idSet(kind string, n int, id func(int) string) (map[string]struct{}, error) {
	set := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		v := id(i)
		if v == "" {
			return nil, invalid("%s #%d has no id", kind, i+1)
		}
		if _, dup := set[v]; dup {
			return nil, invalid("duplicate %s id %q", kind, v)
		}
		set[v] = struct{}{}
	}
	return set, nil
}

func refs(rel string, from map[string]struct{}, fromID string, to map[string]struct{}, toID string) error {
	if _, ok := from[fromID]; !ok {
		return invalid("%s: unknown source %q", rel, fromID)
	}
	if _, ok := to[toID]; !ok {
		return invalid("%s: unknown target %q", rel, toID)
	}
	return nil
}

// checkDate accepts an empty value; the loader then stores no date.
func checkDate(what, v string) error {
	if v == "" {
		return nil
	}
	if _, err := time.Parse(time.DateOnly, v); err != nil {
		return invalid("%s: bad date %q", what, v)
	}
	return nil
}
