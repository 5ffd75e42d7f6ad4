// Package projection maps raw graph rows into model types.
//
// The driver hands back int64 for integers and float64 for floats, and
// aggregate columns switch between the two depending on the data (avg of
// integer ratings is a float, max of them is an int). Everything is
// normalised here: counts become int and scores become float64, so the
// recommendation code never sees a driver type. Missing or mistyped values
// degrade to zero values rather than failing the row.
package projection

import (
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/shelfgraph/internal/core/model"
)

// Props returns the property bag of a node or map value. ok is false for nil
// and for anything that is not an entity, which is how null columns from
// OPTIONAL MATCH or collect() placeholders are detected.
func Props(v any) (map[string]any, bool) {
	switch n := v.(type) {
	case neo4j.Node:
		return n.Props, n.Props != nil
	case *neo4j.Node:
		if n == nil {
			return nil, false
		}
		return n.Props, n.Props != nil
	case map[string]any:
		return n, n != nil
	}
	return nil, false
}

func Book(v any) (model.Book, bool) {
	p, ok := Props(v)
	if !ok {
		return model.Book{}, false
	}
	b := model.Book{
		ID:            String(p["id"]),
		Title:         String(p["title"]),
		PublishedYear: Int(p["publishedYear"]),
		Pages:         Int(p["pages"]),
		ISBN:          String(p["isbn"]),
		Rating:        Float(p["rating"]),
		Description:   String(p["description"]),
	}
	return b, b.ID != ""
}

func Author(v any) (model.Author, bool) {
	p, ok := Props(v)
	if !ok {
		return model.Author{}, false
	}
	a := model.Author{
		ID:          String(p["id"]),
		Name:        String(p["name"]),
		BirthYear:   Int(p["birthYear"]),
		Nationality: String(p["nationality"]),
	}
	return a, a.ID != ""
}

func Genre(v any) (model.Genre, bool) {
	p, ok := Props(v)
	if !ok {
		return model.Genre{}, false
	}
	g := model.Genre{
		ID:          String(p["id"]),
		Name:        String(p["name"]),
		Description: String(p["description"]),
	}
	return g, g.ID != ""
}

func User(v any) (model.User, bool) {
	p, ok := Props(v)
	if !ok {
		return model.User{}, false
	}
	u := model.User{
		ID:              String(p["id"]),
		Username:        String(p["username"]),
		Email:           String(p["email"]),
		CreatedAt:       Time(p["createdAt"]),
		PreferredGenres: Strings(p["preferredGenres"]),
	}
	return u, u.ID != ""
}

// EntityRefs converts a collect(DISTINCT {id: x.id, name: x.name}) column.
// collect() over an unmatched OPTIONAL MATCH yields a single {id: null}
// placeholder; those entries are dropped.
func EntityRefs(v any) []model.EntityRef {
	items, _ := v.([]any)
	refs := make([]model.EntityRef, 0, len(items))
	for _, item := range items {
		p, ok := Props(item)
		if !ok {
			continue
		}
		id := String(p["id"])
		if id == "" {
			continue
		}
		refs = append(refs, model.EntityRef{ID: id, Name: String(p["name"])})
	}
	return refs
}

// RecordBook projects the entity column key of rec.
func RecordBook(rec *neo4j.Record, key string) (model.Book, bool) {
	if rec == nil {
		return model.Book{}, false
	}
	v, _ := rec.Get(key)
	return Book(v)
}

func BookWithDetails(rec *neo4j.Record) (model.BookWithDetails, bool) {
	book, ok := RecordBook(rec, "book")
	if !ok {
		return model.BookWithDetails{}, false
	}
	authors, _ := rec.Get("authors")
	genres, _ := rec.Get("genres")
	return model.BookWithDetails{
		Book:    book,
		Authors: EntityRefs(authors),
		Genres:  EntityRefs(genres),
	}, true
}

func UserWithActivity(rec *neo4j.Record) (model.UserWithActivity, bool) {
	if rec == nil {
		return model.UserWithActivity{}, false
	}
	v, _ := rec.Get("user")
	user, ok := User(v)
	if !ok {
		return model.UserWithActivity{}, false
	}
	return model.UserWithActivity{
		User:      user,
		BooksRead: RecordInt(rec, "booksRead"),
		Followers: RecordInt(rec, "followers"),
		Following: RecordInt(rec, "following"),
	}, true
}

func RecordInt(rec *neo4j.Record, key string) int {
	v, _ := rec.Get(key)
	return Int(v)
}

func RecordFloat(rec *neo4j.Record, key string) float64 {
	v, _ := rec.Get(key)
	return Float(v)
}

func RecordString(rec *neo4j.Record, key string) string {
	v, _ := rec.Get(key)
	return String(v)
}

func RecordStrings(rec *neo4j.Record, key string) []string {
	v, _ := rec.Get(key)
	return Strings(v)
}

func String(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func Int(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func Float(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case int:
		return float64(n)
	}
	return 0
}

func Strings(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return []string{}
}

func Time(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case neo4j.Date:
		return t.Time()
	case neo4j.LocalDateTime:
		return t.Time()
	case string:
		s := strings.TrimSpace(t)
		if parsed, err := time.Parse(time.RFC3339, s); err == nil {
			return parsed
		}
		if parsed, err := time.Parse(time.DateOnly, s); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
