package driver

// Recommendation reads. Every query is constant; user input only ever arrives
// as a bound parameter. Entity columns are aliased to `book` so projection can
// treat all strategies alike.
const (
	CollaborativeQuery = `
		MATCH (u:User {id: $userId})-[:READ]->(:Book)<-[:READ]-(peer:User)
		WHERE peer <> u
		WITH DISTINCT u, peer
		MATCH (peer)-[r:READ]->(rec:Book)
		WHERE r.rating >= $minRating
			AND NOT (u)-[:READ]->(rec)
			AND NOT (u)-[:WANTS_TO_READ]->(rec)
		WITH rec, count(DISTINCT peer) AS commonReaders, avg(r.rating) AS avgRating
		RETURN rec AS book, commonReaders, avgRating
		ORDER BY commonReaders * $readerWeight + avgRating * $ratingWeight DESC
		LIMIT $limit
	`

	PreferredGenresQuery = `
		MATCH (u:User {id: $userId})
		UNWIND coalesce(u.preferredGenres, []) AS genreName
		MATCH (g:Genre {name: genreName})<-[:BELONGS_TO]-(b:Book)
		WHERE NOT (u)-[:READ]->(b)
			AND NOT (u)-[:WANTS_TO_READ]->(b)
		WITH b, count(DISTINCT g) AS genreMatches
		RETURN b AS book, genreMatches
		ORDER BY genreMatches * $matchWeight + coalesce(b.rating, 0.0) DESC
		LIMIT $limit
	`

	FollowingQuery = `
		MATCH (u:User {id: $userId})-[:FOLLOWS]->(followed:User)-[r:READ]->(b:Book)
		WHERE followed <> u
			AND r.rating >= $minRating
			AND NOT (u)-[:READ]->(b)
			AND NOT (u)-[:WANTS_TO_READ]->(b)
		WITH b, collect(DISTINCT followed.username) AS recommenders,
			count(DISTINCT followed) AS endorsers, avg(r.rating) AS avgRating
		RETURN b AS book, recommenders, endorsers, avgRating
		ORDER BY avgRating DESC, endorsers DESC
		LIMIT $limit
	`

	FavoriteAuthorsQuery = `
		MATCH (u:User {id: $userId})-[r:READ]->(:Book)<-[:WROTE]-(a:Author)-[:WROTE]->(other:Book)
		WHERE r.rating >= $minRating
			AND NOT (u)-[:READ]->(other)
		WITH other, a, max(r.rating) AS userRating
		RETURN other AS book, a.name AS authorName, userRating
		ORDER BY userRating DESC
		LIMIT $limit
	`

	TrendingQuery = `
		MATCH (:User)-[r:READ]->(b:Book)
		WITH b, count(r) AS readers, avg(r.rating) AS avgRating
		WHERE readers >= $minReaders
		RETURN b AS book, readers, avgRating
		ORDER BY readers * $readerWeight + avgRating * $ratingWeight DESC
		LIMIT $limit
	`

	SimilarBooksQuery = `
		MATCH (:Book {id: $bookId})-[s:SIMILAR_TO]->(similar:Book)
		RETURN similar AS book, s.score AS score
		ORDER BY score DESC
		LIMIT $limit
	`

	UserActivityQuery = `
		MATCH (u:User {id: $userId})
		OPTIONAL MATCH (u)-[:READ]->(b:Book)
		WITH u, count(DISTINCT b) AS booksRead
		OPTIONAL MATCH (follower:User)-[:FOLLOWS]->(u)
		WITH u, booksRead, count(DISTINCT follower) AS followers
		OPTIONAL MATCH (u)-[:FOLLOWS]->(followed:User)
		RETURN u AS user, booksRead, followers, count(DISTINCT followed) AS following
	`

	BookDetailsQuery = `
		MATCH (b:Book)
		WHERE b.id IN $bookIds
		OPTIONAL MATCH (a:Author)-[:WROTE]->(b)
		OPTIONAL MATCH (b)-[:BELONGS_TO]->(g:Genre)
		RETURN b AS book,
			collect(DISTINCT {id: a.id, name: a.name}) AS authors,
			collect(DISTINCT {id: g.id, name: g.name}) AS genres
	`
)

var readQueries = map[string]struct{}{
	CollaborativeQuery:   {},
	PreferredGenresQuery: {},
	FollowingQuery:       {},
	FavoriteAuthorsQuery: {},
	TrendingQuery:        {},
	SimilarBooksQuery:    {},
	UserActivityQuery:    {},
	BookDetailsQuery:     {},
}

// IsReadQuery reports whether query is one of the read-only queries above.
func IsReadQuery(query string) bool {
	_, ok := readQueries[query]
	return ok
}

// Seed writes. Only the seed loader uses these; the recommendation core has no
// write path.
const (
	ClearGraphQuery = `MATCH (n) DETACH DELETE n`

	SaveAuthorsQuery = `
		UNWIND $rows AS row
		MERGE (a:Author {id: row.id})
		SET a.name = row.name,
			a.birthYear = row.birthYear,
			a.nationality = row.nationality
	`

	SaveGenresQuery = `
		UNWIND $rows AS row
		MERGE (g:Genre {id: row.id})
		SET g.name = row.name,
			g.description = row.description
	`

	SaveBooksQuery = `
		UNWIND $rows AS row
		MERGE (b:Book {id: row.id})
		SET b.title = row.title,
			b.publishedYear = row.publishedYear,
			b.pages = row.pages,
			b.isbn = row.isbn,
			b.rating = row.rating,
			b.description = row.description
	`

	SaveUsersQuery = `
		UNWIND $rows AS row
		MERGE (u:User {id: row.id})
		SET u.username = row.username,
			u.email = row.email,
			u.createdAt = date(row.createdAt),
			u.preferredGenres = row.preferredGenres
	`

	SaveWroteEdgesQuery = `
		UNWIND $rows AS row
		MATCH (a:Author {id: row.authorId})
		MATCH (b:Book {id: row.bookId})
		MERGE (a)-[:WROTE]->(b)
	`

	SaveBelongsToEdgesQuery = `
		UNWIND $rows AS row
		MATCH (b:Book {id: row.bookId})
		MATCH (g:Genre {id: row.genreId})
		MERGE (b)-[:BELONGS_TO]->(g)
	`

	SaveReadEdgesQuery = `
		UNWIND $rows AS row
		MATCH (u:User {id: row.userId})
		MATCH (b:Book {id: row.bookId})
		MERGE (u)-[r:READ]->(b)
		SET r.rating = row.rating,
			r.readDate = date(row.readDate),
			r.review = row.review
	`

	SaveWantsToReadEdgesQuery = `
		UNWIND $rows AS row
		MATCH (u:User {id: row.userId})
		MATCH (b:Book {id: row.bookId})
		MERGE (u)-[w:WANTS_TO_READ]->(b)
		SET w.addedDate = CASE WHEN row.addedDate IS NULL THEN date() ELSE date(row.addedDate) END
	`

	SaveFollowsEdgesQuery = `
		UNWIND $rows AS row
		MATCH (follower:User {id: row.followerId})
		MATCH (followed:User {id: row.followedId})
		WHERE follower <> followed
		MERGE (follower)-[:FOLLOWS]->(followed)
	`

	// Similarity is inserted in both directions so either end finds the other.
	SaveSimilarToEdgesQuery = `
		UNWIND $rows AS row
		MATCH (a:Book {id: row.sourceId})
		MATCH (b:Book {id: row.targetId})
		MERGE (a)-[s1:SIMILAR_TO]->(b)
		SET s1.score = row.score
		MERGE (b)-[s2:SIMILAR_TO]->(a)
		SET s2.score = row.score
	`
)

var IndexQueries = []string{
	"CREATE CONSTRAINT book_id IF NOT EXISTS FOR (b:Book) REQUIRE b.id IS UNIQUE",
	"CREATE CONSTRAINT author_id IF NOT EXISTS FOR (a:Author) REQUIRE a.id IS UNIQUE",
	"CREATE CONSTRAINT genre_id IF NOT EXISTS FOR (g:Genre) REQUIRE g.id IS UNIQUE",
	"CREATE CONSTRAINT user_id IF NOT EXISTS FOR (u:User) REQUIRE u.id IS UNIQUE",
	"CREATE INDEX book_title IF NOT EXISTS FOR (b:Book) ON (b.title)",
	"CREATE INDEX author_name IF NOT EXISTS FOR (a:Author) ON (a.name)",
	"CREATE INDEX genre_name IF NOT EXISTS FOR (g:Genre) ON (g.name)",
}
