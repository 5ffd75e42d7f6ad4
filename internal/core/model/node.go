package model

import "time"

type Book struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	PublishedYear int     `json:"publishedYear"`
	Pages         int     `json:"pages"`
	ISBN          string  `json:"isbn"`
	Rating        float64 `json:"rating"` // 0.0 - 5.0
	Description   string  `json:"description"`
}

type Author struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	BirthYear   int    `json:"birthYear"`
	Nationality string `json:"nationality"`
}

type Genre struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	// PreferredGenres holds genre names, not genre ids. Renaming a Genre
	// silently breaks the match.
	PreferredGenres []string `json:"preferredGenres"`
}

// EntityRef is the {id, name} pair collected next to a book.
type EntityRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type BookWithDetails struct {
	Book
	Authors []EntityRef `json:"authors"`
	Genres  []EntityRef `json:"genres"`
}

type UserWithActivity struct {
	User
	BooksRead int `json:"booksRead"`
	Followers int `json:"followers"`
	Following int `json:"following"`
}
