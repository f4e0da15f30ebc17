// internal/book/domain.go
package book

import (
	"time"

	"github.com/google/uuid"
)

// Genre classifies a book.
type Genre string

const (
	GenreFiction        Genre = "FICTION"
	GenreRomance        Genre = "ROMANCE"
	GenreScienceFiction Genre = "SCIENCE_FICTION"
	GenreFantasy        Genre = "FANTASY"
	GenreHorror         Genre = "HORROR"
	GenreThriller       Genre = "THRILLER"
	GenreMystery        Genre = "MYSTERY"
	GenreCrime          Genre = "CRIME"
	GenreAdventure      Genre = "ADVENTURE"
	GenreChildren       Genre = "CHILDREN"
	GenreBiography      Genre = "BIOGRAPHY"
	GenreHistory        Genre = "HISTORY"
	GenreScience        Genre = "SCIENCE"
	GenreTechnology     Genre = "TECHNOLOGY"
	GenreSelfHelp       Genre = "SELF_HELP"
	GenreBusiness       Genre = "BUSINESS"
	GenrePhilosophy     Genre = "PHILOSOPHY"
	GenreTravel         Genre = "TRAVEL"
	GenreHealth         Genre = "HEALTH"
	GenreCooking        Genre = "COOKING"
	GenreArt            Genre = "ART"
	GenreMusic          Genre = "MUSIC"
	GenreSports         Genre = "SPORTS"
	GenreEducation      Genre = "EDUCATION"
	GenreReligion       Genre = "RELIGION"
	GenreDrama          Genre = "DRAMA"
	GenreClassic        Genre = "CLASSIC"
	GenreHumor          Genre = "HUMOR"
	GenreMythology      Genre = "MYTHOLOGY"
)

var genres = map[Genre]struct{}{
	GenreFiction: {}, GenreRomance: {}, GenreScienceFiction: {}, GenreFantasy: {},
	GenreHorror: {}, GenreThriller: {}, GenreMystery: {}, GenreCrime: {},
	GenreAdventure: {}, GenreChildren: {}, GenreBiography: {}, GenreHistory: {},
	GenreScience: {}, GenreTechnology: {}, GenreSelfHelp: {}, GenreBusiness: {},
	GenrePhilosophy: {}, GenreTravel: {}, GenreHealth: {}, GenreCooking: {},
	GenreArt: {}, GenreMusic: {}, GenreSports: {}, GenreEducation: {},
	GenreReligion: {}, GenreDrama: {}, GenreClassic: {}, GenreHumor: {},
	GenreMythology: {},
}

// Valid reports whether g is a known genre.
func (g Genre) Valid() bool {
	_, ok := genres[g]
	return ok
}

const minPublicationYear = 1450

// Book represents a catalogued book. stock is never negative.
type Book struct {
	ID              uuid.UUID `json:"id" db:"id"`
	Title           string    `json:"title" db:"title"`
	Author          string    `json:"author" db:"author"`
	ISBN            string    `json:"isbn" db:"isbn"`
	PublicationYear int       `json:"publication_year" db:"publication_year"`
	Genre           Genre     `json:"genre" db:"genre"`
	Stock           int       `json:"stock" db:"stock"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// Request carries the fields to create or update a book.
type Request struct {
	Title           string `json:"title"`
	Author          string `json:"author"`
	ISBN            string `json:"isbn"`
	PublicationYear int    `json:"publication_year"`
	Genre           Genre  `json:"genre"`
	Stock           int    `json:"stock"`
}

// Validate reports per-field problems with the request.
func (r Request) Validate() map[string]string {
	errs := map[string]string{}

	switch {
	case r.Title == "":
		errs["title"] = "Title cannot be empty"
	case len(r.Title) > 100:
		errs["title"] = "Title cannot exceed 100 characters"
	}

	switch {
	case r.Author == "":
		errs["author"] = "Author name cannot be empty"
	case len(r.Author) > 75:
		errs["author"] = "Author name cannot exceed 75 characters"
	}

	if len(r.ISBN) != 13 {
		errs["isbn"] = "ISBN must be exactly 13 characters"
	}

	switch {
	case r.PublicationYear < minPublicationYear:
		errs["publication_year"] = "Publication year must be after 1450"
	case r.PublicationYear > time.Now().Year():
		errs["publication_year"] = "Publication year cannot be in the future"
	}

	if !r.Genre.Valid() {
		errs["genre"] = "Genre must be specified"
	}

	if r.Stock < 0 {
		errs["stock"] = "Stock cannot be negative"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// SearchFilter narrows a paginated book search. Zero-valued fields match
// everything.
type SearchFilter struct {
	Title  string
	Author string
	ISBN   string
	Genre  Genre
	Page   int
	Size   int
}

// Page is one page of search results.
type Page struct {
	Content       []*Book `json:"content"`
	Number        int     `json:"page"`
	Size          int     `json:"size"`
	TotalElements int64   `json:"total_elements"`
	TotalPages    int     `json:"total_pages"`
}

// StockEvent is broadcast whenever a book's stock changes. Advisory
// telemetry only, never correctness-bearing.
type StockEvent struct {
	BookID uuid.UUID `json:"bookId"`
	Title  string    `json:"title"`
	Stock  int       `json:"stock"`
}
