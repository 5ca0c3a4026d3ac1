package catalog

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a book is not in the local catalog.
	ErrNotFound = errors.New("book not found")
	// ErrISBNExists is returned when creating a book whose ISBN is already cataloged.
	ErrISBNExists = errors.New("a book with this ISBN already exists")
)

// Source names where a book's record lives.
const (
	SourceLocal       = "libro"
	SourceGoogle      = "google"
	SourceOpenLibrary = "openlibrary"
)

// Book is a cataloged book, either a row of the local catalog or a record
// returned by an external provider. (Source, ID) identifies it.
type Book struct {
	Source        string    `json:"source"`
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Authors       []string  `json:"authors"`
	Description   string    `json:"description,omitempty"`
	PublishedDate string    `json:"published_date,omitempty"`
	Publisher     string    `json:"publisher,omitempty"`
	PageCount     *int      `json:"page_count,omitempty"`
	Language      string    `json:"language,omitempty"`
	ISBN10        string    `json:"isbn10,omitempty"`
	ISBN13        string    `json:"isbn13,omitempty"`
	Categories    []string  `json:"categories,omitempty"`
	CoverImage    string    `json:"cover_image,omitempty"`
	AverageRating *float64  `json:"average_rating,omitempty"`
	CreatedAt     time.Time `json:"created_at,omitzero"`
	UpdatedAt     time.Time `json:"updated_at,omitzero"`
}

// SameAs reports whether two books share a non-empty ISBN-10 or ISBN-13.
func (b Book) SameAs(other Book) bool {
	if b.ISBN10 != "" && b.ISBN10 == other.ISBN10 {
		return true
	}
	return b.ISBN13 != "" && b.ISBN13 == other.ISBN13
}

// IsLocal reports whether the book is a row of the local catalog.
func (b Book) IsLocal() bool {
	return b.Source == SourceLocal
}

// SearchType selects how a search query is matched.
type SearchType string

const (
	SearchGeneral SearchType = "general"
	SearchISBN    SearchType = "isbn"
)

// SearchQuery holds filters and pagination for catalog searches.
type SearchQuery struct {
	Q      string
	Type   SearchType
	Limit  int
	Offset int
}

// UpdateFields carries a partial update; empty values are left untouched.
type UpdateFields struct {
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Description   string   `json:"description"`
	PublishedDate string   `json:"published_date"`
	Publisher     string   `json:"publisher"`
	PageCount     *int     `json:"page_count" validate:"omitempty,min=1"`
	Language      string   `json:"language"`
	Categories    []string `json:"categories"`
	CoverImage    string   `json:"cover_image" validate:"omitempty,url"`
}

// CleanISBN strips the separators people type into ISBN queries.
func CleanISBN(s string) string {
	return strings.NewReplacer("-", "", " ", "").Replace(strings.TrimSpace(s))
}
