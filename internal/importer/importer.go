// Package importer loads a user's library from a CSV file, in either the
// Goodreads export layout or the layout produced by the library export.
package importer

import (
	"context"
	"errors"

	"libro/internal/catalog"
	"libro/internal/collection"
	"libro/internal/review"
)

// Fatal errors. An import that returns one of these processed no rows.
var (
	ErrEmptyFile            = errors.New("CSV file is empty or invalid")
	ErrMissingISBNColumns   = errors.New("CSV must contain either ISBN-10 or ISBN-13 column")
	ErrMissingStatusColumns = errors.New("CSV must contain Ownership Status and Reading Status columns (for Libro format)")
	ErrMalformedCSV         = errors.New("CSV file could not be parsed")
)

// Row-level errors.
var (
	ErrTitleRequired = errors.New("Title is required")
	ErrMissingStatus = errors.New("Missing ownership or reading status")
	ErrMalformedRow  = errors.New("Row could not be parsed: check its quotes")
)

// FailedRow is a data row that could not be imported. Row is 1-based and
// counts data rows only.
type FailedRow struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

type Result struct {
	Success int         `json:"success"`
	Failed  []FailedRow `json:"failed"`
}

type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// ProgressFunc observes an import. It is called once per data row.
type ProgressFunc func(Progress)

// LookupService resolves an ISBN against an external catalog. A miss is (nil, nil).
type LookupService interface {
	LookupByISBN(ctx context.Context, isbn string) (*catalog.Book, error)
}

// CatalogStore is the local book catalog. Finds return catalog.ErrNotFound on a miss.
type CatalogStore interface {
	FindByISBN(ctx context.Context, isbn10, isbn13 string) (catalog.Book, error)
	FindByTitle(ctx context.Context, title string) (catalog.Book, error)
	Create(ctx context.Context, b *catalog.Book) error
}

type CollectionStore interface {
	Exists(ctx context.Context, userID, bookID string) (bool, error)
	Add(ctx context.Context, e *collection.Entry) error
}

// ReviewStore returns review.ErrDuplicate when the user already reviewed the book.
type ReviewStore interface {
	Create(ctx context.Context, rv *review.Review) error
}
