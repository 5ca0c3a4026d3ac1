package importer

import (
	"context"
	"errors"

	"libro/internal/catalog"
	"libro/internal/platform/logger"
)

type ResolutionStatus string

const (
	StatusNew    ResolutionStatus = "new"
	StatusExists ResolutionStatus = "exists"
)

type Resolution struct {
	Book   catalog.Book
	Status ResolutionStatus
}

// Resolver maps an import row to a catalog book. It tries the external lookup
// by ISBN, then the local catalog by ISBN and by title, and finally creates a
// local book from the row itself.
type Resolver struct {
	lookup     LookupService
	catalog    CatalogStore
	collection CollectionStore
}

// NewResolver builds a resolver. lookup may be nil, in which case only the
// local catalog is consulted.
func NewResolver(lookup LookupService, books CatalogStore, shelf CollectionStore) *Resolver {
	return &Resolver{lookup: lookup, catalog: books, collection: shelf}
}

func (r *Resolver) Resolve(ctx context.Context, row Row, userID string) (Resolution, error) {
	book, err := r.find(ctx, row)
	if err != nil {
		return Resolution{}, err
	}

	status := StatusNew
	if userID != "" {
		exists, err := r.collection.Exists(ctx, userID, book.ID)
		if err != nil {
			return Resolution{}, err
		}
		if exists {
			status = StatusExists
		}
	}
	return Resolution{Book: book, Status: status}, nil
}

func (r *Resolver) find(ctx context.Context, row Row) (catalog.Book, error) {
	if row.HasISBN() && r.lookup != nil {
		isbn := row.ISBN13
		if isbn == "" {
			isbn = row.ISBN10
		}
		found, err := r.lookup.LookupByISBN(ctx, isbn)
		if err != nil {
			logger.Named("importer").Warnw("isbn lookup failed", "isbn", isbn, "error", err)
		} else if found != nil {
			return *found, nil
		}
	}

	if row.HasISBN() {
		b, err := r.catalog.FindByISBN(ctx, row.ISBN10, row.ISBN13)
		if err == nil {
			return b, nil
		}
		if !errors.Is(err, catalog.ErrNotFound) {
			return catalog.Book{}, err
		}
	}

	b, err := r.catalog.FindByTitle(ctx, row.Title)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, catalog.ErrNotFound) {
		return catalog.Book{}, err
	}

	created := bookFromRow(row)
	if err := r.catalog.Create(ctx, &created); err != nil {
		return catalog.Book{}, err
	}
	return created, nil
}

func bookFromRow(row Row) catalog.Book {
	return catalog.Book{
		Source:        catalog.SourceLocal,
		Title:         row.Title,
		Authors:       row.Authors,
		Description:   row.Description,
		PublishedDate: row.PublishedDate,
		Publisher:     row.Publisher,
		PageCount:     row.PageCount,
		Language:      row.Language,
		ISBN10:        row.ISBN10,
		ISBN13:        row.ISBN13,
		Categories:    row.Categories,
	}
}
