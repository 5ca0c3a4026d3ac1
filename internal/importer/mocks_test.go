package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/stretchr/testify/mock"

	"libro/internal/catalog"
	"libro/internal/collection"
	"libro/internal/review"
)

type mockLookup struct {
	mock.Mock
}

func (m *mockLookup) LookupByISBN(ctx context.Context, isbn string) (*catalog.Book, error) {
	args := m.Called(ctx, isbn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Book), args.Error(1)
}

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) FindByISBN(ctx context.Context, isbn10, isbn13 string) (catalog.Book, error) {
	args := m.Called(ctx, isbn10, isbn13)
	return args.Get(0).(catalog.Book), args.Error(1)
}

func (m *mockCatalog) FindByTitle(ctx context.Context, title string) (catalog.Book, error) {
	args := m.Called(ctx, title)
	return args.Get(0).(catalog.Book), args.Error(1)
}

func (m *mockCatalog) Create(ctx context.Context, b *catalog.Book) error {
	return m.Called(ctx, b).Error(0)
}

type mockShelf struct {
	mock.Mock
}

func (m *mockShelf) Exists(ctx context.Context, userID, bookID string) (bool, error) {
	args := m.Called(ctx, userID, bookID)
	return args.Bool(0), args.Error(1)
}

func (m *mockShelf) Add(ctx context.Context, e *collection.Entry) error {
	return m.Called(ctx, e).Error(0)
}

// memCatalog is an in-memory CatalogStore for end-to-end import tests.
type memCatalog struct {
	books   []catalog.Book
	creates int
}

func (c *memCatalog) FindByISBN(_ context.Context, isbn10, isbn13 string) (catalog.Book, error) {
	for _, b := range c.books {
		if (isbn10 != "" && b.ISBN10 == isbn10) || (isbn13 != "" && b.ISBN13 == isbn13) {
			return b, nil
		}
	}
	return catalog.Book{}, catalog.ErrNotFound
}

func (c *memCatalog) FindByTitle(_ context.Context, title string) (catalog.Book, error) {
	for _, b := range c.books {
		if strings.EqualFold(b.Title, title) {
			return b, nil
		}
	}
	return catalog.Book{}, catalog.ErrNotFound
}

func (c *memCatalog) Create(_ context.Context, b *catalog.Book) error {
	c.creates++
	b.ID = fmt.Sprintf("book-%d", c.creates)
	b.Source = catalog.SourceLocal
	c.books = append(c.books, *b)
	return nil
}

type memShelf struct {
	entries []collection.Entry
}

func (s *memShelf) Exists(_ context.Context, userID, bookID string) (bool, error) {
	for _, e := range s.entries {
		if e.UserID == userID && e.BookID == bookID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memShelf) Add(ctx context.Context, e *collection.Entry) error {
	if ok, _ := s.Exists(ctx, e.UserID, e.BookID); ok {
		return collection.ErrAlreadyExists
	}
	s.entries = append(s.entries, *e)
	return nil
}

type memReviews struct {
	reviews []review.Review
	err     error
}

func (r *memReviews) Create(_ context.Context, rv *review.Review) error {
	if r.err != nil {
		return r.err
	}
	for _, existing := range r.reviews {
		if existing.BookID == rv.BookID && existing.UserID == rv.UserID {
			return review.ErrDuplicate
		}
	}
	r.reviews = append(r.reviews, *rv)
	return nil
}
