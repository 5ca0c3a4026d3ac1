package collection

import (
	"context"

	"libro/internal/auth"
	"libro/internal/catalog"
	"libro/internal/platform/logger"
)

type Service struct {
	repo  Repository
	books BookGetter
}

func NewService(repo Repository, books BookGetter) *Service {
	return &Service{repo: repo, books: books}
}

// Add shelves a book for the session user.
func (s *Service) Add(ctx context.Context, sess auth.Session, e Entry) (Entry, error) {
	if err := auth.Require(sess); err != nil {
		return Entry{}, err
	}
	if err := e.Validate(); err != nil {
		return Entry{}, err
	}
	e.UserID = sess.UserID
	if e.Source == "" {
		e.Source = catalog.SourceLocal
	}
	if err := s.repo.Add(ctx, &e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// Exists reports whether the book is on the session user's shelf.
// Anonymous sessions never own anything.
func (s *Service) Exists(ctx context.Context, sess auth.Session, bookID string) (bool, error) {
	if !sess.Valid() {
		return false, nil
	}
	return s.repo.Exists(ctx, sess.UserID, bookID)
}

func (s *Service) GetStatus(ctx context.Context, sess auth.Session, bookID string) (Entry, error) {
	if err := auth.Require(sess); err != nil {
		return Entry{}, err
	}
	return s.repo.Get(ctx, sess.UserID, bookID)
}

func (s *Service) Update(ctx context.Context, sess auth.Session, bookID string, u StatusUpdate) (Entry, error) {
	if err := auth.Require(sess); err != nil {
		return Entry{}, err
	}
	current, err := s.repo.Get(ctx, sess.UserID, bookID)
	if err != nil {
		return Entry{}, err
	}
	if u.Ownership != nil {
		current.Ownership = *u.Ownership
	}
	if u.Reading != nil {
		current.Reading = *u.Reading
	}
	if err := current.Validate(); err != nil {
		return Entry{}, err
	}
	return s.repo.UpdateStatus(ctx, sess.UserID, bookID, current.Ownership, current.Reading)
}

func (s *Service) Remove(ctx context.Context, sess auth.Session, bookID string) error {
	if err := auth.Require(sess); err != nil {
		return err
	}
	return s.repo.Remove(ctx, sess.UserID, bookID)
}

// List returns one page of the shelf, newest first. The total counts entries
// whose book could not be resolved, which are left out of the page.
func (s *Service) List(ctx context.Context, sess auth.Session, limit, offset int) ([]Item, int, error) {
	if err := auth.Require(sess); err != nil {
		return nil, 0, err
	}
	entries, total, err := s.repo.List(ctx, sess.UserID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return s.withBooks(ctx, entries), total, nil
}

// ListAll returns the whole shelf, for export.
func (s *Service) ListAll(ctx context.Context, sess auth.Session) ([]Item, error) {
	if err := auth.Require(sess); err != nil {
		return nil, err
	}
	entries, err := s.repo.ListAll(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	return s.withBooks(ctx, entries), nil
}

func (s *Service) withBooks(ctx context.Context, entries []Entry) []Item {
	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		b, err := s.books.GetByID(ctx, e.Source, e.BookID)
		if err != nil {
			logger.Named("collection").Warnw("skipping unresolvable shelf entry",
				"book_id", e.BookID, "source", e.Source, "error", err)
			continue
		}
		items = append(items, Item{Entry: e, Book: b})
	}
	return items
}
