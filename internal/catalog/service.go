package catalog

import (
	"context"
	"errors"
	"sort"

	"libro/internal/platform/logger"
)

// Service provides catalog search and maintenance. The external lookup is optional.
type Service struct {
	repo   Repository
	lookup Lookup
}

func NewService(repo Repository, lookup Lookup) *Service {
	return &Service{repo: repo, lookup: lookup}
}

// Search returns local matches first, then external results that do not
// duplicate a local book by ISBN. An external failure degrades to local-only.
func (s *Service) Search(ctx context.Context, q SearchQuery) ([]Book, int, error) {
	if q.Type == "" {
		q.Type = SearchGeneral
	}

	local, localTotal, err := s.repo.Search(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	if s.lookup == nil || len(local) >= q.Limit {
		return local, localTotal, nil
	}

	externalQuery := q.Q
	if q.Type == SearchISBN {
		externalQuery = "isbn:" + CleanISBN(q.Q)
	}
	remaining := q.Limit - len(local)
	externalOffset := max(0, q.Offset-localTotal)

	external, externalTotal, err := s.lookup.Search(ctx, externalQuery, externalOffset, remaining)
	if err != nil {
		logger.Named("catalog").Warnw("external search failed", "query", q.Q, "error", err)
		return local, localTotal, nil
	}

	merged := MergeResults(local, external)
	if len(merged) > q.Limit {
		merged = merged[:q.Limit]
	}
	return merged, localTotal + externalTotal, nil
}

// MergeResults appends external books that do not share an ISBN with a local
// one, keeping local books first and, within each source, books with covers first.
func MergeResults(local, external []Book) []Book {
	out := make([]Book, 0, len(local)+len(external))
	out = append(out, local...)
	for _, ext := range external {
		dup := false
		for _, l := range local {
			if ext.SameAs(l) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, ext)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.IsLocal() != b.IsLocal() {
			return a.IsLocal()
		}
		return a.CoverImage != "" && b.CoverImage == ""
	})
	return out
}

// GetByID fetches a book from the store that owns it.
func (s *Service) GetByID(ctx context.Context, source, id string) (Book, error) {
	if source == "" || source == SourceLocal {
		return s.repo.GetByID(ctx, id)
	}
	if s.lookup == nil {
		return Book{}, ErrNotFound
	}
	b, err := s.lookup.LookupByID(ctx, source, id)
	if err != nil {
		return Book{}, err
	}
	if b == nil {
		return Book{}, ErrNotFound
	}
	return *b, nil
}

// Create adds a book to the local catalog, refusing duplicates by ISBN.
func (s *Service) Create(ctx context.Context, b *Book) error {
	if b.ISBN10 != "" || b.ISBN13 != "" {
		_, err := s.repo.FindByISBN(ctx, b.ISBN10, b.ISBN13)
		if err == nil {
			return ErrISBNExists
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}
	}
	return s.repo.Create(ctx, b)
}

func (s *Service) Update(ctx context.Context, id string, f UpdateFields) (Book, error) {
	return s.repo.Update(ctx, id, f)
}
