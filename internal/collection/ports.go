package collection

import (
	"context"

	"libro/internal/catalog"
)

// Repository persists collection entries. Add returns ErrAlreadyExists when
// the user already shelved the book; lookups return ErrNotFound on a miss.
type Repository interface {
	Add(ctx context.Context, e *Entry) error
	Exists(ctx context.Context, userID, bookID string) (bool, error)
	Get(ctx context.Context, userID, bookID string) (Entry, error)
	UpdateStatus(ctx context.Context, userID, bookID string, ownership Ownership, reading Reading) (Entry, error)
	Remove(ctx context.Context, userID, bookID string) error
	List(ctx context.Context, userID string, limit, offset int) ([]Entry, int, error)
	ListAll(ctx context.Context, userID string) ([]Entry, error)
}

// BookGetter resolves the book an entry points at, in whichever catalog owns it.
type BookGetter interface {
	GetByID(ctx context.Context, source, id string) (catalog.Book, error)
}
