package catalog

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=catalog

// Repository defines the contract for the local catalog store.
type Repository interface {
	FindByISBN(ctx context.Context, isbn10, isbn13 string) (Book, error)
	FindByTitle(ctx context.Context, title string) (Book, error)
	GetByID(ctx context.Context, id string) (Book, error)
	Create(ctx context.Context, b *Book) error
	Update(ctx context.Context, id string, f UpdateFields) (Book, error)
	Search(ctx context.Context, q SearchQuery) ([]Book, int, error)
}

// Lookup resolves books against an external catalog provider.
// A miss is (nil, nil); errors mean the provider could not answer.
type Lookup interface {
	LookupByISBN(ctx context.Context, isbn string) (*Book, error)
	LookupByID(ctx context.Context, source, id string) (*Book, error)
	Search(ctx context.Context, q string, offset, limit int) ([]Book, int, error)
}
