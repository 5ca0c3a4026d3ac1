// Package lookup combines book providers into the single external catalog the
// rest of the application talks to.
package lookup

import (
	"context"

	"github.com/cockroachdb/errors"

	"libro/internal/catalog"
	"libro/internal/platform/logger"
)

// Provider is one external catalog. LookupByID takes the provider's own ID.
type Provider interface {
	Name() string
	LookupByISBN(ctx context.Context, isbn string) (*catalog.Book, error)
	LookupByID(ctx context.Context, id string) (*catalog.Book, error)
	Search(ctx context.Context, q string, offset, limit int) ([]catalog.Book, int, error)
}

// Chain tries providers in order. It satisfies catalog.Lookup.
type Chain struct {
	providers []Provider
}

func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

func (c *Chain) Len() int { return len(c.providers) }

// LookupByISBN returns the first hit. Without a hit, provider failures are
// returned joined; a clean miss from every provider is (nil, nil).
func (c *Chain) LookupByISBN(ctx context.Context, isbn string) (*catalog.Book, error) {
	var errs error
	for _, p := range c.providers {
		b, err := p.LookupByISBN(ctx, isbn)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Named("lookup").Warnw("provider lookup failed", "provider", p.Name(), "isbn", isbn, "error", err)
			errs = errors.CombineErrors(errs, err)
			continue
		}
		if b != nil {
			return b, nil
		}
	}
	return nil, errs
}

// LookupByID routes to the provider named by source. Unknown sources are a miss.
func (c *Chain) LookupByID(ctx context.Context, source, id string) (*catalog.Book, error) {
	for _, p := range c.providers {
		if p.Name() == source {
			return p.LookupByID(ctx, id)
		}
	}
	return nil, nil
}

// Search returns the results of the first provider that answers.
func (c *Chain) Search(ctx context.Context, q string, offset, limit int) ([]catalog.Book, int, error) {
	var errs error
	for _, p := range c.providers {
		books, total, err := p.Search(ctx, q, offset, limit)
		if err == nil {
			return books, total, nil
		}
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		logger.Named("lookup").Warnw("provider search failed", "provider", p.Name(), "query", q, "error", err)
		errs = errors.CombineErrors(errs, err)
	}
	return nil, 0, errs
}
