package main

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"libro/internal/catalog"
	"libro/internal/collection"
	"libro/internal/config"
	"libro/internal/importer"
	"libro/internal/lookup"
	"libro/internal/review"
)

// app wires the same services the API serves, against the configured database.
type app struct {
	pool       *pgxpool.Pool
	importer   *importer.Service
	collection *collection.Service
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}

	chain := lookup.FromConfig(cfg.Lookup)
	books := catalog.NewPostgresRepo(pool, cfg.DBTimeout)
	shelf := collection.NewPostgresRepo(pool, cfg.DBTimeout)
	reviews := review.NewPostgresRepo(pool, cfg.DBTimeout)

	return &app{
		pool:       pool,
		importer:   importer.NewService(importer.NewResolver(chain, books, shelf), shelf, reviews),
		collection: collection.NewService(shelf, catalog.NewService(books, chain)),
	}, nil
}

func (a *app) Close() {
	a.pool.Close()
}
