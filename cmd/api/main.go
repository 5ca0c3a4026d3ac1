package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"libro/internal/catalog"
	"libro/internal/collection"
	"libro/internal/config"
	"libro/internal/httpx"
	"libro/internal/importer"
	"libro/internal/lookup"
	"libro/internal/platform/logger"
	"libro/internal/review"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.Initialize(cfg.LogLevel, cfg.LogJSON); err != nil {
		_, _ = os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Named("api")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := openDB(ctx, cfg.DSN)
	if err != nil {
		log.Fatalw("cannot open database", "dsn", config.RedactDSN(cfg.DSN), "error", err)
	}
	defer pool.Close()
	log.Infow("database connection OK", "dsn", config.RedactDSN(cfg.DSN))

	chain := lookup.FromConfig(cfg.Lookup)
	log.Infow("lookup providers configured", "providers", cfg.Lookup.Providers, "count", chain.Len())

	books := catalog.NewPostgresRepo(pool, cfg.DBTimeout)
	shelf := collection.NewPostgresRepo(pool, cfg.DBTimeout)
	reviews := review.NewPostgresRepo(pool, cfg.DBTimeout)

	catalogService := catalog.NewService(books, chain)
	collectionService := collection.NewService(shelf, catalogService)
	reviewService := review.NewService(reviews)
	importService := importer.NewService(importer.NewResolver(chain, books, shelf), shelf, reviews)

	limiter := httpx.NewRateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer limiter.Stop()

	handler := newRouter(routerDeps{
		jwtSecret:      cfg.JWTSecret,
		corsOrigins:    cfg.CORSOrigins,
		maxUploadBytes: cfg.MaxUploadBytes,
		rateLimiter:    limiter,
		db:             pool,
		catalog:        catalog.NewHTTPHandler(catalogService),
		collection:     collection.NewHTTPHandler(collectionService),
		reviews:        review.NewHTTPHandler(reviewService),
		importer:       importer.NewHTTPHandler(importService, cfg.JWTSecret, cfg.CORSOrigins, cfg.MaxUploadBytes),
	})

	srv := &http.Server{
		Addr:        cfg.Addr,
		Handler:     handler,
		ReadTimeout: 30 * time.Second,
		// Imports stream progress for as long as the file takes.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("starting server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("shutdown failed", "error", err)
	}
}

func openDB(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
