package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"libro/internal/catalog"
	"libro/internal/collection"
	"libro/internal/httpx"
	"libro/internal/importer"
	"libro/internal/review"
)

// pinger reports database readiness.
type pinger interface {
	Ping(ctx context.Context) error
}

type routerDeps struct {
	jwtSecret      string
	corsOrigins    []string
	maxUploadBytes int64
	rateLimiter    *httpx.RateLimitMiddleware
	db             pinger

	catalog    *catalog.HTTPHandler
	collection *collection.HTTPHandler
	reviews    *review.HTTPHandler
	importer   *importer.HTTPHandler
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(httpx.RequestIDMiddleware)
	r.Use(middleware.RealIP)
	r.Use(httpx.AccessLogMiddleware)
	r.Use(httpx.RecoveryMiddleware)
	r.Use(httpx.SecurityHeadersMiddleware)
	r.Use(httpx.CORSMiddleware(d.corsOrigins))
	r.Use(httpx.RequestSizeLimitMiddleware(d.maxUploadBytes))
	r.Use(httpx.OptionalAuthMiddleware(d.jwtSecret))
	if d.rateLimiter != nil {
		r.Use(d.rateLimiter.Middleware)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if d.db == nil || d.db.Ping(ctx) != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/books", d.catalog.Search)
		r.Get("/books/{source}/{id}", d.catalog.GetByID)
		r.Get("/books/{id}/reviews", d.reviews.ListByBook)
		r.Get("/books/{id}/rating", d.reviews.Rating)

		// The websocket handshake authenticates itself so browsers can pass a query token.
		r.Get("/library/import/ws", d.importer.Stream)

		r.Group(func(r chi.Router) {
			r.Use(httpx.AuthMiddleware(d.jwtSecret))

			r.Post("/books", d.catalog.Create)
			r.Patch("/books/{id}", d.catalog.Update)

			r.Get("/books/{id}/reviews/mine", d.reviews.Mine)
			r.Post("/books/{id}/reviews", d.reviews.Create)
			r.Patch("/reviews/{id}", d.reviews.Update)
			r.Delete("/reviews/{id}", d.reviews.Delete)
			r.Get("/me/reviews", d.reviews.ListMine)

			r.Get("/library", d.collection.List)
			r.Post("/library", d.collection.Add)
			r.Get("/library/export", d.collection.Export)
			r.Post("/library/import", d.importer.Import)
			r.Get("/library/{bookID}/status", d.collection.Status)
			r.Patch("/library/{bookID}", d.collection.Update)
			r.Delete("/library/{bookID}", d.collection.Remove)
		})
	})

	return r
}
