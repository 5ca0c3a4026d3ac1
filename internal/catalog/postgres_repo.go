package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookColumns = `
	id, title, authors, COALESCE(description, ''), COALESCE(published_date, ''),
	COALESCE(publisher, ''), page_count, COALESCE(language, ''), COALESCE(isbn_10, ''),
	COALESCE(isbn_13, ''), categories, COALESCE(cover_image, ''), created_at, updated_at`

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func scanBook(row pgx.Row) (Book, error) {
	var b Book
	err := row.Scan(
		&b.ID, &b.Title, &b.Authors, &b.Description, &b.PublishedDate,
		&b.Publisher, &b.PageCount, &b.Language, &b.ISBN10,
		&b.ISBN13, &b.Categories, &b.CoverImage, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	b.Source = SourceLocal
	return b, nil
}

func (r *PostgresRepo) FindByISBN(ctx context.Context, isbn10, isbn13 string) (Book, error) {
	if isbn10 == "" && isbn13 == "" {
		return Book{}, ErrNotFound
	}
	query := `SELECT ` + bookColumns + `
		FROM books
		WHERE ($1 <> '' AND isbn_10 = $1) OR ($2 <> '' AND isbn_13 = $2)
		ORDER BY created_at ASC
		LIMIT 1`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return scanBook(r.db.QueryRow(timeoutCtx, query, isbn10, isbn13))
}

func (r *PostgresRepo) FindByTitle(ctx context.Context, title string) (Book, error) {
	query := `SELECT ` + bookColumns + `
		FROM books
		WHERE lower(title) = lower($1)
		ORDER BY created_at ASC
		LIMIT 1`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return scanBook(r.db.QueryRow(timeoutCtx, query, strings.TrimSpace(title)))
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return scanBook(r.db.QueryRow(timeoutCtx, query, id))
}

// Create inserts the book and fills in the generated id and timestamps.
func (r *PostgresRepo) Create(ctx context.Context, b *Book) error {
	const query = `
		INSERT INTO books (title, authors, description, published_date, publisher, page_count,
		                   language, isbn_10, isbn_13, categories, cover_image)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`

	authors := b.Authors
	if authors == nil {
		authors = []string{}
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query,
		b.Title, authors, nullIfEmpty(b.Description), nullIfEmpty(b.PublishedDate),
		nullIfEmpty(b.Publisher), b.PageCount, nullIfEmpty(b.Language), nullIfEmpty(b.ISBN10),
		nullIfEmpty(b.ISBN13), b.Categories, nullIfEmpty(b.CoverImage),
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	b.Source = SourceLocal
	return nil
}

func (r *PostgresRepo) Update(ctx context.Context, id string, f UpdateFields) (Book, error) {
	sets := []string{}
	args := []any{}
	argn := 1

	add := func(col string, v any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, argn))
		args = append(args, v)
		argn++
	}
	if f.Title != "" {
		add("title", f.Title)
	}
	if len(f.Authors) > 0 {
		add("authors", f.Authors)
	}
	if f.Description != "" {
		add("description", f.Description)
	}
	if f.PublishedDate != "" {
		add("published_date", f.PublishedDate)
	}
	if f.Publisher != "" {
		add("publisher", f.Publisher)
	}
	if f.PageCount != nil {
		add("page_count", *f.PageCount)
	}
	if f.Language != "" {
		add("language", f.Language)
	}
	if len(f.Categories) > 0 {
		add("categories", f.Categories)
	}
	if f.CoverImage != "" {
		add("cover_image", f.CoverImage)
	}

	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	query := fmt.Sprintf(`UPDATE books SET %s, updated_at = now() WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), argn, bookColumns)
	args = append(args, id)

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return scanBook(r.db.QueryRow(timeoutCtx, query, args...))
}

func (r *PostgresRepo) Search(ctx context.Context, q SearchQuery) ([]Book, int, error) {
	var where string
	var args []any
	if q.Type == SearchISBN {
		isbn := CleanISBN(q.Q)
		where = "WHERE isbn_10 = $1 OR isbn_13 = $1"
		args = append(args, isbn)
	} else {
		where = "WHERE title ILIKE $1 OR $2 = ANY(authors)"
		args = append(args, "%"+q.Q+"%", q.Q)
	}

	countSQL := "SELECT COUNT(*) FROM books " + where
	var total int
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if err := r.db.QueryRow(timeoutCtx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataSQL := fmt.Sprintf(`SELECT %s FROM books %s ORDER BY title ASC LIMIT $%d OFFSET $%d`,
		bookColumns, where, len(args)+1, len(args)+2)
	argsWithPage := append(append([]any{}, args...), q.Limit, q.Offset)

	timeoutCtx2, cancel2 := r.withTimeout(ctx)
	defer cancel2()
	rows, err := r.db.Query(timeoutCtx2, dataSQL, argsWithPage...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
