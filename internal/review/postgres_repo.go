package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reviewColumns = `id, book_id, user_id, rating, COALESCE(review_text, ''), created_at, updated_at`

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

func scanReview(row pgx.Row) (Review, error) {
	var rv Review
	if err := row.Scan(&rv.ID, &rv.BookID, &rv.UserID, &rv.Rating, &rv.Text, &rv.CreatedAt, &rv.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Review{}, ErrNotFound
		}
		return Review{}, err
	}
	return rv, nil
}

func (r *PostgresRepo) Create(ctx context.Context, rv *Review) error {
	const query = `
		INSERT INTO reviews (book_id, user_id, rating, review_text)
		VALUES ($1, $2, $3, NULLIF($4, ''))
		RETURNING id, created_at, updated_at`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query, rv.BookID, rv.UserID, rv.Rating, rv.Text).
		Scan(&rv.ID, &rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicate
		}
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Review, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return scanReview(r.db.QueryRow(timeoutCtx, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id))
}

func (r *PostgresRepo) GetForUser(ctx context.Context, bookID, userID string) (Review, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return scanReview(r.db.QueryRow(timeoutCtx,
		`SELECT `+reviewColumns+` FROM reviews WHERE book_id = $1 AND user_id = $2`, bookID, userID))
}

func (r *PostgresRepo) Update(ctx context.Context, id string, rating int, text string) (Review, error) {
	query := `
		UPDATE reviews
		SET rating = $2, review_text = NULLIF($3, ''), updated_at = now()
		WHERE id = $1
		RETURNING ` + reviewColumns

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return scanReview(r.db.QueryRow(timeoutCtx, query, id, rating, text))
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) listBy(ctx context.Context, column, value string, limit, offset int) ([]Review, int, error) {
	var total int
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if err := r.db.QueryRow(timeoutCtx, `SELECT COUNT(*) FROM reviews WHERE `+column+` = $1`, value).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE ` + column + ` = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	timeoutCtx2, cancel2 := r.withTimeout(ctx)
	defer cancel2()
	rows, err := r.db.Query(timeoutCtx2, query, value, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rv)
	}
	return out, total, rows.Err()
}

func (r *PostgresRepo) ListByBook(ctx context.Context, bookID string, limit, offset int) ([]Review, int, error) {
	return r.listBy(ctx, "book_id", bookID, limit, offset)
}

func (r *PostgresRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Review, int, error) {
	return r.listBy(ctx, "user_id", userID, limit, offset)
}

func (r *PostgresRepo) Average(ctx context.Context, bookID string) (Average, error) {
	const query = `SELECT average_rating, total_reviews FROM book_average_ratings WHERE book_id = $1`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var avg Average
	err := r.db.QueryRow(timeoutCtx, query, bookID).Scan(&avg.AverageRating, &avg.TotalReviews)
	if errors.Is(err, pgx.ErrNoRows) {
		return Average{}, nil
	}
	return avg, err
}
