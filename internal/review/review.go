package review

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("review not found")
	ErrDuplicate     = errors.New("you have already reviewed this book")
	ErrForbidden     = errors.New("review belongs to another user")
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

type Review struct {
	ID        string    `json:"id"`
	BookID    string    `json:"book_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	Text      string    `json:"review_text,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// Average summarizes the ratings of one book. A book without reviews has
// zero for both fields.
type Average struct {
	AverageRating float64 `json:"average_rating"`
	TotalReviews  int     `json:"total_reviews"`
}

// Changes carries a partial update; nil fields are kept.
type Changes struct {
	Rating *int
	Text   *string
}

// Repository persists reviews. Create returns ErrDuplicate when the user
// already reviewed the book.
type Repository interface {
	Create(ctx context.Context, rv *Review) error
	Get(ctx context.Context, id string) (Review, error)
	GetForUser(ctx context.Context, bookID, userID string) (Review, error)
	Update(ctx context.Context, id string, rating int, text string) (Review, error)
	Delete(ctx context.Context, id string) error
	ListByBook(ctx context.Context, bookID string, limit, offset int) ([]Review, int, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Review, int, error)
	Average(ctx context.Context, bookID string) (Average, error)
}

func validRating(r int) bool {
	return r >= 1 && r <= 5
}
