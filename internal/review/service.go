package review

import (
	"context"

	"libro/internal/auth"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, sess auth.Session, rv Review) (Review, error) {
	if err := auth.Require(sess); err != nil {
		return Review{}, err
	}
	if !validRating(rv.Rating) {
		return Review{}, ErrInvalidRating
	}
	rv.UserID = sess.UserID
	if err := s.repo.Create(ctx, &rv); err != nil {
		return Review{}, err
	}
	return rv, nil
}

// owned loads the review and checks it belongs to the session user.
func (s *Service) owned(ctx context.Context, sess auth.Session, id string) (Review, error) {
	if err := auth.Require(sess); err != nil {
		return Review{}, err
	}
	rv, err := s.repo.Get(ctx, id)
	if err != nil {
		return Review{}, err
	}
	if rv.UserID != sess.UserID {
		return Review{}, ErrForbidden
	}
	return rv, nil
}

func (s *Service) Update(ctx context.Context, sess auth.Session, id string, c Changes) (Review, error) {
	rv, err := s.owned(ctx, sess, id)
	if err != nil {
		return Review{}, err
	}
	if c.Rating != nil {
		rv.Rating = *c.Rating
	}
	if c.Text != nil {
		rv.Text = *c.Text
	}
	if !validRating(rv.Rating) {
		return Review{}, ErrInvalidRating
	}
	return s.repo.Update(ctx, id, rv.Rating, rv.Text)
}

func (s *Service) Delete(ctx context.Context, sess auth.Session, id string) error {
	if _, err := s.owned(ctx, sess, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Mine returns the session user's review of a book.
func (s *Service) Mine(ctx context.Context, sess auth.Session, bookID string) (Review, error) {
	if err := auth.Require(sess); err != nil {
		return Review{}, err
	}
	return s.repo.GetForUser(ctx, bookID, sess.UserID)
}

func (s *Service) ListByBook(ctx context.Context, bookID string, limit, offset int) ([]Review, int, error) {
	return s.repo.ListByBook(ctx, bookID, limit, offset)
}

func (s *Service) ListByUser(ctx context.Context, sess auth.Session, limit, offset int) ([]Review, int, error) {
	if err := auth.Require(sess); err != nil {
		return nil, 0, err
	}
	return s.repo.ListByUser(ctx, sess.UserID, limit, offset)
}

func (s *Service) Average(ctx context.Context, bookID string) (Average, error) {
	return s.repo.Average(ctx, bookID)
}
