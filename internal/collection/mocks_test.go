package collection

import (
	"context"

	"github.com/stretchr/testify/mock"

	"libro/internal/catalog"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Add(ctx context.Context, e *Entry) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockRepo) Exists(ctx context.Context, userID, bookID string) (bool, error) {
	args := m.Called(ctx, userID, bookID)
	return args.Bool(0), args.Error(1)
}

func (m *mockRepo) Get(ctx context.Context, userID, bookID string) (Entry, error) {
	args := m.Called(ctx, userID, bookID)
	return args.Get(0).(Entry), args.Error(1)
}

func (m *mockRepo) UpdateStatus(ctx context.Context, userID, bookID string, ownership Ownership, reading Reading) (Entry, error) {
	args := m.Called(ctx, userID, bookID, ownership, reading)
	return args.Get(0).(Entry), args.Error(1)
}

func (m *mockRepo) Remove(ctx context.Context, userID, bookID string) error {
	return m.Called(ctx, userID, bookID).Error(0)
}

func (m *mockRepo) List(ctx context.Context, userID string, limit, offset int) ([]Entry, int, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]Entry), args.Int(1), args.Error(2)
}

func (m *mockRepo) ListAll(ctx context.Context, userID string) ([]Entry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Entry), args.Error(1)
}

type mockBooks struct {
	mock.Mock
}

func (m *mockBooks) GetByID(ctx context.Context, source, id string) (catalog.Book, error) {
	args := m.Called(ctx, source, id)
	return args.Get(0).(catalog.Book), args.Error(1)
}
