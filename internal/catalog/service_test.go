package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Search(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo := NewMockRepository(ctrl)
	lookup := NewMockLookup(ctrl)
	svc := NewService(repo, lookup)

	local := Book{Source: SourceLocal, ID: "1", Title: "Dune", ISBN13: "9780441172719"}
	dupe := Book{Source: SourceGoogle, ID: "g1", Title: "Dune", ISBN13: "9780441172719", CoverImage: "http://x/c.jpg"}
	other := Book{Source: SourceGoogle, ID: "g2", Title: "Dune Messiah", ISBN13: "9780593098233"}

	t.Run("merges and dedupes external results", func(t *testing.T) {
		q := SearchQuery{Q: "dune", Type: SearchGeneral, Limit: 20}
		repo.EXPECT().Search(gomock.Any(), q).Return([]Book{local}, 1, nil)
		lookup.EXPECT().Search(gomock.Any(), "dune", 0, 19).Return([]Book{dupe, other}, 2, nil)

		books, total, err := svc.Search(context.Background(), SearchQuery{Q: "dune", Limit: 20})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, books, 2)
		assert.Equal(t, "1", books[0].ID)
		assert.Equal(t, "g2", books[1].ID)
	})

	t.Run("isbn queries are cleaned for the provider", func(t *testing.T) {
		repo.EXPECT().Search(gomock.Any(), gomock.Any()).Return(nil, 0, nil)
		lookup.EXPECT().Search(gomock.Any(), "isbn:9780441172719", 0, 5).Return(nil, 0, nil)

		_, _, err := svc.Search(context.Background(), SearchQuery{Q: "978-0441172719", Type: SearchISBN, Limit: 5})
		require.NoError(t, err)
	})

	t.Run("external failure degrades to local", func(t *testing.T) {
		repo.EXPECT().Search(gomock.Any(), gomock.Any()).Return([]Book{local}, 1, nil)
		lookup.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, 0, errors.New("quota"))

		books, total, err := svc.Search(context.Background(), SearchQuery{Q: "dune", Limit: 20})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Len(t, books, 1)
	})

	t.Run("full local page skips provider", func(t *testing.T) {
		repo.EXPECT().Search(gomock.Any(), gomock.Any()).Return([]Book{local}, 7, nil)

		books, total, err := svc.Search(context.Background(), SearchQuery{Q: "dune", Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, 7, total)
		assert.Len(t, books, 1)
	})

	t.Run("local error is returned", func(t *testing.T) {
		repo.EXPECT().Search(gomock.Any(), gomock.Any()).Return(nil, 0, context.DeadlineExceeded)

		_, _, err := svc.Search(context.Background(), SearchQuery{Q: "dune", Limit: 20})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestMergeResults_CoversFirstWithinSource(t *testing.T) {
	external := []Book{
		{Source: SourceGoogle, ID: "a"},
		{Source: SourceGoogle, ID: "b", CoverImage: "http://x/b.jpg"},
	}
	local := []Book{{Source: SourceLocal, ID: "l"}}

	merged := MergeResults(local, external)
	ids := []string{merged[0].ID, merged[1].ID, merged[2].ID}
	assert.Equal(t, []string{"l", "b", "a"}, ids)
}

func TestService_GetByID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo := NewMockRepository(ctrl)
	lookup := NewMockLookup(ctrl)
	svc := NewService(repo, lookup)

	t.Run("local", func(t *testing.T) {
		repo.EXPECT().GetByID(gomock.Any(), "42").Return(Book{ID: "42", Source: SourceLocal}, nil)
		b, err := svc.GetByID(context.Background(), SourceLocal, "42")
		require.NoError(t, err)
		assert.Equal(t, "42", b.ID)
	})

	t.Run("external hit", func(t *testing.T) {
		lookup.EXPECT().LookupByID(gomock.Any(), SourceGoogle, "zyTCAlFPjgYC").
			Return(&Book{ID: "zyTCAlFPjgYC", Source: SourceGoogle}, nil)
		b, err := svc.GetByID(context.Background(), SourceGoogle, "zyTCAlFPjgYC")
		require.NoError(t, err)
		assert.Equal(t, SourceGoogle, b.Source)
	})

	t.Run("external miss", func(t *testing.T) {
		lookup.EXPECT().LookupByID(gomock.Any(), SourceOpenLibrary, "OL1M").Return(nil, nil)
		_, err := svc.GetByID(context.Background(), SourceOpenLibrary, "OL1M")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo := NewMockRepository(ctrl)
	svc := NewService(repo, nil)

	t.Run("duplicate isbn", func(t *testing.T) {
		repo.EXPECT().FindByISBN(gomock.Any(), "", "9780441172719").Return(Book{ID: "1"}, nil)
		err := svc.Create(context.Background(), &Book{Title: "Dune", ISBN13: "9780441172719"})
		assert.ErrorIs(t, err, ErrISBNExists)
	})

	t.Run("new isbn", func(t *testing.T) {
		repo.EXPECT().FindByISBN(gomock.Any(), "0441172717", "").Return(Book{}, ErrNotFound)
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, b *Book) error {
			b.ID = "new-id"
			return nil
		})
		b := &Book{Title: "Dune", ISBN10: "0441172717"}
		require.NoError(t, svc.Create(context.Background(), b))
		assert.Equal(t, "new-id", b.ID)
	})

	t.Run("no isbn skips duplicate check", func(t *testing.T) {
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		require.NoError(t, svc.Create(context.Background(), &Book{Title: "Untitled"}))
	})
}
