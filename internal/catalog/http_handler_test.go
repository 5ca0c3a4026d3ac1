package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
)

func TestHTTPHandler_Search(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(mockRepo, nil))

	t.Run("success", func(t *testing.T) {
		mockRepo.EXPECT().Search(gomock.Any(), SearchQuery{Q: "dune", Type: SearchGeneral, Limit: 20}).
			Return([]Book{{ID: "1", Title: "Dune", Source: SourceLocal}}, 1, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/v1/books?q=dune", nil)
		handler.Search(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"total":1`)
	})

	t.Run("missing query", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Search(w, httptest.NewRequest(http.MethodGet, "/v1/books", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad type", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Search(w, httptest.NewRequest(http.MethodGet, "/v1/books?q=x&type=author", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("error", func(t *testing.T) {
		mockRepo.EXPECT().Search(gomock.Any(), gomock.Any()).Return(nil, 0, context.DeadlineExceeded)

		w := httptest.NewRecorder()
		handler.Search(w, httptest.NewRequest(http.MethodGet, "/v1/books?q=dune", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestHTTPHandler_GetByID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(mockRepo, nil))

	t.Run("success", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(gomock.Any(), "7").Return(Book{ID: "7", Source: SourceLocal}, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/v1/books/libro/7", nil)
		r.SetPathValue("source", SourceLocal)
		r.SetPathValue("id", "7")
		handler.GetByID(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(gomock.Any(), "8").Return(Book{}, ErrNotFound)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/v1/books/libro/8", nil)
		r.SetPathValue("source", SourceLocal)
		r.SetPathValue("id", "8")
		handler.GetByID(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("external source without provider", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/v1/books/google/abc", nil)
		r.SetPathValue("source", SourceGoogle)
		r.SetPathValue("id", "abc")
		handler.GetByID(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHTTPHandler_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(mockRepo, nil))

	t.Run("created", func(t *testing.T) {
		mockRepo.EXPECT().FindByISBN(gomock.Any(), "", "9780441172719").Return(Book{}, ErrNotFound)
		mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		body := `{"title":"Dune","authors":["Frank Herbert"],"isbn13":"978-0441172719"}`
		w := httptest.NewRecorder()
		handler.Create(w, httptest.NewRequest(http.MethodPost, "/v1/books", strings.NewReader(body)))

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("conflict", func(t *testing.T) {
		mockRepo.EXPECT().FindByISBN(gomock.Any(), "", "9780441172719").Return(Book{ID: "1"}, nil)

		body := `{"title":"Dune","authors":["Frank Herbert"],"isbn13":"9780441172719"}`
		w := httptest.NewRecorder()
		handler.Create(w, httptest.NewRequest(http.MethodPost, "/v1/books", strings.NewReader(body)))

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("validation", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Create(w, httptest.NewRequest(http.MethodPost, "/v1/books", strings.NewReader(`{"title":""}`)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
	})
}

func TestHTTPHandler_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(mockRepo, nil))

	t.Run("success", func(t *testing.T) {
		mockRepo.EXPECT().Update(gomock.Any(), "5", UpdateFields{Publisher: "Ace"}).
			Return(Book{ID: "5", Publisher: "Ace"}, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPatch, "/v1/books/5", strings.NewReader(`{"publisher":"Ace"}`))
		r.SetPathValue("id", "5")
		handler.Update(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("bad cover url", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPatch, "/v1/books/5", strings.NewReader(`{"cover_image":"not a url"}`))
		r.SetPathValue("id", "5")
		handler.Update(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
