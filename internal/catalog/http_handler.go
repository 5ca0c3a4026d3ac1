package catalog

import (
	"errors"
	"net/http"
	"strings"

	"libro/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// Search handles GET /v1/books
// @Summary Search books
// @Description Searches the local catalog and external providers. Local books come first.
// @Tags books
// @Produce json
// @Param q query string true "Search terms"
// @Param type query string false "general or isbn"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /v1/books [get]
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := strings.TrimSpace(query.Get("q"))
	if q == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Query parameter q is required", nil)
		return
	}

	searchType := SearchType(query.Get("type"))
	if searchType != "" && searchType != SearchGeneral && searchType != SearchISBN {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "type must be general or isbn", nil)
		return
	}

	page, pageSize := httpx.Pagination(r, 20)
	books, total, err := h.service.Search(r.Context(), SearchQuery{
		Q:      q,
		Type:   searchType,
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	})
	if err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	if books == nil {
		books = []Book{}
	}
	httpx.JSONSuccess(w, r, books, httpx.PageMeta(page, pageSize, total))
}

// GetByID handles GET /v1/books/{source}/{id}
// @Summary Get a book
// @Tags books
// @Produce json
// @Param source path string true "libro, google or openlibrary"
// @Param id path string true "Book ID within the source"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/books/{source}/{id} [get]
func (h *HTTPHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	source, id := r.PathValue("source"), r.PathValue("id")
	if id == "" {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
		return
	}

	book, err := h.service.GetByID(r.Context(), source, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
			return
		}
		httpx.JSONError(w, r, http.StatusBadGateway, "UPSTREAM_ERROR", "Book provider unavailable", nil)
		return
	}
	httpx.JSONSuccess(w, r, book, nil)
}

type createBookRequest struct {
	Title         string   `json:"title" validate:"required,max=500"`
	Authors       []string `json:"authors" validate:"required,min=1"`
	Description   string   `json:"description"`
	PublishedDate string   `json:"published_date"`
	Publisher     string   `json:"publisher"`
	PageCount     *int     `json:"page_count" validate:"omitempty,min=1"`
	Language      string   `json:"language"`
	ISBN10        string   `json:"isbn10" validate:"omitempty,isbn"`
	ISBN13        string   `json:"isbn13" validate:"omitempty,isbn"`
	Categories    []string `json:"categories"`
	CoverImage    string   `json:"cover_image" validate:"omitempty,url"`
}

// Create handles POST /v1/books
// @Summary Add a book to the local catalog
// @Tags books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /v1/books [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBookRequest
	if !httpx.DecodeAndValidate(w, r, &req) {
		return
	}

	book := Book{
		Title:         strings.TrimSpace(req.Title),
		Authors:       req.Authors,
		Description:   req.Description,
		PublishedDate: req.PublishedDate,
		Publisher:     req.Publisher,
		PageCount:     req.PageCount,
		Language:      req.Language,
		ISBN10:        CleanISBN(req.ISBN10),
		ISBN13:        CleanISBN(req.ISBN13),
		Categories:    req.Categories,
		CoverImage:    req.CoverImage,
	}
	if err := h.service.Create(r.Context(), &book); err != nil {
		if errors.Is(err, ErrISBNExists) {
			httpx.JSONError(w, r, http.StatusConflict, "ISBN_EXISTS", err.Error(), nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccessCreated(w, r, book)
}

// Update handles PATCH /v1/books/{id}
// @Summary Update a local book
// @Tags books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/books/{id} [patch]
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	var fields UpdateFields
	if !httpx.DecodeAndValidate(w, r, &fields) {
		return
	}

	book, err := h.service.Update(r.Context(), r.PathValue("id"), fields)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccess(w, r, book, nil)
}
