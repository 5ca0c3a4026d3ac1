package review

import (
	"errors"
	"net/http"

	"libro/internal/auth"
	"libro/internal/httpx"
	"libro/internal/platform/logger"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrNoSession):
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
	case errors.Is(err, ErrInvalidRating):
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), []httpx.ErrorDetail{
			{Field: "rating", Message: err.Error()},
		})
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Review not found", nil)
	case errors.Is(err, ErrForbidden):
		httpx.JSONError(w, r, http.StatusForbidden, "FORBIDDEN", err.Error(), nil)
	case errors.Is(err, ErrDuplicate):
		httpx.JSONError(w, r, http.StatusConflict, "ALREADY_REVIEWED", err.Error(), nil)
	default:
		logger.Named("review").Errorw("request failed", "path", r.URL.Path, "error", err)
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}

// ListByBook handles GET /v1/books/{id}/reviews
// @Summary List reviews of a book
// @Tags reviews
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/books/{id}/reviews [get]
func (h *HTTPHandler) ListByBook(w http.ResponseWriter, r *http.Request) {
	page, pageSize := httpx.Pagination(r, 10)
	reviews, total, err := h.service.ListByBook(r.Context(), r.PathValue("id"), pageSize, (page-1)*pageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if reviews == nil {
		reviews = []Review{}
	}
	httpx.JSONSuccess(w, r, reviews, httpx.PageMeta(page, pageSize, total))
}

// Rating handles GET /v1/books/{id}/rating
// @Summary Average rating of a book
// @Tags reviews
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/books/{id}/rating [get]
func (h *HTTPHandler) Rating(w http.ResponseWriter, r *http.Request) {
	avg, err := h.service.Average(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, avg, nil)
}

// Mine handles GET /v1/books/{id}/reviews/mine
func (h *HTTPHandler) Mine(w http.ResponseWriter, r *http.Request) {
	rv, err := h.service.Mine(r.Context(), httpx.SessionFrom(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, rv, nil)
}

type createRequest struct {
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Text   string `json:"review_text" validate:"max=5000"`
}

// Create handles POST /v1/books/{id}/reviews
// @Summary Review a book
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Book ID"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /v1/books/{id}/reviews [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !httpx.DecodeAndValidate(w, r, &req) {
		return
	}
	rv, err := h.service.Create(r.Context(), httpx.SessionFrom(r), Review{
		BookID: r.PathValue("id"),
		Rating: req.Rating,
		Text:   req.Text,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccessCreated(w, r, rv)
}

type updateRequest struct {
	Rating *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Text   *string `json:"review_text" validate:"omitempty,max=5000"`
}

// Update handles PATCH /v1/reviews/{id}
// @Summary Edit one of the caller's reviews
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Router /v1/reviews/{id} [patch]
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if !httpx.DecodeAndValidate(w, r, &req) {
		return
	}
	rv, err := h.service.Update(r.Context(), httpx.SessionFrom(r), r.PathValue("id"), Changes{
		Rating: req.Rating,
		Text:   req.Text,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, rv, nil)
}

// Delete handles DELETE /v1/reviews/{id}
// @Summary Delete one of the caller's reviews
// @Tags reviews
// @Security BearerAuth
// @Param id path string true "Review ID"
// @Success 204
// @Router /v1/reviews/{id} [delete]
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), httpx.SessionFrom(r), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccessNoContent(w)
}

// ListMine handles GET /v1/me/reviews
// @Summary List the caller's reviews
// @Tags reviews
// @Produce json
// @Security BearerAuth
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/me/reviews [get]
func (h *HTTPHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	page, pageSize := httpx.Pagination(r, 10)
	reviews, total, err := h.service.ListByUser(r.Context(), httpx.SessionFrom(r), pageSize, (page-1)*pageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if reviews == nil {
		reviews = []Review{}
	}
	httpx.JSONSuccess(w, r, reviews, httpx.PageMeta(page, pageSize, total))
}
