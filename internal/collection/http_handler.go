package collection

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"libro/internal/auth"
	"libro/internal/httpx"
	"libro/internal/platform/logger"
)

type HTTPHandler struct {
	service *Service
	now     func() time.Time
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service, now: time.Now}
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var statusErr *InvalidStatusError
	switch {
	case errors.Is(err, auth.ErrNoSession):
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
	case errors.As(err, &statusErr):
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), []httpx.ErrorDetail{
			{Field: statusErr.Kind + "_status", Message: err.Error()},
		})
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not in your library", nil)
	case errors.Is(err, ErrAlreadyExists):
		httpx.JSONError(w, r, http.StatusConflict, "ALREADY_EXISTS", "Book already in your library", nil)
	default:
		logger.Named("collection").Errorw("request failed", "path", r.URL.Path, "error", err)
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}

// List handles GET /v1/library
// @Summary List the caller's library
// @Tags library
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/library [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := httpx.Pagination(r, 10)
	items, total, err := h.service.List(r.Context(), httpx.SessionFrom(r), pageSize, (page-1)*pageSize)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, items, httpx.PageMeta(page, pageSize, total))
}

type addRequest struct {
	BookID    string `json:"book_id" validate:"required"`
	Source    string `json:"source" validate:"omitempty,oneof=libro google openlibrary"`
	Ownership string `json:"ownership_status" validate:"required"`
	Reading   string `json:"reading_status" validate:"required"`
}

// Add handles POST /v1/library
// @Summary Add a book to the caller's library
// @Tags library
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} httpx.SuccessResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /v1/library [post]
func (h *HTTPHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if !httpx.DecodeAndValidate(w, r, &req) {
		return
	}

	entry, err := h.service.Add(r.Context(), httpx.SessionFrom(r), Entry{
		BookID:    req.BookID,
		Source:    req.Source,
		Ownership: Ownership(req.Ownership),
		Reading:   Reading(req.Reading),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccessCreated(w, r, entry)
}

type updateRequest struct {
	Ownership *string `json:"ownership_status"`
	Reading   *string `json:"reading_status"`
}

// Update handles PATCH /v1/library/{bookID}
// @Summary Change ownership or reading status
// @Tags library
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param bookID path string true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/library/{bookID} [patch]
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if !httpx.DecodeAndValidate(w, r, &req) {
		return
	}
	if req.Ownership == nil && req.Reading == nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Nothing to update", nil)
		return
	}

	var u StatusUpdate
	if req.Ownership != nil {
		o := Ownership(*req.Ownership)
		u.Ownership = &o
	}
	if req.Reading != nil {
		rd := Reading(*req.Reading)
		u.Reading = &rd
	}

	entry, err := h.service.Update(r.Context(), httpx.SessionFrom(r), r.PathValue("bookID"), u)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, entry, nil)
}

// Remove handles DELETE /v1/library/{bookID}
// @Summary Remove a book from the caller's library
// @Tags library
// @Security BearerAuth
// @Param bookID path string true "Book ID"
// @Success 204
// @Router /v1/library/{bookID} [delete]
func (h *HTTPHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Remove(r.Context(), httpx.SessionFrom(r), r.PathValue("bookID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccessNoContent(w)
}

// Status handles GET /v1/library/{bookID}/status
// @Summary Get the caller's status for a book
// @Tags library
// @Produce json
// @Security BearerAuth
// @Param bookID path string true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/library/{bookID}/status [get]
func (h *HTTPHandler) Status(w http.ResponseWriter, r *http.Request) {
	entry, err := h.service.GetStatus(r.Context(), httpx.SessionFrom(r), r.PathValue("bookID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, entry, nil)
}

// Export handles GET /v1/library/export
// @Summary Download the caller's library
// @Tags library
// @Produce text/csv
// @Security BearerAuth
// @Param format query string false "csv (default) or xlsx"
// @Success 200 {file} file
// @Router /v1/library/export [get]
func (h *HTTPHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := ExportFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatXLSX {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "format must be csv or xlsx", nil)
		return
	}

	items, err := h.service.ListAll(r.Context(), httpx.SessionFrom(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	contentType := "text/csv; charset=utf-8"
	write := WriteCSV
	if format == FormatXLSX {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		write = WriteXLSX
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, ExportFilename(format, h.now())))
	if err := write(w, items); err != nil {
		logger.Named("collection").Errorw("export failed", "user_id", httpx.UserIDFrom(r), "error", err)
	}
}
