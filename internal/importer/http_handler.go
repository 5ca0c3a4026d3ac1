package importer

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"

	crdb "github.com/cockroachdb/errors"
	"github.com/gorilla/websocket"

	"libro/internal/auth"
	"libro/internal/httpx"
	"libro/internal/platform/logger"
)

type HTTPHandler struct {
	service        *Service
	jwtSecret      string
	allowedOrigins []string
	maxUploadBytes int64
}

func NewHTTPHandler(service *Service, jwtSecret string, allowedOrigins []string, maxUploadBytes int64) *HTTPHandler {
	return &HTTPHandler{
		service:        service,
		jwtSecret:      jwtSecret,
		allowedOrigins: allowedOrigins,
		maxUploadBytes: maxUploadBytes,
	}
}

// errorCode maps a fatal import error to its API code and status.
func errorCode(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrNoSession):
		return http.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, ErrEmptyFile):
		return http.StatusBadRequest, "EMPTY_FILE"
	case errors.Is(err, ErrMissingISBNColumns):
		return http.StatusBadRequest, "MISSING_ISBN_COLUMNS"
	case errors.Is(err, ErrMissingStatusColumns):
		return http.StatusBadRequest, "MISSING_STATUS_COLUMNS"
	case errors.Is(err, ErrMalformedCSV):
		return http.StatusBadRequest, "MALFORMED_CSV"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

func errorMessage(status int, err error) string {
	switch {
	case errors.Is(err, auth.ErrNoSession):
		return "Authentication required"
	case status == http.StatusInternalServerError:
		return "Internal server error"
	case errors.Is(err, ErrMalformedCSV):
		return err.Error()
	}
	for _, sentinel := range []error{ErrEmptyFile, ErrMissingISBNColumns, ErrMissingStatusColumns} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorCode(err)
	if status == http.StatusInternalServerError {
		logger.Named("importer").Errorw("import failed", "user_id", httpx.UserIDFrom(r), "error", err)
	}
	var details []httpx.ErrorDetail
	for _, hint := range crdb.GetAllHints(err) {
		details = append(details, httpx.ErrorDetail{Field: "file", Message: hint})
	}
	httpx.JSONError(w, r, status, code, errorMessage(status, err), details)
}

// upload returns the CSV body of a multipart form field "file" or the raw body.
func (h *HTTPHandler) upload(r *http.Request) (io.ReadCloser, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, err
		}
		return file, nil
	}
	return r.Body, nil
}

// Import handles POST /v1/library/import
// @Summary Import a library CSV
// @Description Accepts a Goodreads export or a libro export, as multipart field "file" or raw text/csv.
// @Tags library
// @Accept text/csv
// @Produce json
// @Security BearerAuth
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /v1/library/import [post]
func (h *HTTPHandler) Import(w http.ResponseWriter, r *http.Request) {
	sess := httpx.SessionFrom(r)
	if !sess.Valid() {
		h.writeError(w, r, auth.ErrNoSession)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	body, err := h.upload(r)
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "A CSV file is required", []httpx.ErrorDetail{
			{Field: "file", Message: err.Error()},
		})
		return
	}
	defer body.Close()

	result, err := h.service.Import(r.Context(), sess, body, nil)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.JSONError(w, r, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Upload is too large", nil)
			return
		}
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, result, nil)
}

type streamMessage struct {
	Type    string `json:"type"`
	Current int    `json:"current,omitempty"`
	Total   int    `json:"total,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	*Result
}

func (h *HTTPHandler) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
}

// checkOrigin accepts clients without an Origin header and the configured CORS origins.
func (h *HTTPHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// streamSession accepts a bearer token or, for browsers that cannot set
// headers on a websocket handshake, an access_token query parameter.
func (h *HTTPHandler) streamSession(r *http.Request) (auth.Session, bool) {
	if sess := httpx.SessionFrom(r); sess.Valid() {
		return sess, true
	}
	tok := r.URL.Query().Get("access_token")
	if tok == "" {
		return auth.Session{}, false
	}
	sess, err := auth.SessionFromToken(h.jwtSecret, tok)
	if err != nil {
		return auth.Session{}, false
	}
	return sess, true
}

// Stream handles GET /v1/library/import/ws
// @Summary Import a library CSV with live progress
// @Description The client sends the CSV as one message. The server replies with progress
// @Description messages, then a single result or error message, and closes.
// @Tags library
// @Param access_token query string false "Bearer token when the Authorization header cannot be set"
// @Router /v1/library/import/ws [get]
func (h *HTTPHandler) Stream(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.streamSession(r)
	if !ok {
		h.writeError(w, r, auth.ErrNoSession)
		return
	}

	up := h.upgrader()
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		logger.Named("importer").Warnw("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(h.maxUploadBytes)

	log := logger.Named("importer")
	_, data, err := conn.ReadMessage()
	if err != nil {
		log.Warnw("websocket read failed", "user_id", sess.UserID, "error", err)
		return
	}

	var writeErr error
	onProgress := func(p Progress) {
		if writeErr != nil {
			return
		}
		writeErr = conn.WriteJSON(streamMessage{Type: "progress", Current: p.Current, Total: p.Total})
	}

	result, err := h.service.Import(r.Context(), sess, bytes.NewReader(data), onProgress)
	if err != nil {
		status, code := errorCode(err)
		_ = conn.WriteJSON(streamMessage{Type: "error", Code: code, Message: errorMessage(status, err)})
	} else {
		_ = conn.WriteJSON(streamMessage{Type: "result", Result: result})
	}
	if writeErr != nil {
		log.Warnw("websocket progress write failed", "user_id", sess.UserID, "error", writeErr)
	}

	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "import finished"))
}
