package httpx

import (
	"context"
	"net/http"
	"strconv"

	"libro/internal/auth"
)

type contextKey string

const (
	sessionKey   contextKey = "session"
	requestIDKey contextKey = "requestID"
)

// SessionFrom returns the authenticated session, or a zero Session when the
// request is anonymous.
func SessionFrom(r *http.Request) auth.Session {
	if v, ok := r.Context().Value(sessionKey).(auth.Session); ok {
		return v
	}
	return auth.Session{}
}

// UserIDFrom retrieves the user ID from the request context.
func UserIDFrom(r *http.Request) string {
	return SessionFrom(r).UserID
}

// ContextWithSession returns a new context carrying the session.
func ContextWithSession(ctx context.Context, s auth.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// RequestIDFrom retrieves the request ID from the request context.
func RequestIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// Pagination reads page/page_size query parameters with sane bounds.
func Pagination(r *http.Request, defaultSize int) (page, pageSize int) {
	query := r.URL.Query()
	page, _ = strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(query.Get("page_size"))
	if pageSize <= 0 || pageSize > 100 {
		pageSize = defaultSize
	}
	return page, pageSize
}
