package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libro/internal/auth"
	"libro/internal/catalog"
	"libro/internal/collection"
	"libro/internal/importer"
	"libro/internal/review"
	"libro/internal/testutil"
)

const testSecret = "routing-secret"

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

// Handlers are built without services; every request below is answered
// before a service would be reached.
func testRouter(db pinger) http.Handler {
	return newRouter(routerDeps{
		jwtSecret:      testSecret,
		corsOrigins:    []string{"http://localhost:5173"},
		maxUploadBytes: 1 << 20,
		db:             db,
		catalog:        catalog.NewHTTPHandler(nil),
		collection:     collection.NewHTTPHandler(nil),
		reviews:        review.NewHTTPHandler(nil),
		importer:       importer.NewHTTPHandler(nil, testSecret, []string{"http://localhost:5173"}, 1<<20),
	})
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := serve(testRouter(nil), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestReadyz(t *testing.T) {
	ok := serve(testRouter(fakePinger{}), httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, ok.Code)

	down := serve(testRouter(fakePinger{err: errors.New("refused")}), httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, down.Code)
}

func TestV1Routing_ProtectedRoutesRequireToken(t *testing.T) {
	h := testRouter(nil)
	routes := []struct{ method, path string }{
		{http.MethodPost, "/v1/books"},
		{http.MethodPatch, "/v1/books/b1"},
		{http.MethodGet, "/v1/books/b1/reviews/mine"},
		{http.MethodPost, "/v1/books/b1/reviews"},
		{http.MethodPatch, "/v1/reviews/r1"},
		{http.MethodDelete, "/v1/reviews/r1"},
		{http.MethodGet, "/v1/me/reviews"},
		{http.MethodGet, "/v1/library"},
		{http.MethodPost, "/v1/library"},
		{http.MethodGet, "/v1/library/export"},
		{http.MethodPost, "/v1/library/import"},
		{http.MethodGet, "/v1/library/b1/status"},
		{http.MethodPatch, "/v1/library/b1"},
		{http.MethodDelete, "/v1/library/b1"},
		{http.MethodGet, "/v1/library/import/ws"},
	}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			rec := serve(h, httptest.NewRequest(rt.method, rt.path, nil))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
		})
	}
}

func TestV1Routing_PublicRoutes(t *testing.T) {
	rec := serve(testRouter(nil), httptest.NewRequest(http.MethodGet, "/v1/books", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestV1Routing_UnprefixedPathsAreNotFound(t *testing.T) {
	rec := serve(testRouter(nil), httptest.NewRequest(http.MethodGet, "/books", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestV1Routing_TokenReachesHandler(t *testing.T) {
	tok := testutil.GenerateTestToken(testSecret, testutil.TestSession)
	req := testutil.NewRequestWithAuth(http.MethodPost, "/v1/library", map[string]string{"book_id": ""}, tok)

	res := testutil.RecordHTTPResponse(serve(testRouter(nil), req))
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "VALIDATION_ERROR", res.ErrorCode())
}

func TestV1Routing_ExpiredTokenRejected(t *testing.T) {
	tok := testutil.GenerateExpiredToken(testSecret, testutil.TestSession)
	req := testutil.NewRequestWithAuth(http.MethodGet, "/v1/library", nil, tok)

	res := testutil.RecordHTTPResponse(serve(testRouter(nil), req))
	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Equal(t, "UNAUTHORIZED", res.ErrorCode())
}

func TestV1Routing_WebsocketAcceptsQueryToken(t *testing.T) {
	tok, err := auth.GenerateToken(testSecret, "alice", auth.RoleUser, time.Minute)
	require.NoError(t, err)

	// A plain GET with a valid token fails the upgrade, proving the handler accepted the session.
	rec := serve(testRouter(nil), httptest.NewRequest(http.MethodGet, "/v1/library/import/ws?access_token="+tok, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestV1Routing_WebsocketUpgradesThroughMiddleware(t *testing.T) {
	srv := httptest.NewServer(testRouter(nil))
	defer srv.Close()

	tok := testutil.GenerateTestToken(testSecret, testutil.TestSession)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/library/import/ws?access_token=" + tok
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
}

func TestV1Routing_CORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/v1/library", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := serve(testRouter(nil), req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}
