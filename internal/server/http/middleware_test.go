package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedstack/social-feed-service/internal/database"
	"github.com/feedstack/social-feed-service/internal/domain"
)

func TestAuthMiddleware_MissingToken(t *testing.T) {
	s := newTestServer(t, defaultRepos(), &capturePublisher{}, "http_mw_missing_token_test")

	rr := serveHTTP(s, httptest.NewRequest(http.MethodGet, "/users/", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "missing bearer token")
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	s := newTestServer(t, defaultRepos(), &capturePublisher{}, "http_mw_malformed_test")

	r := httptest.NewRequest(http.MethodGet, "/users/", nil)
	r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rr := serveHTTP(s, r)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthMiddleware_GarbageToken(t *testing.T) {
	s := newTestServer(t, defaultRepos(), &capturePublisher{}, "http_mw_garbage_test")

	r := httptest.NewRequest(http.MethodGet, "/users/", nil)
	r.Header.Set("Authorization", "Bearer not.a.jwt")
	rr := serveHTTP(s, r)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid token")
}

func TestAuthMiddleware_RefreshTokenRejected(t *testing.T) {
	s := newTestServer(t, defaultRepos(), &capturePublisher{}, "http_mw_refresh_test")

	// A refresh token must not grant API access.
	refresh, err := s.tokens.IssueRefresh(&domain.User{Base: domain.Base{ID: 7}})
	require.NoError(t, err)
	r := httptest.NewRequest(http.MethodGet, "/users/", nil)
	r.Header.Set("Authorization", "Bearer "+refresh)
	rr := serveHTTP(s, r)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequestContextMiddleware_SetsRequestID(t *testing.T) {
	s := newTestServer(t, defaultRepos(), &capturePublisher{}, "http_mw_reqid_test")

	rr := serveHTTP(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, defaultRepos(), &capturePublisher{}, "http_healthz_test")

	rr := serveHTTP(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var body map[string]string
	decodeBody(t, rr, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestReadyz_DatabaseDown(t *testing.T) {
	s := newTestServer(t, defaultRepos(), &capturePublisher{}, "http_readyz_down_test")
	s.db = &fakeDB{healthFn: func() database.HealthStatus {
		return database.HealthStatus{Status: "unhealthy", Error: "connection refused"}
	}}

	rr := serveHTTP(s, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	var body map[string]string
	decodeBody(t, rr, &body)
	assert.Equal(t, "not_ready", body["status"])
}

func TestDeleteUser_SelfOnly(t *testing.T) {
	s := newTestServer(t, defaultRepos(), &capturePublisher{}, "http_delete_user_forbidden_test")

	r := authorize(t, s, httptest.NewRequest(http.MethodDelete, "/users/9", nil), 7, domain.RoleUser)
	rr := serveHTTP(s, r)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestDeleteUser_Admin(t *testing.T) {
	s := newTestServer(t, defaultRepos(), &capturePublisher{}, "http_delete_user_admin_test")

	r := authorize(t, s, httptest.NewRequest(http.MethodDelete, "/users/9", nil), 1, domain.RoleAdmin)
	rr := serveHTTP(s, r)

	assert.Equal(t, http.StatusNoContent, rr.Code)
}
