package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rukioi/legalflow/internal/tenant"
)

func TestExtractBearerToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, extractBearerToken(r))

	r.Header.Set("Authorization", "Bearer abc123")
	assert.Equal(t, "abc123", extractBearerToken(r))

	r.Header.Set("Authorization", "Basic abc123")
	assert.Empty(t, extractBearerToken(r))
}

func TestJWTMiddlewareRejectsMissingToken(t *testing.T) {
	m := NewJWTMiddleware("secret", tenant.NewService(nil))

	called := false
	h := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
	assert.Contains(t, rec.Body.String(), "missing authorization token")
}

func TestJWTMiddlewareRejectsGarbageToken(t *testing.T) {
	m := NewJWTMiddleware("secret", tenant.NewService(nil))

	h := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	r.Header.Set("Authorization", "Bearer not.a.jwt")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddlewareSkipsWhenTenantAlreadyBound(t *testing.T) {
	m := NewJWTMiddleware("secret", tenant.NewService(nil))

	db, err := tenant.NewDB(nil, "acme")
	require.NoError(t, err)

	called := false
	h := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	r = r.WithContext(tenant.WithDB(r.Context(), db))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	assert.True(t, called, "API-key bound requests pass through untouched")
}

func TestHashAPIKey(t *testing.T) {
	a := HashAPIKey("lf_live_abc")
	assert.Len(t, a, 64)
	assert.Equal(t, a, HashAPIKey("lf_live_abc"))
	assert.NotEqual(t, a, HashAPIKey("lf_live_abd"))
}
