package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rukioi/legalflow/internal/crud"
	"github.com/rukioi/legalflow/internal/tenant"
)

func TestParseListFilter(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet,
		"/api/v1/clients?page=2&limit=10&status=active&priority=high&search=silva&tags=vip,trabalhista&tags=urgente", nil)

	f := parseListFilter(r)
	assert.Equal(t, 2, f.Page)
	assert.Equal(t, 10, f.Limit)
	assert.Equal(t, "active", f.Status)
	assert.Equal(t, "high", f.Priority)
	assert.Equal(t, "silva", f.Search)
	assert.Equal(t, []string{"vip", "trabalhista", "urgente"}, f.Tags)
}

func TestParseListFilterDefaults(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	f := parseListFilter(r)
	assert.Zero(t, f.Page)
	assert.Zero(t, f.Limit)
	assert.Empty(t, f.Tags)
}

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"validation", &crud.ValidationError{Field: "name", Reason: "required"}, http.StatusBadRequest, "name"},
		{"empty patch", crud.ErrNoFields, http.StatusBadRequest, "no updatable fields"},
		{"no tenant", tenant.ErrNoTenant, http.StatusUnauthorized, "no tenant"},
		{"connection", &tenant.ConnectionError{Err: errors.New("dial tcp: refused")}, http.StatusServiceUnavailable, "database unavailable"},
		{"query error stays generic", &tenant.QueryError{Stmt: "SELECT secret", Err: errors.New("boom")}, http.StatusInternalServerError, "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
			writeServiceError(rec, r, tt.err)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
		})
	}
}

func TestWriteServiceErrorNeverLeaksStatements(t *testing.T) {
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	writeServiceError(rec, r, &tenant.QueryError{
		Stmt: "SELECT id FROM {{schema}}.clients WHERE id = $1",
		Err:  errors.New("syntax error"),
	})
	assert.NotContains(t, rec.Body.String(), "SELECT")
	assert.NotContains(t, rec.Body.String(), "syntax error")
}

func TestRemoteIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.9:51234"
	assert.Equal(t, "203.0.113.9", remoteIP(r))

	r.RemoteAddr = "[2001:db8::1]:443"
	assert.Equal(t, "2001:db8::1", remoteIP(r))
}
