package tenant

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rukioi/legalflow/internal/models"
)

func TestRewrite(t *testing.T) {
	db, err := NewDB(nil, "acme")
	require.NoError(t, err)

	got := db.rewrite("SELECT id FROM {{schema}}.clients WHERE id = $1")
	assert.Equal(t, "SELECT id FROM tenant_acme.clients WHERE id = $1", got)

	// Multiple occurrences all rewritten
	got = db.rewrite("SELECT * FROM {{schema}}.tasks t JOIN {{schema}}.projects p ON p.id = t.project_id")
	assert.NotContains(t, got, SchemaPlaceholder)
}

func TestNewDBInvalidTenant(t *testing.T) {
	_, err := NewDB(nil, "acme;drop")
	assert.ErrorIs(t, err, ErrInvalidTenantID)
}

func TestBindDB(t *testing.T) {
	id := uuid.New()

	t.Run("stored schema name wins", func(t *testing.T) {
		db, err := BindDB(nil, &models.Tenant{ID: id, SchemaName: "tenant_acme"})
		require.NoError(t, err)
		assert.Equal(t, "tenant_acme", db.Schema())
		assert.Equal(t, id.String(), db.TenantID())
	})

	t.Run("missing schema name derives from id", func(t *testing.T) {
		db, err := BindDB(nil, &models.Tenant{ID: id})
		require.NoError(t, err)
		assert.Contains(t, db.Schema(), "tenant_")
	})

	t.Run("corrupt stored schema name rejected", func(t *testing.T) {
		_, err := BindDB(nil, &models.Tenant{ID: id, SchemaName: "tenant_acme; DROP SCHEMA public"})
		assert.ErrorIs(t, err, ErrInvalidTenantID)
	})
}

func TestWrapError(t *testing.T) {
	const stmt = "SELECT id FROM {{schema}}.clients WHERE id = $1"

	t.Run("nil passes through", func(t *testing.T) {
		assert.NoError(t, WrapError(stmt, nil))
	})

	t.Run("no rows passes through", func(t *testing.T) {
		assert.ErrorIs(t, WrapError(stmt, pgx.ErrNoRows), pgx.ErrNoRows)
	})

	t.Run("missing schema", func(t *testing.T) {
		err := WrapError(stmt, &pgconn.PgError{Code: "3F000"})
		assert.ErrorIs(t, err, ErrSchemaNotFound)
	})

	t.Run("missing table", func(t *testing.T) {
		err := WrapError(stmt, &pgconn.PgError{Code: "42P01"})
		assert.ErrorIs(t, err, ErrSchemaNotFound)
	})

	t.Run("constraint violation is a query error", func(t *testing.T) {
		err := WrapError(stmt, &pgconn.PgError{Code: "23505"})
		var qe *QueryError
		require.ErrorAs(t, err, &qe)
		assert.Equal(t, stmt, qe.Stmt)
	})

	t.Run("deadline is a connection error", func(t *testing.T) {
		err := WrapError(stmt, context.DeadlineExceeded)
		var ce *ConnectionError
		assert.ErrorAs(t, err, &ce)
	})

	t.Run("plain errors are query errors with the template", func(t *testing.T) {
		err := WrapError(stmt, errors.New("boom"))
		var qe *QueryError
		require.ErrorAs(t, err, &qe)
		assert.Equal(t, stmt, qe.Stmt)
		assert.EqualError(t, qe.Err, "boom")
	})
}
