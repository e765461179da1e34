package tenant

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rukioi/legalflow/internal/models"
)

// SchemaPlaceholder is the token statement templates use in place of a schema
// name. It is replaced before parameter binding; user data never goes through
// this substitution.
const SchemaPlaceholder = "{{schema}}"

// DB binds one tenant's schema to the shared connection pool for the duration
// of a single request. It owns only the schema name; the pool is process-wide
// and must outlive every handle.
type DB struct {
	pool     *pgxpool.Pool
	tenantID string
	schema   string
}

// NewDB derives the schema name from the tenant id and binds it to the pool.
func NewDB(pool *pgxpool.Pool, tenantID string) (*DB, error) {
	schema, err := ResolveSchema(tenantID)
	if err != nil {
		return nil, err
	}
	return &DB{pool: pool, tenantID: tenantID, schema: schema}, nil
}

// BindDB binds a resolved tenant registry row to the pool. The stored schema
// name wins when present; it is still validated before it can reach SQL text.
func BindDB(pool *pgxpool.Pool, t *models.Tenant) (*DB, error) {
	if t.SchemaName == "" {
		return NewDB(pool, t.ID.String())
	}
	if !validSchemaName(t.SchemaName) {
		return nil, ErrInvalidTenantID
	}
	return &DB{pool: pool, tenantID: t.ID.String(), schema: t.SchemaName}, nil
}

func (db *DB) TenantID() string { return db.tenantID }

func (db *DB) Schema() string { return db.schema }

func (db *DB) rewrite(tmpl string) string {
	return strings.ReplaceAll(tmpl, SchemaPlaceholder, db.schema)
}

func (db *DB) Exec(ctx context.Context, tmpl string, args ...any) (pgconn.CommandTag, error) {
	tag, err := db.pool.Exec(ctx, db.rewrite(tmpl), args...)
	if err != nil {
		return tag, WrapError(tmpl, err)
	}
	return tag, nil
}

func (db *DB) Query(ctx context.Context, tmpl string, args ...any) (pgx.Rows, error) {
	rows, err := db.pool.Query(ctx, db.rewrite(tmpl), args...)
	if err != nil {
		return nil, WrapError(tmpl, err)
	}
	return rows, nil
}

// QueryRow defers errors to Scan, so callers wrap the result of Scan with
// WrapError themselves.
func (db *DB) QueryRow(ctx context.Context, tmpl string, args ...any) pgx.Row {
	return db.pool.QueryRow(ctx, db.rewrite(tmpl), args...)
}

// WrapError maps driver failures onto the executor's error taxonomy. The
// statement stored in QueryError is the template text only, with parameters
// still as positional markers.
func WrapError(stmt string, err error) error {
	if err == nil || errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 3F000 invalid_schema_name, 42P01 undefined_table: the tenant was
		// never provisioned (or its schema was dropped out of band).
		if pgErr.Code == "3F000" || pgErr.Code == "42P01" {
			return ErrSchemaNotFound
		}
		return &QueryError{Stmt: stmt, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return &ConnectionError{Err: err}
	}

	return &QueryError{Stmt: stmt, Err: err}
}
