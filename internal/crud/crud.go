// Package crud holds the shared query/insert/update/soft-delete primitives
// every domain service is built on. Statements are schema-qualified through
// the tenant executor and every value is bound as a positional parameter.
package crud

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/rukioi/legalflow/internal/tenant"
)

var (
	// ErrNotFound means the id did not resolve to an active row.
	ErrNotFound = errors.New("no matching active row")
	// ErrNoFields means an update was requested with an empty field map.
	// That is a caller bug, not a transient condition.
	ErrNoFields = errors.New("no fields to update")
)

// ValidationError names the field that failed entity validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// RowScanner maps one row onto an entity value.
type RowScanner[T any] func(row pgx.Row) (T, error)

// Query runs an arbitrary read statement and collects the typed rows.
// The result is never nil; an empty list marshals as [].
func Query[T any](ctx context.Context, db *tenant.DB, tmpl string, args []any, scan RowScanner[T]) ([]T, error) {
	rows, err := db.Query(ctx, tmpl, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, tenant.WrapError(tmpl, err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, tenant.WrapError(tmpl, err)
	}
	return out, nil
}

// Get runs a single-row read and maps "no rows" to a nil result, not an error.
func Get[T any](ctx context.Context, db *tenant.DB, tmpl string, args []any, scan RowScanner[T]) (*T, error) {
	item, err := scan(db.QueryRow(ctx, tmpl, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, tenant.WrapError(tmpl, err)
	}
	return &item, nil
}

// Insert writes one row and reads it back (server-generated id and timestamps
// included) in the same round trip.
func Insert[T any](ctx context.Context, db *tenant.DB, table string, fields Fields, returning string, scan RowScanner[T]) (T, error) {
	var zero T
	tmpl, args, err := BuildInsert(table, fields, returning)
	if err != nil {
		return zero, err
	}
	item, err := scan(db.QueryRow(ctx, tmpl, args...))
	if err != nil {
		return zero, tenant.WrapError(tmpl, err)
	}
	return item, nil
}

// Update applies a sparse partial update: only the keys present in fields
// change, updated_at is always refreshed. ErrNotFound when no active row
// matched the id.
func Update[T any](ctx context.Context, db *tenant.DB, table string, id any, fields Fields, returning string, scan RowScanner[T]) (T, error) {
	var zero T
	tmpl, args, err := BuildUpdate(table, id, fields, returning)
	if err != nil {
		return zero, err
	}
	item, err := scan(db.QueryRow(ctx, tmpl, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return zero, ErrNotFound
	}
	if err != nil {
		return zero, tenant.WrapError(tmpl, err)
	}
	return item, nil
}

// SoftDelete deactivates the matching row and returns it. The row stays in
// the table; list and get paths filter on is_active.
func SoftDelete[T any](ctx context.Context, db *tenant.DB, table string, id any, returning string, scan RowScanner[T]) (T, error) {
	var zero T
	tmpl := fmt.Sprintf(
		"UPDATE %s.%s SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active = TRUE RETURNING %s",
		tenant.SchemaPlaceholder, table, returning)
	item, err := scan(db.QueryRow(ctx, tmpl, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return zero, ErrNotFound
	}
	if err != nil {
		return zero, tenant.WrapError(tmpl, err)
	}
	return item, nil
}
