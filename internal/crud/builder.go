package crud

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rukioi/legalflow/internal/tenant"
)

// Fields maps column names to values. Structured values (slices, maps,
// structs) are serialized to JSON exactly once and their parameter cast to
// jsonb; callers pass native values, never pre-encoded strings.
type Fields map[string]any

// BuildInsert renders the INSERT template for a tenant-schema table. Columns
// are emitted in sorted order so the same field set always produces the same
// statement.
func BuildInsert(table string, fields Fields, returning string) (string, []any, error) {
	if len(fields) == 0 {
		return "", nil, &ValidationError{Field: "fields", Reason: "empty insert"}
	}

	cols := sortedColumns(fields)
	placeholders := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		v, isJSON, err := bindValue(fields[col])
		if err != nil {
			return "", nil, fmt.Errorf("column %s: %w", col, err)
		}
		args[i] = v
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		if isJSON {
			placeholders[i] += "::jsonb"
		}
	}

	tmpl := fmt.Sprintf("INSERT INTO %s.%s (%s) VALUES (%s) RETURNING %s",
		tenant.SchemaPlaceholder, table,
		strings.Join(cols, ", "), strings.Join(placeholders, ", "), returning)
	return tmpl, args, nil
}

// BuildUpdate renders a sparse UPDATE restricted to the active row matching
// id. updated_at is always part of the SET list.
func BuildUpdate(table string, id any, fields Fields, returning string) (string, []any, error) {
	if len(fields) == 0 {
		return "", nil, ErrNoFields
	}

	cols := sortedColumns(fields)
	sets := make([]string, 0, len(cols)+1)
	args := make([]any, 0, len(cols)+1)
	for i, col := range cols {
		v, isJSON, err := bindValue(fields[col])
		if err != nil {
			return "", nil, fmt.Errorf("column %s: %w", col, err)
		}
		args = append(args, v)
		set := fmt.Sprintf("%s = $%d", col, i+1)
		if isJSON {
			set += "::jsonb"
		}
		sets = append(sets, set)
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	tmpl := fmt.Sprintf("UPDATE %s.%s SET %s WHERE id = $%d AND is_active = TRUE RETURNING %s",
		tenant.SchemaPlaceholder, table,
		strings.Join(sets, ", "), len(args), returning)
	return tmpl, args, nil
}

func sortedColumns(fields Fields) []string {
	cols := make([]string, 0, len(fields))
	for col := range fields {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

// bindValue decides how a field value travels to the driver. Scalars bind
// as-is; anything structured is marshalled to JSON here and nowhere else,
// which is what keeps stored jsonb free of double-encoded strings.
func bindValue(v any) (any, bool, error) {
	switch tv := v.(type) {
	case nil, string, bool,
		int, int32, int64, float32, float64,
		time.Time, *time.Time, uuid.UUID, *uuid.UUID:
		return v, false, nil
	case json.RawMessage:
		return []byte(tv), true, nil
	case []byte:
		return v, false, nil
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false, nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Struct:
		data, err := json.Marshal(rv.Interface())
		if err != nil {
			return nil, false, fmt.Errorf("serialize json value: %w", err)
		}
		return data, true, nil
	default:
		return rv.Interface(), false, nil
	}
}

// Enum validates a closed token set, substituting the default for an absent
// value. Unknown tokens are rejected before they can reach storage.
func Enum(field, value, fallback string, allowed ...string) (string, error) {
	if value == "" {
		return fallback, nil
	}
	if slices.Contains(allowed, value) {
		return value, nil
	}
	return "", &ValidationError{Field: field, Reason: fmt.Sprintf("unknown value %q", value)}
}
