package crud

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildInsert(t *testing.T) {
	fields := Fields{
		"name":    "Maria Silva",
		"tags":    []string{"vip"},
		"address": map[string]any{"city": "São Paulo"},
		"budget":  1500.0,
	}

	tmpl, args, err := BuildInsert("clients", fields, "id, name")
	require.NoError(t, err)

	// Sorted column order keeps the statement deterministic.
	assert.Equal(t,
		"INSERT INTO {{schema}}.clients (address, budget, name, tags) VALUES ($1::jsonb, $2, $3, $4::jsonb) RETURNING id, name",
		tmpl)
	require.Len(t, args, 4)

	// Structured values arrive at the driver already serialized, once.
	assert.JSONEq(t, `{"city":"São Paulo"}`, string(args[0].([]byte)))
	assert.Equal(t, 1500.0, args[1])
	assert.Equal(t, "Maria Silva", args[2])
	assert.JSONEq(t, `["vip"]`, string(args[3].([]byte)))
}

func TestBuildInsertEmpty(t *testing.T) {
	_, _, err := BuildInsert("clients", Fields{}, "id")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestBuildUpdate(t *testing.T) {
	id := uuid.New()
	tmpl, args, err := BuildUpdate("tasks", id, Fields{
		"status":   "completed",
		"subtasks": []map[string]any{{"title": "draft", "done": true}},
	}, "id, status")
	require.NoError(t, err)

	assert.Equal(t,
		"UPDATE {{schema}}.tasks SET status = $1, subtasks = $2::jsonb, updated_at = NOW() WHERE id = $3 AND is_active = TRUE RETURNING id, status",
		tmpl)
	require.Len(t, args, 3)
	assert.Equal(t, "completed", args[0])
	assert.Equal(t, id, args[2])
}

func TestBuildUpdateNoFields(t *testing.T) {
	_, _, err := BuildUpdate("tasks", uuid.New(), Fields{}, "id")
	assert.ErrorIs(t, err, ErrNoFields)
}

func TestBindValue(t *testing.T) {
	now := time.Now()
	id := uuid.New()

	t.Run("scalars bind as-is", func(t *testing.T) {
		for _, v := range []any{nil, "text", true, 42, int64(42), 4.2, now, id} {
			got, isJSON, err := bindValue(v)
			require.NoError(t, err)
			assert.False(t, isJSON)
			assert.Equal(t, v, got)
		}
	})

	t.Run("nil pointer binds as NULL", func(t *testing.T) {
		var f *float64
		got, isJSON, err := bindValue(f)
		require.NoError(t, err)
		assert.False(t, isJSON)
		assert.Nil(t, got)
	})

	t.Run("raw message passes through with jsonb cast", func(t *testing.T) {
		got, isJSON, err := bindValue(json.RawMessage(`{"a":1}`))
		require.NoError(t, err)
		assert.True(t, isJSON)
		assert.JSONEq(t, `{"a":1}`, string(got.([]byte)))
	})

	t.Run("maps and slices serialize once", func(t *testing.T) {
		got, isJSON, err := bindValue([]string{"a", "b"})
		require.NoError(t, err)
		assert.True(t, isJSON)
		assert.JSONEq(t, `["a","b"]`, string(got.([]byte)))
	})

	t.Run("a string is never re-encoded", func(t *testing.T) {
		got, isJSON, err := bindValue(`{"looks":"like json"}`)
		require.NoError(t, err)
		assert.False(t, isJSON)
		assert.Equal(t, `{"looks":"like json"}`, got)
	})
}

func TestEnum(t *testing.T) {
	statuses := []string{"active", "inactive", "prospect"}

	got, err := Enum("status", "prospect", "active", statuses...)
	require.NoError(t, err)
	assert.Equal(t, "prospect", got)

	got, err = Enum("status", "", "active", statuses...)
	require.NoError(t, err)
	assert.Equal(t, "active", got)

	_, err = Enum("status", "archived", "active", statuses...)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "status", ve.Field)
}
