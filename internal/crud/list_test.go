package crud

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListFilterNormalize(t *testing.T) {
	f := ListFilter{}.Normalize()
	assert.Equal(t, DefaultPage, f.Page)
	assert.Equal(t, DefaultLimit, f.Limit)

	f = ListFilter{Page: 3, Limit: 10}.Normalize()
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, 10, f.Limit)
	assert.Equal(t, 20, f.Offset())

	f = ListFilter{Page: -1, Limit: -5}.Normalize()
	assert.Equal(t, DefaultPage, f.Page)
	assert.Equal(t, DefaultLimit, f.Limit)
}

func TestListFilterWhere(t *testing.T) {
	t.Run("no filters", func(t *testing.T) {
		where, args := ListFilter{}.Where("status", "name")
		assert.Equal(t, "is_active = TRUE", where)
		assert.Empty(t, args)
	})

	t.Run("status only", func(t *testing.T) {
		where, args := ListFilter{Status: "active"}.Where("status", "name")
		assert.Equal(t, "is_active = TRUE AND status = $1", where)
		assert.Equal(t, []any{"active"}, args)
	})

	t.Run("custom status column", func(t *testing.T) {
		where, args := ListFilter{Status: "won"}.Where("stage", "title")
		assert.Equal(t, "is_active = TRUE AND stage = $1", where)
		assert.Equal(t, []any{"won"}, args)
	})

	t.Run("search spans columns with one argument", func(t *testing.T) {
		where, args := ListFilter{Search: "silva"}.Where("status", "name", "email")
		assert.Equal(t, "is_active = TRUE AND (name ILIKE $1 OR email ILIKE $1)", where)
		assert.Equal(t, []any{"%silva%"}, args)
	})

	t.Run("all filters keep sequential placeholders", func(t *testing.T) {
		f := ListFilter{
			Status:   "active",
			Priority: "high",
			Search:   "silva",
			Tags:     []string{"vip", "trabalhista"},
		}
		where, args := f.Where("status", "name")
		assert.Equal(t,
			"is_active = TRUE AND status = $1 AND priority = $2 AND (name ILIKE $3) AND tags ?| $4",
			where)
		require.Len(t, args, 4)
		assert.Equal(t, []string{"vip", "trabalhista"}, args[3])
	})

	t.Run("search without search columns is ignored", func(t *testing.T) {
		where, args := ListFilter{Search: "silva"}.Where("status")
		assert.Equal(t, "is_active = TRUE", where)
		assert.Empty(t, args)
	})
}

func TestNewPage(t *testing.T) {
	p := NewPage(1, 50, 120)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.False(t, p.HasPrev)

	p = NewPage(3, 50, 120)
	assert.False(t, p.HasNext)
	assert.True(t, p.HasPrev)

	p = NewPage(1, 50, 0)
	assert.Equal(t, 0, p.TotalPages)
	assert.False(t, p.HasNext)
	assert.False(t, p.HasPrev)

	p = NewPage(1, 50, 50)
	assert.Equal(t, 1, p.TotalPages)
	assert.False(t, p.HasNext)
}
