package crud

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrEmptyObject(t *testing.T) {
	assert.Equal(t, map[string]any{}, OrEmptyObject(nil))
	m := map[string]any{"city": "Recife"}
	assert.Equal(t, m, OrEmptyObject(m))
}

func TestOrEmptyList(t *testing.T) {
	assert.Equal(t, []string{}, OrEmptyList(nil))
	assert.Equal(t, []string{"vip"}, OrEmptyList([]string{"vip"}))
}

func TestValidatePatchEnum(t *testing.T) {
	statuses := []string{"active", "inactive"}

	t.Run("absent column is fine", func(t *testing.T) {
		assert.NoError(t, ValidatePatchEnum(Fields{"name": "x"}, "status", statuses))
	})

	t.Run("valid value passes", func(t *testing.T) {
		assert.NoError(t, ValidatePatchEnum(Fields{"status": "inactive"}, "status", statuses))
	})

	t.Run("unknown value rejected", func(t *testing.T) {
		err := ValidatePatchEnum(Fields{"status": "archived"}, "status", statuses)
		var ve *ValidationError
		assert.ErrorAs(t, err, &ve)
	})

	t.Run("non-string rejected", func(t *testing.T) {
		err := ValidatePatchEnum(Fields{"status": 7}, "status", statuses)
		var ve *ValidationError
		assert.ErrorAs(t, err, &ve)
	})

	t.Run("clearing rejected", func(t *testing.T) {
		err := ValidatePatchEnum(Fields{"status": ""}, "status", statuses)
		var ve *ValidationError
		assert.ErrorAs(t, err, &ve)
	})
}
