package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rukioi/legalflow/internal/crud"
)

func TestCreateRequestValidate(t *testing.T) {
	valid := CreateRequest{
		URL:    "https://hooks.firm.example/legal",
		Events: []string{"deal.won", "invoice.paid"},
	}
	assert.NoError(t, valid.Validate())

	var ve *crud.ValidationError

	t.Run("bad URL", func(t *testing.T) {
		req := valid
		req.URL = "not a url"
		require.ErrorAs(t, req.Validate(), &ve)
		assert.Equal(t, "url", ve.Field)
	})

	t.Run("non-http scheme", func(t *testing.T) {
		req := valid
		req.URL = "ftp://hooks.firm.example"
		require.ErrorAs(t, req.Validate(), &ve)
	})

	t.Run("no events", func(t *testing.T) {
		req := valid
		req.Events = nil
		require.ErrorAs(t, req.Validate(), &ve)
		assert.Equal(t, "events", ve.Field)
	})

	t.Run("unknown event", func(t *testing.T) {
		req := valid
		req.Events = []string{"deal.won", "llm.completed"}
		require.ErrorAs(t, req.Validate(), &ve)
		assert.Equal(t, "events", ve.Field)
	})
}

func TestGenerateSecret(t *testing.T) {
	a, err := generateSecret()
	require.NoError(t, err)
	b, err := generateSecret()
	require.NoError(t, err)

	assert.True(t, len(a) > 32)
	assert.Contains(t, a, "whsec_")
	assert.NotEqual(t, a, b)
}

func TestSign(t *testing.T) {
	payload := []byte(`{"event":"invoice.paid"}`)
	secret := "whsec_test"

	got := Sign(payload, secret)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	want := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	assert.Equal(t, want, got)
	assert.Equal(t, got, Sign(payload, secret))
	assert.NotEqual(t, got, Sign(payload, "whsec_other"))
}
