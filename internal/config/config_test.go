package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/legalflow")
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, 20, cfg.Database.MaxConns)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "X-API-Key", cfg.Auth.APIKeyHeader)
}

func TestValidateRequiresDatabaseAndSecret(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate()
	require.Error(t, err)

	cfg.Database.URL = "postgres://localhost/legalflow"
	err = cfg.Validate()
	require.Error(t, err)

	cfg.Auth.JWTSecret = "secret"
	assert.NoError(t, cfg.Validate())
}

func TestLoadCORS(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.firm.example, https://admin.firm.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"https://app.firm.example", "https://admin.firm.example"},
		cfg.CORS.AllowedOrigins)
}

func TestLoadRejectsBadInt(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-port")
	_, err := Load()
	assert.Error(t, err)
}
