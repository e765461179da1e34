package tenant

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSchema(t *testing.T) {
	tests := []struct {
		name     string
		tenantID string
		want     string
	}{
		{"simple", "acme", "tenant_acme"},
		{"uppercase folds", "ACME", "tenant_acme"},
		{"hyphens become underscores", "acme-corp", "tenant_acme_corp"},
		{"digits pass", "firm42", "tenant_firm42"},
		{"underscores pass", "acme_law", "tenant_acme_law"},
		{"surrounding whitespace trimmed", "  acme  ", "tenant_acme"},
		{"uuid style", "7b3e1f00-1111-4222-8333-abcdefabcdef", "tenant_7b3e1f00_1111_4222_8333_abcdefabcdef"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveSchema(tt.tenantID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveSchemaDeterministic(t *testing.T) {
	a, err := ResolveSchema("acme-corp")
	require.NoError(t, err)
	b, err := ResolveSchema("acme-corp")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestResolveSchemaRejects(t *testing.T) {
	bad := []struct {
		name     string
		tenantID string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"semicolon", "acme;drop"},
		{"quote", `acme"corp`},
		{"space inside", "acme corp"},
		{"dot", "public.tenants"},
		{"unicode", "ação"},
		{"too long", strings.Repeat("a", 64)},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveSchema(tt.tenantID)
			assert.ErrorIs(t, err, ErrInvalidTenantID)
		})
	}
}

func TestValidSchemaName(t *testing.T) {
	assert.True(t, validSchemaName("tenant_acme"))
	assert.True(t, validSchemaName("tenant_firm42"))
	assert.False(t, validSchemaName(""))
	assert.False(t, validSchemaName("Tenant_Acme"))
	assert.False(t, validSchemaName("tenant-acme"))
	assert.False(t, validSchemaName("tenant acme"))
	assert.False(t, validSchemaName(strings.Repeat("a", 64)))
}
