package clients

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rukioi/legalflow/internal/crud"
	"github.com/rukioi/legalflow/internal/tenant"
)

func TestUpdatableColumnsAreSelected(t *testing.T) {
	for key, col := range updatable {
		assert.Contains(t, columns, col, "updatable key %q maps to unselected column %q", key, col)
	}
}

func TestMigrationsTargetTenantSchema(t *testing.T) {
	require.NotEmpty(t, migrations)
	for _, stmt := range migrations {
		assert.Contains(t, stmt, tenant.SchemaPlaceholder)
	}
}

func TestOperationsRequireTenant(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	_, _, err := svc.List(ctx, crud.ListFilter{})
	assert.ErrorIs(t, err, tenant.ErrNoTenant)

	_, err = svc.GetByID(ctx, uuid.Nil)
	assert.ErrorIs(t, err, tenant.ErrNoTenant)

	_, err = svc.Create(ctx, CreateRequest{Name: "Maria Silva"}, "user@firm.br")
	assert.ErrorIs(t, err, tenant.ErrNoTenant)

	_, err = svc.Update(ctx, uuid.Nil, map[string]any{"name": "x"})
	assert.ErrorIs(t, err, tenant.ErrNoTenant)

	_, err = svc.Delete(ctx, uuid.Nil)
	assert.ErrorIs(t, err, tenant.ErrNoTenant)

	_, err = svc.Stats(ctx)
	assert.ErrorIs(t, err, tenant.ErrNoTenant)
}
