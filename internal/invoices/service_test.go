package invoices

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rukioi/legalflow/internal/crud"
	"github.com/rukioi/legalflow/internal/tenant"
)

func TestNewNumber(t *testing.T) {
	ts := time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)
	n := newNumber(ts)
	assert.Regexp(t, regexp.MustCompile(`^INV-202603-[0-9a-f]{4}$`), n)
}

func TestCreateRequestValidate(t *testing.T) {
	amount := 1200.0
	due := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	valid := CreateRequest{Title: "Retainer March", ClientName: "Silva & Costa", Amount: &amount, DueDate: &due}
	assert.NoError(t, valid.validate())

	var ve *crud.ValidationError

	missingTitle := valid
	missingTitle.Title = ""
	require.ErrorAs(t, missingTitle.validate(), &ve)
	assert.Equal(t, "title", ve.Field)

	missingAmount := valid
	missingAmount.Amount = nil
	require.ErrorAs(t, missingAmount.validate(), &ve)
	assert.Equal(t, "amount", ve.Field)

	negative := valid
	neg := -1.0
	negative.Amount = &neg
	require.ErrorAs(t, negative.validate(), &ve)
	assert.Equal(t, "amount", ve.Field)

	missingDue := valid
	missingDue.DueDate = nil
	require.ErrorAs(t, missingDue.validate(), &ve)
	assert.Equal(t, "due_date", ve.Field)
}

func TestOperationsRequireTenant(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	_, _, err := svc.List(ctx, crud.ListFilter{})
	assert.ErrorIs(t, err, tenant.ErrNoTenant)

	amount := 1.0
	due := time.Now()
	_, err = svc.Create(ctx, CreateRequest{Title: "x", ClientName: "y", Amount: &amount, DueDate: &due}, "user@firm.br")
	assert.ErrorIs(t, err, tenant.ErrNoTenant)
}

func TestUpdatableColumnsAreSelected(t *testing.T) {
	for key, col := range updatable {
		assert.Contains(t, columns, col, "updatable key %q maps to unselected column %q", key, col)
	}
}

func TestMigrationsTargetTenantSchema(t *testing.T) {
	require.NotEmpty(t, migrations)
	for _, stmt := range migrations {
		assert.True(t, strings.Contains(stmt, tenant.SchemaPlaceholder), "statement must be schema-qualified: %s", stmt)
	}
}
