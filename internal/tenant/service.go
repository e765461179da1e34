package tenant

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rukioi/legalflow/internal/models"
)

// Service is the tenant directory. Registry rows live in the shared public
// schema; everything tenant-owned lives in the tenant's own schema.
type Service struct {
	db *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

func (s *Service) Pool() *pgxpool.Pool { return s.db }

const tenantColumns = "id, name, slug, schema_name, is_active, created_at, updated_at"

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	var t models.Tenant
	err := s.db.QueryRow(ctx,
		"SELECT "+tenantColumns+" FROM tenants WHERE id = $1", id,
	).Scan(&t.ID, &t.Name, &t.Slug, &t.SchemaName, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTenantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	return &t, nil
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	var t models.Tenant
	err := s.db.QueryRow(ctx,
		"SELECT "+tenantColumns+" FROM tenants WHERE slug = $1", slug,
	).Scan(&t.ID, &t.Name, &t.Slug, &t.SchemaName, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTenantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get tenant by slug: %w", err)
	}
	return &t, nil
}

// ListActive returns every active tenant. Used by background jobs that fan
// out across schemas.
func (s *Service) ListActive(ctx context.Context) ([]models.Tenant, error) {
	rows, err := s.db.Query(ctx,
		"SELECT "+tenantColumns+" FROM tenants WHERE is_active = TRUE ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []models.Tenant
	for rows.Next() {
		var t models.Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.SchemaName, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

// Create registers a tenant and provisions its schema in one transaction.
// Tables inside the schema are created lazily by each domain service.
func (s *Service) Create(ctx context.Context, name, slug string) (*models.Tenant, error) {
	id := uuid.New()
	schema, err := ResolveSchema(id.String())
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var t models.Tenant
	err = tx.QueryRow(ctx,
		`INSERT INTO tenants (id, name, slug, schema_name, is_active)
		 VALUES ($1, $2, $3, $4, TRUE)
		 RETURNING `+tenantColumns,
		id, name, slug, schema,
	).Scan(&t.ID, &t.Name, &t.Slug, &t.SchemaName, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert tenant: %w", err)
	}

	// Schema name came from ResolveSchema, safe to embed.
	if _, err := tx.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+schema); err != nil {
		return nil, fmt.Errorf("provision schema: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &t, nil
}

// SetActive flips the registry flag; deactivated tenants are refused by the
// access middleware on the next request.
func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := s.db.Exec(ctx,
		"UPDATE tenants SET is_active = $1, updated_at = NOW() WHERE id = $2", active, id)
	if err != nil {
		return fmt.Errorf("set tenant active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTenantNotFound
	}
	return nil
}

func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := s.db.QueryRow(ctx,
		"SELECT id, tenant_id, role_id, email, full_name, account_type, created_at FROM users WHERE id = $1", id,
	).Scan(&u.ID, &u.TenantID, &u.RoleID, &u.Email, &u.FullName, &u.AccountType, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}
