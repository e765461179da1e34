// Package clients owns the per-tenant clients table: the people and
// organizations a law office represents.
package clients

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rukioi/legalflow/internal/crud"
	"github.com/rukioi/legalflow/internal/models"
	"github.com/rukioi/legalflow/internal/tenant"
)

const table = "clients"

const columns = `id, name, email, phone, organization, address, tags, budget,
	currency, status, level, description, created_by, is_active, created_at, updated_at`

var searchColumns = []string{"name", "email", "organization"}

var statuses = []string{"active", "inactive", "prospect"}

// migrations is the ordered, additive schema history for the table. Each
// statement is safe to re-run; failures are logged and skipped so drift on an
// already-provisioned tenant never fails a request.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS {{schema}}.clients (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		organization TEXT NOT NULL DEFAULT '',
		address JSONB NOT NULL DEFAULT '{}'::jsonb,
		tags JSONB NOT NULL DEFAULT '[]'::jsonb,
		budget NUMERIC,
		currency TEXT NOT NULL DEFAULT 'BRL',
		status TEXT NOT NULL DEFAULT 'active',
		level TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		created_by TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`ALTER TABLE {{schema}}.clients ADD COLUMN IF NOT EXISTS level TEXT NOT NULL DEFAULT ''`,
	`ALTER TABLE {{schema}}.clients ADD COLUMN IF NOT EXISTS description TEXT NOT NULL DEFAULT ''`,
}

type Service struct {
	ensured sync.Map // schema name -> struct{}
}

func NewService() *Service { return &Service{} }

// EnsureSchema runs the additive migration list against the tenant's schema.
// First call per schema does the work; later calls are no-ops until restart.
func (s *Service) EnsureSchema(ctx context.Context, db *tenant.DB) {
	if _, done := s.ensured.Load(db.Schema()); done {
		return
	}
	for _, stmt := range migrations {
		if _, err := db.Exec(ctx, stmt); err != nil {
			slog.Warn("clients schema step skipped", "schema", db.Schema(), "error", err)
		}
	}
	s.ensured.Store(db.Schema(), struct{}{})
}

func scanClient(row pgx.Row) (models.Client, error) {
	var c models.Client
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Organization, &c.Address,
		&c.Tags, &c.Budget, &c.Currency, &c.Status, &c.Level, &c.Description,
		&c.CreatedBy, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (s *Service) List(ctx context.Context, f crud.ListFilter) ([]models.Client, crud.Page, error) {
	db, err := tenant.RequireDB(ctx)
	if err != nil {
		return nil, crud.Page{}, err
	}
	s.EnsureSchema(ctx, db)
	return crud.List(ctx, db, table, f, "status", columns, searchColumns, scanClient)
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	db, err := tenant.RequireDB(ctx)
	if err != nil {
		return nil, err
	}
	s.EnsureSchema(ctx, db)
	return crud.Get(ctx, db,
		"SELECT "+columns+" FROM {{schema}}.clients WHERE id = $1 AND is_active = TRUE",
		[]any{id}, scanClient)
}

type CreateRequest struct {
	Name         string         `json:"name"`
	Email        string         `json:"email"`
	Phone        string         `json:"phone"`
	Organization string         `json:"organization"`
	Address      map[string]any `json:"address"`
	Tags         []string       `json:"tags"`
	Budget       *float64       `json:"budget"`
	Currency     string         `json:"currency"`
	Status       string         `json:"status"`
	Level        string         `json:"level"`
	Description  string         `json:"description"`
}

func (s *Service) Create(ctx context.Context, req CreateRequest, createdBy string) (*models.Client, error) {
	db, err := tenant.RequireDB(ctx)
	if err != nil {
		return nil, err
	}
	s.EnsureSchema(ctx, db)

	if req.Name == "" {
		return nil, &crud.ValidationError{Field: "name", Reason: "required"}
	}
	status, err := crud.Enum("status", req.Status, "active", statuses...)
	if err != nil {
		return nil, err
	}
	currency, err := crud.Enum("currency", req.Currency, models.CurrencyBRL, models.Currencies...)
	if err != nil {
		return nil, err
	}

	fields := crud.Fields{
		"name":         req.Name,
		"email":        req.Email,
		"phone":        req.Phone,
		"organization": req.Organization,
		"address":      crud.OrEmptyObject(req.Address),
		"tags":         crud.OrEmptyList(req.Tags),
		"budget":       req.Budget,
		"currency":     currency,
		"status":       status,
		"level":        req.Level,
		"description":  req.Description,
		"created_by":   createdBy,
	}
	c, err := crud.Insert(ctx, db, table, fields, columns, scanClient)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// updatable maps external payload keys to column names. Only keys present in
// the partial payload pass through, so omission never clears a field.
var updatable = map[string]string{
	"name":         "name",
	"email":        "email",
	"phone":        "phone",
	"organization": "organization",
	"address":      "address",
	"tags":         "tags",
	"budget":       "budget",
	"currency":     "currency",
	"status":       "status",
	"level":        "level",
	"description":  "description",
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, patch map[string]any) (*models.Client, error) {
	db, err := tenant.RequireDB(ctx)
	if err != nil {
		return nil, err
	}
	s.EnsureSchema(ctx, db)

	fields := crud.Fields{}
	for key, col := range updatable {
		if v, ok := patch[key]; ok {
			fields[col] = v
		}
	}
	if err := crud.ValidatePatchEnum(fields, "status", statuses); err != nil {
		return nil, err
	}
	if err := crud.ValidatePatchEnum(fields, "currency", models.Currencies); err != nil {
		return nil, err
	}

	c, err := crud.Update(ctx, db, table, id, fields, columns, scanClient)
	if errors.Is(err, crud.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	db, err := tenant.RequireDB(ctx)
	if err != nil {
		return false, err
	}
	s.EnsureSchema(ctx, db)

	_, err = crud.SoftDelete[models.Client](ctx, db, table, id, columns, scanClient)
	if errors.Is(err, crud.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

type Stats struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"byStatus"`
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	db, err := tenant.RequireDB(ctx)
	if err != nil {
		return nil, err
	}
	s.EnsureSchema(ctx, db)

	const tmpl = `SELECT status, COUNT(*) FROM {{schema}}.clients
		WHERE is_active = TRUE GROUP BY status`
	rows, err := db.Query(ctx, tmpl)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &Stats{ByStatus: map[string]int{}}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, tenant.WrapError(tmpl, err)
		}
		stats.ByStatus[status] = count
		stats.Total += count
	}
	return stats, rows.Err()
}
