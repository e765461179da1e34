// Package deals owns the per-tenant deals table: the prospect pipeline. The
// status column is called stage here; list filtering and stats follow it.
package deals

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rukioi/legalflow/internal/crud"
	"github.com/rukioi/legalflow/internal/models"
	"github.com/rukioi/legalflow/internal/tenant"
)

const table = "deals"

const columns = `id, title, contact_name, organization, email, phone, stage,
	budget, currency, probability, expected_close_date, tags, description, notes,
	created_by, is_active, created_at, updated_at`

var searchColumns = []string{"title", "contact_name", "organization"}

var stages = []string{"contacted", "proposal", "negotiation", "won", "lost"}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS {{schema}}.deals (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		title TEXT NOT NULL,
		contact_name TEXT NOT NULL,
		organization TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		stage TEXT NOT NULL DEFAULT 'contacted',
		budget NUMERIC,
		currency TEXT NOT NULL DEFAULT 'BRL',
		probability INTEGER NOT NULL DEFAULT 0,
		expected_close_date TIMESTAMPTZ,
		tags JSONB NOT NULL DEFAULT '[]'::jsonb,
		description TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		created_by TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`ALTER TABLE {{schema}}.deals ADD COLUMN IF NOT EXISTS probability INTEGER NOT NULL DEFAULT 0`,
	`ALTER TABLE {{schema}}.deals ADD COLUMN IF NOT EXISTS expected_close_date TIMESTAMPTZ`,
	`ALTER TABLE {{schema}}.deals ADD COLUMN IF NOT EXISTS notes TEXT NOT NULL DEFAULT ''`,
}

type Service struct {
	ensured sync.Map
}

func NewService() *Service { return &Service{} }

func (s *Service) EnsureSchema(ctx context.Context, db *tenant.DB) {
	if _, done := s.ensured.Load(db.Schema()); done {
		return
	}
	for _, stmt := range migrations {
		if _, err := db.Exec(ctx, stmt); err != nil {
			slog.Warn("deals schema step skipped", "schema", db.Schema(), "error", err)
		}
	}
	s.ensured.Store(db.Schema(), struct{}{})
}

func scanDeal(row pgx.Row) (models.Deal, error) {
	var d models.Deal
	err := row.Scan(&d.ID, &d.Title, &d.ContactName, &d.Organization, &d.Email,
		&d.Phone, &d.Stage, &d.Budget, &d.Currency, &d.Probability,
		&d.ExpectedCloseDate, &d.Tags, &d.Description, &d.Notes,
		&d.CreatedBy, &d.IsActive, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

func (s *Service) List(ctx context.Context, f crud.ListFilter) ([]models.Deal, crud.Page, error) {
	db, err := tenant.RequireDB(ctx)
	if err != nil {
		return nil, crud.Page{}, err
	}
	s.EnsureSchema(ctx, db)
	return crud.List(ctx, db, table, f, "stage", columns, searchColumns, scanDeal)
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Deal, error) {
	db, err := tenant.RequireDB(ctx)
	if err != nil {
		return nil, err
	}
	s.EnsureSchema(ctx, db)
	return crud.Get(ctx, db,
		"SELECT "+columns+" FROM {{schema}}.deals WHERE id = $1 AND is_active = TRUE",
		[]any{id}, scanDeal)
}

type CreateRequest struct {
	Title             string     `json:"title"`
	ContactName       string     `json:"contact_name"`
	Organization      string     `json:"organization"`
	Email             string     `json:"email"`
	Phone             string     `json:"phone"`
	Stage             string     `json:"stage"`
	Budget            *float64   `json:"budget"`
	Currency          string     `json:"currency"`
	Probability       int        `json:"probability"`
	ExpectedCloseDate *time.Time `json:"expected_close_date"`
	Tags              []string   `json:"tags"`
	Description       string     `json:"description"`
	Notes             string     `json:"notes"`
}

func (req CreateRequest) validate() error {
	switch {
	case req.Title == "":
		return &crud.ValidationError{Field: "title", Reason: "required"}
	case req.ContactName == "":
		return &crud.ValidationError{Field: "contact_name", Reason: "required"}
	case req.Probability < 0 || req.Probability > 100:
		return &crud.ValidationError{Field: "probability", Reason: "must be between 0 and 100"}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, req CreateRequest, createdBy string) (*models.Deal, error) {
	db, err := tenant.RequireDB(ctx)
	if err != nil {
		return nil, err
	}
	s.EnsureSchema(ctx, db)

	if err := req.validate(); err != nil {
		return nil, err
	}
	stage, err := crud.Enum("stage", req.Stage, "contacted", stages...)
	if err != nil {
		return nil, err
	}
	currency, err := crud.Enum("currency", req.Currency, models.CurrencyBRL, models.Currencies...)
	if err != nil {
		return nil, err
	}

	fields := crud.Fields{
		"title":               req.Title,
		"contact_name":        req.ContactName,
		"organization":        req.Organization,
		"email":               req.Email,
		"phone":               req.Phone,
		"stage":               stage,
		"budget":              req.Budget,
		"currency":            currency,
		"probability":         req.Probability,
		"expected_close_date": req.ExpectedCloseDate,
		"tags":                crud.OrEmptyList(req.Tags),
		"description":         req.Description,
		"notes":               req.Notes,
		"created_by":          createdBy,
	}
	d, err := crud.Insert(ctx, db, table, fields, columns, scanDeal)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

var updatable = map[string]string{
	"title":               "title",
	"contact_name":        "contact_name",
	"organization":        "organization",
	"email":               "email",
	"phone":               "phone",
	"stage":               "stage",
	"budget":              "budget",
	"currency":            "currency",
	"probability":         "probability",
	"expected_close_date": "expected_close_date",
	"tags":                "tags",
	"description":         "description",
	"notes":               "notes",
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, patch map[string]any) (*models.Deal, error) {
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
	if err := crud.ValidatePatchEnum(fields, "stage", stages); err != nil {
		return nil, err
	}
	if err := crud.ValidatePatchEnum(fields, "currency", models.Currencies); err != nil {
		return nil, err
	}

	d, err := crud.Update(ctx, db, table, id, fields, columns, scanDeal)
	if errors.Is(err, crud.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	db, err := tenant.RequireDB(ctx)
	if err != nil {
		return false, err
	}
	s.EnsureSchema(ctx, db)

	_, err = crud.SoftDelete[models.Deal](ctx, db, table, id, columns, scanDeal)
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
	ByStage  map[string]int `json:"byStage"`
	Revenue  float64        `json:"revenue"`
	Pipeline float64        `json:"pipeline"`
}

// Stats aggregates the pipeline: revenue sums budgets of won deals, pipeline
// sums budgets of deals still open (neither won nor lost).
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	db, err := tenant.RequireDB(ctx)
	if err != nil {
		return nil, err
	}
	s.EnsureSchema(ctx, db)

	const tmpl = `SELECT stage, COUNT(*), COALESCE(SUM(budget), 0)
		FROM {{schema}}.deals WHERE is_active = TRUE GROUP BY stage`
	rows, err := db.Query(ctx, tmpl)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &Stats{ByStage: map[string]int{}}
	for rows.Next() {
		var stage string
		var count int
		var budget float64
		if err := rows.Scan(&stage, &count, &budget); err != nil {
			return nil, tenant.WrapError(tmpl, err)
		}
		stats.ByStage[stage] = count
		stats.Total += count
		switch stage {
		case "won":
			stats.Revenue += budget
		case "lost":
		default:
			stats.Pipeline += budget
		}
	}
	return stats, rows.Err()
}
