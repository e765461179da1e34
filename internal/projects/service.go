// Package projects owns the per-tenant projects table: the legal matters a
// tenant is working.
package projects

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

const table = "projects"

const columns = `id, title, description, client_id, client_name, status, priority,
	budget, currency, start_date, end_date, due_date, progress, tags, assigned_to,
	contacts, notes, created_by, is_active, created_at, updated_at`

var searchColumns = []string{"title", "description", "client_name"}

var statuses = []string{"planning", "active", "on_hold", "completed", "cancelled"}

// terminalStatuses do not count toward overdue work.
const terminalStatuses = "('completed', 'cancelled')"

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS {{schema}}.projects (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		client_id UUID,
		client_name TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'planning',
		priority TEXT NOT NULL DEFAULT 'medium',
		budget NUMERIC,
		currency TEXT NOT NULL DEFAULT 'BRL',
		start_date TIMESTAMPTZ NOT NULL,
		end_date TIMESTAMPTZ,
		due_date TIMESTAMPTZ,
		progress INTEGER NOT NULL DEFAULT 0,
		tags JSONB NOT NULL DEFAULT '[]'::jsonb,
		assigned_to JSONB NOT NULL DEFAULT '[]'::jsonb,
		contacts JSONB NOT NULL DEFAULT '[]'::jsonb,
		notes TEXT NOT NULL DEFAULT '',
		created_by TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`ALTER TABLE {{schema}}.projects ADD COLUMN IF NOT EXISTS progress INTEGER NOT NULL DEFAULT 0`,
	`ALTER TABLE {{schema}}.projects ADD COLUMN IF NOT EXISTS contacts JSONB NOT NULL DEFAULT '[]'::jsonb`,
	`ALTER TABLE {{schema}}.projects ADD COLUMN IF NOT EXISTS notes TEXT NOT NULL DEFAULT ''`,
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
			slog.Warn("projects schema step skipped", "schema", db.Schema(), "error", err)
		}
	}
	s.ensured.Store(db.Schema(), struct{}{})
}

func scanProject(row pgx.Row) (models.Project, error) {
	var p models.Project
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.ClientID, &p.ClientName,
		&p.Status, &p.Priority, &p.Budget, &p.Currency, &p.StartDate, &p.EndDate,
		&p.DueDate, &p.Progress, &p.Tags, &p.AssignedTo, &p.Contacts, &p.Notes,
		&p.CreatedBy, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (s *Service) List(ctx context.Context, f crud.ListFilter) ([]models.Project, crud.Page, error) {
	db, err := tenant.RequireDB(ctx)
	if err != nil {
		return nil, crud.Page{}, err
	}
	s.EnsureSchema(ctx, db)
	return crud.List(ctx, db, table, f, "status", columns, searchColumns, scanProject)
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	db, err := tenant.RequireDB(ctx)
	if err != nil {
		return nil, err
	}
	s.EnsureSchema(ctx, db)
	return crud.Get(ctx, db,
		"SELECT "+columns+" FROM {{schema}}.projects WHERE id = $1 AND is_active = TRUE",
		[]any{id}, scanProject)
}

type CreateRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	ClientID    *uuid.UUID       `json:"client_id"`
	ClientName  string           `json:"client_name"`
	Status      string           `json:"status"`
	Priority    string           `json:"priority"`
	Budget      *float64         `json:"budget"`
	Currency    string           `json:"currency"`
	StartDate   *time.Time       `json:"start_date"`
	EndDate     *time.Time       `json:"end_date"`
	DueDate     *time.Time       `json:"due_date"`
	Tags        []string         `json:"tags"`
	AssignedTo  []string         `json:"assigned_to"`
	Contacts    []models.Contact `json:"contacts"`
	Notes       string           `json:"notes"`
}

func (req CreateRequest) validate() error {
	switch {
	case req.Title == "":
		return &crud.ValidationError{Field: "title", Reason: "required"}
	case req.ClientName == "":
		return &crud.ValidationError{Field: "client_name", Reason: "required"}
	case req.StartDate == nil:
		return &crud.ValidationError{Field: "start_date", Reason: "required"}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, req CreateRequest, createdBy string) (*models.Project, error) {
	db, err := tenant.RequireDB(ctx)
	if err != nil {
		return nil, err
	}
	s.EnsureSchema(ctx, db)

	if err := req.validate(); err != nil {
		return nil, err
	}
	status, err := crud.Enum("status", req.Status, "planning", statuses...)
	if err != nil {
		return nil, err
	}
	priority, err := crud.Enum("priority", req.Priority, models.DefaultPriority, models.Priorities...)
	if err != nil {
		return nil, err
	}
	currency, err := crud.Enum("currency", req.Currency, models.CurrencyBRL, models.Currencies...)
	if err != nil {
		return nil, err
	}

	contacts := req.Contacts
	if contacts == nil {
		contacts = []models.Contact{}
	}

	fields := crud.Fields{
		"title":       req.Title,
		"description": req.Description,
		"client_id":   req.ClientID,
		"client_name": req.ClientName,
		"status":      status,
		"priority":    priority,
		"budget":      req.Budget,
		"currency":    currency,
		"start_date":  *req.StartDate,
		"end_date":    req.EndDate,
		"due_date":    req.DueDate,
		"tags":        crud.OrEmptyList(req.Tags),
		"assigned_to": crud.OrEmptyList(req.AssignedTo),
		"contacts":    contacts,
		"notes":       req.Notes,
		"created_by":  createdBy,
	}
	p, err := crud.Insert(ctx, db, table, fields, columns, scanProject)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

var updatable = map[string]string{
	"title":       "title",
	"description": "description",
	"client_id":   "client_id",
	"client_name": "client_name",
	"status":      "status",
	"priority":    "priority",
	"budget":      "budget",
	"currency":    "currency",
	"start_date":  "start_date",
	"end_date":    "end_date",
	"due_date":    "due_date",
	"progress":    "progress",
	"tags":        "tags",
	"assigned_to": "assigned_to",
	"contacts":    "contacts",
	"notes":       "notes",
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, patch map[string]any) (*models.Project, error) {
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
	if err := crud.ValidatePatchEnum(fields, "priority", models.Priorities); err != nil {
		return nil, err
	}
	if err := crud.ValidatePatchEnum(fields, "currency", models.Currencies); err != nil {
		return nil, err
	}

	p, err := crud.Update(ctx, db, table, id, fields, columns, scanProject)
	if errors.Is(err, crud.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	db, err := tenant.RequireDB(ctx)
	if err != nil {
		return false, err
	}
	s.EnsureSchema(ctx, db)

	_, err = crud.SoftDelete[models.Project](ctx, db, table, id, columns, scanProject)
	if errors.Is(err, crud.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

type Stats struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"byStatus"`
	ByPriority map[string]int `json:"byPriority"`
	Overdue    int            `json:"overdue"`
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	db, err := tenant.RequireDB(ctx)
	if err != nil {
		return nil, err
	}
	s.EnsureSchema(ctx, db)

	const tmpl = `SELECT status, priority, COUNT(*),
			COUNT(*) FILTER (WHERE due_date < NOW() AND status NOT IN ` + terminalStatuses + `)
		FROM {{schema}}.projects WHERE is_active = TRUE GROUP BY status, priority`
	rows, err := db.Query(ctx, tmpl)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &Stats{ByStatus: map[string]int{}, ByPriority: map[string]int{}}
	for rows.Next() {
		var status, priority string
		var count, overdue int
		if err := rows.Scan(&status, &priority, &count, &overdue); err != nil {
			return nil, tenant.WrapError(tmpl, err)
		}
		stats.ByStatus[status] += count
		stats.ByPriority[priority] += count
		stats.Total += count
		stats.Overdue += overdue
	}
	return stats, rows.Err()
}
