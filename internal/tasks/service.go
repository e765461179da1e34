// Package tasks owns the per-tenant tasks table: individual work items,
// optionally linked to a project and client.
package tasks

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

const table = "tasks"

const columns = `id, title, description, project_id, project_title, client_id,
	client_name, assigned_to, status, priority, start_date, due_date, end_date,
	tags, subtasks, notes, created_by, is_active, created_at, updated_at`

var searchColumns = []string{"title", "description", "project_title", "client_name"}

var statuses = []string{"not_started", "in_progress", "completed", "on_hold", "cancelled"}

const terminalStatuses = "('completed', 'cancelled')"

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS {{schema}}.tasks (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		project_id UUID,
		project_title TEXT NOT NULL DEFAULT '',
		client_id UUID,
		client_name TEXT NOT NULL DEFAULT '',
		assigned_to TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'not_started',
		priority TEXT NOT NULL DEFAULT 'medium',
		start_date TIMESTAMPTZ,
		due_date TIMESTAMPTZ NOT NULL,
		end_date TIMESTAMPTZ,
		tags JSONB NOT NULL DEFAULT '[]'::jsonb,
		subtasks JSONB NOT NULL DEFAULT '[]'::jsonb,
		notes TEXT NOT NULL DEFAULT '',
		created_by TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`ALTER TABLE {{schema}}.tasks ADD COLUMN IF NOT EXISTS subtasks JSONB NOT NULL DEFAULT '[]'::jsonb`,
	`ALTER TABLE {{schema}}.tasks ADD COLUMN IF NOT EXISTS notes TEXT NOT NULL DEFAULT ''`,
	`ALTER TABLE {{schema}}.tasks ADD COLUMN IF NOT EXISTS end_date TIMESTAMPTZ`,
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
			slog.Warn("tasks schema step skipped", "schema", db.Schema(), "error", err)
		}
	}
	s.ensured.Store(db.Schema(), struct{}{})
}

func scanTask(row pgx.Row) (models.Task, error) {
	var t models.Task
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.ProjectID, &t.ProjectTitle,
		&t.ClientID, &t.ClientName, &t.AssignedTo, &t.Status, &t.Priority,
		&t.StartDate, &t.DueDate, &t.EndDate, &t.Tags, &t.Subtasks, &t.Notes,
		&t.CreatedBy, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (s *Service) List(ctx context.Context, f crud.ListFilter) ([]models.Task, crud.Page, error) {
	db, err := tenant.RequireDB(ctx)
	if err != nil {
		return nil, crud.Page{}, err
	}
	s.EnsureSchema(ctx, db)
	return crud.List(ctx, db, table, f, "status", columns, searchColumns, scanTask)
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	db, err := tenant.RequireDB(ctx)
	if err != nil {
		return nil, err
	}
	s.EnsureSchema(ctx, db)
	return crud.Get(ctx, db,
		"SELECT "+columns+" FROM {{schema}}.tasks WHERE id = $1 AND is_active = TRUE",
		[]any{id}, scanTask)
}

type CreateRequest struct {
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	ProjectID    *uuid.UUID       `json:"project_id"`
	ProjectTitle string           `json:"project_title"`
	ClientID     *uuid.UUID       `json:"client_id"`
	ClientName   string           `json:"client_name"`
	AssignedTo   string           `json:"assigned_to"`
	Status       string           `json:"status"`
	Priority     string           `json:"priority"`
	StartDate    *time.Time       `json:"start_date"`
	DueDate      *time.Time       `json:"due_date"`
	Tags         []string         `json:"tags"`
	Subtasks     []models.Subtask `json:"subtasks"`
	Notes        string           `json:"notes"`
}

func (req CreateRequest) validate() error {
	switch {
	case req.Title == "":
		return &crud.ValidationError{Field: "title", Reason: "required"}
	case req.AssignedTo == "":
		return &crud.ValidationError{Field: "assigned_to", Reason: "required"}
	case req.DueDate == nil:
		return &crud.ValidationError{Field: "due_date", Reason: "required"}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, req CreateRequest, createdBy string) (*models.Task, error) {
	db, err := tenant.RequireDB(ctx)
	if err != nil {
		return nil, err
	}
	s.EnsureSchema(ctx, db)

	if err := req.validate(); err != nil {
		return nil, err
	}
	status, err := crud.Enum("status", req.Status, "not_started", statuses...)
	if err != nil {
		return nil, err
	}
	priority, err := crud.Enum("priority", req.Priority, models.DefaultPriority, models.Priorities...)
	if err != nil {
		return nil, err
	}

	subtasks := req.Subtasks
	if subtasks == nil {
		subtasks = []models.Subtask{}
	}

	fields := crud.Fields{
		"title":         req.Title,
		"description":   req.Description,
		"project_id":    req.ProjectID,
		"project_title": req.ProjectTitle,
		"client_id":     req.ClientID,
		"client_name":   req.ClientName,
		"assigned_to":   req.AssignedTo,
		"status":        status,
		"priority":      priority,
		"start_date":    req.StartDate,
		"due_date":      *req.DueDate,
		"tags":          crud.OrEmptyList(req.Tags),
		"subtasks":      subtasks,
		"notes":         req.Notes,
		"created_by":    createdBy,
	}
	t, err := crud.Insert(ctx, db, table, fields, columns, scanTask)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

var updatable = map[string]string{
	"title":         "title",
	"description":   "description",
	"project_id":    "project_id",
	"project_title": "project_title",
	"client_id":     "client_id",
	"client_name":   "client_name",
	"assigned_to":   "assigned_to",
	"status":        "status",
	"priority":      "priority",
	"start_date":    "start_date",
	"due_date":      "due_date",
	"end_date":      "end_date",
	"tags":          "tags",
	"subtasks":      "subtasks",
	"notes":         "notes",
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, patch map[string]any) (*models.Task, error) {
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

	t, err := crud.Update(ctx, db, table, id, fields, columns, scanTask)
	if errors.Is(err, crud.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	db, err := tenant.RequireDB(ctx)
	if err != nil {
		return false, err
	}
	s.EnsureSchema(ctx, db)

	_, err = crud.SoftDelete[models.Task](ctx, db, table, id, columns, scanTask)
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
		FROM {{schema}}.tasks WHERE is_active = TRUE GROUP BY status, priority`
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
