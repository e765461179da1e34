// Package invoices owns the per-tenant invoices table. Invoice numbers are
// generated server-side; the overdue transition runs from the background
// worker as well as on demand.
package invoices

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rukioi/legalflow/internal/crud"
	"github.com/rukioi/legalflow/internal/models"
	"github.com/rukioi/legalflow/internal/tenant"
)

const table = "invoices"

const columns = `id, number, title, client_id, client_name, amount, currency,
	status, due_date, paid_at, items, tags, notes, created_by, is_active,
	created_at, updated_at`

var searchColumns = []string{"number", "title", "client_name"}

var statuses = []string{"draft", "sent", "paid", "overdue", "cancelled"}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS {{schema}}.invoices (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		number TEXT NOT NULL,
		title TEXT NOT NULL,
		client_id UUID,
		client_name TEXT NOT NULL,
		amount NUMERIC NOT NULL,
		currency TEXT NOT NULL DEFAULT 'BRL',
		status TEXT NOT NULL DEFAULT 'draft',
		due_date TIMESTAMPTZ NOT NULL,
		paid_at TIMESTAMPTZ,
		items JSONB NOT NULL DEFAULT '[]'::jsonb,
		tags JSONB NOT NULL DEFAULT '[]'::jsonb,
		notes TEXT NOT NULL DEFAULT '',
		created_by TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`ALTER TABLE {{schema}}.invoices ADD COLUMN IF NOT EXISTS paid_at TIMESTAMPTZ`,
	`ALTER TABLE {{schema}}.invoices ADD COLUMN IF NOT EXISTS tags JSONB NOT NULL DEFAULT '[]'::jsonb`,
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
			slog.Warn("invoices schema step skipped", "schema", db.Schema(), "error", err)
		}
	}
	s.ensured.Store(db.Schema(), struct{}{})
}

func scanInvoice(row pgx.Row) (models.Invoice, error) {
	var inv models.Invoice
	err := row.Scan(&inv.ID, &inv.Number, &inv.Title, &inv.ClientID, &inv.ClientName,
		&inv.Amount, &inv.Currency, &inv.Status, &inv.DueDate, &inv.PaidAt,
		&inv.Items, &inv.Tags, &inv.Notes, &inv.CreatedBy, &inv.IsActive,
		&inv.CreatedAt, &inv.UpdatedAt)
	return inv, err
}

// newNumber generates a human-readable invoice number: INV-YYYYMM-xxxx.
// Uniqueness comes from the random suffix, not a per-tenant sequence.
func newNumber(now time.Time) string {
	suffix := make([]byte, 2)
	rand.Read(suffix)
	return fmt.Sprintf("INV-%s-%s", now.Format("200601"), hex.EncodeToString(suffix))
}

func (s *Service) List(ctx context.Context, f crud.ListFilter) ([]models.Invoice, crud.Page, error) {
	db, err := tenant.RequireDB(ctx)
	if err != nil {
		return nil, crud.Page{}, err
	}
	s.EnsureSchema(ctx, db)
	return crud.List(ctx, db, table, f, "status", columns, searchColumns, scanInvoice)
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	db, err := tenant.RequireDB(ctx)
	if err != nil {
		return nil, err
	}
	s.EnsureSchema(ctx, db)
	return crud.Get(ctx, db,
		"SELECT "+columns+" FROM {{schema}}.invoices WHERE id = $1 AND is_active = TRUE",
		[]any{id}, scanInvoice)
}

type CreateRequest struct {
	Title      string               `json:"title"`
	ClientID   *uuid.UUID           `json:"client_id"`
	ClientName string               `json:"client_name"`
	Amount     *float64             `json:"amount"`
	Currency   string               `json:"currency"`
	Status     string               `json:"status"`
	DueDate    *time.Time           `json:"due_date"`
	Items      []models.InvoiceItem `json:"items"`
	Tags       []string             `json:"tags"`
	Notes      string               `json:"notes"`
}

func (req CreateRequest) validate() error {
	switch {
	case req.Title == "":
		return &crud.ValidationError{Field: "title", Reason: "required"}
	case req.ClientName == "":
		return &crud.ValidationError{Field: "client_name", Reason: "required"}
	case req.Amount == nil:
		return &crud.ValidationError{Field: "amount", Reason: "required"}
	case *req.Amount < 0:
		return &crud.ValidationError{Field: "amount", Reason: "must not be negative"}
	case req.DueDate == nil:
		return &crud.ValidationError{Field: "due_date", Reason: "required"}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, req CreateRequest, createdBy string) (*models.Invoice, error) {
	db, err := tenant.RequireDB(ctx)
	if err != nil {
		return nil, err
	}
	s.EnsureSchema(ctx, db)

	if err := req.validate(); err != nil {
		return nil, err
	}
	status, err := crud.Enum("status", req.Status, "draft", statuses...)
	if err != nil {
		return nil, err
	}
	currency, err := crud.Enum("currency", req.Currency, models.CurrencyBRL, models.Currencies...)
	if err != nil {
		return nil, err
	}

	items := req.Items
	if items == nil {
		items = []models.InvoiceItem{}
	}

	fields := crud.Fields{
		"number":      newNumber(time.Now()),
		"title":       req.Title,
		"client_id":   req.ClientID,
		"client_name": req.ClientName,
		"amount":      *req.Amount,
		"currency":    currency,
		"status":      status,
		"due_date":    *req.DueDate,
		"items":       items,
		"tags":        crud.OrEmptyList(req.Tags),
		"notes":       req.Notes,
		"created_by":  createdBy,
	}
	inv, err := crud.Insert(ctx, db, table, fields, columns, scanInvoice)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

var updatable = map[string]string{
	"title":       "title",
	"client_id":   "client_id",
	"client_name": "client_name",
	"amount":      "amount",
	"currency":    "currency",
	"status":      "status",
	"due_date":    "due_date",
	"paid_at":     "paid_at",
	"items":       "items",
	"tags":        "tags",
	"notes":       "notes",
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, patch map[string]any) (*models.Invoice, error) {
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
	// Paying an invoice stamps paid_at unless the caller set it explicitly.
	if status, ok := fields["status"].(string); ok && status == "paid" {
		if _, ok := fields["paid_at"]; !ok {
			fields["paid_at"] = time.Now()
		}
	}

	inv, err := crud.Update(ctx, db, table, id, fields, columns, scanInvoice)
	if errors.Is(err, crud.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	db, err := tenant.RequireDB(ctx)
	if err != nil {
		return false, err
	}
	s.EnsureSchema(ctx, db)

	_, err = crud.SoftDelete[models.Invoice](ctx, db, table, id, columns, scanInvoice)
	if errors.Is(err, crud.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MarkOverdue flips sent invoices whose due date has passed. Returns how many
// rows changed; called by the periodic scan and harmless to re-run.
func (s *Service) MarkOverdue(ctx context.Context, db *tenant.DB) (int64, error) {
	s.EnsureSchema(ctx, db)
	tag, err := db.Exec(ctx,
		`UPDATE {{schema}}.invoices SET status = 'overdue', updated_at = NOW()
		 WHERE is_active = TRUE AND status = 'sent' AND due_date < NOW()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

type Stats struct {
	Total       int            `json:"total"`
	ByStatus    map[string]int `json:"byStatus"`
	Overdue     int            `json:"overdue"`
	TotalBilled float64        `json:"totalBilled"`
	TotalPaid   float64        `json:"totalPaid"`
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	db, err := tenant.RequireDB(ctx)
	if err != nil {
		return nil, err
	}
	s.EnsureSchema(ctx, db)

	const tmpl = `SELECT status, COUNT(*), COALESCE(SUM(amount), 0)
		FROM {{schema}}.invoices WHERE is_active = TRUE GROUP BY status`
	rows, err := db.Query(ctx, tmpl)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &Stats{ByStatus: map[string]int{}}
	for rows.Next() {
		var status string
		var count int
		var amount float64
		if err := rows.Scan(&status, &count, &amount); err != nil {
			return nil, tenant.WrapError(tmpl, err)
		}
		stats.ByStatus[status] = count
		stats.Total += count
		if status != "cancelled" && status != "draft" {
			stats.TotalBilled += amount
		}
		if status == "paid" {
			stats.TotalPaid += amount
		}
		if status == "overdue" {
			stats.Overdue = count
		}
	}
	return stats, rows.Err()
}
