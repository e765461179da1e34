// Package transactions owns the per-tenant cash flow ledger.
package transactions

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

const table = "transactions"

const columns = `id, type, description, amount, currency, category, status,
	date, payment_method, tags, notes, created_by, is_active, created_at, updated_at`

var searchColumns = []string{"description", "category"}

var (
	types    = []string{"income", "expense"}
	statuses = []string{"pending", "confirmed", "cancelled"}
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS {{schema}}.transactions (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		type TEXT NOT NULL,
		description TEXT NOT NULL,
		amount NUMERIC NOT NULL,
		currency TEXT NOT NULL DEFAULT 'BRL',
		category TEXT NOT NULL DEFAULT 'other',
		status TEXT NOT NULL DEFAULT 'confirmed',
		date TIMESTAMPTZ NOT NULL,
		payment_method TEXT NOT NULL DEFAULT '',
		tags JSONB NOT NULL DEFAULT '[]'::jsonb,
		notes TEXT NOT NULL DEFAULT '',
		created_by TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`ALTER TABLE {{schema}}.transactions ADD COLUMN IF NOT EXISTS payment_method TEXT NOT NULL DEFAULT ''`,
	`ALTER TABLE {{schema}}.transactions ADD COLUMN IF NOT EXISTS notes TEXT NOT NULL DEFAULT ''`,
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
			slog.Warn("transactions schema step skipped", "schema", db.Schema(), "error", err)
		}
	}
	s.ensured.Store(db.Schema(), struct{}{})
}

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var tr models.Transaction
	err := row.Scan(&tr.ID, &tr.Type, &tr.Description, &tr.Amount, &tr.Currency,
		&tr.Category, &tr.Status, &tr.Date, &tr.PaymentMethod, &tr.Tags, &tr.Notes,
		&tr.CreatedBy, &tr.IsActive, &tr.CreatedAt, &tr.UpdatedAt)
	return tr, err
}

func (s *Service) List(ctx context.Context, f crud.ListFilter) ([]models.Transaction, crud.Page, error) {
	db, err := tenant.RequireDB(ctx)
	if err != nil {
		return nil, crud.Page{}, err
	}
	s.EnsureSchema(ctx, db)
	return crud.List(ctx, db, table, f, "status", columns, searchColumns, scanTransaction)
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	db, err := tenant.RequireDB(ctx)
	if err != nil {
		return nil, err
	}
	s.EnsureSchema(ctx, db)
	return crud.Get(ctx, db,
		"SELECT "+columns+" FROM {{schema}}.transactions WHERE id = $1 AND is_active = TRUE",
		[]any{id}, scanTransaction)
}

type CreateRequest struct {
	Type          string     `json:"type"`
	Description   string     `json:"description"`
	Amount        *float64   `json:"amount"`
	Currency      string     `json:"currency"`
	Category      string     `json:"category"`
	Status        string     `json:"status"`
	Date          *time.Time `json:"date"`
	PaymentMethod string     `json:"payment_method"`
	Tags          []string   `json:"tags"`
	Notes         string     `json:"notes"`
}

func (req CreateRequest) validate() error {
	switch {
	case req.Description == "":
		return &crud.ValidationError{Field: "description", Reason: "required"}
	case req.Amount == nil:
		return &crud.ValidationError{Field: "amount", Reason: "required"}
	case *req.Amount < 0:
		return &crud.ValidationError{Field: "amount", Reason: "must not be negative"}
	case req.Date == nil:
		return &crud.ValidationError{Field: "date", Reason: "required"}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, req CreateRequest, createdBy string) (*models.Transaction, error) {
	db, err := tenant.RequireDB(ctx)
	if err != nil {
		return nil, err
	}
	s.EnsureSchema(ctx, db)

	if err := req.validate(); err != nil {
		return nil, err
	}
	// Type has no default: a ledger entry is meaningless without a direction.
	typ, err := crud.Enum("type", req.Type, "", types...)
	if err != nil {
		return nil, err
	}
	if typ == "" {
		return nil, &crud.ValidationError{Field: "type", Reason: "required"}
	}
	status, err := crud.Enum("status", req.Status, "confirmed", statuses...)
	if err != nil {
		return nil, err
	}
	currency, err := crud.Enum("currency", req.Currency, models.CurrencyBRL, models.Currencies...)
	if err != nil {
		return nil, err
	}

	category := req.Category
	if category == "" {
		category = "other"
	}

	fields := crud.Fields{
		"type":           typ,
		"description":    req.Description,
		"amount":         *req.Amount,
		"currency":       currency,
		"category":       category,
		"status":         status,
		"date":           *req.Date,
		"payment_method": req.PaymentMethod,
		"tags":           crud.OrEmptyList(req.Tags),
		"notes":          req.Notes,
		"created_by":     createdBy,
	}
	tr, err := crud.Insert(ctx, db, table, fields, columns, scanTransaction)
	if err != nil {
		return nil, err
	}
	return &tr, nil
}

var updatable = map[string]string{
	"type":           "type",
	"description":    "description",
	"amount":         "amount",
	"currency":       "currency",
	"category":       "category",
	"status":         "status",
	"date":           "date",
	"payment_method": "payment_method",
	"tags":           "tags",
	"notes":          "notes",
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, patch map[string]any) (*models.Transaction, error) {
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
	if err := crud.ValidatePatchEnum(fields, "type", types); err != nil {
		return nil, err
	}
	if err := crud.ValidatePatchEnum(fields, "status", statuses); err != nil {
		return nil, err
	}
	if err := crud.ValidatePatchEnum(fields, "currency", models.Currencies); err != nil {
		return nil, err
	}

	tr, err := crud.Update(ctx, db, table, id, fields, columns, scanTransaction)
	if errors.Is(err, crud.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tr, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	db, err := tenant.RequireDB(ctx)
	if err != nil {
		return false, err
	}
	s.EnsureSchema(ctx, db)

	_, err = crud.SoftDelete[models.Transaction](ctx, db, table, id, columns, scanTransaction)
	if errors.Is(err, crud.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

type Stats struct {
	Income     float64            `json:"income"`
	Expense    float64            `json:"expense"`
	Balance    float64            `json:"balance"`
	ByCategory map[string]float64 `json:"byCategory"`
}

// Stats sums confirmed entries only; pending and cancelled money does not
// move the balance.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	db, err := tenant.RequireDB(ctx)
	if err != nil {
		return nil, err
	}
	s.EnsureSchema(ctx, db)

	const tmpl = `SELECT type, category, COALESCE(SUM(amount), 0)
		FROM {{schema}}.transactions
		WHERE is_active = TRUE AND status = 'confirmed'
		GROUP BY type, category`
	rows, err := db.Query(ctx, tmpl)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &Stats{ByCategory: map[string]float64{}}
	for rows.Next() {
		var typ, category string
		var amount float64
		if err := rows.Scan(&typ, &category, &amount); err != nil {
			return nil, tenant.WrapError(tmpl, err)
		}
		if typ == "income" {
			stats.Income += amount
			stats.ByCategory[category] += amount
		} else {
			stats.Expense += amount
			stats.ByCategory[category] -= amount
		}
	}
	stats.Balance = stats.Income - stats.Expense
	return stats, rows.Err()
}
