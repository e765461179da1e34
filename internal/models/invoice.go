package models

import (
	"time"

	"github.com/google/uuid"
)

type Invoice struct {
	ID         uuid.UUID     `json:"id" db:"id"`
	Number     string        `json:"number" db:"number"`
	Title      string        `json:"title" db:"title"`
	ClientID   *uuid.UUID    `json:"client_id,omitempty" db:"client_id"`
	ClientName string        `json:"client_name" db:"client_name"`
	Amount     float64       `json:"amount" db:"amount"`
	Currency   string        `json:"currency" db:"currency"`
	Status     string        `json:"status" db:"status"`
	DueDate    time.Time     `json:"due_date" db:"due_date"`
	PaidAt     *time.Time    `json:"paid_at,omitempty" db:"paid_at"`
	Items      []InvoiceItem `json:"items" db:"items"`
	Tags       []string      `json:"tags" db:"tags"`
	Notes      string        `json:"notes,omitempty" db:"notes"`
	CreatedBy  string        `json:"created_by,omitempty" db:"created_by"`
	IsActive   bool          `json:"is_active" db:"is_active"`
	CreatedAt  time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at" db:"updated_at"`
}

// InvoiceItem is one billed line stored inside the items jsonb column.
type InvoiceItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}
