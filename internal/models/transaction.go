package models

import (
	"time"

	"github.com/google/uuid"
)

type Transaction struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Type          string    `json:"type" db:"type"`
	Description   string    `json:"description" db:"description"`
	Amount        float64   `json:"amount" db:"amount"`
	Currency      string    `json:"currency" db:"currency"`
	Category      string    `json:"category" db:"category"`
	Status        string    `json:"status" db:"status"`
	Date          time.Time `json:"date" db:"date"`
	PaymentMethod string    `json:"payment_method,omitempty" db:"payment_method"`
	Tags          []string  `json:"tags" db:"tags"`
	Notes         string    `json:"notes,omitempty" db:"notes"`
	CreatedBy     string    `json:"created_by,omitempty" db:"created_by"`
	IsActive      bool      `json:"is_active" db:"is_active"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
