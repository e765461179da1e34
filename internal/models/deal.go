package models

import (
	"time"

	"github.com/google/uuid"
)

type Deal struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	Title             string     `json:"title" db:"title"`
	ContactName       string     `json:"contact_name" db:"contact_name"`
	Organization      string     `json:"organization,omitempty" db:"organization"`
	Email             string     `json:"email,omitempty" db:"email"`
	Phone             string     `json:"phone,omitempty" db:"phone"`
	Stage             string     `json:"stage" db:"stage"`
	Budget            *float64   `json:"budget,omitempty" db:"budget"`
	Currency          string     `json:"currency" db:"currency"`
	Probability       int        `json:"probability" db:"probability"`
	ExpectedCloseDate *time.Time `json:"expected_close_date,omitempty" db:"expected_close_date"`
	Tags              []string   `json:"tags" db:"tags"`
	Description       string     `json:"description,omitempty" db:"description"`
	Notes             string     `json:"notes,omitempty" db:"notes"`
	CreatedBy         string     `json:"created_by,omitempty" db:"created_by"`
	IsActive          bool       `json:"is_active" db:"is_active"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}
