package models

import (
	"time"

	"github.com/google/uuid"
)

type Client struct {
	ID           uuid.UUID      `json:"id" db:"id"`
	Name         string         `json:"name" db:"name"`
	Email        string         `json:"email,omitempty" db:"email"`
	Phone        string         `json:"phone,omitempty" db:"phone"`
	Organization string         `json:"organization,omitempty" db:"organization"`
	Address      map[string]any `json:"address" db:"address"`
	Tags         []string       `json:"tags" db:"tags"`
	Budget       *float64       `json:"budget,omitempty" db:"budget"`
	Currency     string         `json:"currency" db:"currency"`
	Status       string         `json:"status" db:"status"`
	Level        string         `json:"level,omitempty" db:"level"`
	Description  string         `json:"description,omitempty" db:"description"`
	CreatedBy    string         `json:"created_by,omitempty" db:"created_by"`
	IsActive     bool           `json:"is_active" db:"is_active"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" db:"updated_at"`
}
