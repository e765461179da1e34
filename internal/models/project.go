package models

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description,omitempty" db:"description"`
	ClientID    *uuid.UUID `json:"client_id,omitempty" db:"client_id"`
	ClientName  string     `json:"client_name" db:"client_name"`
	Status      string     `json:"status" db:"status"`
	Priority    string     `json:"priority" db:"priority"`
	Budget      *float64   `json:"budget,omitempty" db:"budget"`
	Currency    string     `json:"currency" db:"currency"`
	StartDate   time.Time  `json:"start_date" db:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty" db:"end_date"`
	DueDate     *time.Time `json:"due_date,omitempty" db:"due_date"`
	Progress    int        `json:"progress" db:"progress"`
	Tags        []string   `json:"tags" db:"tags"`
	AssignedTo  []string   `json:"assigned_to" db:"assigned_to"`
	Contacts    []Contact  `json:"contacts" db:"contacts"`
	Notes       string     `json:"notes,omitempty" db:"notes"`
	CreatedBy   string     `json:"created_by,omitempty" db:"created_by"`
	IsActive    bool       `json:"is_active" db:"is_active"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// Contact is an embedded counterparty reference stored inside a project's
// contacts jsonb column.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	Role  string `json:"role,omitempty"`
}
