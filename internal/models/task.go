package models

import (
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Title        string     `json:"title" db:"title"`
	Description  string     `json:"description,omitempty" db:"description"`
	ProjectID    *uuid.UUID `json:"project_id,omitempty" db:"project_id"`
	ProjectTitle string     `json:"project_title,omitempty" db:"project_title"`
	ClientID     *uuid.UUID `json:"client_id,omitempty" db:"client_id"`
	ClientName   string     `json:"client_name,omitempty" db:"client_name"`
	AssignedTo   string     `json:"assigned_to" db:"assigned_to"`
	Status       string     `json:"status" db:"status"`
	Priority     string     `json:"priority" db:"priority"`
	StartDate    *time.Time `json:"start_date,omitempty" db:"start_date"`
	DueDate      time.Time  `json:"due_date" db:"due_date"`
	EndDate      *time.Time `json:"end_date,omitempty" db:"end_date"`
	Tags         []string   `json:"tags" db:"tags"`
	Subtasks     []Subtask  `json:"subtasks" db:"subtasks"`
	Notes        string     `json:"notes,omitempty" db:"notes"`
	CreatedBy    string     `json:"created_by,omitempty" db:"created_by"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// Subtask is a checklist item stored inside a task's subtasks jsonb column.
type Subtask struct {
	Title string `json:"title"`
	Done  bool   `json:"done"`
}
