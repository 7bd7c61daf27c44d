package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CustomerID  string `json:"customer_id"`
	DueDate     string `json:"due_date"`
	DueTime     string `json:"due_time"`
}

// UpdateTaskRequest carries partial edits; nil fields are left untouched.
type UpdateTaskRequest struct {
	ID          string
	Title       *string `json:"title"`
	Description *string `json:"description"`
	CustomerID  *string `json:"customer_id"`
	DueDate     *string `json:"due_date"`
	DueTime     *string `json:"due_time"`
}

type Service interface {
	Create(context.Context, CreateTaskRequest) (Task, error)
	List(context.Context) ([]Task, error)
	GetByID(context.Context, string) (Task, error)
	// Update applies field edits. Changing the due date or due time re-arms
	// the reminder by clearing reminder_sent.
	Update(context.Context, UpdateTaskRequest) (Task, error)
	UpdateStatus(ctx context.Context, id string, status string) (Task, error)
	Delete(context.Context, string) error

	// MarkReminderSent flips the sent flag only while the task is still
	// pending and unsent; this is the idempotency guard against duplicate
	// sends from overlapping sweeps.
	MarkReminderSent(ctx context.Context, id snowflake.ID, at time.Time) (bool, error)
	// ListDue returns pending, unsent tasks due at or before the given
	// calendar date and wall-clock time.
	ListDue(ctx context.Context, date, timeOfDay string) ([]Task, error)
}

var (
	ErrInvalidID      = errors.New("invalid_task_id")
	ErrInvalidTitle   = errors.New("invalid_task_title")
	ErrInvalidDueDate = errors.New("invalid_due_date")
	ErrInvalidDueTime = errors.New("invalid_due_time")
	ErrNotFound       = errors.New("task_not_found")
	ErrUnknownStatus  = errors.New("unknown_task_status")
)
