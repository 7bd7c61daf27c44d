// Package domain contains persistence models and contracts for reminder
// tasks. Tasks live independently of billing documents; deleting a customer
// leaves its tasks in place with the snapshot name.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/faktura/internal/billing/lifecycle"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var Lifecycle = lifecycle.New(map[Status][]Status{
	StatusPending:   {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
})

// Task is a scheduled reminder. DueDate is a calendar date (2006-01-02) and
// DueTime a wall-clock time of day (15:04); both compare lexicographically
// and are never timezone-converted.
type Task struct {
	ID             snowflake.ID  `gorm:"primaryKey" json:"id"`
	Title          string        `gorm:"not null" json:"title"`
	Description    string        `gorm:"type:text" json:"description,omitempty"`
	CustomerID     *snowflake.ID `gorm:"index" json:"customer_id,omitempty"`
	CustomerName   string        `gorm:"type:text" json:"customer_name,omitempty"`
	DueDate        string        `gorm:"type:text;not null;index" json:"due_date"`
	DueTime        string        `gorm:"type:text;not null" json:"due_time"`
	Status         Status        `gorm:"type:text;not null;default:'pending'" json:"status"`
	ReminderSent   bool          `gorm:"not null;default:false" json:"reminder_sent"`
	CompletedAt    *time.Time    `json:"completed_at,omitempty"`
	ReminderSentAt *time.Time    `json:"reminder_sent_at,omitempty"`
	CreatedAt      time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"not null" json:"updated_at"`
}

func (Task) TableName() string { return "todos" }
