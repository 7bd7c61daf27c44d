package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, task *Task) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Task, error)
	List(ctx context.Context, db *gorm.DB) ([]*Task, error)
	Replace(ctx context.Context, db *gorm.DB, task *Task) error
	SetStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status Status, completedAt *time.Time, now time.Time) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
	MarkReminderSent(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) (bool, error)
	ListDue(ctx context.Context, db *gorm.DB, date, timeOfDay string) ([]*Task, error)
}
