package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/faktura/internal/todo/domain"
	"gorm.io/gorm"
)

type repository struct{}

func Provide() domain.Repository {
	return &repository{}
}

func (r *repository) Insert(ctx context.Context, db *gorm.DB, task *domain.Task) error {
	return db.WithContext(ctx).Create(task).Error
}

func (r *repository) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Task, error) {
	if id == 0 {
		return nil, nil
	}

	var tasks []*domain.Task
	if err := db.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, nil
	}
	return tasks[0], nil
}

func (r *repository) List(ctx context.Context, db *gorm.DB) ([]*domain.Task, error) {
	var tasks []*domain.Task
	if err := db.WithContext(ctx).
		Order("due_date asc, due_time asc").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *repository) Replace(ctx context.Context, db *gorm.DB, task *domain.Task) error {
	return db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("id = ?", task.ID).
		Updates(map[string]any{
			"title":            task.Title,
			"description":      task.Description,
			"customer_id":      task.CustomerID,
			"customer_name":    task.CustomerName,
			"due_date":         task.DueDate,
			"due_time":         task.DueTime,
			"reminder_sent":    task.ReminderSent,
			"reminder_sent_at": task.ReminderSentAt,
			"updated_at":       task.UpdatedAt,
		}).Error
}

func (r *repository) SetStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.Status, completedAt *time.Time, now time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       status,
			"completed_at": completedAt,
			"updated_at":   now,
		}).Error
}

func (r *repository) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	result := db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.Task{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) MarkReminderSent(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) (bool, error) {
	result := db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("id = ? AND status = ? AND reminder_sent = ?", id, domain.StatusPending, false).
		Updates(map[string]any{
			"reminder_sent":    true,
			"reminder_sent_at": at,
			"updated_at":       at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) ListDue(ctx context.Context, db *gorm.DB, date, timeOfDay string) ([]*domain.Task, error) {
	if date == "" || timeOfDay == "" {
		return nil, errors.New("empty_due_cutoff")
	}

	var tasks []*domain.Task
	if err := db.WithContext(ctx).
		Where("status = ? AND reminder_sent = ? AND due_date <= ? AND due_time <= ?",
			domain.StatusPending, false, date, timeOfDay).
		Order("due_date asc, due_time asc").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}
