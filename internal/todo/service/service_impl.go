package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/faktura/internal/clock"
	customerdomain "github.com/smallbiznis/faktura/internal/customer/domain"
	"github.com/smallbiznis/faktura/internal/todo/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// defaultDueTime is used when a request omits the time of day.
const defaultDueTime = "09:00"

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        domain.Repository
	CustomerSvc customerdomain.Service
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	customerSvc customerdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("todo.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		customerSvc: p.CustomerSvc,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateTaskRequest) (domain.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.Task{}, domain.ErrInvalidTitle
	}

	now := s.clock.Now().UTC()

	dueDate := strings.TrimSpace(req.DueDate)
	if dueDate == "" {
		dueDate = now.Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", dueDate); err != nil {
		return domain.Task{}, domain.ErrInvalidDueDate
	}

	dueTime := strings.TrimSpace(req.DueTime)
	if dueTime == "" {
		dueTime = defaultDueTime
	}
	if _, err := time.Parse("15:04", dueTime); err != nil {
		return domain.Task{}, domain.ErrInvalidDueTime
	}

	task := domain.Task{
		ID:          s.genID.Generate(),
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		DueDate:     dueDate,
		DueTime:     dueTime,
		Status:      domain.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if strings.TrimSpace(req.CustomerID) != "" {
		customer, err := s.customerSvc.GetByID(ctx, req.CustomerID)
		if err != nil {
			return domain.Task{}, err
		}
		task.CustomerID = &customer.ID
		task.CustomerName = customer.Name
	}

	if err := s.repo.Insert(ctx, s.db, &task); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Task, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}

	tasks := make([]domain.Task, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		tasks = append(tasks, *item)
	}
	return tasks, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Task, error) {
	taskID, err := parseID(id)
	if err != nil {
		return domain.Task{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, taskID)
	if err != nil {
		return domain.Task{}, err
	}
	if item == nil {
		return domain.Task{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateTaskRequest) (domain.Task, error) {
	task, err := s.GetByID(ctx, req.ID)
	if err != nil {
		return domain.Task{}, err
	}

	rearm := false

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return domain.Task{}, domain.ErrInvalidTitle
		}
		task.Title = title
	}
	if req.Description != nil {
		task.Description = strings.TrimSpace(*req.Description)
	}
	if req.CustomerID != nil {
		if strings.TrimSpace(*req.CustomerID) == "" {
			task.CustomerID = nil
			task.CustomerName = ""
		} else {
			customer, err := s.customerSvc.GetByID(ctx, *req.CustomerID)
			if err != nil {
				return domain.Task{}, err
			}
			task.CustomerID = &customer.ID
			task.CustomerName = customer.Name
		}
	}
	if req.DueDate != nil {
		dueDate := strings.TrimSpace(*req.DueDate)
		if _, err := time.Parse("2006-01-02", dueDate); err != nil {
			return domain.Task{}, domain.ErrInvalidDueDate
		}
		if dueDate != task.DueDate {
			task.DueDate = dueDate
			rearm = true
		}
	}
	if req.DueTime != nil {
		dueTime := strings.TrimSpace(*req.DueTime)
		if _, err := time.Parse("15:04", dueTime); err != nil {
			return domain.Task{}, domain.ErrInvalidDueTime
		}
		if dueTime != task.DueTime {
			task.DueTime = dueTime
			rearm = true
		}
	}

	// Moving the due moment re-arms the reminder so the new deadline gets
	// its own notification.
	if rearm {
		task.ReminderSent = false
		task.ReminderSentAt = nil
	}

	task.UpdatedAt = s.clock.Now().UTC()
	if err := s.repo.Replace(ctx, s.db, &task); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id string, status string) (domain.Task, error) {
	target := domain.Status(strings.TrimSpace(strings.ToLower(status)))
	if !domain.Lifecycle.Known(target) {
		return domain.Task{}, domain.ErrUnknownStatus
	}

	task, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}

	if err := domain.Lifecycle.Transition(task.Status, target); err != nil {
		return domain.Task{}, err
	}

	now := s.clock.Now().UTC()
	var completedAt *time.Time
	if target == domain.StatusCompleted {
		completedAt = &now
	}

	if err := s.repo.SetStatus(ctx, s.db, task.ID, target, completedAt, now); err != nil {
		return domain.Task{}, err
	}
	task.Status = target
	task.CompletedAt = completedAt
	task.UpdatedAt = now

	s.log.Info("task status updated",
		zap.String("task_id", task.ID.String()),
		zap.String("status", string(target)),
	)
	return task, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	taskID, err := parseID(id)
	if err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, s.db, taskID)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) MarkReminderSent(ctx context.Context, id snowflake.ID, at time.Time) (bool, error) {
	return s.repo.MarkReminderSent(ctx, s.db, id, at)
}

func (s *Service) ListDue(ctx context.Context, date, timeOfDay string) ([]domain.Task, error) {
	items, err := s.repo.ListDue(ctx, s.db, date, timeOfDay)
	if err != nil {
		return nil, err
	}

	tasks := make([]domain.Task, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		tasks = append(tasks, *item)
	}
	return tasks, nil
}

func parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
