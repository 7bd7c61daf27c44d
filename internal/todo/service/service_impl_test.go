package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/faktura/internal/clock"
	customerdomain "github.com/smallbiznis/faktura/internal/customer/domain"
	customerrepo "github.com/smallbiznis/faktura/internal/customer/repository"
	customerservice "github.com/smallbiznis/faktura/internal/customer/service"
	"github.com/smallbiznis/faktura/internal/todo/domain"
	"github.com/smallbiznis/faktura/internal/todo/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setup(t *testing.T, name string, now time.Time) (domain.Service, *clock.FakeClock) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&customerdomain.Customer{}, &domain.Task{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, _ := snowflake.NewNode(1)
	log := zap.NewNop()
	fake := clock.NewFakeClock(now)

	customerSvc := customerservice.New(customerservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Repo:  customerrepo.Provide(),
	})
	svc := New(Params{
		DB:          db,
		Log:         log,
		GenID:       node,
		Clock:       fake,
		Repo:        repository.Provide(),
		CustomerSvc: customerSvc,
	})
	return svc, fake
}

func TestCreateTaskDefaults(t *testing.T) {
	now := time.Date(2026, 9, 1, 8, 30, 0, 0, time.UTC)
	svc, _ := setup(t, "todo_create", now)

	task, err := svc.Create(context.Background(), domain.CreateTaskRequest{Title: "Rechnung INV-0001 nachfassen"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if task.Status != domain.StatusPending {
		t.Fatalf("status = %s", task.Status)
	}
	if task.DueDate != "2026-09-01" || task.DueTime != "09:00" {
		t.Fatalf("due = %s %s", task.DueDate, task.DueTime)
	}
	if task.ReminderSent {
		t.Fatal("new task must not be marked sent")
	}
}

func TestCreateTaskValidation(t *testing.T) {
	svc, _ := setup(t, "todo_validation", time.Now())
	ctx := context.Background()

	if _, err := svc.Create(ctx, domain.CreateTaskRequest{Title: "  "}); err != domain.ErrInvalidTitle {
		t.Fatalf("empty title err = %v", err)
	}
	if _, err := svc.Create(ctx, domain.CreateTaskRequest{Title: "x", DueDate: "01.09.2026"}); err != domain.ErrInvalidDueDate {
		t.Fatalf("bad date err = %v", err)
	}
	if _, err := svc.Create(ctx, domain.CreateTaskRequest{Title: "x", DueTime: "9 Uhr"}); err != domain.ErrInvalidDueTime {
		t.Fatalf("bad time err = %v", err)
	}
}

func TestUpdateRearmsReminder(t *testing.T) {
	now := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	svc, _ := setup(t, "todo_rearm", now)
	ctx := context.Background()

	task, err := svc.Create(ctx, domain.CreateTaskRequest{Title: "Angebot nachfassen", DueDate: "2026-09-01", DueTime: "07:00"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	marked, err := svc.MarkReminderSent(ctx, task.ID, now)
	if err != nil || !marked {
		t.Fatalf("mark sent = %v, %v", marked, err)
	}

	// Editing only the title keeps the sent flag.
	title := "Angebot dringend nachfassen"
	updated, err := svc.Update(ctx, domain.UpdateTaskRequest{ID: task.ID.String(), Title: &title})
	if err != nil {
		t.Fatalf("update title: %v", err)
	}
	if !updated.ReminderSent {
		t.Fatal("title edit must not re-arm")
	}

	// Moving the due time re-arms.
	dueTime := "15:00"
	updated, err = svc.Update(ctx, domain.UpdateTaskRequest{ID: task.ID.String(), DueTime: &dueTime})
	if err != nil {
		t.Fatalf("update due time: %v", err)
	}
	if updated.ReminderSent || updated.ReminderSentAt != nil {
		t.Fatal("due time edit must re-arm the reminder")
	}

	// Setting the same value again is not a move.
	marked, err = svc.MarkReminderSent(ctx, updated.ID, now)
	if err != nil || !marked {
		t.Fatalf("re-mark sent = %v, %v", marked, err)
	}
	same := "15:00"
	updated, err = svc.Update(ctx, domain.UpdateTaskRequest{ID: task.ID.String(), DueTime: &same})
	if err != nil {
		t.Fatalf("update same due time: %v", err)
	}
	if !updated.ReminderSent {
		t.Fatal("unchanged due time must not re-arm")
	}
}

func TestMarkReminderSentGuard(t *testing.T) {
	now := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	svc, _ := setup(t, "todo_mark_guard", now)
	ctx := context.Background()

	task, err := svc.Create(ctx, domain.CreateTaskRequest{Title: "x"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	marked, err := svc.MarkReminderSent(ctx, task.ID, now)
	if err != nil || !marked {
		t.Fatalf("first mark = %v, %v", marked, err)
	}
	marked, err = svc.MarkReminderSent(ctx, task.ID, now)
	if err != nil {
		t.Fatalf("second mark: %v", err)
	}
	if marked {
		t.Fatal("second mark must report false")
	}
}

func TestListDueConjunction(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	svc, _ := setup(t, "todo_due", now)
	ctx := context.Background()

	mk := func(title, date, tod string) {
		if _, err := svc.Create(ctx, domain.CreateTaskRequest{Title: title, DueDate: date, DueTime: tod}); err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
	}
	mk("due today earlier", "2026-09-01", "09:00")
	mk("due today later", "2026-09-01", "11:00")
	// Both the date AND the time of day must have passed, so a late-evening
	// task from yesterday is not yet due at 10:00.
	mk("yesterday evening", "2026-08-31", "23:00")
	mk("yesterday morning", "2026-08-31", "08:00")

	due, err := svc.ListDue(ctx, "2026-09-01", "10:00")
	if err != nil {
		t.Fatalf("list due: %v", err)
	}

	titles := map[string]bool{}
	for _, task := range due {
		titles[task.Title] = true
	}
	if len(due) != 2 || !titles["due today earlier"] || !titles["yesterday morning"] {
		t.Fatalf("due = %v", titles)
	}
}

func TestStatusTransitions(t *testing.T) {
	now := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	svc, _ := setup(t, "todo_status", now)
	ctx := context.Background()

	task, err := svc.Create(ctx, domain.CreateTaskRequest{Title: "x"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id := task.ID.String()

	updated, err := svc.UpdateStatus(ctx, id, "completed")
	if err != nil {
		t.Fatalf("pending -> completed: %v", err)
	}
	if updated.CompletedAt == nil || !updated.CompletedAt.Equal(now) {
		t.Fatalf("completed_at = %v", updated.CompletedAt)
	}

	if _, err := svc.UpdateStatus(ctx, id, "pending"); err == nil {
		t.Fatal("completed is terminal")
	}
	if _, err := svc.UpdateStatus(ctx, id, "done"); err != domain.ErrUnknownStatus {
		t.Fatalf("unknown status err = %v", err)
	}
}
