// Package scheduler runs the periodic reminder sweep. Each pass collects
// pending tasks whose due date and due time have both passed and hands them
// to the dispatch queue; the reminder_sent guard makes repeated passes
// harmless.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/faktura/internal/clock"
	"github.com/smallbiznis/faktura/internal/notification"
	"github.com/smallbiznis/faktura/internal/observability/metrics"
	tododomain "github.com/smallbiznis/faktura/internal/todo/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrInvalidConfig = errors.New("scheduler: invalid configuration")

type Params struct {
	fx.In

	Log     *zap.Logger
	Clock   clock.Clock
	TodoSvc tododomain.Service
	Queue   *notification.Queue
	Stats   *metrics.Metrics `optional:"true"`
	Config  Config           `optional:"true"`
}

type Scheduler struct {
	log     *zap.Logger
	cfg     Config
	clock   clock.Clock
	todoSvc tododomain.Service
	queue   *notification.Queue
	stats   *metrics.Metrics
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Clock == nil || p.TodoSvc == nil || p.Queue == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:     p.Log.Named("scheduler"),
		cfg:     p.Config.withDefaults(),
		clock:   p.Clock,
		todoSvc: p.TodoSvc,
		queue:   p.Queue,
		stats:   p.Stats,
	}, nil
}

// Sweep enqueues reminders for every task due at the given moment and
// returns how many jobs were accepted by the queue.
func (s *Scheduler) Sweep(ctx context.Context, now time.Time) (int, error) {
	s.stats.IncSweepRun()

	date := now.UTC().Format("2006-01-02")
	timeOfDay := now.UTC().Format("15:04")

	tasks, err := s.todoSvc.ListDue(ctx, date, timeOfDay)
	if err != nil {
		return 0, err
	}

	enqueued := 0
	for _, task := range tasks {
		if s.queue.EnqueueReminder(task.ID) {
			enqueued++
		}
	}

	s.stats.AddSweepProcessed(enqueued)
	if len(tasks) > 0 {
		s.log.Info("reminder sweep",
			zap.String("cutoff_date", date),
			zap.String("cutoff_time", timeOfDay),
			zap.Int("due", len(tasks)),
			zap.Int("enqueued", enqueued),
		)
	}
	return enqueued, nil
}

func (s *Scheduler) RunOnce(ctx context.Context) error {
	_, err := s.RunOnceCount(ctx)
	return err
}

// RunOnceCount sweeps at the current clock time and reports how many
// reminders the queue accepted. The manual sweep endpoint uses it.
func (s *Scheduler) RunOnceCount(ctx context.Context) (int, error) {
	return s.Sweep(ctx, s.clock.Now())
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("sweep failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
