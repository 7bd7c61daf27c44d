// Package notification owns asynchronous document dispatch: a bounded job
// queue fed by the billing services and a worker pool that renders and sends
// the emails. Document creation never waits on SMTP.
package notification

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/smallbiznis/faktura/internal/clock"
	"github.com/smallbiznis/faktura/internal/config"
	"github.com/smallbiznis/faktura/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Kind string

const (
	KindInvoice  Kind = "invoice"
	KindReminder Kind = "reminder"
)

type Job struct {
	ID         uuid.UUID
	Kind       Kind
	TargetID   snowflake.ID
	EnqueuedAt time.Time
}

// Queue is a bounded, non-blocking dispatch queue. When full, jobs are
// dropped and recorded as dead letters rather than backpressuring the
// request path.
type Queue struct {
	jobs  chan Job
	log   *zap.Logger
	stats *metrics.Metrics
	clock clock.Clock
}

type QueueParams struct {
	fx.In

	Config config.Config
	Log    *zap.Logger
	Clock  clock.Clock
	Stats  *metrics.Metrics `optional:"true"`
}

func NewQueue(p QueueParams) *Queue {
	size := p.Config.DispatchQueueSize
	if size <= 0 {
		size = 64
	}
	return &Queue{
		jobs:  make(chan Job, size),
		log:   p.Log.Named("notification.queue"),
		stats: p.Stats,
		clock: p.Clock,
	}
}

func (q *Queue) EnqueueInvoice(id snowflake.ID) bool {
	return q.enqueue(KindInvoice, id)
}

func (q *Queue) EnqueueReminder(id snowflake.ID) bool {
	return q.enqueue(KindReminder, id)
}

func (q *Queue) enqueue(kind Kind, id snowflake.ID) bool {
	job := Job{
		ID:         uuid.New(),
		Kind:       kind,
		TargetID:   id,
		EnqueuedAt: q.clock.Now().UTC(),
	}

	select {
	case q.jobs <- job:
		q.stats.IncEnqueued()
		q.log.Debug("job enqueued",
			zap.String("job_id", job.ID.String()),
			zap.String("kind", string(kind)),
			zap.String("target_id", id.String()),
		)
		return true
	default:
		q.stats.IncDeadLetter("queue_full")
		q.log.Error("dispatch queue full, job dropped",
			zap.String("job_id", job.ID.String()),
			zap.String("kind", string(kind)),
			zap.String("target_id", id.String()),
		)
		return false
	}
}

// Jobs exposes the consume side for the dispatcher workers.
func (q *Queue) Jobs() <-chan Job { return q.jobs }
