package notification

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/faktura/internal/clock"
	"github.com/smallbiznis/faktura/internal/config"
	"go.uber.org/zap"
)

func newTestQueue(t *testing.T, size int) *Queue {
	t.Helper()
	return NewQueue(QueueParams{
		Config: config.Config{DispatchQueueSize: size},
		Log:    zap.NewNop(),
		Clock:  clock.NewFakeClock(time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)),
	})
}

func TestEnqueueDropsWhenFull(t *testing.T) {
	queue := newTestQueue(t, 2)
	node, _ := snowflake.NewNode(1)

	if !queue.EnqueueInvoice(node.Generate()) {
		t.Fatal("first enqueue must succeed")
	}
	if !queue.EnqueueReminder(node.Generate()) {
		t.Fatal("second enqueue must succeed")
	}
	// Full queue drops instead of blocking the request path.
	if queue.EnqueueInvoice(node.Generate()) {
		t.Fatal("third enqueue must be dropped")
	}

	job := <-queue.Jobs()
	if job.Kind != KindInvoice {
		t.Fatalf("first job kind = %s", job.Kind)
	}
	job = <-queue.Jobs()
	if job.Kind != KindReminder {
		t.Fatalf("second job kind = %s", job.Kind)
	}

	// Draining frees capacity again.
	if !queue.EnqueueInvoice(node.Generate()) {
		t.Fatal("enqueue after drain must succeed")
	}
}

func TestJobCarriesTarget(t *testing.T) {
	queue := newTestQueue(t, 1)
	node, _ := snowflake.NewNode(1)
	id := node.Generate()

	queue.EnqueueReminder(id)
	job := <-queue.Jobs()

	if job.TargetID != id {
		t.Fatalf("target = %s, want %s", job.TargetID, id)
	}
	if job.ID.String() == "" || job.EnqueuedAt.IsZero() {
		t.Fatalf("job = %+v", job)
	}
}
