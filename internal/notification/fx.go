package notification

import (
	"context"
	"sync"

	"github.com/smallbiznis/faktura/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("notification",
	fx.Provide(NewQueue),
	fx.Provide(NewDispatcher),
	fx.Invoke(runWorkers),
)

type workerParams struct {
	fx.In

	LC         fx.Lifecycle
	Config     config.Config
	Log        *zap.Logger
	Queue      *Queue
	Dispatcher *Dispatcher
}

func runWorkers(p workerParams) {
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	workers := p.Config.DispatchWorkers
	if workers <= 0 {
		workers = 1
	}

	p.LC.Append(fx.Hook{
		OnStart: func(context.Context) error {
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					p.Dispatcher.Run(ctx, p.Queue)
				}()
			}
			p.Log.Info("dispatch workers started", zap.Int("workers", workers))
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			wg.Wait()
			return nil
		},
	})
}
