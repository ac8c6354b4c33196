// Package process provides execution substrates for sub-app background
// processes. A runtime receives already-narrowed work from the store's
// RunProcess and decides how it executes: once on a goroutine, or on a
// recurring schedule.
package process

import (
	"context"
	"sync"

	"github.com/composekit/subapp/pkg/logger"
)

// GoRuntime runs each process once, on its own goroutine. Process errors
// are logged; they are not retried.
type GoRuntime struct {
	log    *logger.Logger
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewGoRuntime creates a goroutine substrate.
func NewGoRuntime(log *logger.Logger) *GoRuntime {
	if log == nil {
		log = logger.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &GoRuntime{log: log, ctx: ctx, cancel: cancel}
}

// Start schedules run on a new goroutine. It never blocks on the process.
func (r *GoRuntime) Start(name string, run func(ctx context.Context) error) error {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := run(r.ctx); err != nil {
			r.log.WithError(err).WithField("process", name).Error("background process exited with error")
		}
	}()
	return nil
}

// Stop cancels all running processes and waits for them to return.
func (r *GoRuntime) Stop() {
	r.cancel()
	r.wg.Wait()
}
