package process

import (
	"context"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/composekit/subapp/pkg/logger"
)

// CronRuntime triggers each registered process on a fixed schedule instead
// of running it once. Suited to polling-style processes that read their
// slice and dispatch periodically.
type CronRuntime struct {
	c    *cron.Cron
	spec string
	log  *logger.Logger
	once sync.Once
}

// NewCronRuntime creates a cron substrate. Spec uses the standard cron
// format, including descriptors such as "@every 30s".
func NewCronRuntime(spec string, log *logger.Logger) *CronRuntime {
	if log == nil {
		log = logger.NewNop()
	}
	return &CronRuntime{c: cron.New(), spec: spec, log: log}
}

// Start registers run under this runtime's schedule. The scheduler itself
// is started on the first registration.
func (r *CronRuntime) Start(name string, run func(ctx context.Context) error) error {
	_, err := r.c.AddFunc(r.spec, func() {
		if err := run(context.Background()); err != nil {
			r.log.WithError(err).WithField("process", name).Error("scheduled process run failed")
		}
	})
	if err != nil {
		return err
	}
	r.once.Do(r.c.Start)
	return nil
}

// Stop halts the scheduler and waits for in-flight runs to finish.
func (r *CronRuntime) Stop() {
	<-r.c.Stop().Done()
}
