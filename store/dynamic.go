package store

import (
	"context"
	"sync"
	"time"

	"github.com/composekit/subapp/internal/events"
	"github.com/composekit/subapp/internal/metrics"
	"github.com/composekit/subapp/pkg/logger"
)

// DynamicStore is a store whose reducer set can grow after creation.
// Reducers are append-only: once added for a key they are never removed, and
// the effective reducer is always the original root reducer followed by
// every added reducer in registration order.
type DynamicStore interface {
	Store

	// AddReducer appends a reducer. It takes effect from the next
	// dispatched action; dispatch history is never re-processed.
	AddReducer(r RootReducer)

	// RunProcess schedules a background process against the supplied view.
	// Returns ErrRuntimeNotConfigured when no substrate was configured;
	// that condition is reported and non-fatal.
	RunProcess(name string, p Process, view ProcessView) error
}

// DynamicOption configures the Dynamic enhancer.
type DynamicOption func(*dynamicConfig)

type dynamicConfig struct {
	runtime   Runtime
	log       *logger.Logger
	eventLog  *events.Log
	collector *metrics.Collector
}

// WithRuntime supplies the process execution substrate. Without it,
// RunProcess degrades to a reported no-op.
func WithRuntime(rt Runtime) DynamicOption {
	return func(c *dynamicConfig) { c.runtime = rt }
}

// WithLogger supplies the engine logger.
func WithLogger(log *logger.Logger) DynamicOption {
	return func(c *dynamicConfig) { c.log = log }
}

// WithEventLog records reducer and process events to the given log.
func WithEventLog(el *events.Log) DynamicOption {
	return func(c *dynamicConfig) { c.eventLog = el }
}

// WithMetrics records dispatch and registration telemetry.
func WithMetrics(col *metrics.Collector) DynamicOption {
	return func(c *dynamicConfig) { c.collector = col }
}

// Dynamic returns the enhancer that adds post-creation reducer registration
// and process scheduling to a store. It composes with other enhancers via
// ordinary functional composition.
func Dynamic(opts ...DynamicOption) Enhancer {
	cfg := dynamicConfig{log: logger.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(create Creator) Creator {
		return func(root RootReducer, preloaded State) Store {
			d := &dynamicStore{base: root, cfg: cfg}
			d.inner = create(d.reduce, preloaded)
			return d
		}
	}
}

type dynamicStore struct {
	inner Store
	cfg   dynamicConfig

	mu    sync.Mutex
	base  RootReducer
	added []RootReducer
}

var _ DynamicStore = (*dynamicStore)(nil)

// reduce applies the base reducer, then every registered reducer in
// registration order. Registered sub-app keys are expected to be disjoint,
// so ordering only matters for overlapping keys.
func (d *dynamicStore) reduce(state State, action Action) State {
	d.mu.Lock()
	base := d.base
	added := d.added
	d.mu.Unlock()

	if base != nil {
		state = base(state, action)
	}
	for _, r := range added {
		state = r(state, action)
	}
	return state
}

func (d *dynamicStore) GetState() State { return d.inner.GetState() }

func (d *dynamicStore) Dispatch(action Action) {
	start := time.Now()
	d.inner.Dispatch(action)
	if d.cfg.collector != nil {
		d.cfg.collector.ObserveDispatch(time.Since(start))
	}
}

func (d *dynamicStore) Subscribe(fn Listener) func() { return d.inner.Subscribe(fn) }

func (d *dynamicStore) AddReducer(r RootReducer) {
	d.mu.Lock()
	d.added = append(d.added, r)
	n := len(d.added)
	d.mu.Unlock()

	d.cfg.log.WithField("reducers", n).Debug("reducer added to live store")
	if d.cfg.collector != nil {
		d.cfg.collector.SetRegisteredReducers(n)
	}
	if d.cfg.eventLog != nil {
		d.cfg.eventLog.Record(events.Event{
			Type:     events.EventReducerAdded,
			Severity: events.SeverityDebug,
			Message:  "reducer added to live store",
		})
	}
}

func (d *dynamicStore) RunProcess(name string, p Process, view ProcessView) error {
	if d.cfg.runtime == nil {
		d.cfg.log.WithField("process", name).
			Warn("process runtime not configured; background process will not run")
		if d.cfg.collector != nil {
			d.cfg.collector.RecordProcessSkip()
		}
		if d.cfg.eventLog != nil {
			d.cfg.eventLog.Record(events.Event{
				Type:     events.EventProcessSkipped,
				Severity: events.SeverityWarning,
				Key:      name,
				Message:  "no process runtime configured",
			})
		}
		return ErrRuntimeNotConfigured
	}

	if d.cfg.eventLog != nil {
		d.cfg.eventLog.Record(events.Event{
			Type: events.EventProcessStarted,
			Key:  name,
		})
	}
	return d.cfg.runtime.Start(name, func(ctx context.Context) error {
		return p.Run(ctx, view)
	})
}
