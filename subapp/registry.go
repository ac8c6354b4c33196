package subapp

import (
	"reflect"
	"sync"

	"github.com/composekit/subapp/internal/events"
	"github.com/composekit/subapp/internal/metrics"
	"github.com/composekit/subapp/pkg/logger"
	"github.com/composekit/subapp/store"
)

// Binding is the process-wide record for one key: the component identity it
// was created with, the wrapped component handed back to callers, the
// refined reducer, and the optional background process. Bindings live for
// the process lifetime and are never torn down; the component identity never
// changes after creation.
type Binding struct {
	Key     string
	Reducer store.RootReducer
	Process store.Process

	identity Component
	wrapped  Component
}

// Wrapped returns the mount-aware component for this binding.
func (b *Binding) Wrapped() Component { return b.wrapped }

// Phase returns the lifecycle phase of the binding's mount. A binding whose
// wrapped component has never rendered reports PhaseUnmounted.
func (b *Binding) Phase() Phase {
	if mc, ok := b.wrapped.(*mountedComponent); ok {
		return mc.mount.Phase()
	}
	return PhaseUnmounted
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the registry logger.
func WithRegistryLogger(log *logger.Logger) RegistryOption {
	return func(r *Registry) { r.log = log }
}

// WithRegistryEventLog records binding and mount events to the given log.
func WithRegistryEventLog(el *events.Log) RegistryOption {
	return func(r *Registry) { r.events = el }
}

// WithRegistryMetrics records mount and process telemetry.
func WithRegistryMetrics(col *metrics.Collector) RegistryOption {
	return func(r *Registry) { r.collector = col }
}

// Registry maps keys to sub-app bindings and tracks which keys have had
// their background process started. It is owned by the application,
// constructed once at startup and threaded into every factory call, rather
// than being ambient global state. Bindings and started-process entries are
// append-only for the process lifetime.
type Registry struct {
	mu       sync.Mutex
	bindings map[string]*Binding
	started  map[string]struct{}

	log       *logger.Logger
	events    *events.Log
	collector *metrics.Collector
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		bindings: make(map[string]*Binding),
		started:  make(map[string]struct{}),
		log:      logger.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetOrCreate returns the binding for key. An unbound key is bound with the
// result of build. A key already bound to the same component identity
// returns the cached binding, so repeated factory calls are cheap and
// idempotent. A key bound to a different identity fails with
// KeyConflictError; that is never silently resolved.
func (r *Registry) GetOrCreate(key string, identity Component, build func() (*Binding, error)) (*Binding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.bindings[key]; ok {
		if !sameIdentity(existing.identity, identity) {
			return nil, NewKeyConflictError(key, existing.identity)
		}
		r.record(events.Event{
			Type:     events.EventBindingReused,
			Severity: events.SeverityDebug,
			Key:      key,
		})
		return existing, nil
	}

	binding, err := build()
	if err != nil {
		return nil, err
	}
	r.bindings[key] = binding

	r.log.WithField("key", key).Debug("sub-app binding created")
	r.record(events.Event{Type: events.EventBindingCreated, Key: key})
	return binding, nil
}

// Binding returns the binding for key, if any.
func (r *Registry) Binding(key string) (*Binding, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bindings[key]
	return b, ok
}

// Keys returns all bound keys.
func (r *Registry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.bindings))
	for k := range r.bindings {
		keys = append(keys, k)
	}
	return keys
}

// MarkProcessStarted inserts key into the started set and reports whether
// the insert was new. A key enters the set at most once regardless of how
// many times instances for it are mounted.
func (r *Registry) MarkProcessStarted(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.started[key]; ok {
		return false
	}
	r.started[key] = struct{}{}
	return true
}

// ProcessStarted reports whether key's background process has been started.
func (r *Registry) ProcessStarted(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.started[key]
	return ok
}

func (r *Registry) record(ev events.Event) {
	if r.events != nil {
		r.events.Record(ev)
	}
}

// sameIdentity compares two components by strict identity of the originally
// supplied unit. Reference kinds compare by pointer so that incomparable
// dynamic types (component funcs, map-backed components) never panic.
func sameIdentity(a, b Component) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Func, reflect.Map, reflect.Slice, reflect.Chan, reflect.Pointer, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	default:
		return a == b
	}
}
