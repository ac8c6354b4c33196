package subapp

import (
	"errors"
	"sync"

	"github.com/composekit/subapp/internal/events"
	"github.com/composekit/subapp/store"
)

// Mount drives one instance's lifecycle: Unmounted -> Mounting -> Active.
// The Mounting -> Active transition is a single synchronous step that
// registers the refined reducer, dispatches the initialize sentinel, and
// starts the background process at most once per key across all mounts.
// Unmounting has no effect on the shared state, the reducer set, or the
// process; every step is idempotent so re-entrant or duplicate mount
// invocations re-enter Active as a no-op.
type Mount struct {
	mu       sync.Mutex
	registry *Registry
	binding  *Binding
	phase    Phase
	view     *ScopedView
}

func newMount(registry *Registry, binding *Binding) *Mount {
	return &Mount{registry: registry, binding: binding}
}

// Phase returns the current lifecycle phase.
func (m *Mount) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// transition moves the mount to the target phase, enforcing the phase
// machine. Callers must hold m.mu.
func (m *Mount) transition(to Phase) error {
	if !CanTransition(m.phase, to) {
		return PhaseTransitionError{From: m.phase, To: to}
	}
	m.phase = to
	return nil
}

// Activate performs the Mounting -> Active transition against the enclosing
// store resolved from the ambient handle, and returns the ScopedView the
// mounted unit renders with. Calling Activate on an already-active mount
// returns the existing view.
//
// The step ordering is load-bearing: the reducer must be registered before
// the sentinel dispatch, and the process must start only after the slice is
// seeded, or a process reading state at startup would observe an unseeded
// slice.
func (m *Mount) Activate(ambient Handle) (*ScopedView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase == PhaseActive {
		return m.view, nil
	}
	if err := m.transition(PhaseMounting); err != nil {
		return nil, err
	}

	key := m.binding.Key
	m.registry.record(events.Event{Type: events.EventMountStarted, Key: key})

	root, err := resolveRoot(ambient)
	if err != nil {
		m.phase = PhaseUnmounted // rollback
		return nil, err
	}

	root.AddReducer(m.binding.Reducer)
	root.Dispatch(InitAction())
	m.registry.record(events.Event{
		Type:     events.EventSliceSeeded,
		Severity: events.SeverityDebug,
		Key:      key,
	})

	view, err := NewScopedView(key, root)
	if err != nil {
		m.phase = PhaseUnmounted // rollback
		return nil, err
	}

	if m.binding.Process != nil && m.registry.MarkProcessStarted(key) {
		procView, _ := NewScopedView(key, root)
		if err := root.RunProcess(key, m.binding.Process, procView); err != nil {
			// Reported, non-fatal: the sub-app still mounts, the process
			// simply does not run.
			if !errors.Is(err, store.ErrRuntimeNotConfigured) {
				m.registry.log.WithError(err).WithField("key", key).
					Error("background process failed to start")
				m.registry.record(events.Event{
					Type:     events.EventProcessFailed,
					Severity: events.SeverityError,
					Key:      key,
					Error:    err.Error(),
				})
			}
		} else if m.registry.collector != nil {
			m.registry.collector.RecordProcessStart(key)
		}
	}

	if err := m.transition(PhaseActive); err != nil {
		return nil, err
	}
	m.view = view
	if m.registry.collector != nil {
		m.registry.collector.RecordMount(key)
	}
	m.registry.record(events.Event{Type: events.EventMountActivated, Key: key})
	m.registry.log.WithField("key", key).Info("sub-app mounted")
	return view, nil
}

// resolveRoot unwraps the ambient handle to the root store. The current
// handle may itself be a narrowed view when sub-apps nest. The root must
// accept reducers after creation.
func resolveRoot(ambient Handle) (store.DynamicStore, error) {
	var current any = ambient
	for {
		rp, ok := current.(rootProvider)
		if !ok {
			break
		}
		root := rp.Root()
		if root == nil {
			break
		}
		current = root
	}
	if d, ok := current.(store.DynamicStore); ok {
		return d, nil
	}
	return nil, ErrStoreNotDynamic
}
