package store

import (
	"context"
	"errors"
	"testing"

	"github.com/composekit/subapp/internal/events"
	"github.com/composekit/subapp/pkg/logger"
)

type inlineRuntime struct {
	started []string
}

func (r *inlineRuntime) Start(name string, run func(ctx context.Context) error) error {
	r.started = append(r.started, name)
	return run(context.Background())
}

func sliceReducer(key string) RootReducer {
	return func(state State, action Action) State {
		if action.Type != "SET:"+key {
			return state
		}
		next := make(State, len(state)+1)
		for k, v := range state {
			next[k] = v
		}
		next[key] = action.Payload
		return next
	}
}

func newDynamic(t *testing.T, opts ...DynamicOption) DynamicStore {
	t.Helper()
	s := New(nil, nil, Dynamic(opts...))
	d, ok := s.(DynamicStore)
	if !ok {
		t.Fatal("Dynamic enhancer did not produce a DynamicStore")
	}
	return d
}

func TestDynamic_AddReducerTakesEffectOnNextDispatch(t *testing.T) {
	d := newDynamic(t)

	// Not yet registered: dispatch does nothing.
	d.Dispatch(Action{Type: "SET:a", Payload: 1})
	if _, ok := d.GetState()["a"]; ok {
		t.Fatal("reducer applied before registration")
	}

	d.AddReducer(sliceReducer("a"))
	d.Dispatch(Action{Type: "SET:a", Payload: 1})
	if got := d.GetState()["a"]; got != 1 {
		t.Errorf("a = %v, want 1", got)
	}
}

func TestDynamic_RegistrationOrderPreserved(t *testing.T) {
	var order []string
	track := func(name string) RootReducer {
		return func(state State, action Action) State {
			order = append(order, name)
			return state
		}
	}

	d := newDynamic(t)
	d.AddReducer(track("first"))
	d.AddReducer(track("second"))
	d.Dispatch(Action{Type: "ANY"})

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("reducer order = %v", order)
	}
}

func TestDynamic_BaseReducerRunsFirst(t *testing.T) {
	var order []string
	base := func(state State, action Action) State {
		order = append(order, "base")
		return state
	}
	s := New(base, nil, Dynamic())
	d := s.(DynamicStore)
	d.AddReducer(func(state State, action Action) State {
		order = append(order, "added")
		return state
	})

	d.Dispatch(Action{Type: "ANY"})
	if len(order) != 2 || order[0] != "base" {
		t.Errorf("application order = %v, want base first", order)
	}
}

func TestDynamic_RunProcess(t *testing.T) {
	rt := &inlineRuntime{}
	d := newDynamic(t, WithRuntime(rt), WithLogger(logger.NewNop()))
	d.AddReducer(sliceReducer("jobs"))

	ran := false
	p := ProcessFunc(func(ctx context.Context, view ProcessView) error {
		ran = true
		view.Dispatch(Action{Type: "tick"})
		return nil
	})

	view := &staticView{store: d}
	if err := d.RunProcess("jobs", p, view); err != nil {
		t.Fatalf("RunProcess: %v", err)
	}
	if !ran {
		t.Error("process did not run")
	}
	if len(rt.started) != 1 || rt.started[0] != "jobs" {
		t.Errorf("runtime starts = %v", rt.started)
	}
}

func TestDynamic_RunProcessWithoutRuntime(t *testing.T) {
	el := events.NewLog(8)
	d := newDynamic(t, WithLogger(logger.NewNop()), WithEventLog(el))

	err := d.RunProcess("jobs", ProcessFunc(func(ctx context.Context, view ProcessView) error {
		t.Error("process must not run without a runtime")
		return nil
	}), &staticView{store: d})

	if !errors.Is(err, ErrRuntimeNotConfigured) {
		t.Fatalf("err = %v, want ErrRuntimeNotConfigured", err)
	}

	// The condition is reported, and the store keeps reducing normally.
	recent := el.RecentByKey("jobs", 1)
	if len(recent) != 1 || recent[0].Type != events.EventProcessSkipped {
		t.Errorf("expected process.skipped event, got %v", recent)
	}
	d.AddReducer(sliceReducer("a"))
	d.Dispatch(Action{Type: "SET:a", Payload: 5})
	if got := d.GetState()["a"]; got != 5 {
		t.Errorf("reducer composition affected by missing runtime: a = %v", got)
	}
}

// staticView is a minimal ProcessView over the full store, for tests only.
type staticView struct {
	store Store
}

func (v *staticView) GetState() any          { return v.store.GetState() }
func (v *staticView) Dispatch(action Action) { v.store.Dispatch(action) }
