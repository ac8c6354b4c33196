package store

import (
	"testing"
)

func setValueReducer(key string) RootReducer {
	return func(state State, action Action) State {
		if action.Type != "SET" {
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

func TestNew_NilRootAndPreloaded(t *testing.T) {
	s := New(nil, nil)
	if got := s.GetState(); got == nil || len(got) != 0 {
		t.Fatalf("expected empty tree, got %v", got)
	}
	// Dispatch through a nil reducer must not panic.
	s.Dispatch(Action{Type: "NOOP"})
}

func TestStore_DispatchAppliesReducer(t *testing.T) {
	s := New(setValueReducer("x"), State{"x": 0})

	s.Dispatch(Action{Type: "SET", Payload: 7})
	if got := s.GetState()["x"]; got != 7 {
		t.Errorf("x = %v, want 7", got)
	}

	s.Dispatch(Action{Type: "OTHER"})
	if got := s.GetState()["x"]; got != 7 {
		t.Errorf("unrelated action changed state: x = %v", got)
	}
}

func TestStore_SubscribeAndUnsubscribe(t *testing.T) {
	s := New(setValueReducer("x"), nil)

	calls := 0
	unsub := s.Subscribe(func() { calls++ })

	s.Dispatch(Action{Type: "SET", Payload: 1})
	s.Dispatch(Action{Type: "SET", Payload: 2})
	if calls != 2 {
		t.Errorf("listener calls = %d, want 2", calls)
	}

	unsub()
	s.Dispatch(Action{Type: "SET", Payload: 3})
	if calls != 2 {
		t.Errorf("listener called after unsubscribe: %d", calls)
	}
}

func TestStore_ListenerSeesNewState(t *testing.T) {
	s := New(setValueReducer("x"), nil)

	var observed any
	s.Subscribe(func() { observed = s.GetState()["x"] })

	s.Dispatch(Action{Type: "SET", Payload: 42})
	if observed != 42 {
		t.Errorf("listener observed %v, want 42", observed)
	}
}

func TestNew_EnhancerComposition(t *testing.T) {
	var order []string
	mark := func(name string) Enhancer {
		return func(create Creator) Creator {
			return func(root RootReducer, preloaded State) Store {
				order = append(order, name)
				return create(root, preloaded)
			}
		}
	}

	New(nil, nil, mark("outer"), mark("inner"))
	if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
		t.Errorf("enhancer application order = %v, want [outer inner]", order)
	}
}
