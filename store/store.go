// Package store implements the shared state tree boundary: a single
// synchronously-read store with reducer-driven updates, enhancer
// composition at construction time, and dynamic reducer registration for
// sub-applications whose code loads after the store exists.
package store

import "sync"

// State is the shared state tree: string keys mapping to arbitrarily nested
// sub-values. Trees are immutable values; reducers always return a new tree
// and never mutate one in place.
type State = map[string]any

// Action is a small serializable record with at least a type discriminator.
// Namespaced actions carry their owning key as a type prefix.
type Action struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Reducer transforms one slice of state. Slice reducers must be pure.
type Reducer func(state any, action Action) any

// RootReducer transforms the whole tree.
type RootReducer func(state State, action Action) State

// Listener is invoked after every dispatch has been applied.
type Listener func()

// Store is the handle consumed by the rest of the engine.
type Store interface {
	// GetState returns the current tree snapshot.
	GetState() State

	// Dispatch applies an action synchronously.
	Dispatch(action Action)

	// Subscribe registers a listener and returns its unsubscribe func.
	Subscribe(fn Listener) func()
}

// Creator builds a store from a root reducer and preloaded state.
type Creator func(root RootReducer, preloaded State) Store

// Enhancer wraps store creation. Enhancers compose functionally; New applies
// them right to left so the first enhancer is outermost.
type Enhancer func(Creator) Creator

// New creates a store. A nil root reducer passes state through unchanged;
// nil preloaded state starts from an empty tree.
func New(root RootReducer, preloaded State, enhancers ...Enhancer) Store {
	creator := newBasicStore
	for i := len(enhancers) - 1; i >= 0; i-- {
		creator = enhancers[i](creator)
	}
	return creator(root, preloaded)
}

type basicStore struct {
	mu        sync.Mutex
	reducer   RootReducer
	state     State
	listeners map[int64]Listener
	nextID    int64
}

func newBasicStore(root RootReducer, preloaded State) Store {
	if preloaded == nil {
		preloaded = State{}
	}
	return &basicStore{
		reducer:   root,
		state:     preloaded,
		listeners: make(map[int64]Listener),
	}
}

func (s *basicStore) GetState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *basicStore) Dispatch(action Action) {
	s.mu.Lock()
	if s.reducer != nil {
		s.state = s.reducer(s.state, action)
	}
	notify := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		notify = append(notify, fn)
	}
	s.mu.Unlock()

	// Listeners run outside the lock so they can read state freely.
	for _, fn := range notify {
		fn()
	}
}

func (s *basicStore) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}
