// Package events provides structured event logging for the composition
// engine. Events capture mount lifecycle transitions, reducer registration,
// and background-process scheduling, and are retained in a ring buffer for
// inspection.
package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Type classifies the kind of engine event.
type Type string

const (
	// Binding and mount lifecycle
	EventBindingCreated Type = "binding.created"
	EventBindingReused  Type = "binding.reused"
	EventMountStarted   Type = "mount.started"
	EventMountActivated Type = "mount.activated"

	// Reducer composition
	EventReducerAdded   Type = "reducer.added"
	EventSliceSeeded    Type = "slice.seeded"

	// Background processes
	EventProcessStarted Type = "process.started"
	EventProcessSkipped Type = "process.skipped"
	EventProcessFailed  Type = "process.failed"
)

// Severity indicates the importance of an event.
type Severity string

const (
	SeverityDebug   Severity = "debug"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Event is a structured engine event.
type Event struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Severity  Severity  `json:"severity"`
	Timestamp time.Time `json:"timestamp"`

	// Key is the sub-app key the event concerns, when applicable.
	Key string `json:"key,omitempty"`

	Message  string            `json:"message,omitempty"`
	Error    string            `json:"error,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// String returns the JSON representation.
func (e Event) String() string {
	data, _ := json.Marshal(e)
	return string(data)
}

// Handler processes events as they occur.
type Handler func(Event)

// Log is a thread-safe circular buffer of events with subscription.
type Log struct {
	mu       sync.RWMutex
	events   []Event
	size     int
	head     int
	count    int
	handlers map[int64]Handler
	nextID   int64
}

// NewLog creates an event log retaining up to size events.
func NewLog(size int) *Log {
	if size <= 0 {
		size = 256
	}
	return &Log{
		events:   make([]Event, size),
		size:     size,
		handlers: make(map[int64]Handler),
	}
}

// Record adds an event to the buffer and notifies subscribers.
func (l *Log) Record(event Event) {
	l.mu.Lock()
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Severity == "" {
		event.Severity = SeverityInfo
	}

	l.events[l.head] = event
	l.head = (l.head + 1) % l.size
	if l.count < l.size {
		l.count++
	}

	handlers := make([]Handler, 0, len(l.handlers))
	for _, h := range l.handlers {
		handlers = append(handlers, h)
	}
	l.mu.Unlock()

	// Notify outside the lock.
	for _, h := range handlers {
		h(event)
	}
}

// Subscribe registers a handler and returns its unsubscribe func.
func (l *Log) Subscribe(h Handler) func() {
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.handlers[id] = h
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		delete(l.handlers, id)
		l.mu.Unlock()
	}
}

// Recent returns the most recent n events, newest first.
func (l *Log) Recent(n int) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n <= 0 || l.count == 0 {
		return nil
	}
	if n > l.count {
		n = l.count
	}
	result := make([]Event, n)
	for i := 0; i < n; i++ {
		idx := (l.head - 1 - i + l.size) % l.size
		result[i] = l.events[idx]
	}
	return result
}

// RecentByKey returns the most recent n events for a sub-app key.
func (l *Log) RecentByKey(key string, n int) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n <= 0 || l.count == 0 {
		return nil
	}
	var result []Event
	for i := 0; i < l.count && len(result) < n; i++ {
		idx := (l.head - 1 - i + l.size) % l.size
		if l.events[idx].Key == key {
			result = append(result, l.events[idx])
		}
	}
	return result
}
