// Package testutil provides common testing utilities and mock
// implementations for store-level collaborators.
package testutil

import (
	"context"
	"sync"

	"github.com/composekit/subapp/store"
)

// InlineRuntime executes processes synchronously on the caller's goroutine.
type InlineRuntime struct{}

// Start implements store.Runtime.
func (InlineRuntime) Start(name string, run func(ctx context.Context) error) error {
	return run(context.Background())
}

// RecordingRuntime records start requests without running anything.
type RecordingRuntime struct {
	mu      sync.Mutex
	started []string
}

// Start implements store.Runtime.
func (r *RecordingRuntime) Start(name string, run func(ctx context.Context) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, name)
	return nil
}

// Started returns the names passed to Start, in order.
func (r *RecordingRuntime) Started() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.started))
	copy(out, r.started)
	return out
}

// MockProcess counts its runs and remembers the last view it was given.
type MockProcess struct {
	mu   sync.Mutex
	runs int
	view store.ProcessView

	// Ready is closed on the first run.
	Ready chan struct{}

	// Err, when set, is returned from Run.
	Err error
}

// NewMockProcess creates a MockProcess.
func NewMockProcess() *MockProcess {
	return &MockProcess{Ready: make(chan struct{})}
}

// Run implements store.Process.
func (p *MockProcess) Run(ctx context.Context, view store.ProcessView) error {
	p.mu.Lock()
	p.runs++
	p.view = view
	first := p.runs == 1
	p.mu.Unlock()
	if first {
		close(p.Ready)
	}
	return p.Err
}

// Runs returns how many times the process ran.
func (p *MockProcess) Runs() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.runs
}

// View returns the last view handed to Run.
func (p *MockProcess) View() store.ProcessView {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.view
}
