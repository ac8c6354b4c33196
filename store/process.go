package store

import (
	"context"
	"errors"
)

// ErrRuntimeNotConfigured is returned by RunProcess when no execution
// substrate was supplied at enhancer construction. The condition is
// non-fatal: the process simply does not run and reducer composition is
// unaffected, so callers typically log it and continue.
var ErrRuntimeNotConfigured = errors.New("process runtime not configured")

// ProcessView is the restricted store surface handed to a background
// process: a pre-narrowed state read and a namespace-tagged dispatch. The
// full tree and untagged dispatch are never exposed to a process.
type ProcessView interface {
	GetState() any
	Dispatch(action Action)
}

// Process is a schedulable background unit attached to a sub-app slice.
// Errors and panics from Run propagate to the runtime; sandboxing user
// logic is out of scope.
type Process interface {
	Run(ctx context.Context, view ProcessView) error
}

// ProcessFunc adapts a function to the Process interface.
type ProcessFunc func(ctx context.Context, view ProcessView) error

// Run implements Process.
func (f ProcessFunc) Run(ctx context.Context, view ProcessView) error {
	return f(ctx, view)
}

// Runtime is the execution substrate processes are scheduled on.
type Runtime interface {
	// Start schedules run under the given name. It must not block on the
	// process itself.
	Start(name string, run func(ctx context.Context) error) error
}
