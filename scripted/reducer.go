// Package scripted compiles slice reducers written as JavaScript. It lets a
// sub-app ship its reducer as data, so the reducing logic can be loaded
// after the host application and its store already exist.
//
// The script must define a pure function reduce(state, action) returning the
// next slice state. A console.log shim is provided for debugging.
package scripted

import (
	"fmt"
	"sync"
	"time"

	"github.com/dop251/goja"

	"github.com/composekit/subapp/pkg/logger"
	"github.com/composekit/subapp/store"
)

// DefaultTimeout bounds a single reduce call before the VM is interrupted.
const DefaultTimeout = time.Second

// Option configures a scripted reducer.
type Option func(*config)

type config struct {
	timeout time.Duration
	log     *logger.Logger
}

// WithTimeout overrides the per-call interrupt timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// WithLogger receives the script's console.log output at debug level.
func WithLogger(log *logger.Logger) Option {
	return func(c *config) { c.log = log }
}

// Reducer compiles src and returns a store.Reducer backed by the script's
// reduce function. Compilation and shape errors are reported here, at
// construction time; a script exception during a dispatch propagates as a
// panic, matching the contract that user reducer failures are not caught by
// the engine.
func Reducer(src string, opts ...Option) (store.Reducer, error) {
	cfg := config{timeout: DefaultTimeout, log: logger.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	prog, err := goja.Compile("reduce.js", src, false)
	if err != nil {
		return nil, fmt.Errorf("compile reducer script: %w", err)
	}

	vm := goja.New()

	console := vm.NewObject()
	_ = console.Set("log", func(call goja.FunctionCall) goja.Value {
		args := make([]any, len(call.Arguments))
		for i, arg := range call.Arguments {
			args[i] = arg.Export()
		}
		cfg.log.Debugf("script: %s", fmt.Sprint(args...))
		return goja.Undefined()
	})
	if err := vm.Set("console", console); err != nil {
		return nil, fmt.Errorf("install console: %w", err)
	}

	if _, err := vm.RunProgram(prog); err != nil {
		return nil, fmt.Errorf("evaluate reducer script: %w", err)
	}

	reduce, ok := goja.AssertFunction(vm.Get("reduce"))
	if !ok {
		return nil, fmt.Errorf("reducer script must define reduce(state, action)")
	}

	// goja runtimes are not safe for concurrent use; dispatches are
	// serialized through one VM.
	var mu sync.Mutex

	return func(state any, action store.Action) any {
		mu.Lock()
		defer mu.Unlock()

		timer := time.AfterFunc(cfg.timeout, func() {
			vm.Interrupt("reducer timeout")
		})
		defer timer.Stop()
		defer vm.ClearInterrupt()

		var jsState goja.Value = goja.Undefined()
		if state != nil {
			jsState = vm.ToValue(state)
		}
		jsAction := vm.ToValue(map[string]any{
			"type":    action.Type,
			"payload": action.Payload,
		})

		result, err := reduce(goja.Undefined(), jsState, jsAction)
		if err != nil {
			panic(fmt.Errorf("scripted reducer: %w", err))
		}
		return result.Export()
	}, nil
}
