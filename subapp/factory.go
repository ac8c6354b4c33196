package subapp

import "github.com/composekit/subapp/store"

// Options configures a sub-app at factory construction time.
type Options struct {
	// InitialState seeds the slice on first mount. When nil, the slice
	// reducer's own default (its response to the initialize sentinel with
	// nil state) is used.
	InitialState any

	// Process is an optional background unit started once per key, on the
	// first mount, against a view narrowed to the sub-app's slice.
	Process store.Process
}

// New binds a renderable unit and its slice reducer to a key and returns
// the mount-aware component to render in its place. The key is the slice's
// stable identifier: it determines where in the shared tree the slice lands,
// and changing it discards prior state at the old path.
//
// New is an idempotent factory: repeated calls with the same key and the
// same component return the identical wrapped component. A malformed key
// fails with InvalidKeyError; binding a key to a different component fails
// with KeyConflictError. Both are fatal at construction time.
func New(reg *Registry, key string, component Component, reducer store.Reducer, opts Options) (Component, error) {
	binding, err := reg.GetOrCreate(key, component, func() (*Binding, error) {
		refined, err := Refined(key, Namespaced(key, reducer), opts.InitialState)
		if err != nil {
			return nil, err
		}
		b := &Binding{
			Key:      key,
			Reducer:  refined,
			Process:  opts.Process,
			identity: component,
		}
		b.wrapped = &mountedComponent{
			inner: component,
			mount: newMount(reg, b),
		}
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return binding.Wrapped(), nil
}

// mountedComponent runs the mount lifecycle on first render and supplies
// its inner unit a ScopedView as the ambient store handle.
type mountedComponent struct {
	inner Component
	mount *Mount
}

func (c *mountedComponent) Render(ctx RenderContext) (string, error) {
	view, err := c.mount.Activate(ctx.Store)
	if err != nil {
		return "", err
	}
	ctx.Store = view
	return c.inner.Render(ctx)
}
