package subapp

import "github.com/composekit/subapp/store"

// Props are the inputs to a renderable unit.
type Props map[string]any

// Handle is the ambient store handle a component renders against. A mounted
// sub-app only ever sees a ScopedView here; the host application seeds the
// top of the render tree with RootHandle.
type Handle interface {
	GetState() any
	Dispatch(action store.Action)
}

// RenderContext carries the ambient store handle and the props for one
// render pass.
type RenderContext struct {
	Store Handle
	Props Props
}

// Component is an opaque renderable unit: props in, markup out. The engine
// never interprets the returned markup.
type Component interface {
	Render(ctx RenderContext) (string, error)
}

// ComponentFunc adapts a function to the Component interface.
type ComponentFunc func(ctx RenderContext) (string, error)

// Render implements Component.
func (f ComponentFunc) Render(ctx RenderContext) (string, error) { return f(ctx) }

// rootProvider is implemented by handles that can be unwrapped to the
// underlying root store.
type rootProvider interface {
	Root() store.Store
}

// RootHandle adapts a root store into the ambient Handle used at the top of
// a render tree.
func RootHandle(s store.Store) Handle { return rootHandle{s: s} }

type rootHandle struct {
	s store.Store
}

func (h rootHandle) GetState() any                { return h.s.GetState() }
func (h rootHandle) Dispatch(action store.Action) { h.s.Dispatch(action) }
func (h rootHandle) Root() store.Store            { return h.s }
