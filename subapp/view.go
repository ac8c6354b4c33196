package subapp

import (
	"github.com/composekit/subapp/pkg/keypath"
	"github.com/composekit/subapp/store"
)

// ScopedView is the restricted store handle handed to a mounted sub-app.
// State reads are pre-narrowed to the sub-tree at the key's path, and every
// outgoing dispatch is rewritten into the key's namespace. The full tree and
// untagged dispatch are never reachable through it.
type ScopedView struct {
	key  string
	path []string
	root store.Store
}

var (
	_ Handle            = (*ScopedView)(nil)
	_ store.ProcessView = (*ScopedView)(nil)
)

// NewScopedView creates a view narrowed to key over the root store.
func NewScopedView(key string, root store.Store) (*ScopedView, error) {
	path, err := keypath.Split(key)
	if err != nil {
		return nil, err
	}
	return &ScopedView{key: key, path: path, root: root}, nil
}

// Key returns the key the view is narrowed to.
func (v *ScopedView) Key() string { return v.key }

// GetState returns the sub-tree at the view's key path, or nil when the
// slice has not been seeded yet.
func (v *ScopedView) GetState() any {
	sub, ok := keypath.Read(v.root.GetState(), v.path)
	if !ok {
		return nil
	}
	return sub
}

// Dispatch tags the action into the view's namespace and forwards it to the
// root store.
func (v *ScopedView) Dispatch(action store.Action) {
	v.root.Dispatch(Tag(v.key, action))
}

// Root exposes the underlying store so nested mounts can unwrap to it. The
// mounted unit itself only receives the Handle surface.
func (v *ScopedView) Root() store.Store { return v.root }
