package subapp

import (
	"github.com/composekit/subapp/pkg/keypath"
	"github.com/composekit/subapp/store"
)

// Refined composes a namespaced slice reducer into the shared tree at key's
// path. The returned reducer, on every dispatch:
//
//  1. reads the current sub-state at the key's path;
//  2. if absent, falls back to initial, and failing that to the slice
//     reducer's own default (the reducer called with nil state and the
//     initialize sentinel);
//  3. for the sentinel, writes back exactly the value from steps 1-2 without
//     invoking the reducer again; once the slice is seeded the sentinel is
//     a no-op, so repeated initialization is safe;
//  4. for any other action, delegates to r and writes the result back.
//
// Returns an InvalidKeyError when the key is malformed.
func Refined(key string, r store.Reducer, initial any) (store.RootReducer, error) {
	path, err := keypath.Split(key)
	if err != nil {
		return nil, err
	}

	return func(tree store.State, action store.Action) store.State {
		sub, ok := keypath.Read(tree, path)
		seeded := ok && sub != nil

		if action.Type == InitType && seeded {
			return tree
		}
		if !seeded {
			if initial != nil {
				sub = initial
			} else {
				sub = r(nil, InitAction())
			}
		}
		if action.Type == InitType {
			return keypath.Write(tree, path, sub)
		}
		return keypath.Write(tree, path, r(sub, action))
	}, nil
}
