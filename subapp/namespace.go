// Package subapp mounts isolated sub-applications (a renderable unit, a
// slice reducer, an optional background process, and a default state) into
// a host application's single shared state tree. A sub-app never sees or
// mutates state outside the slice assigned to it by its key.
package subapp

import (
	"strings"

	"github.com/composekit/subapp/store"
)

// InitType is the reserved sentinel action type dispatched once per key to
// seed a slice's default value. Its only effect is to seed state; it never
// runs user reducer logic against already-seeded state.
const InitType = "@@subapp/init"

// typeSeparator joins a key and an action type into a namespaced type.
const typeSeparator = "/"

// InitAction returns the initialize sentinel.
func InitAction() store.Action {
	return store.Action{Type: InitType}
}

// Tag rewrites an action into the key's namespace.
func Tag(key string, action store.Action) store.Action {
	action.Type = key + typeSeparator + action.Type
	return action
}

// TaggedFor reports whether the action is addressed to the key's namespace.
func TaggedFor(key string, action store.Action) bool {
	return strings.HasPrefix(action.Type, key+typeSeparator)
}

func stripTag(key string, action store.Action) store.Action {
	action.Type = strings.TrimPrefix(action.Type, key+typeSeparator)
	return action
}

// Namespaced wraps a slice reducer so it only reacts to actions tagged for
// key. Tagged actions are stripped and delegated; the initialize sentinel is
// forwarded to every namespace. Anything else, including global untagged
// actions, passes state through unchanged and is never delegated.
func Namespaced(key string, r store.Reducer) store.Reducer {
	return func(state any, action store.Action) any {
		switch {
		case action.Type == InitType:
			return r(state, action)
		case TaggedFor(key, action):
			return r(state, stripTag(key, action))
		default:
			return state
		}
	}
}
