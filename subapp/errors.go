package subapp

import (
	"errors"
	"fmt"
)

// ErrKeyConflict is the sentinel wrapped by all KeyConflictError values.
var ErrKeyConflict = errors.New("key already bound")

// ErrStoreNotDynamic is returned when a mount resolves its enclosing store
// and finds one that does not accept reducers after creation.
var ErrStoreNotDynamic = errors.New("store does not support dynamic reducer registration")

// KeyConflictError reports an attempt to bind a key to a second, different
// component. This is a programmer error and is always fatal at call time;
// silently picking one component would hide a configuration bug.
type KeyConflictError struct {
	// Key is the contested key.
	Key string
	// Existing describes the component already bound to the key.
	Existing string
}

// Error implements error.
func (e *KeyConflictError) Error() string {
	return fmt.Sprintf("key %q is already bound to component %s", e.Key, e.Existing)
}

// Unwrap allows errors.Is(err, ErrKeyConflict).
func (e *KeyConflictError) Unwrap() error { return ErrKeyConflict }

// NewKeyConflictError creates a KeyConflictError naming the existing binding.
func NewKeyConflictError(key string, existing Component) *KeyConflictError {
	return &KeyConflictError{Key: key, Existing: fmt.Sprintf("%T", existing)}
}

// IsKeyConflict reports whether err is a key-conflict error.
func IsKeyConflict(err error) bool { return errors.Is(err, ErrKeyConflict) }
