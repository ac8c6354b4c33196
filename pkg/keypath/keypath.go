// Package keypath resolves dot-delimited key strings into paths over a
// nested state tree, and provides immutable read/write at a path. Trees are
// plain map[string]any values; a write never mutates its input, it rebuilds
// the ancestors on the path and shares every untouched branch.
package keypath

import (
	"errors"
	"fmt"
	"strings"
)

// Separator delimits segments in a key string.
const Separator = "."

// ErrInvalidKey is the sentinel wrapped by all InvalidKeyError values.
var ErrInvalidKey = errors.New("invalid key")

// InvalidKeyError reports a key string that is empty or contains an empty
// segment. It is fatal at construction time: the key determines where in the
// shared tree a slice lands, so a malformed key is a programmer error.
type InvalidKeyError struct {
	Key    string
	Reason string
}

// Error implements error.
func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid key %q: %s", e.Key, e.Reason)
}

// Unwrap allows errors.Is(err, ErrInvalidKey).
func (e *InvalidKeyError) Unwrap() error { return ErrInvalidKey }

// NewInvalidKeyError creates an InvalidKeyError.
func NewInvalidKeyError(key, reason string) *InvalidKeyError {
	return &InvalidKeyError{Key: key, Reason: reason}
}

// IsInvalidKey reports whether err is an invalid-key error.
func IsInvalidKey(err error) bool { return errors.Is(err, ErrInvalidKey) }

// Split parses a key string into its ordered path segments. Splitting and
// rejoining is lossless; no segment may be empty.
func Split(key string) ([]string, error) {
	if key == "" {
		return nil, NewInvalidKeyError(key, "key is empty")
	}
	segments := strings.Split(key, Separator)
	for _, seg := range segments {
		if seg == "" {
			return nil, NewInvalidKeyError(key, "key contains an empty segment")
		}
	}
	return segments, nil
}

// Join is the inverse of Split.
func Join(path []string) string {
	return strings.Join(path, Separator)
}

// Read walks the path through tree and returns the value found there. The
// second return is false when any intermediate is missing or is not a
// subtree; Read never panics on an absent path.
func Read(tree map[string]any, path []string) (any, bool) {
	var current any = tree
	for _, seg := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// Write returns a new tree equal to tree except that the value at path is
// replaced by value. Every ancestor map on the path is freshly allocated
// with its siblings copied by reference; no branch off the path is touched,
// so downstream observers can rely on reference equality for change
// detection.
func Write(tree map[string]any, path []string, value any) map[string]any {
	if len(path) == 0 {
		return tree
	}
	out := make(map[string]any, len(tree)+1)
	for k, v := range tree {
		out[k] = v
	}
	head := path[0]
	if len(path) == 1 {
		out[head] = value
		return out
	}
	// A missing or non-map intermediate is replaced by a fresh subtree.
	child, _ := tree[head].(map[string]any)
	out[head] = Write(child, path[1:], value)
	return out
}
