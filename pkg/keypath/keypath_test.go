package keypath

import (
	"reflect"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		key      string
		expected []string
		wantErr  bool
	}{
		{"counter", []string{"counter"}, false},
		{"a.b", []string{"a", "b"}, false},
		{"a.b.c", []string{"a", "b", "c"}, false},
		{"", nil, true},
		{".", nil, true},
		{"a.", nil, true},
		{".a", nil, true},
		{"a..b", nil, true},
	}

	for _, tc := range tests {
		got, err := Split(tc.key)
		if tc.wantErr {
			if err == nil {
				t.Errorf("Split(%q) expected error, got %v", tc.key, got)
			} else if !IsInvalidKey(err) {
				t.Errorf("Split(%q) error should satisfy IsInvalidKey, got %v", tc.key, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Split(%q) unexpected error: %v", tc.key, err)
			continue
		}
		if !reflect.DeepEqual(got, tc.expected) {
			t.Errorf("Split(%q) = %v, want %v", tc.key, got, tc.expected)
		}
	}
}

func TestSplitJoinRoundTrip(t *testing.T) {
	for _, key := range []string{"counter", "a.b", "deep.nested.path.here"} {
		path, err := Split(key)
		if err != nil {
			t.Fatalf("Split(%q): %v", key, err)
		}
		if got := Join(path); got != key {
			t.Errorf("Join(Split(%q)) = %q", key, got)
		}
	}
}

func TestRead(t *testing.T) {
	tree := map[string]any{
		"a": map[string]any{
			"b": map[string]any{"x": 1},
		},
		"flat": 42,
	}

	tests := []struct {
		name     string
		path     []string
		expected any
		ok       bool
	}{
		{"nested", []string{"a", "b", "x"}, 1, true},
		{"subtree", []string{"a", "b"}, map[string]any{"x": 1}, true},
		{"flat", []string{"flat"}, 42, true},
		{"missing leaf", []string{"a", "b", "y"}, nil, false},
		{"missing intermediate", []string{"a", "z", "x"}, nil, false},
		{"through non-map", []string{"flat", "x"}, nil, false},
		{"missing root", []string{"nope"}, nil, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Read(tree, tc.path)
			if ok != tc.ok {
				t.Fatalf("Read(%v) ok = %v, want %v", tc.path, ok, tc.ok)
			}
			if ok && !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("Read(%v) = %v, want %v", tc.path, got, tc.expected)
			}
		})
	}
}

func TestWrite_ReadBack(t *testing.T) {
	tree := map[string]any{"a": map[string]any{"b": 1}}

	out := Write(tree, []string{"a", "b"}, 2)
	got, ok := Read(out, []string{"a", "b"})
	if !ok || got != 2 {
		t.Fatalf("read after write = %v (ok=%v), want 2", got, ok)
	}
	// Original untouched.
	if got, _ := Read(tree, []string{"a", "b"}); got != 1 {
		t.Errorf("input tree mutated: a.b = %v", got)
	}
}

func TestWrite_CreatesIntermediates(t *testing.T) {
	out := Write(map[string]any{}, []string{"a", "b", "c"}, "v")
	got, ok := Read(out, []string{"a", "b", "c"})
	if !ok || got != "v" {
		t.Fatalf("Read after deep write = %v (ok=%v)", got, ok)
	}
}

func TestWrite_StructuralSharing(t *testing.T) {
	sibling := map[string]any{"keep": true}
	tree := map[string]any{
		"a":     map[string]any{"b": 1},
		"other": sibling,
	}

	out := Write(tree, []string{"a", "b"}, 2)

	// The untouched branch must be the same map, not a copy.
	if reflect.ValueOf(out["other"]).Pointer() != reflect.ValueOf(sibling).Pointer() {
		t.Error("untouched branch was copied; expected structural sharing")
	}
	// The ancestor on the path must be a fresh map.
	if reflect.ValueOf(out["a"]).Pointer() == reflect.ValueOf(tree["a"]).Pointer() {
		t.Error("ancestor on the written path was not reallocated")
	}
}

func TestWrite_DisjointPathUnchanged(t *testing.T) {
	tree := map[string]any{
		"a": map[string]any{"b": 1},
		"c": map[string]any{"d": 9},
	}
	out := Write(tree, []string{"a", "b"}, 5)

	got, ok := Read(out, []string{"c", "d"})
	if !ok || got != 9 {
		t.Errorf("disjoint path changed: c.d = %v (ok=%v)", got, ok)
	}
}
