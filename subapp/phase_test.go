package subapp

import (
	"encoding/json"
	"testing"
)

func TestPhase_String(t *testing.T) {
	tests := []struct {
		phase    Phase
		expected string
	}{
		{PhaseUnmounted, "unmounted"},
		{PhaseMounting, "mounting"},
		{PhaseActive, "active"},
		{Phase(99), "phase(99)"},
	}

	for _, tc := range tests {
		if got := tc.phase.String(); got != tc.expected {
			t.Errorf("Phase(%d).String() = %q, want %q", tc.phase, got, tc.expected)
		}
	}
}

func TestParsePhase(t *testing.T) {
	tests := []struct {
		input    string
		expected Phase
	}{
		{"unmounted", PhaseUnmounted},
		{"mounting", PhaseMounting},
		{"active", PhaseActive},
		{"mounted", PhaseActive}, // legacy alias
		{"invalid", PhaseUnmounted},
	}

	for _, tc := range tests {
		if got := ParsePhase(tc.input); got != tc.expected {
			t.Errorf("ParsePhase(%q) = %v, want %v", tc.input, got, tc.expected)
		}
	}
}

func TestPhase_JSON(t *testing.T) {
	original := PhaseActive
	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	if string(data) != `"active"` {
		t.Errorf("Marshal = %s, want \"active\"", data)
	}

	var parsed Phase
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if parsed != original {
		t.Errorf("Unmarshal = %v, want %v", parsed, original)
	}
}

func TestPhase_CanTransition(t *testing.T) {
	valid := []struct{ from, to Phase }{
		{PhaseUnmounted, PhaseMounting},
		{PhaseMounting, PhaseActive},
		{PhaseMounting, PhaseUnmounted}, // failed mount rolls back
	}
	for _, tc := range valid {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("CanTransition(%v, %v) = false, want true", tc.from, tc.to)
		}
	}

	invalid := []struct{ from, to Phase }{
		{PhaseUnmounted, PhaseActive},
		{PhaseActive, PhaseUnmounted},
		{PhaseActive, PhaseMounting},
	}
	for _, tc := range invalid {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("CanTransition(%v, %v) = true, want false", tc.from, tc.to)
		}
	}
}

func TestPhaseTransitionError(t *testing.T) {
	err := PhaseTransitionError{From: PhaseActive, To: PhaseMounting}
	want := "invalid mount phase transition: active -> mounting"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
