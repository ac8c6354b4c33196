package subapp

import (
	"encoding/json"
	"fmt"
)

// Phase is the lifecycle phase of one mounted sub-app instance.
type Phase int32

const (
	// PhaseUnmounted indicates the instance has never been rendered.
	PhaseUnmounted Phase = iota

	// PhaseMounting indicates the instance is registering its reducer and
	// seeding its slice. The transition to Active is synchronous; no
	// intermediate state is observable from outside the mount.
	PhaseMounting

	// PhaseActive indicates the instance renders with its ScopedView.
	PhaseActive
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseUnmounted:
		return "unmounted"
	case PhaseMounting:
		return "mounting"
	case PhaseActive:
		return "active"
	default:
		return fmt.Sprintf("phase(%d)", p)
	}
}

// MarshalJSON implements json.Marshaler.
func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Phase) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*p = ParsePhase(s)
	return nil
}

// ParsePhase converts a string to a Phase. Unknown strings map to unmounted.
func ParsePhase(s string) Phase {
	switch s {
	case "mounting":
		return PhaseMounting
	case "active", "mounted": // accept legacy alias
		return PhaseActive
	default:
		return PhaseUnmounted
	}
}

// validPhaseTransitions defines allowed phase transitions. Registrations are
// permanent for the process lifetime, so Active never transitions back; a
// repeated mount re-enters Active as a no-op rather than re-transitioning.
// A failed mount rolls back from Mounting to Unmounted.
var validPhaseTransitions = map[Phase][]Phase{
	PhaseUnmounted: {PhaseMounting},
	PhaseMounting:  {PhaseActive, PhaseUnmounted},
	PhaseActive:    {},
}

// CanTransition reports whether from -> to is a valid phase transition.
func CanTransition(from, to Phase) bool {
	for _, p := range validPhaseTransitions[from] {
		if p == to {
			return true
		}
	}
	return false
}

// PhaseTransitionError reports an invalid phase transition.
type PhaseTransitionError struct {
	From Phase
	To   Phase
}

// Error implements error.
func (e PhaseTransitionError) Error() string {
	return fmt.Sprintf("invalid mount phase transition: %s -> %s", e.From, e.To)
}
