package release

import "fmt"

// State is what the current pointer designates
type State int

const (
	// StateInvalid means current is missing or points outside the layout.
	// It is only ever observed, never produced by the manager.
	StateInvalid State = iota
	// StateMaintenance means the maintenance pseudo-release is live
	StateMaintenance
	// StateRelease means a release is live
	StateRelease
)

func (s State) String() string {
	switch s {
	case StateMaintenance:
		return "maintenance"
	case StateRelease:
		return "release"
	default:
		return "invalid"
	}
}

// Current is the resolved value of the current pointer
type Current struct {
	State State
	// Name is set for StateRelease
	Name string
	// Target is the resolved link target, empty when current is not a link
	Target string
}

// IsMaintenance reports whether maintenance is selected
func (c Current) IsMaintenance() bool { return c.State == StateMaintenance }

// IsRelease reports whether the named release is selected
func (c Current) IsRelease(name string) bool {
	return c.State == StateRelease && c.Name == name
}

func (c Current) String() string {
	switch c.State {
	case StateRelease:
		return c.Name
	case StateMaintenance:
		return "maintenance"
	default:
		if c.Target == "" {
			return "invalid (no link)"
		}
		return fmt.Sprintf("invalid (-> %s)", c.Target)
	}
}
