package domain

import (
	"fmt"
	"time"
)

// Verdict is the engine's belief about whether the user is within range of a known location.
// The zero value is NotNear.
type Verdict struct {
	near       bool
	locationID int
}

// NotNear is the initial verdict and the fail-safe for permission denial.
var NotNear = Verdict{}

// Near returns the verdict for being in range of the given location.
func Near(locationID int) Verdict {
	return Verdict{near: true, locationID: locationID}
}

// IsNear reports whether the verdict is Near and, if so, the location it names.
func (v Verdict) IsNear() (int, bool) {
	return v.locationID, v.near
}

func (v Verdict) String() string {
	if !v.near {
		return "NOT_NEAR"
	}
	return fmt.Sprintf("NEAR(%d)", v.locationID)
}

// Describes a verdict change, recorded in history and published as an event.
// Position is nil when the change was caused by a permission denial.
type Transition struct {
	From       Verdict
	To         Verdict
	Position   *Coordinate
	OccurredAt time.Time
}

// Entered reports whether the transition moved into range of a location.
func (t Transition) Entered() bool {
	_, near := t.To.IsNear()
	return near
}
