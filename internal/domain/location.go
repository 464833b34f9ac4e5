package domain

// Represents a server-owned place that songs can be attached to.
// The full set is refetched from the remote API on every proximity cycle.
type Location struct {
	ID         int
	Name       string
	Coordinate Coordinate
}
