package domain

import "fmt"

// Immutable geographic coordinate (WGS 84 degrees).
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// Validate reports whether the coordinate lies inside the valid lat/lon ranges.
func (c Coordinate) Validate() error {
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v must be between -90 and 90", ErrInvalidCoordinate, c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v must be between -180 and 180", ErrInvalidCoordinate, c.Longitude)
	}
	return nil
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%.6f,%.6f)", c.Latitude, c.Longitude)
}
