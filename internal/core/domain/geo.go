package domain

import (
	"fmt"
	"math"
)

// Coordinate represents a geographic coordinate (WGS 84) in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate reports ErrInvalidInput for NaN or out-of-range components.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lng, 0) {
		return fmt.Errorf("%w: coordinate component is missing", ErrInvalidInput)
	}
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("%w: latitude %.6f out of range", ErrInvalidInput, c.Lat)
	}
	if c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("%w: longitude %.6f out of range", ErrInvalidInput, c.Lng)
	}
	return nil
}

// String renders the coordinate as "lat,lng", the form distance-matrix APIs expect.
func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lng)
}

// DistanceMode selects which strategies the distance engine may use.
type DistanceMode string

const (
	// DistanceModeHaversine restricts the engine to the local great-circle strategy.
	DistanceModeHaversine DistanceMode = "HAVERSINE"
	// DistanceModeRemote tries the remote matrix provider first, then falls back.
	DistanceModeRemote DistanceMode = "REMOTE"
)

// ParseDistanceMode accepts HAVERSINE or REMOTE in any case. Empty means HAVERSINE.
func ParseDistanceMode(s string) (DistanceMode, error) {
	switch DistanceMode(upper(s)) {
	case "", DistanceModeHaversine:
		return DistanceModeHaversine, nil
	case DistanceModeRemote, "GOOGLE":
		return DistanceModeRemote, nil
	}
	return "", fmt.Errorf("%w: unknown distance mode %q", ErrInvalidInput, s)
}

// Strategy names reported on a DistanceResult.
const (
	StrategyHaversine = "HAVERSINE"
	StrategyRemote    = "REMOTE"
)

// DistanceResult is the output of one distance computation.
type DistanceResult struct {
	DistanceKm      float64 `json:"distanceKm"`
	DurationMinutes int     `json:"durationMinutes"`
	Strategy        string  `json:"strategy"`
}
