package domain

import (
	"fmt"
	"math"
)

// TransportMode is one row of the transport catalog.
// MinDistanceKm is inclusive, MaxDistanceKm exclusive (+Inf for the last tier).
type TransportMode struct {
	Code            string
	Name            string
	MinDistanceKm   float64
	MaxDistanceKm   float64
	RatePerKmPerKg  float64
	AverageSpeedKmh float64
}

// Transport mode codes.
const (
	ModeMiniVan   = "MINI_VAN"
	ModeTruck     = "TRUCK"
	ModeAeroplane = "AEROPLANE"
)

// HandlingHours is the fixed warehouse processing overhead added to every estimate.
const HandlingHours = 2.0

// TransportModes is ordered by ascending MaxDistanceKm. The ranges are contiguous
// and cover [0, +Inf).
var TransportModes = []TransportMode{
	{Code: ModeMiniVan, Name: "Mini Van", MinDistanceKm: 0, MaxDistanceKm: 100, RatePerKmPerKg: 3.0, AverageSpeedKmh: 40},
	{Code: ModeTruck, Name: "Truck", MinDistanceKm: 100, MaxDistanceKm: 500, RatePerKmPerKg: 2.0, AverageSpeedKmh: 60},
	{Code: ModeAeroplane, Name: "Aeroplane", MinDistanceKm: 500, MaxDistanceKm: math.Inf(1), RatePerKmPerKg: 1.0, AverageSpeedKmh: 500},
}

// LookupMode returns the catalog row for code.
func LookupMode(code string) (TransportMode, error) {
	c := upper(code)
	for _, m := range TransportModes {
		if m.Code == c {
			return m, nil
		}
	}
	return TransportMode{}, fmt.Errorf("%w: unknown transport mode %q", ErrInvalidInput, code)
}

// SelectMode returns the first mode whose exclusive upper bound exceeds distanceKm.
func SelectMode(distanceKm float64) TransportMode {
	for _, m := range TransportModes {
		if distanceKm < m.MaxDistanceKm {
			return m
		}
	}
	return TransportModes[len(TransportModes)-1]
}

// ModeApplies reports whether distanceKm falls inside the mode's [min, max) range.
func ModeApplies(m TransportMode, distanceKm float64) bool {
	return !(distanceKm < m.MinDistanceKm || distanceKm >= m.MaxDistanceKm)
}

// ShippingCost is distance × weight × rate.
func ShippingCost(m TransportMode, distanceKm, weightKg float64) float64 {
	return distanceKm * weightKg * m.RatePerKmPerKg
}

// EstimateHours is travel time plus HandlingHours, rounded to one decimal.
func EstimateHours(m TransportMode, distanceKm float64) float64 {
	return Round1(distanceKm/m.AverageSpeedKmh + HandlingHours)
}

// TravelHours is the raw travel time for the mode, without handling overhead.
func TravelHours(m TransportMode, distanceKm float64) float64 {
	return distanceKm / m.AverageSpeedKmh
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 { return math.Round(v*100) / 100 }

// Round1 rounds half away from zero to one decimal.
func Round1(v float64) float64 { return math.Round(v*10) / 10 }
