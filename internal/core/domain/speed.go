package domain

import (
	"fmt"
	"strings"
)

// DeliverySpeed is one row of the delivery-speed tariff.
type DeliverySpeed struct {
	Code          string  `json:"code"`
	FlatCharge    float64 `json:"flatCharge"`
	ExtraPerKg    float64 `json:"extraPerKg"`
	HandlingHours float64 `json:"handlingHours"`
	TimeFactor    float64 `json:"timeFactor"`
}

// Delivery speed codes.
const (
	SpeedStandard = "standard"
	SpeedExpress  = "express"
)

// DeliverySpeeds is the tariff table.
var DeliverySpeeds = []DeliverySpeed{
	{Code: SpeedStandard, FlatCharge: 10, ExtraPerKg: 0, HandlingHours: 2.0, TimeFactor: 1.0},
	{Code: SpeedExpress, FlatCharge: 10, ExtraPerKg: 1.2, HandlingHours: 1.0, TimeFactor: 0.8},
}

// ParseDeliverySpeed is case-insensitive. An empty code selects standard.
func ParseDeliverySpeed(code string) (DeliverySpeed, error) {
	c := strings.ToLower(strings.TrimSpace(code))
	if c == "" {
		c = SpeedStandard
	}
	for _, s := range DeliverySpeeds {
		if s.Code == c {
			return s, nil
		}
	}
	return DeliverySpeed{}, fmt.Errorf("%w: invalid delivery speed %q, must be 'standard' or 'express'", ErrInvalidInput, code)
}

// AdditionalCharge is the flat courier charge plus the per-kg surcharge.
func AdditionalCharge(s DeliverySpeed, weightKg float64) float64 {
	return s.FlatCharge + s.ExtraPerKg*weightKg
}

// SpeedAdjustedHours applies the speed's handling time and transit factor to a mode.
func SpeedAdjustedHours(s DeliverySpeed, m TransportMode, distanceKm float64) float64 {
	return Round1(s.HandlingHours + TravelHours(m, distanceKm)*s.TimeFactor)
}
