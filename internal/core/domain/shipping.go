package domain

import (
	"fmt"
	"strings"
)

// NearestWarehouse is the warehouse closest to a seller.
type NearestWarehouse struct {
	WarehouseID       string     `json:"warehouseId"`
	WarehouseLocation Coordinate `json:"warehouseLocation"`
}

// ShippingQuote is the charge for shipping a seller's goods to a customer.
type ShippingQuote struct {
	ShippingCharge   float64           `json:"shippingCharge"`
	NearestWarehouse *NearestWarehouse `json:"nearestWarehouse,omitempty"`
}

// ShippingEstimate is the single-mode quote for an existing order.
type ShippingEstimate struct {
	OrderID                string  `json:"orderId"`
	TotalWeightKg          float64 `json:"totalWeight"`
	TransportMode          string  `json:"transportMode"`
	WarehouseID            string  `json:"warehouseId"`
	DistanceKm             float64 `json:"distanceKm"`
	ShippingCharge         float64 `json:"shippingCharge"`
	DeliverySpeed          string  `json:"deliverySpeed"`
	EstimatedDeliveryHours float64 `json:"estimatedDeliveryHours"`
}

// SimulationObjective is the single criterion of a mode simulation.
type SimulationObjective string

const (
	ObjectiveCost  SimulationObjective = "cost"
	ObjectiveSpeed SimulationObjective = "speed"
)

// ParseSimulationObjective is case-insensitive and accepts only cost or speed.
func ParseSimulationObjective(s string) (SimulationObjective, error) {
	switch o := SimulationObjective(strings.ToLower(strings.TrimSpace(s))); o {
	case ObjectiveCost, ObjectiveSpeed:
		return o, nil
	}
	return "", fmt.Errorf("%w: priority must be 'cost' or 'speed'", ErrInvalidInput)
}

// ModeOption is one transport mode evaluated for a fixed warehouse.
type ModeOption struct {
	TransportMode      string  `json:"transportMode"`
	BaseCharge         float64 `json:"baseChargeRs"`
	EstimatedTimeHours float64 `json:"estimatedTimeHours"`
}

// SimulationResult compares every transport mode from the seller's nearest warehouse.
type SimulationResult struct {
	OrderID     string              `json:"orderId"`
	Priority    SimulationObjective `json:"priority"`
	WarehouseID string              `json:"warehouseId"`
	DistanceKm  float64             `json:"distanceKm"`
	Options     []ModeOption        `json:"options"`
	Recommended ModeOption          `json:"recommendedOption"`
}
