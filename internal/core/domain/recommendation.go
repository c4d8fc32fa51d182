package domain

import (
	"fmt"
	"time"
)

// Priority is the caller's optimization objective.
type Priority string

const (
	PriorityCost     Priority = "COST"
	PrioritySpeed    Priority = "SPEED"
	PriorityBalanced Priority = "BALANCED"
)

// Priorities lists every priority in a stable order.
var Priorities = []Priority{PriorityCost, PrioritySpeed, PriorityBalanced}

// Weights is the (cost, time, distance) triple used by the scorer.
type Weights struct {
	Cost     float64
	Time     float64
	Distance float64
}

var priorityWeights = map[Priority]Weights{
	PriorityCost:     {Cost: 0.6, Time: 0.2, Distance: 0.2},
	PrioritySpeed:    {Cost: 0.2, Time: 0.6, Distance: 0.2},
	PriorityBalanced: {Cost: 0.334, Time: 0.333, Distance: 0.333},
}

// ParsePriority is case-insensitive. An empty value selects BALANCED.
func ParsePriority(s string) (Priority, error) {
	p := Priority(upper(s))
	if p == "" {
		return PriorityBalanced, nil
	}
	if _, ok := priorityWeights[p]; !ok {
		return "", fmt.Errorf("%w: invalid priority %q, must be COST, SPEED or BALANCED", ErrInvalidInput, s)
	}
	return p, nil
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	_, ok := priorityWeights[p]
	return ok
}

// WeightsFor returns the weight triple of p. Unknown priorities get BALANCED weights.
func WeightsFor(p Priority) Weights {
	if w, ok := priorityWeights[p]; ok {
		return w
	}
	return priorityWeights[PriorityBalanced]
}

// CandidateOption is one simulated (warehouse, transport mode) pairing.
type CandidateOption struct {
	WarehouseID            string  `json:"warehouseId"`
	TransportMode          string  `json:"transportMode"`
	DistanceKm             float64 `json:"distanceKm"`
	EstimatedCost          float64 `json:"estimatedCost"`
	EstimatedDeliveryHours float64 `json:"estimatedDeliveryHours"`
	Score                  float64 `json:"score"`
}

// RecommendationResult is the best candidate plus the rest in ascending score order.
type RecommendationResult struct {
	Recommended  CandidateOption   `json:"recommendedOption"`
	Alternatives []CandidateOption `json:"alternatives"`
}

// RecommendationEvent is published after a successful recommendation.
type RecommendationEvent struct {
	EventID       string          `json:"eventId"`
	OrderID       string          `json:"orderId"`
	Priority      Priority        `json:"priority"`
	Recommended   CandidateOption `json:"recommendedOption"`
	Alternatives  int             `json:"alternatives"`
	LatencyMillis int64           `json:"latencyMs"`
	CreatedAt     time.Time       `json:"createdAt"`
}
