package usecases

import (
	"sort"

	"github.com/samirrijal/shipquote/internal/core/domain"
)

// ScoreCandidates writes a normalized weighted score onto every candidate in place.
// Lower is better. Order is preserved.
func ScoreCandidates(candidates []domain.CandidateOption, priority domain.Priority) {
	if len(candidates) == 0 {
		return
	}

	var maxCost, maxTime, maxDist float64
	for _, c := range candidates {
		if c.EstimatedCost > maxCost {
			maxCost = c.EstimatedCost
		}
		if c.EstimatedDeliveryHours > maxTime {
			maxTime = c.EstimatedDeliveryHours
		}
		if c.DistanceKm > maxDist {
			maxDist = c.DistanceKm
		}
	}
	maxCost = floorToOne(maxCost)
	maxTime = floorToOne(maxTime)
	maxDist = floorToOne(maxDist)

	w := domain.WeightsFor(priority)
	for i := range candidates {
		c := &candidates[i]
		c.Score = w.Cost*(c.EstimatedCost/maxCost) +
			w.Time*(c.EstimatedDeliveryHours/maxTime) +
			w.Distance*(c.DistanceKm/maxDist)
	}
}

// RankCandidates returns a copy sorted by ascending score. Equal scores are
// ordered by warehouse ID, then transport mode code.
func RankCandidates(candidates []domain.CandidateOption) []domain.CandidateOption {
	ranked := make([]domain.CandidateOption, len(candidates))
	copy(ranked, candidates)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score != b.Score {
			return a.Score < b.Score
		}
		if a.WarehouseID != b.WarehouseID {
			return a.WarehouseID < b.WarehouseID
		}
		return a.TransportMode < b.TransportMode
	})
	return ranked
}

func floorToOne(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}
