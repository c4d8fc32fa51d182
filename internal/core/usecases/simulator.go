package usecases

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/samirrijal/shipquote/internal/core/domain"
	"github.com/samirrijal/shipquote/internal/pkg/logging"
)

// DefaultSimulationParallelism bounds concurrent per-warehouse evaluations.
const DefaultSimulationParallelism = 8

// Simulator produces the warehouse × transport mode cross-product for an order,
// dropping pairs that fail inventory or distance-range feasibility.
type Simulator struct {
	engine      *DistanceEngine
	checker     *InventoryChecker
	mode        domain.DistanceMode
	parallelism int
}

// NewSimulator creates a Simulator computing distances in the given mode.
func NewSimulator(engine *DistanceEngine, checker *InventoryChecker, mode domain.DistanceMode) *Simulator {
	return &Simulator{
		engine:      engine,
		checker:     checker,
		mode:        mode,
		parallelism: DefaultSimulationParallelism,
	}
}

// Simulate returns candidates grouped by warehouse in input order, and by
// catalog order within a warehouse.
func (s *Simulator) Simulate(ctx context.Context, order *domain.Order, warehouses []domain.Warehouse) ([]domain.CandidateOption, error) {
	perWarehouse := make([][]domain.CandidateOption, len(warehouses))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)
	for i := range warehouses {
		i := i
		g.Go(func() error {
			opts, err := s.simulateWarehouse(gctx, order, warehouses[i])
			if err != nil {
				return err
			}
			perWarehouse[i] = opts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var candidates []domain.CandidateOption
	for _, opts := range perWarehouse {
		candidates = append(candidates, opts...)
	}
	return candidates, nil
}

func (s *Simulator) simulateWarehouse(ctx context.Context, order *domain.Order, w domain.Warehouse) ([]domain.CandidateOption, error) {
	log := logging.FromContext(ctx)

	ok, err := s.checker.CanFulfill(ctx, w.ID, order)
	if err != nil {
		return nil, err
	}
	if !ok {
		log.Debug("warehouse cannot fulfill order", "warehouse_id", w.ID, "order_id", order.ID)
		return nil, nil
	}
	if w.Location == nil {
		log.Warn("warehouse has no location, skipping", "warehouse_id", w.ID)
		return nil, nil
	}
	if err := w.Location.Validate(); err != nil {
		log.Warn("warehouse location invalid, skipping", "warehouse_id", w.ID, "error", err)
		return nil, nil
	}

	dist, err := s.engine.Distance(ctx, *w.Location, *order.CustomerLocation, s.mode)
	if err != nil {
		return nil, err
	}
	km := domain.Round2(dist.DistanceKm)

	var opts []domain.CandidateOption
	for _, mode := range domain.TransportModes {
		if !domain.ModeApplies(mode, km) {
			continue
		}
		opts = append(opts, domain.CandidateOption{
			WarehouseID:            w.ID,
			TransportMode:          mode.Code,
			DistanceKm:             km,
			EstimatedCost:          domain.Round2(domain.ShippingCost(mode, km, order.TotalWeightKg)),
			EstimatedDeliveryHours: domain.EstimateHours(mode, km),
		})
	}
	return opts, nil
}
