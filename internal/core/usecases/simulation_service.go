package usecases

import (
	"context"
	"fmt"

	"github.com/samirrijal/shipquote/internal/core/domain"
	"github.com/samirrijal/shipquote/internal/core/ports"
)

// SimulationService compares every transport mode from the seller's nearest
// warehouse, without range filtering, against a single objective.
type SimulationService struct {
	orders     ports.OrderProvider
	products   ports.ProductRepository
	warehouses *WarehouseService
	engine     *DistanceEngine
}

// NewSimulationService creates a new SimulationService.
func NewSimulationService(
	orders ports.OrderProvider,
	products ports.ProductRepository,
	warehouses *WarehouseService,
	engine *DistanceEngine,
) *SimulationService {
	return &SimulationService{orders: orders, products: products, warehouses: warehouses, engine: engine}
}

// Simulate evaluates all modes for orderID. Ties keep catalog order.
func (s *SimulationService) Simulate(ctx context.Context, orderID string, objective domain.SimulationObjective) (*domain.SimulationResult, error) {
	if objective != domain.ObjectiveCost && objective != domain.ObjectiveSpeed {
		return nil, fmt.Errorf("%w: priority must be 'cost' or 'speed'", domain.ErrInvalidInput)
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", orderID, err)
	}
	if len(order.Items) == 0 {
		return nil, fmt.Errorf("%w: order %s has no items", domain.ErrInvalidInput, orderID)
	}
	if order.CustomerLocation == nil {
		return nil, fmt.Errorf("%w: location not available for customer of order %s", domain.ErrNotFound, orderID)
	}

	product, err := s.products.GetByID(ctx, order.Items[0].ProductID)
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", order.Items[0].ProductID, err)
	}
	w, _, err := s.warehouses.nearestForProduct(ctx, order.SellerID, product)
	if err != nil {
		return nil, err
	}
	dist, err := s.engine.Distance(ctx, *w.Location, *order.CustomerLocation, domain.DistanceModeHaversine)
	if err != nil {
		return nil, err
	}

	options := make([]domain.ModeOption, 0, len(domain.TransportModes))
	for _, m := range domain.TransportModes {
		options = append(options, domain.ModeOption{
			TransportMode:      m.Code,
			BaseCharge:         domain.Round2(domain.ShippingCost(m, dist.DistanceKm, order.TotalWeightKg)),
			EstimatedTimeHours: domain.Round1(domain.TravelHours(m, dist.DistanceKm)),
		})
	}

	best := options[0]
	for _, o := range options[1:] {
		switch objective {
		case domain.ObjectiveCost:
			if o.BaseCharge < best.BaseCharge {
				best = o
			}
		case domain.ObjectiveSpeed:
			if o.EstimatedTimeHours < best.EstimatedTimeHours {
				best = o
			}
		}
	}

	return &domain.SimulationResult{
		OrderID:     orderID,
		Priority:    objective,
		WarehouseID: w.ID,
		DistanceKm:  dist.DistanceKm,
		Options:     options,
		Recommended: best,
	}, nil
}
