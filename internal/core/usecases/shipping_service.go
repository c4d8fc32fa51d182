package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/samirrijal/shipquote/internal/core/domain"
	"github.com/samirrijal/shipquote/internal/core/ports"
	"github.com/samirrijal/shipquote/internal/pkg/logging"
)

// ShippingChargeService quotes single-mode shipping charges.
type ShippingChargeService struct {
	warehouses *WarehouseService
	customers  ports.CustomerRepository
	products   ports.ProductRepository
	engine     *DistanceEngine
	results    resultCache
}

// NewShippingChargeService creates a new ShippingChargeService. cache and recorder may be nil.
func NewShippingChargeService(
	warehouses *WarehouseService,
	customers ports.CustomerRepository,
	products ports.ProductRepository,
	engine *DistanceEngine,
	cache ports.CacheService,
	recorder ports.MetricsRecorder,
) *ShippingChargeService {
	return &ShippingChargeService{
		warehouses: warehouses,
		customers:  customers,
		products:   products,
		engine:     engine,
		results:    newResultCache(cache, recorder),
	}
}

// Quote returns the charge from warehouseID to customerID. productID is optional;
// without it the default product weight is used.
func (s *ShippingChargeService) Quote(ctx context.Context, warehouseID, customerID, speedCode, productID string) (*domain.ShippingQuote, error) {
	if warehouseID == "" || customerID == "" {
		return nil, fmt.Errorf("%w: warehouseId and customerId are required", domain.ErrInvalidInput)
	}
	speed, err := domain.ParseDeliverySpeed(speedCode)
	if err != nil {
		return nil, err
	}

	product := productID
	if product == "" {
		product = "default"
	}
	key := fmt.Sprintf("charge:%s:%s:%s:%s", warehouseID, customerID, speed.Code, product)

	q, _, err := readThrough(ctx, s.results, CacheShippingCharge, key, func() (domain.ShippingQuote, error) {
		w, err := s.warehouses.warehouses.GetByID(ctx, warehouseID)
		if err != nil {
			return domain.ShippingQuote{}, fmt.Errorf("warehouse %s: %w", warehouseID, err)
		}
		if w.Location == nil {
			return domain.ShippingQuote{}, fmt.Errorf("%w: location not available for warehouse %s", domain.ErrNotFound, warehouseID)
		}
		customer, err := s.customerWithLocation(ctx, customerID)
		if err != nil {
			return domain.ShippingQuote{}, err
		}

		weight := domain.DefaultProductWeightKg
		if productID != "" {
			p, err := s.products.GetByID(ctx, productID)
			if err != nil {
				return domain.ShippingQuote{}, fmt.Errorf("product %s: %w", productID, err)
			}
			weight = p.EffectiveWeightKg()
		} else {
			logging.FromContext(ctx).Warn("productId not provided, using default weight", "weight_kg", weight)
		}

		charge, err := s.charge(ctx, *w.Location, *customer.Location, weight, speed)
		if err != nil {
			return domain.ShippingQuote{}, err
		}
		return domain.ShippingQuote{ShippingCharge: charge}, nil
	})
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// Calculate returns the charge from the seller's nearest warehouse to customerID.
// The seller's first product decides the warehouse and the weight.
func (s *ShippingChargeService) Calculate(ctx context.Context, sellerID, customerID, speedCode string) (*domain.ShippingQuote, error) {
	if sellerID == "" || customerID == "" {
		return nil, fmt.Errorf("%w: sellerId and customerId are required", domain.ErrInvalidInput)
	}
	speed, err := domain.ParseDeliverySpeed(speedCode)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("charge:seller:%s:%s:%s", sellerID, customerID, speed.Code)
	q, _, err := readThrough(ctx, s.results, CacheShippingCharge, key, func() (domain.ShippingQuote, error) {
		customer, err := s.customerWithLocation(ctx, customerID)
		if err != nil {
			return domain.ShippingQuote{}, err
		}
		w, product, err := s.warehouses.nearestForSeller(ctx, sellerID)
		if err != nil {
			return domain.ShippingQuote{}, err
		}

		charge, err := s.charge(ctx, *w.Location, *customer.Location, product.EffectiveWeightKg(), speed)
		if err != nil {
			return domain.ShippingQuote{}, err
		}
		return domain.ShippingQuote{
			ShippingCharge:   charge,
			NearestWarehouse: &domain.NearestWarehouse{WarehouseID: w.ID, WarehouseLocation: *w.Location},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *ShippingChargeService) customerWithLocation(ctx context.Context, customerID string) (*domain.Customer, error) {
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("customer %s: %w", customerID, err)
	}
	if customer.Location == nil {
		return nil, fmt.Errorf("%w: location not available for customer %s", domain.ErrNotFound, customerID)
	}
	return customer, nil
}

func (s *ShippingChargeService) charge(ctx context.Context, from, to domain.Coordinate, weightKg float64, speed domain.DeliverySpeed) (float64, error) {
	dist, err := s.engine.Distance(ctx, from, to, domain.DistanceModeHaversine)
	if err != nil {
		return 0, err
	}
	mode := domain.SelectMode(dist.DistanceKm)
	base := domain.ShippingCost(mode, dist.DistanceKm, weightKg)
	extra := domain.AdditionalCharge(speed, weightKg)

	logging.FromContext(ctx).Debug("shipping charge computed",
		"transport_mode", mode.Code,
		"distance_km", dist.DistanceKm,
		"base_charge", base,
		"speed_charge", extra,
	)
	return domain.Round2(base + extra), nil
}

// OrderShippingService estimates the single-mode shipping of an existing order.
type OrderShippingService struct {
	orders     ports.OrderProvider
	products   ports.ProductRepository
	warehouses *WarehouseService
	engine     *DistanceEngine
	recorder   ports.MetricsRecorder
	results    resultCache
}

// NewOrderShippingService creates a new OrderShippingService. cache and recorder may be nil.
func NewOrderShippingService(
	orders ports.OrderProvider,
	products ports.ProductRepository,
	warehouses *WarehouseService,
	engine *DistanceEngine,
	cache ports.CacheService,
	recorder ports.MetricsRecorder,
) *OrderShippingService {
	return &OrderShippingService{
		orders:     orders,
		products:   products,
		warehouses: warehouses,
		engine:     engine,
		recorder:   recorder,
		results:    newResultCache(cache, recorder),
	}
}

// Estimate quotes orderID shipped from the seller's nearest warehouse. The
// metrics recorder is invoked exactly once per call.
func (s *OrderShippingService) Estimate(ctx context.Context, orderID, speedCode string) (est *domain.ShippingEstimate, err error) {
	start := time.Now()
	defer func() {
		mode := ""
		if err == nil {
			mode = est.TransportMode
		}
		if s.recorder != nil {
			s.recorder.Record(time.Since(start), mode, err == nil)
		}
	}()

	speed, err := domain.ParseDeliverySpeed(speedCode)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("estimate:%s:%s", orderID, speed.Code)
	e, _, err := readThrough(ctx, s.results, CacheShippingEstimate, key, func() (domain.ShippingEstimate, error) {
		return s.estimate(ctx, orderID, speed)
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *OrderShippingService) estimate(ctx context.Context, orderID string, speed domain.DeliverySpeed) (domain.ShippingEstimate, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return domain.ShippingEstimate{}, fmt.Errorf("order %s: %w", orderID, err)
	}
	if len(order.Items) == 0 {
		return domain.ShippingEstimate{}, fmt.Errorf("%w: order %s has no items", domain.ErrInvalidInput, orderID)
	}
	if order.CustomerLocation == nil {
		return domain.ShippingEstimate{}, fmt.Errorf("%w: location not available for customer of order %s", domain.ErrNotFound, orderID)
	}

	product, err := s.products.GetByID(ctx, order.Items[0].ProductID)
	if err != nil {
		return domain.ShippingEstimate{}, fmt.Errorf("product %s: %w", order.Items[0].ProductID, err)
	}
	w, _, err := s.warehouses.nearestForProduct(ctx, order.SellerID, product)
	if err != nil {
		return domain.ShippingEstimate{}, err
	}

	dist, err := s.engine.Distance(ctx, *w.Location, *order.CustomerLocation, domain.DistanceModeHaversine)
	if err != nil {
		return domain.ShippingEstimate{}, err
	}
	mode := domain.SelectMode(dist.DistanceKm)
	charge := domain.ShippingCost(mode, dist.DistanceKm, order.TotalWeightKg) + domain.AdditionalCharge(speed, order.TotalWeightKg)

	est := domain.ShippingEstimate{
		OrderID:                orderID,
		TotalWeightKg:          order.TotalWeightKg,
		TransportMode:          mode.Code,
		WarehouseID:            w.ID,
		DistanceKm:             dist.DistanceKm,
		ShippingCharge:         domain.Round2(charge),
		DeliverySpeed:          speed.Code,
		EstimatedDeliveryHours: domain.SpeedAdjustedHours(speed, mode, dist.DistanceKm),
	}
	logging.FromContext(ctx).Info("shipping estimate computed",
		"order_id", orderID,
		"charge", est.ShippingCharge,
		"hours", est.EstimatedDeliveryHours,
		"transport_mode", est.TransportMode,
	)
	return est, nil
}
