package usecases

import (
	"context"
	"fmt"
	"math"

	"github.com/samirrijal/shipquote/internal/core/domain"
	"github.com/samirrijal/shipquote/internal/core/ports"
	"github.com/samirrijal/shipquote/internal/pkg/geospatial"
	"github.com/samirrijal/shipquote/internal/pkg/logging"
)

// WarehouseService resolves the warehouse a seller ships from.
type WarehouseService struct {
	warehouses ports.WarehouseProvider
	sellers    ports.SellerRepository
	products   ports.ProductRepository
	results    resultCache
}

// NewWarehouseService creates a new WarehouseService. cache may be nil.
func NewWarehouseService(
	warehouses ports.WarehouseProvider,
	sellers ports.SellerRepository,
	products ports.ProductRepository,
	cache ports.CacheService,
) *WarehouseService {
	return &WarehouseService{
		warehouses: warehouses,
		sellers:    sellers,
		products:   products,
		results:    newResultCache(cache, nil),
	}
}

// FindNearest returns the active warehouse closest to the seller of productID.
func (s *WarehouseService) FindNearest(ctx context.Context, sellerID, productID string) (*domain.NearestWarehouse, error) {
	if sellerID == "" || productID == "" {
		return nil, fmt.Errorf("%w: sellerId and productId are required", domain.ErrInvalidInput)
	}

	key := fmt.Sprintf("nearest:%s:%s", sellerID, productID)
	nw, _, err := readThrough(ctx, s.results, CacheNearestWarehouse, key, func() (domain.NearestWarehouse, error) {
		return s.findNearest(ctx, sellerID, productID)
	})
	if err != nil {
		return nil, err
	}
	return &nw, nil
}

func (s *WarehouseService) findNearest(ctx context.Context, sellerID, productID string) (domain.NearestWarehouse, error) {
	seller, err := s.sellers.GetByID(ctx, sellerID)
	if err != nil {
		return domain.NearestWarehouse{}, fmt.Errorf("seller %s: %w", sellerID, err)
	}
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return domain.NearestWarehouse{}, fmt.Errorf("product %s: %w", productID, err)
	}
	if product.SellerID != "" && product.SellerID != seller.ID {
		return domain.NearestWarehouse{}, fmt.Errorf("%w: product %s does not belong to seller %s", domain.ErrInvalidInput, productID, sellerID)
	}
	if seller.Location == nil {
		return domain.NearestWarehouse{}, fmt.Errorf("%w: location not available for seller %s", domain.ErrNotFound, sellerID)
	}

	warehouses, err := s.warehouses.ListActive(ctx)
	if err != nil {
		return domain.NearestWarehouse{}, fmt.Errorf("list warehouses: %w", err)
	}
	if len(warehouses) == 0 {
		return domain.NearestWarehouse{}, fmt.Errorf("%w: no active warehouses", domain.ErrNotFound)
	}

	var nearest *domain.Warehouse
	best := math.MaxFloat64
	for i := range warehouses {
		w := &warehouses[i]
		if w.Location == nil {
			logging.FromContext(ctx).Warn("warehouse has no location, skipping", "warehouse_id", w.ID)
			continue
		}
		d := geospatial.HaversineKm(seller.Location.Lat, seller.Location.Lng, w.Location.Lat, w.Location.Lng)
		if d < best {
			best = d
			nearest = w
		}
	}
	if nearest == nil {
		return domain.NearestWarehouse{}, fmt.Errorf("%w: no warehouse with a valid location", domain.ErrNotFound)
	}

	logging.FromContext(ctx).Debug("nearest warehouse resolved",
		"seller_id", sellerID,
		"warehouse_id", nearest.ID,
		"distance_km", domain.Round2(best),
	)
	return domain.NearestWarehouse{WarehouseID: nearest.ID, WarehouseLocation: *nearest.Location}, nil
}

// nearestForSeller resolves the seller's nearest warehouse via their first product.
func (s *WarehouseService) nearestForSeller(ctx context.Context, sellerID string) (*domain.Warehouse, *domain.Product, error) {
	product, err := s.products.FirstBySeller(ctx, sellerID)
	if err != nil {
		return nil, nil, fmt.Errorf("products of seller %s: %w", sellerID, err)
	}
	return s.nearestForProduct(ctx, sellerID, product)
}

func (s *WarehouseService) nearestForProduct(ctx context.Context, sellerID string, product *domain.Product) (*domain.Warehouse, *domain.Product, error) {
	nw, err := s.FindNearest(ctx, sellerID, product.ID)
	if err != nil {
		return nil, nil, err
	}
	w, err := s.warehouses.GetByID(ctx, nw.WarehouseID)
	if err != nil {
		return nil, nil, fmt.Errorf("warehouse %s: %w", nw.WarehouseID, err)
	}
	if w.Location == nil {
		return nil, nil, fmt.Errorf("%w: location not available for warehouse %s", domain.ErrNotFound, w.ID)
	}
	return w, product, nil
}
