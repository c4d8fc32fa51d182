package ports

import (
	"context"

	"github.com/samirrijal/shipquote/internal/core/domain"
)

// OrderProvider reads orders. GetByID returns domain.ErrNotFound when absent.
type OrderProvider interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListRecentIDs(ctx context.Context, limit int) ([]string, error)
}

// WarehouseProvider reads warehouses.
type WarehouseProvider interface {
	ListActive(ctx context.Context) ([]domain.Warehouse, error)
	GetByID(ctx context.Context, id string) (*domain.Warehouse, error)
}

// InventoryProvider reads stock levels. Absent records yield 0.
type InventoryProvider interface {
	GetQuantity(ctx context.Context, warehouseID, productID string) (int, error)
}

// SellerRepository reads active sellers.
type SellerRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Seller, error)
}

// CustomerRepository reads active customers.
type CustomerRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
}

// ProductRepository reads active products.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	FirstBySeller(ctx context.Context, sellerID string) (*domain.Product, error)
}
