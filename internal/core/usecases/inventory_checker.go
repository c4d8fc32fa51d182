package usecases

import (
	"context"
	"fmt"

	"github.com/samirrijal/shipquote/internal/core/domain"
	"github.com/samirrijal/shipquote/internal/core/ports"
)

// InventoryChecker decides whether a warehouse can fully satisfy an order.
type InventoryChecker struct {
	inventory ports.InventoryProvider
}

// NewInventoryChecker creates a new InventoryChecker.
func NewInventoryChecker(inventory ports.InventoryProvider) *InventoryChecker {
	return &InventoryChecker{inventory: inventory}
}

// CanFulfill reports whether every item is in stock at warehouseID.
// It stops at the first short item.
func (c *InventoryChecker) CanFulfill(ctx context.Context, warehouseID string, order *domain.Order) (bool, error) {
	for _, item := range order.Items {
		available, err := c.inventory.GetQuantity(ctx, warehouseID, item.ProductID)
		if err != nil {
			return false, fmt.Errorf("inventory %s/%s: %w", warehouseID, item.ProductID, err)
		}
		if available < item.Quantity {
			return false, nil
		}
	}
	return true, nil
}
