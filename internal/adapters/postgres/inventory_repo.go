package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// InventoryRepo implements ports.InventoryProvider.
type InventoryRepo struct {
	db *DB
}

// NewInventoryRepo creates a new InventoryRepo.
func NewInventoryRepo(db *DB) *InventoryRepo {
	return &InventoryRepo{db: db}
}

// GetQuantity returns the stock of productID at warehouseID, or 0 without a record.
func (r *InventoryRepo) GetQuantity(ctx context.Context, warehouseID, productID string) (int, error) {
	var qty int
	err := r.db.Pool.QueryRow(ctx, `
		SELECT quantity FROM inventory WHERE warehouse_id = $1 AND product_id = $2
	`, warehouseID, productID).Scan(&qty)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return qty, nil
}
