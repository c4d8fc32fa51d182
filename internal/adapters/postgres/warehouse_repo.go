package postgres

import (
	"context"

	"github.com/samirrijal/shipquote/internal/core/domain"
)

// WarehouseRepo implements ports.WarehouseProvider with pgx.
type WarehouseRepo struct {
	db *DB
}

// NewWarehouseRepo creates a new WarehouseRepo.
func NewWarehouseRepo(db *DB) *WarehouseRepo {
	return &WarehouseRepo{db: db}
}

var warehouseColumns = "warehouse_id, name, " + latLng("location") + ", active"

// ListActive returns active warehouses ordered by ID.
func (r *WarehouseRepo) ListActive(ctx context.Context) ([]domain.Warehouse, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+warehouseColumns+`
		FROM warehouses WHERE active ORDER BY warehouse_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var warehouses []domain.Warehouse
	for rows.Next() {
		var (
			w        domain.Warehouse
			lat, lng *float64
		)
		if err := rows.Scan(&w.ID, &w.Name, &lat, &lng, &w.Active); err != nil {
			return nil, err
		}
		w.Location = toCoordinate(lat, lng)
		warehouses = append(warehouses, w)
	}
	return warehouses, rows.Err()
}

// GetByID returns an active warehouse.
func (r *WarehouseRepo) GetByID(ctx context.Context, id string) (*domain.Warehouse, error) {
	var (
		w        domain.Warehouse
		lat, lng *float64
	)
	err := r.db.Pool.QueryRow(ctx, `
		SELECT `+warehouseColumns+`
		FROM warehouses WHERE warehouse_id = $1 AND active
	`, id).Scan(&w.ID, &w.Name, &lat, &lng, &w.Active)
	if err != nil {
		return nil, notFound(err, "warehouse", id)
	}
	w.Location = toCoordinate(lat, lng)
	return &w, nil
}
