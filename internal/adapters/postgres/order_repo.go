package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/shipquote/internal/core/domain"
)

// OrderRepo implements ports.OrderProvider. The customer location is joined in
// so the engine never needs a second lookup.
type OrderRepo struct {
	db *DB
}

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(db *DB) *OrderRepo {
	return &OrderRepo{db: db}
}

// GetByID loads an order and its items in one batch round trip.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	batch := &pgx.Batch{}
	batch.Queue(`
		SELECT o.order_id, o.seller_id, o.customer_id, o.total_weight_kg, o.created_at,
		       `+latLng("c.location")+`
		FROM orders o
		JOIN customers c ON c.customer_id = o.customer_id
		WHERE o.order_id = $1
	`, id)
	batch.Queue(`
		SELECT product_id, quantity
		FROM order_items WHERE order_id = $1 ORDER BY line_no
	`, id)

	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()

	var (
		o        domain.Order
		lat, lng *float64
	)
	err := br.QueryRow().Scan(&o.ID, &o.SellerID, &o.CustomerID, &o.TotalWeightKg, &o.CreatedAt, &lat, &lng)
	if err != nil {
		return nil, notFound(err, "order", id)
	}
	o.CustomerLocation = toCoordinate(lat, lng)

	rows, err := br.Query()
	if err != nil {
		return nil, fmt.Errorf("order %s items: %w", id, err)
	}
	defer rows.Close()

	o.Items = []domain.OrderItem{}
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ProductID, &it.Quantity); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}

// ListRecentIDs returns the IDs of the most recently created orders.
func (r *OrderRepo) ListRecentIDs(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Pool.Query(ctx, `
		SELECT order_id FROM orders ORDER BY created_at DESC, order_id LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
