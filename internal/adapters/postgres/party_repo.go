package postgres

import (
	"context"

	"github.com/samirrijal/shipquote/internal/core/domain"
)

// SellerRepo implements ports.SellerRepository.
type SellerRepo struct {
	db *DB
}

func NewSellerRepo(db *DB) *SellerRepo {
	return &SellerRepo{db: db}
}

func (r *SellerRepo) GetByID(ctx context.Context, id string) (*domain.Seller, error) {
	var (
		s        domain.Seller
		lat, lng *float64
	)
	err := r.db.Pool.QueryRow(ctx, `
		SELECT seller_id, name, `+latLng("location")+`, active
		FROM sellers WHERE seller_id = $1 AND active
	`, id).Scan(&s.ID, &s.Name, &lat, &lng, &s.Active)
	if err != nil {
		return nil, notFound(err, "seller", id)
	}
	s.Location = toCoordinate(lat, lng)
	return &s, nil
}

// CustomerRepo implements ports.CustomerRepository.
type CustomerRepo struct {
	db *DB
}

func NewCustomerRepo(db *DB) *CustomerRepo {
	return &CustomerRepo{db: db}
}

func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	var (
		c        domain.Customer
		lat, lng *float64
	)
	err := r.db.Pool.QueryRow(ctx, `
		SELECT customer_id, name, COALESCE(phone_number, ''), `+latLng("location")+`, active
		FROM customers WHERE customer_id = $1 AND active
	`, id).Scan(&c.ID, &c.Name, &c.Phone, &lat, &lng, &c.Active)
	if err != nil {
		return nil, notFound(err, "customer", id)
	}
	c.Location = toCoordinate(lat, lng)
	return &c, nil
}

// ProductRepo implements ports.ProductRepository.
type ProductRepo struct {
	db *DB
}

func NewProductRepo(db *DB) *ProductRepo {
	return &ProductRepo{db: db}
}

const productColumns = `product_id, seller_id, name, selling_price::float8, COALESCE(weight_kg, 0), active`

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.Pool.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products WHERE product_id = $1 AND active
	`, id).Scan(&p.ID, &p.SellerID, &p.Name, &p.SellingPrice, &p.WeightKg, &p.Active)
	if err != nil {
		return nil, notFound(err, "product", id)
	}
	return &p, nil
}

// FirstBySeller returns the seller's oldest active product.
func (r *ProductRepo) FirstBySeller(ctx context.Context, sellerID string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.Pool.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products WHERE seller_id = $1 AND active
		ORDER BY created_at, product_id LIMIT 1
	`, sellerID).Scan(&p.ID, &p.SellerID, &p.Name, &p.SellingPrice, &p.WeightKg, &p.Active)
	if err != nil {
		return nil, notFound(err, "products of seller", sellerID)
	}
	return &p, nil
}
