package domain

import "time"

// Warehouse is a fulfillment location. Only active warehouses take part in simulation.
type Warehouse struct {
	ID       string      `json:"warehouseId"`
	Name     string      `json:"name"`
	Location *Coordinate `json:"location,omitempty"`
	Active   bool        `json:"active"`
}

// Seller owns products and ships from a location.
type Seller struct {
	ID       string      `json:"sellerId"`
	Name     string      `json:"name"`
	Location *Coordinate `json:"location,omitempty"`
	Active   bool        `json:"active"`
}

// Customer receives orders at a location.
type Customer struct {
	ID       string      `json:"customerId"`
	Name     string      `json:"name"`
	Phone    string      `json:"phoneNumber,omitempty"`
	Location *Coordinate `json:"location,omitempty"`
	Active   bool        `json:"active"`
}

// Product is a sellable item. WeightKg is zero when unknown.
type Product struct {
	ID           string  `json:"productId"`
	SellerID     string  `json:"sellerId"`
	Name         string  `json:"name"`
	SellingPrice float64 `json:"sellingPrice"`
	WeightKg     float64 `json:"weightKg"`
	Active       bool    `json:"active"`
}

// DefaultProductWeightKg is used when a product carries no weight attribute.
const DefaultProductWeightKg = 1.0

// EffectiveWeightKg returns the product weight, or the default when unset.
func (p *Product) EffectiveWeightKg() float64 {
	if p.WeightKg > 0 {
		return p.WeightKg
	}
	return DefaultProductWeightKg
}

// OrderItem is one line of an order.
type OrderItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Order is the unit a recommendation is computed for.
type Order struct {
	ID               string      `json:"orderId"`
	SellerID         string      `json:"sellerId"`
	CustomerID       string      `json:"customerId"`
	Items            []OrderItem `json:"items"`
	TotalWeightKg    float64     `json:"totalWeightKg"`
	CustomerLocation *Coordinate `json:"customerLocation,omitempty"`
	CreatedAt        time.Time   `json:"createdAt"`
}
