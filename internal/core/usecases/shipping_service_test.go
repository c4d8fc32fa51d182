package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/samirrijal/shipquote/internal/core/domain"
	"github.com/samirrijal/shipquote/internal/core/ports"
	"github.com/samirrijal/shipquote/internal/core/usecases"
)

type shippingFixture struct {
	orders     *mockOrders
	warehouses *usecases.WarehouseService
	charges    *usecases.ShippingChargeService
	estimates  *usecases.OrderShippingService
	simulation *usecases.SimulationService
	recorder   *mockRecorder
	cache      *memCache
}

func newShippingFixture(cache *memCache) *shippingFixture {
	wp := warehousesOf(
		domain.Warehouse{ID: "WH-FAR", Location: loc(1, 0), Active: true},
		domain.Warehouse{ID: "WH-NOLOC", Active: true},
		domain.Warehouse{ID: "WH-NEAR", Location: loc(0.1, 0), Active: true},
	)
	sellers := &mockSellers{sellers: map[string]domain.Seller{
		"SEL-1":     {ID: "SEL-1", Location: loc(0, 0), Active: true},
		"SEL-2":     {ID: "SEL-2", Location: loc(2, 0), Active: true},
		"SEL-NOLOC": {ID: "SEL-NOLOC", Active: true},
	}}
	customers := &mockCustomers{customers: map[string]domain.Customer{
		"CUST-1":     {ID: "CUST-1", Location: loc(0.5, 0), Active: true},
		"CUST-NOLOC": {ID: "CUST-NOLOC", Active: true},
	}}
	products := &mockProducts{products: []domain.Product{
		{ID: "P-1", SellerID: "SEL-1", WeightKg: 2, Active: true},
		{ID: "P-LIGHT", SellerID: "SEL-1", Active: true},
		{ID: "P-2", SellerID: "SEL-2", WeightKg: 4, Active: true},
		{ID: "P-NOLOC", SellerID: "SEL-NOLOC", WeightKg: 1, Active: true},
	}}
	orders := ordersOf(
		domain.Order{
			ID:               "ORD-1",
			SellerID:         "SEL-1",
			CustomerID:       "CUST-1",
			Items:            []domain.OrderItem{{ProductID: "P-1", Quantity: 10}},
			TotalWeightKg:    20,
			CustomerLocation: loc(0.5, 0),
		},
		domain.Order{ID: "ORD-EMPTY", SellerID: "SEL-1", TotalWeightKg: 1, CustomerLocation: loc(0.5, 0)},
	)

	f := &shippingFixture{orders: orders, recorder: newMockRecorder(), cache: cache}
	var cs ports.CacheService
	if cache != nil {
		cs = cache
	}
	engine := usecases.NewDistanceEngine(nil)
	f.warehouses = usecases.NewWarehouseService(wp, sellers, products, cs)
	f.charges = usecases.NewShippingChargeService(f.warehouses, customers, products, engine, cs, f.recorder)
	f.estimates = usecases.NewOrderShippingService(orders, products, f.warehouses, engine, cs, f.recorder)
	f.simulation = usecases.NewSimulationService(orders, products, f.warehouses, engine)
	return f
}

// legKm is the rounded great-circle distance the services use between two points.
func legKm(t *testing.T, from, to *domain.Coordinate) float64 {
	t.Helper()
	return localResult(t, *from, *to).DistanceKm
}

func TestWarehouseService_FindNearest(t *testing.T) {
	f := newShippingFixture(nil)

	nw, err := f.warehouses.FindNearest(context.Background(), "SEL-1", "P-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if nw.WarehouseID != "WH-NEAR" {
		t.Errorf("expected WH-NEAR, got %s", nw.WarehouseID)
	}
	if nw.WarehouseLocation != *loc(0.1, 0) {
		t.Errorf("unexpected location %+v", nw.WarehouseLocation)
	}

	nw, err = f.warehouses.FindNearest(context.Background(), "SEL-2", "P-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if nw.WarehouseID != "WH-FAR" {
		t.Errorf("expected WH-FAR for seller at 2°N, got %s", nw.WarehouseID)
	}
}

func TestWarehouseService_FindNearestErrors(t *testing.T) {
	f := newShippingFixture(nil)

	tests := []struct {
		name      string
		sellerID  string
		productID string
		wantErr   error
	}{
		{"missing ids", "", "P-1", domain.ErrInvalidInput},
		{"unknown seller", "SEL-404", "P-1", domain.ErrNotFound},
		{"unknown product", "SEL-1", "P-404", domain.ErrNotFound},
		{"foreign product", "SEL-1", "P-2", domain.ErrInvalidInput},
		{"seller without location", "SEL-NOLOC", "P-NOLOC", domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.warehouses.FindNearest(context.Background(), tt.sellerID, tt.productID)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestShippingChargeService_Quote(t *testing.T) {
	f := newShippingFixture(nil)
	d := legKm(t, loc(0.1, 0), loc(0.5, 0))

	tests := []struct {
		name      string
		speed     string
		productID string
		want      float64
	}{
		{"standard with product weight", "standard", "P-1", domain.Round2(d*2*3 + 10)},
		{"express with product weight", "EXPRESS", "P-1", domain.Round2(d*2*3 + (10 + 1.2*2))},
		{"product without weight", "standard", "P-LIGHT", domain.Round2(d*1*3 + 10)},
		{"no product", "express", "", domain.Round2(d*1*3 + (10 + 1.2*1))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := f.charges.Quote(context.Background(), "WH-NEAR", "CUST-1", tt.speed, tt.productID)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if q.ShippingCharge != tt.want {
				t.Errorf("expected %v, got %v", tt.want, q.ShippingCharge)
			}
			if q.NearestWarehouse != nil {
				t.Errorf("quote by warehouse should not report a nearest warehouse")
			}
		})
	}
}

func TestShippingChargeService_QuoteErrors(t *testing.T) {
	f := newShippingFixture(nil)

	tests := []struct {
		name        string
		warehouseID string
		customerID  string
		speed       string
		productID   string
		wantErr     error
	}{
		{"invalid speed", "WH-NEAR", "CUST-1", "overnight", "", domain.ErrInvalidInput},
		{"missing ids", "", "CUST-1", "standard", "", domain.ErrInvalidInput},
		{"unknown warehouse", "WH-404", "CUST-1", "standard", "", domain.ErrNotFound},
		{"warehouse without location", "WH-NOLOC", "CUST-1", "standard", "", domain.ErrNotFound},
		{"unknown customer", "WH-NEAR", "CUST-404", "standard", "", domain.ErrNotFound},
		{"customer without location", "WH-NEAR", "CUST-NOLOC", "standard", "", domain.ErrNotFound},
		{"unknown product", "WH-NEAR", "CUST-1", "standard", "P-404", domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.charges.Quote(context.Background(), tt.warehouseID, tt.customerID, tt.speed, tt.productID)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestShippingChargeService_Calculate(t *testing.T) {
	f := newShippingFixture(newMemCache())
	d := legKm(t, loc(0.1, 0), loc(0.5, 0))

	q, err := f.charges.Calculate(context.Background(), "SEL-1", "CUST-1", "express")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := domain.Round2(d*2*3 + (10 + 1.2*2)); q.ShippingCharge != want {
		t.Errorf("expected %v, got %v", want, q.ShippingCharge)
	}
	if q.NearestWarehouse == nil || q.NearestWarehouse.WarehouseID != "WH-NEAR" {
		t.Errorf("expected nearest warehouse WH-NEAR, got %+v", q.NearestWarehouse)
	}

	if _, err := f.charges.Calculate(context.Background(), "SEL-1", "CUST-1", "express"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.recorder.hits[usecases.CacheShippingCharge] != 1 {
		t.Errorf("expected one shipping charge cache hit, got %d", f.recorder.hits[usecases.CacheShippingCharge])
	}

	if _, err := f.charges.Calculate(context.Background(), "SEL-404", "CUST-1", "standard"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for seller without products, got %v", err)
	}
}

func TestOrderShippingService_Estimate(t *testing.T) {
	f := newShippingFixture(newMemCache())
	d := legKm(t, loc(0.1, 0), loc(0.5, 0))

	est, err := f.estimates.Estimate(context.Background(), "ORD-1", "express")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if est.WarehouseID != "WH-NEAR" || est.TransportMode != domain.ModeMiniVan {
		t.Errorf("unexpected route %+v", est)
	}
	if want := domain.Round2(d*20*3 + (10 + 1.2*20)); est.ShippingCharge != want {
		t.Errorf("expected charge %v, got %v", want, est.ShippingCharge)
	}
	if want := domain.Round1(1.0 + d/40*0.8); est.EstimatedDeliveryHours != want {
		t.Errorf("expected %v hours, got %v", want, est.EstimatedDeliveryHours)
	}
	if est.DeliverySpeed != domain.SpeedExpress || est.TotalWeightKg != 20 {
		t.Errorf("unexpected estimate %+v", est)
	}

	again, err := f.estimates.Estimate(context.Background(), "ORD-1", "EXPRESS")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *again != *est {
		t.Errorf("cached estimate differs: %+v vs %+v", again, est)
	}
	if f.orders.calls != 1 {
		t.Errorf("expected the second estimate to come from cache, orders fetched %d times", f.orders.calls)
	}
	if f.recorder.hits[usecases.CacheShippingEstimate] != 1 {
		t.Errorf("expected one estimate cache hit")
	}
	if len(f.recorder.calls) != 2 {
		t.Fatalf("expected one metrics record per call, got %d", len(f.recorder.calls))
	}
	for _, c := range f.recorder.calls {
		if !c.success || c.mode != domain.ModeMiniVan {
			t.Errorf("unexpected record %+v", c)
		}
	}
}

func TestOrderShippingService_EstimateFailuresAreRecorded(t *testing.T) {
	f := newShippingFixture(nil)

	tests := []struct {
		name    string
		orderID string
		speed   string
		wantErr error
	}{
		{"invalid speed", "ORD-1", "teleport", domain.ErrInvalidInput},
		{"unknown order", "ORD-404", "standard", domain.ErrNotFound},
		{"empty order", "ORD-EMPTY", "standard", domain.ErrInvalidInput},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.estimates.Estimate(context.Background(), tt.orderID, tt.speed)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if len(f.recorder.calls) != i+1 {
				t.Fatalf("expected %d records, got %d", i+1, len(f.recorder.calls))
			}
			last := f.recorder.calls[i]
			if last.success || last.mode != "" {
				t.Errorf("failure recorded as %+v", last)
			}
		})
	}
}

func TestSimulationService_Simulate(t *testing.T) {
	f := newShippingFixture(nil)
	d := legKm(t, loc(0.1, 0), loc(0.5, 0))

	res, err := f.simulation.Simulate(context.Background(), "ORD-1", domain.ObjectiveCost)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.WarehouseID != "WH-NEAR" || res.DistanceKm != d {
		t.Errorf("unexpected warehouse/distance %s/%v", res.WarehouseID, res.DistanceKm)
	}
	if len(res.Options) != len(domain.TransportModes) {
		t.Fatalf("expected one option per mode, got %d", len(res.Options))
	}
	for i, m := range domain.TransportModes {
		o := res.Options[i]
		if o.TransportMode != m.Code {
			t.Errorf("option %d: expected %s, got %s", i, m.Code, o.TransportMode)
		}
		if want := domain.Round2(d * 20 * m.RatePerKmPerKg); o.BaseCharge != want {
			t.Errorf("%s: expected charge %v, got %v", m.Code, want, o.BaseCharge)
		}
		if want := domain.Round1(d / m.AverageSpeedKmh); o.EstimatedTimeHours != want {
			t.Errorf("%s: expected %v hours, got %v", m.Code, want, o.EstimatedTimeHours)
		}
	}
	if res.Recommended.TransportMode != domain.ModeAeroplane {
		t.Errorf("cheapest per-kg-km mode should win on cost, got %s", res.Recommended.TransportMode)
	}

	res, err = f.simulation.Simulate(context.Background(), "ORD-1", domain.ObjectiveSpeed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Recommended.TransportMode != domain.ModeAeroplane {
		t.Errorf("fastest mode should win on speed, got %s", res.Recommended.TransportMode)
	}
}

func TestSimulationService_Errors(t *testing.T) {
	f := newShippingFixture(nil)

	if _, err := f.simulation.Simulate(context.Background(), "ORD-1", "balanced"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for unsupported objective, got %v", err)
	}
	if _, err := f.simulation.Simulate(context.Background(), "ORD-404", domain.ObjectiveCost); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := f.simulation.Simulate(context.Background(), "ORD-EMPTY", domain.ObjectiveCost); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty order, got %v", err)
	}
}

func TestParseSimulationObjective(t *testing.T) {
	for in, want := range map[string]domain.SimulationObjective{"cost": domain.ObjectiveCost, " SPEED ": domain.ObjectiveSpeed} {
		got, err := domain.ParseSimulationObjective(in)
		if err != nil || got != want {
			t.Errorf("ParseSimulationObjective(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := domain.ParseSimulationObjective("balanced"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
