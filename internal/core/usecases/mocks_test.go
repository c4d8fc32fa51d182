package usecases_test

import (
	"context"
	"sync"
	"time"

	"github.com/samirrijal/shipquote/internal/core/domain"
	"github.com/samirrijal/shipquote/internal/core/ports"
)

// --- Mock OrderProvider ---

type mockOrders struct {
	getByIDFn       func(ctx context.Context, id string) (*domain.Order, error)
	listRecentIDsFn func(ctx context.Context, limit int) ([]string, error)
	calls           int
}

func (m *mockOrders) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	m.calls++
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockOrders) ListRecentIDs(ctx context.Context, limit int) ([]string, error) {
	if m.listRecentIDsFn != nil {
		return m.listRecentIDsFn(ctx, limit)
	}
	return nil, nil
}

func ordersOf(orders ...domain.Order) *mockOrders {
	byID := make(map[string]domain.Order, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
	}
	return &mockOrders{
		getByIDFn: func(_ context.Context, id string) (*domain.Order, error) {
			o, ok := byID[id]
			if !ok {
				return nil, domain.ErrNotFound
			}
			return &o, nil
		},
	}
}

// --- Mock WarehouseProvider ---

type mockWarehouses struct {
	listActiveFn func(ctx context.Context) ([]domain.Warehouse, error)
	getByIDFn    func(ctx context.Context, id string) (*domain.Warehouse, error)
}

func (m *mockWarehouses) ListActive(ctx context.Context) ([]domain.Warehouse, error) {
	if m.listActiveFn != nil {
		return m.listActiveFn(ctx)
	}
	return nil, nil
}

func (m *mockWarehouses) GetByID(ctx context.Context, id string) (*domain.Warehouse, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func warehousesOf(ws ...domain.Warehouse) *mockWarehouses {
	return &mockWarehouses{
		listActiveFn: func(context.Context) ([]domain.Warehouse, error) {
			out := make([]domain.Warehouse, len(ws))
			copy(out, ws)
			return out, nil
		},
		getByIDFn: func(_ context.Context, id string) (*domain.Warehouse, error) {
			for _, w := range ws {
				if w.ID == id {
					w := w
					return &w, nil
				}
			}
			return nil, domain.ErrNotFound
		},
	}
}

// --- Mock InventoryProvider ---

// stock maps warehouseID -> productID -> quantity. Absent entries are 0.
type stock map[string]map[string]int

func (s stock) GetQuantity(_ context.Context, warehouseID, productID string) (int, error) {
	return s[warehouseID][productID], nil
}

type mockInventory struct {
	getQuantityFn func(ctx context.Context, warehouseID, productID string) (int, error)
}

func (m *mockInventory) GetQuantity(ctx context.Context, warehouseID, productID string) (int, error) {
	return m.getQuantityFn(ctx, warehouseID, productID)
}

// --- Mock Seller/Customer/Product repositories ---

type mockSellers struct {
	sellers map[string]domain.Seller
}

func (m *mockSellers) GetByID(_ context.Context, id string) (*domain.Seller, error) {
	s, ok := m.sellers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

type mockCustomers struct {
	customers map[string]domain.Customer
}

func (m *mockCustomers) GetByID(_ context.Context, id string) (*domain.Customer, error) {
	c, ok := m.customers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

type mockProducts struct {
	products []domain.Product
}

func (m *mockProducts) GetByID(_ context.Context, id string) (*domain.Product, error) {
	for _, p := range m.products {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockProducts) FirstBySeller(_ context.Context, sellerID string) (*domain.Product, error) {
	for _, p := range m.products {
		if p.SellerID == sellerID {
			p := p
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

// --- Mock CacheService ---

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, ports.ErrCacheMiss
	}
	return v, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	c.sets++
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu     sync.Mutex
	events []*domain.RecommendationEvent
	err    error
}

func (m *mockPublisher) PublishRecommendation(_ context.Context, e *domain.RecommendationEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return m.err
}

// --- Mock MetricsRecorder ---

type recordCall struct {
	mode    string
	success bool
}

type mockRecorder struct {
	mu     sync.Mutex
	calls  []recordCall
	hits   map[string]int
	misses map[string]int
}

func newMockRecorder() *mockRecorder {
	return &mockRecorder{hits: map[string]int{}, misses: map[string]int{}}
}

func (m *mockRecorder) Record(_ time.Duration, mode string, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, recordCall{mode: mode, success: success})
}

func (m *mockRecorder) CacheHit(cache string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits[cache]++
}

func (m *mockRecorder) CacheMiss(cache string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.misses[cache]++
}

// --- Mock RemoteDistanceProvider ---

type mockRemote struct {
	configured bool
	matrixFn   func(ctx context.Context, src, dst domain.Coordinate) (domain.DistanceResult, error)
	calls      int
}

func (m *mockRemote) Configured() bool { return m.configured }

func (m *mockRemote) Matrix(ctx context.Context, src, dst domain.Coordinate) (domain.DistanceResult, error) {
	m.calls++
	return m.matrixFn(ctx, src, dst)
}

// --- Fixtures ---

func loc(lat, lng float64) *domain.Coordinate {
	return &domain.Coordinate{Lat: lat, Lng: lng}
}
