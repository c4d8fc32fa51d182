package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/shipquote/internal/core/domain"
	"github.com/samirrijal/shipquote/internal/core/ports"
	"github.com/samirrijal/shipquote/internal/core/usecases"
)

type recoFixture struct {
	orders    *mockOrders
	cache     *memCache
	publisher *mockPublisher
	recorder  *mockRecorder
	svc       *usecases.RecommendationService
}

func newRecoFixture(orders *mockOrders, warehouses ports.WarehouseProvider, inv ports.InventoryProvider, cache *memCache) *recoFixture {
	f := &recoFixture{
		orders:    orders,
		cache:     cache,
		publisher: &mockPublisher{},
		recorder:  newMockRecorder(),
	}
	var cs ports.CacheService
	if cache != nil {
		cs = cache
	}
	engine := usecases.NewDistanceEngine(nil)
	sim := usecases.NewSimulator(engine, usecases.NewInventoryChecker(inv), domain.DistanceModeHaversine)
	f.svc = usecases.NewRecommendationService(orders, warehouses, sim, cs, f.publisher, f.recorder)
	return f
}

func heavyOrder() domain.Order {
	return domain.Order{
		ID:               "ORD-HEAVY",
		SellerID:         "SEL-1",
		Items:            []domain.OrderItem{{ProductID: "P-1", Quantity: 3}},
		TotalWeightKg:    10000,
		CustomerLocation: loc(27.88, 0),
	}
}

func localOrder() domain.Order {
	return domain.Order{
		ID:               "ORD-LOCAL",
		SellerID:         "SEL-1",
		Items:            []domain.OrderItem{{ProductID: "P-1", Quantity: 1}},
		TotalWeightKg:    5,
		CustomerLocation: loc(0, 0),
	}
}

func TestRecommend_LongHaulPicksAeroplaneForCostAndSpeed(t *testing.T) {
	for _, p := range []domain.Priority{domain.PriorityCost, domain.PrioritySpeed} {
		t.Run(string(p), func(t *testing.T) {
			f := newRecoFixture(
				ordersOf(heavyOrder()),
				warehousesOf(domain.Warehouse{ID: "WH-1", Location: loc(0, 0), Active: true}),
				stock{"WH-1": {"P-1": 3}},
				nil,
			)

			res, err := f.svc.Recommend(context.Background(), "ORD-HEAVY", p)
			require.NoError(t, err)
			assert.Equal(t, domain.ModeAeroplane, res.Recommended.TransportMode)
			assert.Equal(t, "WH-1", res.Recommended.WarehouseID)
			assert.Empty(t, res.Alternatives)
			assert.NotNil(t, res.Alternatives)
		})
	}
}

func TestRecommend_RanksAlternativesAscending(t *testing.T) {
	f := newRecoFixture(
		ordersOf(localOrder()),
		warehousesOf(
			domain.Warehouse{ID: "WH-FAR", Location: loc(3, 0), Active: true},
			domain.Warehouse{ID: "WH-NEAR", Location: loc(0.2, 0), Active: true},
			domain.Warehouse{ID: "WH-MID", Location: loc(1.5, 0), Active: true},
		),
		stock{"WH-FAR": {"P-1": 1}, "WH-NEAR": {"P-1": 1}, "WH-MID": {"P-1": 1}},
		nil,
	)

	res, err := f.svc.Recommend(context.Background(), "ORD-LOCAL", domain.PriorityBalanced)
	require.NoError(t, err)
	assert.Equal(t, "WH-NEAR", res.Recommended.WarehouseID)
	require.Len(t, res.Alternatives, 2)

	prev := res.Recommended.Score
	for _, alt := range res.Alternatives {
		assert.GreaterOrEqual(t, alt.Score, prev)
		prev = alt.Score
	}
}

func TestRecommend_Errors(t *testing.T) {
	emptyOrder := localOrder()
	emptyOrder.Items = nil

	tests := []struct {
		name       string
		orderID    string
		priority   domain.Priority
		orders     *mockOrders
		warehouses *mockWarehouses
		inv        stock
		wantErr    error
		wantStage  domain.Stage
	}{
		{
			name:       "order not found",
			orderID:    "ORD-MISSING",
			priority:   domain.PriorityCost,
			orders:     ordersOf(),
			warehouses: warehousesOf(),
			wantErr:    domain.ErrNotFound,
			wantStage:  domain.StageFetching,
		},
		{
			name:       "invalid priority",
			orderID:    "ORD-LOCAL",
			priority:   domain.Priority("CHEAPEST"),
			orders:     ordersOf(localOrder()),
			warehouses: warehousesOf(),
			wantErr:    domain.ErrInvalidInput,
			wantStage:  domain.StageValidating,
		},
		{
			name:       "no items",
			orderID:    "ORD-LOCAL",
			priority:   domain.PriorityCost,
			orders:     ordersOf(emptyOrder),
			warehouses: warehousesOf(domain.Warehouse{ID: "WH-1", Location: loc(0, 0), Active: true}),
			wantErr:    domain.ErrInvalidInput,
			wantStage:  domain.StageValidating,
		},
		{
			name:       "no active warehouses",
			orderID:    "ORD-LOCAL",
			priority:   domain.PriorityCost,
			orders:     ordersOf(localOrder()),
			warehouses: warehousesOf(domain.Warehouse{ID: "WH-OFF", Location: loc(0, 0), Active: false}),
			wantErr:    domain.ErrInvalidInput,
			wantStage:  domain.StageValidating,
		},
		{
			name:       "infeasible",
			orderID:    "ORD-LOCAL",
			priority:   domain.PrioritySpeed,
			orders:     ordersOf(localOrder()),
			warehouses: warehousesOf(domain.Warehouse{ID: "WH-1", Location: loc(0, 0), Active: true}),
			inv:        stock{"WH-1": {"P-1": 0}},
			wantErr:    domain.ErrInfeasible,
			wantStage:  domain.StageSimulating,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRecoFixture(tt.orders, tt.warehouses, tt.inv, nil)

			res, err := f.svc.Recommend(context.Background(), tt.orderID, tt.priority)
			assert.Nil(t, res)
			require.ErrorIs(t, err, tt.wantErr)

			var se *domain.StageError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.wantStage, se.Stage)

			require.Len(t, f.recorder.calls, 1)
			assert.False(t, f.recorder.calls[0].success)
			assert.Empty(t, f.recorder.calls[0].mode)
			assert.Empty(t, f.publisher.events)
		})
	}
}

func TestRecommend_UnexpectedErrorIsWrapped(t *testing.T) {
	orders := &mockOrders{
		getByIDFn: func(context.Context, string) (*domain.Order, error) {
			return nil, errors.New("connection reset by peer")
		},
	}
	f := newRecoFixture(orders, warehousesOf(), stock{}, nil)

	_, err := f.svc.Recommend(context.Background(), "ORD-1", domain.PriorityCost)
	assert.ErrorIs(t, err, domain.ErrUnexpected)
}

func TestRecommend_Idempotent(t *testing.T) {
	newSvc := func() *recoFixture {
		return newRecoFixture(
			ordersOf(localOrder()),
			warehousesOf(
				domain.Warehouse{ID: "WH-B", Location: loc(0.2, 0), Active: true},
				domain.Warehouse{ID: "WH-A", Location: loc(0.2, 0), Active: true},
			),
			stock{"WH-A": {"P-1": 1}, "WH-B": {"P-1": 1}},
			nil,
		)
	}
	f := newSvc()

	first, err := f.svc.Recommend(context.Background(), "ORD-LOCAL", domain.PriorityCost)
	require.NoError(t, err)
	second, err := f.svc.Recommend(context.Background(), "ORD-LOCAL", domain.PriorityCost)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	// Equal scores fall back to warehouse ID order.
	assert.Equal(t, "WH-A", first.Recommended.WarehouseID)
	assert.Equal(t, 2, f.orders.calls)
}

func TestRecommend_ServesFromResultCache(t *testing.T) {
	f := newRecoFixture(
		ordersOf(localOrder()),
		warehousesOf(domain.Warehouse{ID: "WH-1", Location: loc(0.2, 0), Active: true}),
		stock{"WH-1": {"P-1": 1}},
		newMemCache(),
	)

	first, err := f.svc.Recommend(context.Background(), "ORD-LOCAL", domain.PriorityCost)
	require.NoError(t, err)
	second, err := f.svc.Recommend(context.Background(), "ORD-LOCAL", domain.PriorityCost)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.orders.calls, "second call should not refetch the order")
	assert.Equal(t, 1, f.recorder.hits[usecases.CacheRecommendation])
	assert.Equal(t, 1, f.recorder.misses[usecases.CacheRecommendation])
	assert.Len(t, f.recorder.calls, 2, "metrics are recorded once per call")
	assert.Len(t, f.publisher.events, 1, "events are only published for computed results")

	// A different priority is a different key.
	_, err = f.svc.Recommend(context.Background(), "ORD-LOCAL", domain.PrioritySpeed)
	require.NoError(t, err)
	assert.Equal(t, 2, f.orders.calls)

	require.NoError(t, f.svc.Invalidate(context.Background(), "ORD-LOCAL"))
	_, err = f.svc.Recommend(context.Background(), "ORD-LOCAL", domain.PriorityCost)
	require.NoError(t, err)
	assert.Equal(t, 3, f.orders.calls)
}

func TestRecommend_PublishesEventAndRecordsMode(t *testing.T) {
	f := newRecoFixture(
		ordersOf(localOrder()),
		warehousesOf(domain.Warehouse{ID: "WH-1", Location: loc(0.2, 0), Active: true}),
		stock{"WH-1": {"P-1": 1}},
		nil,
	)
	f.publisher.err = errors.New("nats: no responders")

	res, err := f.svc.Recommend(context.Background(), "ORD-LOCAL", domain.PrioritySpeed)
	require.NoError(t, err, "publish failures must not fail the recommendation")

	require.Len(t, f.publisher.events, 1)
	ev := f.publisher.events[0]
	assert.Equal(t, "ORD-LOCAL", ev.OrderID)
	assert.Equal(t, domain.PrioritySpeed, ev.Priority)
	assert.Equal(t, res.Recommended, ev.Recommended)
	assert.NotEmpty(t, ev.EventID)

	require.Len(t, f.recorder.calls, 1)
	assert.Equal(t, recordCall{mode: domain.ModeMiniVan, success: true}, f.recorder.calls[0])
}

func TestRecommend_SurvivesCancelledCaller(t *testing.T) {
	f := newRecoFixture(
		ordersOf(localOrder()),
		warehousesOf(domain.Warehouse{ID: "WH-1", Location: loc(0.2, 0), Active: true}),
		stock{"WH-1": {"P-1": 1}},
		nil,
	)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.Recommend(ctx, "ORD-LOCAL", domain.PriorityBalanced)
	assert.NoError(t, err)
}
