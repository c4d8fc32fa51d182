package http

import (
	"context"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/shipquote/internal/core/usecases"
	"github.com/samirrijal/shipquote/internal/pkg/metrics"
)

// Pinger is implemented by the database pool and every cache driver.
type Pinger interface {
	Ping(ctx context.Context) error
}

// OrderEventPublisher announces order changes to other replicas.
type OrderEventPublisher interface {
	PublishOrderUpdated(ctx context.Context, orderID string) error
}

// BreakerReporter exposes the remote distance provider's circuit state.
type BreakerReporter interface {
	BreakerState() string
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Distance        *usecases.DistanceEngine
	DistanceMode    string
	Recommendations *usecases.RecommendationService
	Simulations     *usecases.SimulationService
	Warehouses      *usecases.WarehouseService
	Charges         *usecases.ShippingChargeService
	OrderShipping   *usecases.OrderShippingService
	Recorder        *metrics.ShippingRecorder
	OrderEvents     OrderEventPublisher
	RemoteDistance  BreakerReporter
	NATS            *nats.Conn
	DB              Pinger
	Cache           Pinger
	RateLimit       int
}
