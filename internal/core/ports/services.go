package ports

import (
	"context"
	"errors"
	"time"

	"github.com/samirrijal/shipquote/internal/core/domain"
)

// ErrCacheMiss is returned by CacheService.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// CacheService provides read-through caching of serialized results.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishRecommendation(ctx context.Context, event *domain.RecommendationEvent) error
}

// MetricsRecorder receives one signal per shipping request. mode is empty on failure.
type MetricsRecorder interface {
	Record(latency time.Duration, mode string, success bool)
}

// CacheStatsRecorder is optionally implemented by a MetricsRecorder to count result-cache lookups.
type CacheStatsRecorder interface {
	CacheHit(cache string)
	CacheMiss(cache string)
}

// DistanceMemo is an in-process memo of distance results keyed by request inputs.
// Implementations must be safe for concurrent use.
type DistanceMemo interface {
	Get(key string) (domain.DistanceResult, bool)
	Add(key string, value domain.DistanceResult)
}

// RemoteDistanceProvider is an external distance-matrix service.
type RemoteDistanceProvider interface {
	// Configured reports whether the provider has what it needs to be called.
	Configured() bool
	Matrix(ctx context.Context, src, dst domain.Coordinate) (domain.DistanceResult, error)
}

// DistanceStrategy is one link of the distance fallback chain.
type DistanceStrategy interface {
	Name() string
	Distance(ctx context.Context, src, dst domain.Coordinate) (domain.DistanceResult, error)
}
