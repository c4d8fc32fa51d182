package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/shipquote/internal/core/domain"
	"github.com/samirrijal/shipquote/internal/core/ports"
	"github.com/samirrijal/shipquote/internal/pkg/geospatial"
	"github.com/samirrijal/shipquote/internal/pkg/logging"
	"github.com/samirrijal/shipquote/internal/pkg/metrics"
	"github.com/samirrijal/shipquote/internal/pkg/telemetry"
)

// HaversineAverageSpeedKmh converts great-circle distance into a travel duration.
const HaversineAverageSpeedKmh = 40.0

// DefaultRemoteTimeout bounds a single remote matrix call.
const DefaultRemoteTimeout = 3 * time.Second

var errRemoteUnconfigured = fmt.Errorf("%w: remote distance provider not configured", domain.ErrExternalServiceDegraded)

// HaversineStrategy computes great-circle distance locally. It never fails on valid input.
type HaversineStrategy struct{}

func (HaversineStrategy) Name() string { return domain.StrategyHaversine }

func (HaversineStrategy) Distance(_ context.Context, src, dst domain.Coordinate) (domain.DistanceResult, error) {
	if err := src.Validate(); err != nil {
		return domain.DistanceResult{}, err
	}
	if err := dst.Validate(); err != nil {
		return domain.DistanceResult{}, err
	}

	km := geospatial.HaversineKm(src.Lat, src.Lng, dst.Lat, dst.Lng)
	return domain.DistanceResult{
		DistanceKm:      domain.Round2(km),
		DurationMinutes: geospatial.TravelMinutes(km, HaversineAverageSpeedKmh),
		Strategy:        domain.StrategyHaversine,
	}, nil
}

// RemoteStrategy asks an external distance-matrix provider. Every failure is
// reported as domain.ErrExternalServiceDegraded so the engine can fall back.
type RemoteStrategy struct {
	provider ports.RemoteDistanceProvider
	timeout  time.Duration
}

// NewRemoteStrategy wraps provider. A nil provider behaves as unconfigured.
func NewRemoteStrategy(provider ports.RemoteDistanceProvider, timeout time.Duration) *RemoteStrategy {
	if timeout <= 0 {
		timeout = DefaultRemoteTimeout
	}
	return &RemoteStrategy{provider: provider, timeout: timeout}
}

func (s *RemoteStrategy) Name() string { return domain.StrategyRemote }

func (s *RemoteStrategy) Distance(ctx context.Context, src, dst domain.Coordinate) (domain.DistanceResult, error) {
	if s.provider == nil || !s.provider.Configured() {
		return domain.DistanceResult{}, errRemoteUnconfigured
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.provider.Matrix(ctx, src, dst)
	if err != nil {
		return domain.DistanceResult{}, fmt.Errorf("%w: %w", domain.ErrExternalServiceDegraded, err)
	}
	if math.IsNaN(res.DistanceKm) || math.IsInf(res.DistanceKm, 0) || res.DistanceKm < 0 || res.DurationMinutes < 0 {
		return domain.DistanceResult{}, fmt.Errorf("%w: malformed matrix result %+v", domain.ErrExternalServiceDegraded, res)
	}

	return domain.DistanceResult{
		DistanceKm:      domain.Round2(res.DistanceKm),
		DurationMinutes: res.DurationMinutes,
		Strategy:        domain.StrategyRemote,
	}, nil
}

// DistanceEngine runs an ordered chain of strategies per mode and memoizes results.
// Intermediate strategy failures are logged and never returned.
type DistanceEngine struct {
	chains map[domain.DistanceMode][]ports.DistanceStrategy
	memo   ports.DistanceMemo
}

// NewDistanceEngine builds the engine. remote strategies are tried in order before
// the local Haversine strategy in REMOTE mode. memo may be nil.
func NewDistanceEngine(memo ports.DistanceMemo, remote ...ports.DistanceStrategy) *DistanceEngine {
	local := HaversineStrategy{}
	chain := make([]ports.DistanceStrategy, 0, len(remote)+1)
	chain = append(chain, remote...)
	chain = append(chain, local)

	return &DistanceEngine{
		chains: map[domain.DistanceMode][]ports.DistanceStrategy{
			domain.DistanceModeHaversine: {local},
			domain.DistanceModeRemote:    chain,
		},
		memo: memo,
	}
}

// Distance returns the distance between src and dst. An empty mode means HAVERSINE.
func (e *DistanceEngine) Distance(ctx context.Context, src, dst domain.Coordinate, mode domain.DistanceMode) (domain.DistanceResult, error) {
	if mode == "" {
		mode = domain.DistanceModeHaversine
	}
	chain, ok := e.chains[mode]
	if !ok {
		return domain.DistanceResult{}, fmt.Errorf("%w: unknown distance mode %q", domain.ErrInvalidInput, mode)
	}
	if err := src.Validate(); err != nil {
		return domain.DistanceResult{}, fmt.Errorf("source: %w", err)
	}
	if err := dst.Validate(); err != nil {
		return domain.DistanceResult{}, fmt.Errorf("destination: %w", err)
	}

	key := memoKey(src, dst, mode)
	if e.memo != nil {
		if res, ok := e.memo.Get(key); ok {
			return res, nil
		}
	}

	var lastErr error
	for _, strategy := range chain {
		res, err := strategy.Distance(ctx, src, dst)
		if err == nil {
			if e.memo != nil {
				e.memo.Add(key, res)
			}
			return res, nil
		}
		lastErr = err

		metrics.DistanceFallbacks.WithLabelValues(strategy.Name()).Inc()
		telemetry.AddEvent(ctx, telemetry.EventDistanceFallback, attribute.String("strategy", strategy.Name()))
		level := slog.LevelWarn
		if errors.Is(err, errRemoteUnconfigured) {
			level = slog.LevelDebug
		}
		logging.FromContext(ctx).Log(ctx, level, "distance strategy failed, falling back",
			"strategy", strategy.Name(),
			"error", err,
		)
	}
	return domain.DistanceResult{}, lastErr
}

func memoKey(src, dst domain.Coordinate, mode domain.DistanceMode) string {
	return fmt.Sprintf("%.6f:%.6f:%.6f:%.6f:%s", src.Lat, src.Lng, dst.Lat, dst.Lng, mode)
}
