package usecases

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/samirrijal/shipquote/internal/core/ports"
	"github.com/samirrijal/shipquote/internal/pkg/logging"
)

// Result cache names reported to ports.CacheStatsRecorder.
const (
	CacheNearestWarehouse = "nearest_warehouse"
	CacheShippingCharge   = "shipping_charge"
	CacheShippingEstimate = "shipping_estimate"
)

// resultCache is a JSON read-through helper over ports.CacheService.
// A nil cache computes every time. Cache failures never fail the caller.
type resultCache struct {
	cache ports.CacheService
	stats ports.CacheStatsRecorder
	ttl   int
}

func newResultCache(cache ports.CacheService, recorder ports.MetricsRecorder) resultCache {
	stats, _ := recorder.(ports.CacheStatsRecorder)
	return resultCache{cache: cache, stats: stats, ttl: DefaultResultTTL}
}

func readThrough[T any](ctx context.Context, rc resultCache, name, key string, compute func() (T, error)) (T, bool, error) {
	if rc.cache != nil {
		data, err := rc.cache.Get(ctx, key)
		switch {
		case err == nil:
			var v T
			if jerr := json.Unmarshal(data, &v); jerr == nil {
				if rc.stats != nil {
					rc.stats.CacheHit(name)
				}
				return v, true, nil
			}
			logging.FromContext(ctx).Warn("discarding corrupt cache entry", "key", key)
		case !errors.Is(err, ports.ErrCacheMiss):
			logging.FromContext(ctx).Warn("cache read failed", "key", key, "error", err)
		}
		if rc.stats != nil {
			rc.stats.CacheMiss(name)
		}
	}

	v, err := compute()
	if err != nil {
		return v, false, err
	}

	if rc.cache != nil {
		if data, jerr := json.Marshal(v); jerr == nil {
			if serr := rc.cache.Set(ctx, key, data, rc.ttl); serr != nil {
				logging.FromContext(ctx).Warn("cache write failed", "key", key, "error", serr)
			}
		}
	}
	return v, false, nil
}
