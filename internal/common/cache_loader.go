package common

import (
	"context"
	"errors"
	"time"

	"infinite-experiment/paddock/internal/logging"
	"infinite-experiment/paddock/internal/metrics"
)

// GetOrLoad returns the cached value for key, or calls load and caches its
// result for ttl. Cache failures degrade to a direct load. pattern labels
// the hit/miss metrics; m may be nil.
func GetOrLoad[T any](
	ctx context.Context,
	c CacheInterface,
	m *metrics.MetricsRegistry,
	pattern string,
	key string,
	ttl time.Duration,
	load func(ctx context.Context) (T, error),
) (T, error) {
	var cached T
	err := c.Get(ctx, key, &cached)
	if err == nil {
		if m != nil {
			m.CacheHitsTotal.WithLabelValues(pattern).Inc()
		}
		return cached, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		logging.Warn("Cache read failed, loading directly", "key", key, "error", err.Error())
	}
	if m != nil {
		m.CacheMissesTotal.WithLabelValues(pattern).Inc()
	}

	val, err := load(ctx)
	if err != nil {
		return val, err
	}

	if err := c.Set(ctx, key, val, ttl); err != nil {
		logging.Warn("Cache write failed", "key", key, "error", err.Error())
	}
	return val, nil
}
