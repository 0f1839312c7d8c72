package providers

import "scoutd/internal/structures"

// MetricsCacheProvider counts hits and misses of the wrapped cache.
type MetricsCacheProvider struct {
	inner   CacheProviderInterface
	metrics MetricsProviderInterface
}

func (c *MetricsCacheProvider) Get(key string) ([]byte, bool) {
	val, ok := c.inner.Get(key)
	if !ok {
		c.metrics.IncCacheMisses()
		return nil, false
	}
	c.metrics.IncCacheHits()
	return val, true
}

func (c *MetricsCacheProvider) Generation() uint64 {
	return c.inner.Generation()
}

func (c *MetricsCacheProvider) Set(key string, value []byte, generation uint64) {
	c.inner.Set(key, value, generation)
}

func (c *MetricsCacheProvider) Purge() {
	c.inner.Purge()
}

// NewInstrumentedCacheProvider returns the configured response cache. A
// disabled cache is left unwrapped so it does not report misses.
func NewInstrumentedCacheProvider(conf *structures.Config, logger Logger, metrics MetricsProviderInterface) CacheProviderInterface {
	cache := NewCacheProvider(conf, logger)
	if _, disabled := cache.(*noopCache); disabled {
		return cache
	}
	return &MetricsCacheProvider{inner: cache, metrics: metrics}
}
