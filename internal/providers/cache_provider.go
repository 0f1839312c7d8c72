package providers

import (
	"scoutd/internal/structures"
	"sync"
	"unsafe"

	"github.com/coocood/freecache"
	"go.uber.org/atomic"
)

// CacheProviderInterface caches encoded listing responses. Writers call
// Purge; readers capture Generation before computing a response and pass it
// to Set, so a response computed before a purge is never stored after it.
type CacheProviderInterface interface {
	Get(key string) ([]byte, bool)
	Generation() uint64
	Set(key string, value []byte, generation uint64)
	Purge()
}

type CacheProvider struct {
	cache *freecache.Cache
	ttl   int

	purgeMu    sync.RWMutex
	generation atomic.Uint64
}

// NewCacheProvider sizes the cache in megabytes (cache.size).
func NewCacheProvider(conf *structures.Config, logger Logger) CacheProviderInterface {
	if !conf.Cache.Enabled || conf.Cache.Size <= 0 {
		logger.Infof(TypeApp, "Response cache disabled")
		return &noopCache{}
	}

	ttl := max(int(conf.Cache.TTL.Seconds()), 1)
	logger.Infof(TypeApp, "Response cache: %dMB, TTL=%ds", conf.Cache.Size, ttl)

	return &CacheProvider{
		cache: freecache.NewCache(conf.Cache.Size * 1024 * 1024),
		ttl:   ttl,
	}
}

// keyBytes aliases s without copying; freecache copies keys it stores.
func keyBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

func (c *CacheProvider) Get(key string) ([]byte, bool) {
	val, err := c.cache.Get(keyBytes(key))
	if err != nil {
		return nil, false
	}
	return val, true
}

func (c *CacheProvider) Generation() uint64 {
	return c.generation.Load()
}

func (c *CacheProvider) Set(key string, value []byte, generation uint64) {
	c.purgeMu.RLock()
	defer c.purgeMu.RUnlock()
	if c.generation.Load() != generation {
		return
	}
	_ = c.cache.Set(keyBytes(key), value, c.ttl)
}

func (c *CacheProvider) Purge() {
	c.purgeMu.Lock()
	defer c.purgeMu.Unlock()
	c.generation.Inc()
	c.cache.Clear()
}

type noopCache struct{}

func (n *noopCache) Get(_ string) ([]byte, bool)      { return nil, false }
func (n *noopCache) Generation() uint64               { return 0 }
func (n *noopCache) Set(_ string, _ []byte, _ uint64) {}
func (n *noopCache) Purge()                           {}
