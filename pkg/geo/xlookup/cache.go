package xlookup

import (
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/ristretto/v2"

	"github.com/omeyang/geokit/pkg/geo/xgeo"
)

// resultCache 以规范化键为索引的查询结果缓存。
// 键是 39 位定宽十进制文本，xxhash 直接对其散列。
type resultCache struct {
	cache *ristretto.Cache[string, xgeo.Result]
	ttl   time.Duration
}

func newResultCache(entries int64, ttl time.Duration) (*resultCache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, xgeo.Result]{
		// admission sketch 计数器按惯例取容量的 10 倍。
		NumCounters: entries * 10,
		MaxCost:     entries,
		BufferItems: 64,
		KeyToHash: func(key string) (uint64, uint64) {
			return xxhash.Sum64String(key), 0
		},
		Metrics: true,
	})
	if err != nil {
		return nil, err
	}
	return &resultCache{cache: cache, ttl: ttl}, nil
}

func (c *resultCache) get(key string) (xgeo.Result, bool) {
	if c == nil {
		return xgeo.Result{}, false
	}
	return c.cache.Get(key)
}

func (c *resultCache) set(key string, res xgeo.Result) {
	if c == nil {
		return
	}
	c.cache.SetWithTTL(key, res, 1, c.ttl)
}

func (c *resultCache) metrics() *ristretto.Metrics {
	if c == nil {
		return nil
	}
	return c.cache.Metrics
}

func (c *resultCache) close() {
	if c != nil {
		c.cache.Close()
	}
}
