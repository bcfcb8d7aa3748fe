package cache

import (
	"time"

	"shortlink/config"
	"shortlink/model"

	"github.com/dgraph-io/ristretto"
	"github.com/rs/zerolog/log"
)

// mappingCost approximates the in-memory size of one mapping record.
const mappingCost = 1024

// Cache is a short-TTL in-process read cache for mapping records on the
// redirect hot path. Staleness is bounded by the TTL; lifecycle transitions
// and administrative mutations invalidate eagerly.
type Cache struct {
	client *ristretto.Cache
	ttl    time.Duration
}

// New creates a new cache instance with the given configuration
func New(cfg config.CacheConfig) (*Cache, error) {
	maxCost := int64(cfg.MaxSizeMB) * 1024 * 1024

	client, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: int64(cfg.CounterSize), // keys tracked for admission frequency
		MaxCost:     maxCost,
		BufferItems: 64,
		Metrics:     true,
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("max_size_mb", cfg.MaxSizeMB).
		Int("ttl_seconds", cfg.TTLSeconds).
		Int("counter_size", cfg.CounterSize).
		Msg("Mapping cache initialized")

	return &Cache{
		client: client,
		ttl:    time.Duration(cfg.TTLSeconds) * time.Second,
	}, nil
}

// Get retrieves a cached mapping by short code.
func (c *Cache) Get(code string) (*model.LinkMapping, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	value, found := c.client.Get(code)
	if !found {
		return nil, false
	}
	m, ok := value.(model.LinkMapping)
	if !ok {
		return nil, false
	}
	return &m, true
}

// Set stores a mapping with the configured TTL.
func (c *Cache) Set(code string, m model.LinkMapping) bool {
	if c == nil || c.client == nil {
		return false
	}
	return c.client.SetWithTTL(code, m, mappingCost, c.ttl)
}

// Delete removes a short code from the cache.
func (c *Cache) Delete(code string) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Del(code)
}

// Close cleanly shuts down the cache
func (c *Cache) Close() {
	if c != nil && c.client != nil {
		c.client.Close()
		log.Info().Msg("Mapping cache closed")
	}
}

// MetricsSnapshot is a point-in-time view of cache performance.
type MetricsSnapshot struct {
	Hits        uint64  `json:"hits"`
	Misses      uint64  `json:"misses"`
	KeysAdded   uint64  `json:"keys_added"`
	KeysEvicted uint64  `json:"keys_evicted"`
	HitRatio    float64 `json:"hit_ratio"`
	TTLSeconds  int     `json:"ttl_seconds"`
}

// GetMetricsSnapshot returns current cache metrics as a snapshot
func (c *Cache) GetMetricsSnapshot() MetricsSnapshot {
	if c == nil || c.client == nil || c.client.Metrics == nil {
		return MetricsSnapshot{}
	}

	m := c.client.Metrics
	hits := m.Hits()
	misses := m.Misses()
	total := hits + misses

	hitRatio := 0.0
	if total > 0 {
		hitRatio = float64(hits) / float64(total)
	}

	return MetricsSnapshot{
		Hits:        hits,
		Misses:      misses,
		KeysAdded:   m.KeysAdded(),
		KeysEvicted: m.KeysEvicted(),
		HitRatio:    hitRatio,
		TTLSeconds:  int(c.ttl.Seconds()),
	}
}
