package provider

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"lead-insights/internal/leads"
)

// maxExtensions caps how often a hit may slide an entry's expiry forward.
const maxExtensions = 6

type cacheEntry struct {
	value       []leads.Lead
	expiration  time.Time
	accessCount int
	originalTTL time.Duration
}

// responseCache is a TTL cache with sliding expiry for fetched snapshots.
type responseCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	now     func() time.Time
}

func newResponseCache() *responseCache {
	return &responseCache{
		entries: make(map[string]*cacheEntry),
		now:     time.Now,
	}
}

func (c *responseCache) get(key string) ([]leads.Lead, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		log.Debug().Str("key", key).Msg("Cache miss")
		return nil, false
	}

	if c.now().After(entry.expiration) {
		delete(c.entries, key)
		log.Debug().Str("key", key).Msg("Cache entry expired")
		return nil, false
	}
	log.Debug().Str("key", key).Msg("Cache hit")

	// Sliding window extension
	if entry.accessCount < maxExtensions {
		entry.expiration = c.now().Add(entry.originalTTL)
		entry.accessCount++
		log.Trace().Str("key", key).Int("count", entry.accessCount).Msg("Extended cache TTL")
	}

	return entry.value, true
}

func (c *responseCache) put(key string, value []leads.Lead, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &cacheEntry{
		value:       value,
		expiration:  c.now().Add(ttl),
		originalTTL: ttl,
		accessCount: 1,
	}
	log.Debug().Str("key", key).Dur("ttl", ttl).Msg("Added to cache")
}

func (c *responseCache) purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}
