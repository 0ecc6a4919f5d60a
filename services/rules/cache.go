package rules

import (
	"sync"
	"time"

	"case_radar_go/models"
)

// DefaultTTL bounds how long a user's rule set is served from cache. A rule
// toggled via the management API takes effect on the next evaluation after
// invalidation, never retroactively.
const DefaultTTL = 5 * time.Minute

type cacheEntry struct {
	rules     []models.NotificationRule
	expiresAt time.Time
}

// Cache is a TTL cache of per-user rule sets. It replaces the ambient global
// cache the rule engine would otherwise need; tests inject their own clock.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry

	// Now is the clock used for expiry checks, overridable in tests
	Now func() time.Time
}

// NewCache creates a cache with the given TTL
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		Now:     time.Now,
	}
}

// Get returns the cached rule set for a user, if present and fresh
func (c *Cache) Get(userID string) ([]models.NotificationRule, bool) {
	c.mu.RLock()
	entry, ok := c.entries[userID]
	c.mu.RUnlock()

	if !ok || c.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.rules, true
}

// Set stores a user's rule set
func (c *Cache) Set(userID string, ruleList []models.NotificationRule) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = cacheEntry{
		rules:     ruleList,
		expiresAt: c.Now().Add(c.ttl),
	}
}

// Invalidate drops a user's cached rule set (called on rule CRUD)
func (c *Cache) Invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
}

// Clear drops all cached entries
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}
