// Package infra provides shared infrastructure components used across
// the application: in-memory caching and the daily request budget.
package infra

import (
	"sync"
	"time"
)

// --- Simple in-memory cache ---

// CacheEntry holds a cached value with expiration.
type CacheEntry struct {
	Value     any
	ExpiresAt time.Time
}

// Cache is a simple thread-safe in-memory cache with TTL. It fronts the
// on-disk identifier table and the recent-filings feed so long batch runs
// do not re-read or re-fetch on every company.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]CacheEntry
	ttl     time.Duration
}

// NewCache creates a new cache with the given default TTL.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]CacheEntry),
		ttl:     ttl,
	}
}

// Get retrieves a value from the cache. Returns nil, false if not found or expired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.ExpiresAt) {
		return nil, false
	}
	return entry.Value, true
}

// Set stores a value in the cache with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	c.entries[key] = CacheEntry{
		Value:     value,
		ExpiresAt: time.Now().Add(c.ttl),
	}
	c.mu.Unlock()
}

// SetWithTTL stores a value in the cache with a custom TTL.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = CacheEntry{
		Value:     value,
		ExpiresAt: time.Now().Add(ttl),
	}
	c.mu.Unlock()
}

// Invalidate removes a key from the cache.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Flush removes all entries from the cache.
func (c *Cache) Flush() {
	c.mu.Lock()
	c.entries = make(map[string]CacheEntry)
	c.mu.Unlock()
}

// --- Daily request budget ---

// DailyBudget tracks how many metered API calls have been spent today
// against a fixed per-day limit. The counter rolls over to zero whenever
// the calendar date changes, matching the reset rule of the batch
// progress checkpoint it is restored from.
type DailyBudget struct {
	mu    sync.Mutex
	limit int
	used  int
	day   string // YYYY-MM-DD
}

// NewDailyBudget creates a budget of limit calls per calendar day.
func NewDailyBudget(limit int) *DailyBudget {
	return &DailyBudget{
		limit: limit,
		day:   time.Now().Format("2006-01-02"),
	}
}

// Restore seeds the budget from persisted checkpoint state. A stale day
// is rolled over on the next Allow or Spend.
func (b *DailyBudget) Restore(day string, used int) {
	b.mu.Lock()
	if day != "" {
		b.day = day
	}
	b.used = used
	b.mu.Unlock()
}

// Allow reports whether n more calls fit in today's budget.
func (b *DailyBudget) Allow(n int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rollover()
	return b.used+n <= b.limit
}

// Spend records n calls against today's budget.
func (b *DailyBudget) Spend(n int) {
	b.mu.Lock()
	b.rollover()
	b.used += n
	b.mu.Unlock()
}

// Snapshot returns the current day and the calls used so far, for
// persisting back into the checkpoint.
func (b *DailyBudget) Snapshot() (day string, used int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rollover()
	return b.day, b.used
}

// rollover resets the counter on a date change. Must be called with mu held.
func (b *DailyBudget) rollover() {
	today := time.Now().Format("2006-01-02")
	if b.day != today {
		b.day = today
		b.used = 0
	}
}
