// Package cache provides the TTL-based result cache consulted before any
// collector is invoked. News and social entries expire fast; employer
// reviews and website analyses live longer.
package cache

import (
	"context"
	"fmt"
	"hash/fnv"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/jonathan/brand-intel/internal/types"
)

// Default TTL classes. News and social data changes materially within
// minutes; employer reviews and website structure change slowly.
const (
	DefaultFastTTL = 15 * time.Minute
	DefaultSlowTTL = 30 * time.Minute
)

type entry struct {
	subjectID string
	areaID    string
	source    types.DataSource
	value     *types.SourceResult
	storedAt  time.Time
}

// Options configures a Cache.
type Options struct {
	FastTTL time.Duration
	SlowTTL time.Duration
}

// Cache is a mutex-guarded key→(value, timestamp) store with per-source
// TTL classes. The lock is held only for map access, never across a
// network call.
type Cache struct {
	mu      sync.Mutex
	entries map[uint64]entry
	fastTTL time.Duration
	slowTTL time.Duration
}

// Stats describes the cache contents at one instant.
type Stats struct {
	TotalEntries      int                      `json:"total_entries"`
	ActiveEntries     int                      `json:"active_entries"`
	ExpiredEntries    int                      `json:"expired_entries"`
	PerSource         map[types.DataSource]int `json:"per_source"`
	EfficiencyPercent float64                  `json:"efficiency_percent"`
}

// New creates a Cache. Zero option fields fall back to the defaults.
func New(opts Options) *Cache {
	if opts.FastTTL == 0 {
		opts.FastTTL = DefaultFastTTL
	}
	if opts.SlowTTL == 0 {
		opts.SlowTTL = DefaultSlowTTL
	}
	return &Cache{
		entries: make(map[uint64]entry),
		fastTTL: opts.FastTTL,
		slowTTL: opts.SlowTTL,
	}
}

// TTLFor returns the TTL class for a source.
func (c *Cache) TTLFor(source types.DataSource) time.Duration {
	if source.FastChanging() {
		return c.fastTTL
	}
	return c.slowTTL
}

func key(subjectID, areaID string, source types.DataSource) uint64 {
	h := fnv.New64a()
	_, _ = fmt.Fprintf(h, "%s|%s|%s", strings.ToLower(subjectID), areaID, source)
	return h.Sum64()
}

// Get returns the cached result for the key, or nil if absent or expired.
// An expired hit is evicted as a side effect of the lookup.
func (c *Cache) Get(subjectID, areaID string, source types.DataSource) (*types.SourceResult, bool) {
	k := key(subjectID, areaID, source)

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[k]
	if !ok {
		return nil, false
	}
	if time.Since(e.storedAt) > c.TTLFor(source) {
		delete(c.entries, k)
		return nil, false
	}
	return e.value, true
}

// Put stores a fresh result, unconditionally overwriting any entry under
// the same key.
func (c *Cache) Put(subjectID, areaID string, source types.DataSource, value *types.SourceResult) {
	k := key(subjectID, areaID, source)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[k] = entry{
		subjectID: subjectID,
		areaID:    areaID,
		source:    source,
		value:     value,
		storedAt:  time.Now(),
	}
}

// Invalidate removes every entry whose subject matches, case-insensitively,
// regardless of area or source. Returns the number removed.
func (c *Cache) Invalidate(subjectID string) int {
	want := strings.ToLower(subjectID)

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, e := range c.entries {
		if strings.ToLower(e.subjectID) == want {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Sweep proactively evicts every expired entry and returns the count
// removed. Safe to call on a schedule independent of lookups.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, e := range c.entries {
		if time.Since(e.storedAt) > c.TTLFor(e.source) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Stats reports entry counts and cache efficiency (active/total).
// An empty cache reports 100% efficiency.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Stats{
		PerSource:         make(map[types.DataSource]int),
		EfficiencyPercent: 100,
	}
	for _, e := range c.entries {
		stats.TotalEntries++
		stats.PerSource[e.source]++
		if time.Since(e.storedAt) > c.TTLFor(e.source) {
			stats.ExpiredEntries++
		} else {
			stats.ActiveEntries++
		}
	}
	if stats.TotalEntries > 0 {
		stats.EfficiencyPercent = float64(stats.ActiveEntries) / float64(stats.TotalEntries) * 100
	}
	return stats
}

// StartSweeper runs Sweep on the given interval until the context is
// cancelled.
func (c *Cache) StartSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if removed := c.Sweep(); removed > 0 {
					log.Printf("[cache] sweep evicted %d expired entries", removed)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
