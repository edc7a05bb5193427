// Package ratelimit provides token-bucket rate limiting for outbound
// collector attempts, keyed by data source class.
package ratelimit

import (
	"sync"
	"time"

	"github.com/jonathan/brand-intel/internal/types"
)

// TokenBucket represents a token bucket rate limiter.
// It allows a certain number of requests (tokens) per time window,
// with tokens refilling at a steady rate.
type TokenBucket struct {
	capacity   int     // Maximum tokens (burst capacity)
	refillRate float64 // Tokens per second
	tokens     float64 // Current tokens available
	lastRefill time.Time
	mu         sync.Mutex
}

func newTokenBucket(capacity int, refillRate float64) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		refillRate: refillRate,
		tokens:     float64(capacity), // Start with full bucket
		lastRefill: time.Now(),
	}
}

// allow checks if a token is available and consumes it if so.
func (tb *TokenBucket) allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill)
	tokensToAdd := elapsed.Seconds() * tb.refillRate

	tb.tokens = min(float64(tb.capacity), tb.tokens+tokensToAdd)
	tb.lastRefill = now

	if tb.tokens >= 1.0 {
		tb.tokens -= 1.0
		return true
	}

	return false
}

// ClassConfig holds the bucket parameters for one rate-limit class.
type ClassConfig struct {
	Limit  int
	Window time.Duration
	Burst  int
}

// Config holds rate limiting configuration for both source classes.
// News and social media share the fast class; employer reviews and website
// analysis share the slow class.
type Config struct {
	Enabled bool
	Fast    ClassConfig
	Slow    ClassConfig
}

// DefaultConfig returns the standard per-class limits.
func DefaultConfig() *Config {
	return &Config{
		Enabled: true,
		Fast:    ClassConfig{Limit: 30, Window: time.Minute, Burst: 10},
		Slow:    ClassConfig{Limit: 10, Window: time.Minute, Burst: 5},
	}
}

// Limiter manages one token bucket per data source.
type Limiter struct {
	buckets map[types.DataSource]*TokenBucket
	mu      sync.RWMutex
	config  *Config
}

// NewLimiter creates a new rate limiter with the given configuration.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = DefaultConfig()
	}
	return &Limiter{
		buckets: make(map[types.DataSource]*TokenBucket),
		config:  config,
	}
}

// Allow checks whether an outbound attempt for the source may proceed.
// A denial is handled by the collector like an upstream 429.
func (l *Limiter) Allow(source types.DataSource) bool {
	if !l.config.Enabled {
		return true
	}
	return l.getBucket(source).allow()
}

func (l *Limiter) classFor(source types.DataSource) ClassConfig {
	if source.FastChanging() {
		return l.config.Fast
	}
	return l.config.Slow
}

func (l *Limiter) getBucket(source types.DataSource) *TokenBucket {
	l.mu.RLock()
	bucket, exists := l.buckets[source]
	l.mu.RUnlock()

	if exists {
		return bucket
	}

	cfg := l.classFor(source)
	refillRate := float64(cfg.Limit) / cfg.Window.Seconds()
	capacity := cfg.Burst
	if capacity <= 0 {
		capacity = cfg.Limit
	}

	bucket = newTokenBucket(capacity, refillRate)

	l.mu.Lock()
	// Double-check after acquiring write lock
	if existing, exists := l.buckets[source]; exists {
		l.mu.Unlock()
		return existing
	}
	l.buckets[source] = bucket
	l.mu.Unlock()

	return bucket
}
