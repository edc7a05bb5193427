// Package collector performs the per-source data collection with retry,
// backoff, and deterministic mock fallback. A collector always produces a
// structured result for its source; only context cancellation surfaces as
// an error to the caller.
package collector

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jonathan/brand-intel/internal/fetch"
	"github.com/jonathan/brand-intel/internal/metrics"
	"github.com/jonathan/brand-intel/internal/ratelimit"
	"github.com/jonathan/brand-intel/internal/types"
)

// DefaultMaxRetries is the number of network attempts before falling back.
const DefaultMaxRetries = 3

// DefaultBackoffBase scales all backoff sleeps. Rate-limited attempts wait
// base×2^attempt; timeouts and other transient errors wait one base unit.
const DefaultBackoffBase = time.Second

// Fallback reasons recorded on mock results.
const (
	ReasonTLSFailure       = "tls_failure"
	ReasonRetriesExhausted = "retries_exhausted"
)

// Config holds collector behavior knobs.
type Config struct {
	MaxRetries     int
	AttemptTimeout time.Duration
	BackoffBase    time.Duration
	UserAgent      string
	// Endpoints maps each source to a URL template with two %s verbs:
	// subject id and area id. An empty template means the source relies on
	// search discovery.
	Endpoints map[types.DataSource]string
	// UseBrowser enables headless rendering for JS-heavy brand sites.
	UseBrowser bool
	Verbose    bool
}

func (c Config) withDefaults() Config {
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.AttemptTimeout <= 0 {
		c.AttemptTimeout = fetch.DefaultTimeout
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = DefaultBackoffBase
	}
	return c
}

// Collector fans a single (source, subject, area) request into up to
// MaxRetries network attempts.
type Collector struct {
	cfg        Config
	limiter    *ratelimit.Limiter
	discoverer *Discoverer
}

// New creates a Collector. limiter may be nil to disable outbound
// throttling; discoverer may be nil to disable search discovery.
func New(cfg Config, limiter *ratelimit.Limiter, discoverer *Discoverer) *Collector {
	if limiter == nil {
		limiter = ratelimit.NewLimiter(&ratelimit.Config{Enabled: false})
	}
	return &Collector{
		cfg:        cfg.withDefaults(),
		limiter:    limiter,
		discoverer: discoverer,
	}
}

// Collect gathers data for one source. It retries transient failures with
// backoff and degrades to the deterministic mock fallback rather than
// returning an error; the only error returned is context cancellation.
func (c *Collector) Collect(ctx context.Context, source types.DataSource, subjectID, areaID string) (*types.SourceResult, error) {
	fetchOnce, err := c.fetchFor(source)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !c.limiter.Allow(source) {
			// Local throttle: treat like an upstream 429.
			if c.cfg.Verbose {
				log.Printf("[collector] %s/%s throttled locally, attempt %d", source, subjectID, attempt+1)
			}
			if err := c.sleep(ctx, c.backoffFor(fetch.KindRateLimited, attempt)); err != nil {
				return nil, err
			}
			continue
		}

		metrics.CollectorAttempts.WithLabelValues(string(source)).Inc()
		result, err := fetchOnce(ctx, subjectID, areaID)
		if err == nil {
			result.Source = source
			result.CollectedAt = time.Now().UTC()
			return result, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err

		kind := fetch.KindOf(err)
		if kind == fetch.KindTLS {
			// Certificate trust failures never recover by retrying; serve
			// the mock immediately so the pipeline keeps moving.
			log.Printf("[collector] %s/%s: TLS failure, serving fallback: %v", source, subjectID, err)
			return c.fallback(source, ReasonTLSFailure), nil
		}

		log.Printf("[collector] %s/%s attempt %d/%d failed: %v", source, subjectID, attempt+1, c.cfg.MaxRetries, err)
		if attempt+1 < c.cfg.MaxRetries {
			if err := c.sleep(ctx, c.backoffFor(kind, attempt)); err != nil {
				return nil, err
			}
		}
	}

	log.Printf("[collector] %s/%s exhausted %d attempts, serving fallback: %v", source, subjectID, c.cfg.MaxRetries, lastErr)
	return c.fallback(source, ReasonRetriesExhausted), nil
}

func (c *Collector) fallback(source types.DataSource, reason string) *types.SourceResult {
	metrics.CollectorFallbacks.WithLabelValues(string(source), reason).Inc()
	result := MockResult(source)
	result.FallbackReason = reason
	result.CollectedAt = time.Now().UTC()
	return result
}

// backoffFor returns the sleep before the next attempt: exponential for
// rate limiting, one base unit for everything else.
func (c *Collector) backoffFor(kind fetch.ErrorKind, attempt int) time.Duration {
	if kind == fetch.KindRateLimited {
		return c.cfg.BackoffBase * (1 << attempt)
	}
	return c.cfg.BackoffBase
}

func (c *Collector) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type fetchFunc func(ctx context.Context, subjectID, areaID string) (*types.SourceResult, error)

func (c *Collector) fetchFor(source types.DataSource) (fetchFunc, error) {
	switch source {
	case types.SourceNews:
		return c.fetchNews, nil
	case types.SourceSocialMedia:
		return c.fetchSocial, nil
	case types.SourceGlassdoor:
		return c.fetchGlassdoor, nil
	case types.SourceWebsite:
		return c.fetchWebsite, nil
	}
	return nil, fmt.Errorf("no collector for source %q", source)
}

func (c *Collector) fetchOptions() *fetch.Options {
	return &fetch.Options{
		Timeout:   c.cfg.AttemptTimeout,
		UserAgent: c.cfg.UserAgent,
	}
}
