// Package runner fans out the per-source collectors for one subject and
// assembles the results into a BrandData snapshot, consulting the TTL cache
// before every network call.
package runner

import (
	"context"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/brand-intel/internal/cache"
	"github.com/jonathan/brand-intel/internal/metrics"
	"github.com/jonathan/brand-intel/internal/types"
)

// DefaultConcurrency bounds the per-subject collector fan-out.
const DefaultConcurrency = 4

// SourceCollector gathers one source for one subject.
type SourceCollector interface {
	Collect(ctx context.Context, source types.DataSource, subjectID, areaID string) (*types.SourceResult, error)
}

// Runner coordinates cached, concurrent collection for a single subject.
type Runner struct {
	collector   SourceCollector
	cache       *cache.Cache
	concurrency int
}

// New creates a Runner. cache may be nil to disable caching.
func New(collector SourceCollector, c *cache.Cache, concurrency int) *Runner {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Runner{collector: collector, cache: c, concurrency: concurrency}
}

// CollectAll gathers every requested source for the subject, concurrently up
// to the configured limit. onProgress fires once per completed source. Per-
// source degradation is absorbed by the collector; only cancellation or an
// orchestration fault surfaces as an error.
func (r *Runner) CollectAll(ctx context.Context, subjectID, areaID string, sources []types.DataSource, onProgress func(types.DataSource)) (*types.BrandData, error) {
	data := &types.BrandData{SubjectID: subjectID}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for _, source := range sources {
		g.Go(func() error {
			result, err := r.collectOne(gctx, source, subjectID, areaID)
			if err != nil {
				return err
			}

			mu.Lock()
			data.Apply(result)
			mu.Unlock()

			if onProgress != nil {
				onProgress(source)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("collection for %s aborted: %w", subjectID, err)
	}
	return data, nil
}

func (r *Runner) collectOne(ctx context.Context, source types.DataSource, subjectID, areaID string) (*types.SourceResult, error) {
	if r.cache != nil {
		if cached, ok := r.cache.Get(subjectID, areaID, source); ok {
			metrics.CacheHits.WithLabelValues(string(source)).Inc()
			log.Printf("[runner] cache hit for %s/%s/%s", subjectID, areaID, source)
			return cached, nil
		}
		metrics.CacheMisses.WithLabelValues(string(source)).Inc()
	}

	result, err := r.collector.Collect(ctx, source, subjectID, areaID)
	if err != nil {
		return nil, err
	}
	if r.cache != nil {
		r.cache.Put(subjectID, areaID, source, result)
	}
	return result, nil
}
