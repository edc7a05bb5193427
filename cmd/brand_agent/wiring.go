package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jonathan/brand-intel/internal/cache"
	"github.com/jonathan/brand-intel/internal/collector"
	"github.com/jonathan/brand-intel/internal/config"
	"github.com/jonathan/brand-intel/internal/manager"
	"github.com/jonathan/brand-intel/internal/ratelimit"
	"github.com/jonathan/brand-intel/internal/runner"
	"github.com/jonathan/brand-intel/internal/store"
)

// loadConfig reads the optional config file, layers env values and defaults,
// and validates the result.
func loadConfig(path string) (*config.Config, error) {
	cfg := &config.Config{}
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.FromEnv()
	merged := cfg.MergeWithDefaults(config.DefaultConfig())
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// buildManager assembles the collection stack from configuration. The
// returned cleanup closes the database pool when one was opened.
func buildManager(ctx context.Context, cfg *config.Config) (*manager.Manager, *cache.Cache, func(), error) {
	var jobStore store.Store
	cleanup := func() {}
	if cfg.DatabaseURL != "" {
		pg, err := store.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		jobStore = pg
		cleanup = pg.Close
	} else {
		log.Println("DATABASE_URL not set, using in-memory job store")
		jobStore = store.NewMemory()
	}

	var discoverer *collector.Discoverer
	if cfg.SearchAPIKey != "" && cfg.SearchCX != "" {
		d, err := collector.NewDiscoverer(ctx, cfg.SearchAPIKey, cfg.SearchCX)
		if err != nil {
			cleanup()
			return nil, nil, nil, err
		}
		discoverer = d
	}

	col := collector.New(collector.Config{
		MaxRetries:     cfg.MaxRetries,
		AttemptTimeout: cfg.Timeout(),
		BackoffBase:    cfg.Backoff(),
		Endpoints:      cfg.EndpointMap(),
		UseBrowser:     cfg.UseBrowser,
		Verbose:        cfg.Verbose,
	}, ratelimit.NewLimiter(ratelimit.DefaultConfig()), discoverer)

	resultCache := cache.New(cache.Options{})
	resultCache.StartSweeper(ctx, cfg.SweepInterval())

	run := runner.New(col, resultCache, cfg.Concurrency)
	m := manager.New(jobStore, run, manager.Config{
		AllowedSources: cfg.AllowedDataSources(),
		SourceTimeout:  cfg.Timeout(),
	})

	return m, resultCache, cleanup, nil
}
