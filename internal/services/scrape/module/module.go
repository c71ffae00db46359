// Package module wires the scrape service and exposes its ports
package module

import (
	"context"
	"time"

	"starwatch/internal/adapters/github"
	"starwatch/internal/core/apicache"
	"starwatch/internal/core/ratelimit"
	"starwatch/internal/modkit"
	"starwatch/internal/platform/logger"
	"starwatch/internal/services/scrape/repo"
	"starwatch/internal/services/scrape/service"
)

// Module defines the scrape module
type Module struct {
	deps  modkit.Deps
	opts  Options
	ports Ports

	client *github.Client
	cache  *apicache.Memory
}

// New constructs the scrape module with its ports
// Defaults come from config; non-zero overrides (usually CLI flags) win
func New(deps modkit.Deps, overrides Options) *Module {
	opts := FromConfig(deps.Cfg)
	if overrides.Qty != 0 {
		opts.Qty = overrides.Qty
	}
	if overrides.Limit != 0 {
		opts.Limit = overrides.Limit
	}
	if overrides.BatchSize != 0 {
		opts.BatchSize = overrides.BatchSize
	}
	if overrides.Token != "" {
		opts.Token = overrides.Token
	}
	if overrides.BaseURL != "" {
		opts.BaseURL = overrides.BaseURL
	}

	limits := buildLimits(opts)
	cache := apicache.NewMemory(opts.CacheMaxLen)

	client := github.NewClient(github.Options{
		BaseURL:      opts.BaseURL,
		Token:        opts.Token,
		Timeout:      opts.Timeout,
		MaxRetries:   opts.MaxRetries,
		WaitResetMax: opts.WaitResetMax,
		CacheTTL:     opts.CacheTTL,
	}, limits, cache)

	scraper := service.New(client, service.Config{
		Timezone:       opts.Timezone,
		MaxCommitPages: opts.MaxCommitPages,
	})
	storage := repo.NewCH(deps.CH, opts.BatchSize)

	m := &Module{
		deps:   deps,
		opts:   opts,
		client: client,
		cache:  cache,
	}
	m.ports = Ports{
		Scraper: scraper,
		Storage: storage,
		Runner:  service.NewRunner(scraper, storage),
	}
	return m
}

// buildLimits assembles the limiter registry: one hourly budget with a
// concurrency cap shared by all requests, plus a tighter search window
func buildLimits(opts Options) ratelimit.Resolver {
	hourly, err := ratelimit.NewSlidingWindow("github_hourly",
		ratelimit.Concurrency(opts.MaxConcurrent, opts.MaxRequestsPerHour, time.Hour))
	if err != nil {
		logger.Get().Panic().Err(err).Msg("bad hourly rate limit config")
	}
	search, err := ratelimit.NewSlidingWindow("github_search",
		ratelimit.PerWindow(opts.SearchMaxRequests, opts.SearchWindow))
	if err != nil {
		logger.Get().Panic().Err(err).Msg("bad search rate limit config")
	}
	return ratelimit.NewRegistry(hourly).Bind(github.ResourceSearch, search)
}

// Name returns the module name
func (m *Module) Name() string { return "scrape" }

// Ports returns the module ports
func (m *Module) Ports() Ports { return m.ports }

// Options returns the effective options after config and overrides
func (m *Module) Options() Options { return m.opts }

// Close releases the client transport and cache
// The clickhouse seam is owned by the caller's store
func (m *Module) Close(context.Context) error {
	if m.client != nil {
		m.client.Close()
	}
	if m.cache != nil {
		m.cache.Close()
	}
	return nil
}
