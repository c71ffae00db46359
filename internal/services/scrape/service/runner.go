package service

import (
	"context"

	perr "starwatch/internal/platform/errors"
	"starwatch/internal/platform/logger"
	"starwatch/internal/services/scrape/domain"
)

// Runner ties scraping to persistence for one cycle
type Runner struct {
	scraper domain.ScraperPort
	storage domain.StoragePort
	log     logger.Logger
}

// NewRunner builds a Runner over the given ports
func NewRunner(scraper domain.ScraperPort, storage domain.StoragePort) *Runner {
	return &Runner{
		scraper: scraper,
		storage: storage,
		log:     *logger.Named("scrape.runner"),
	}
}

var _ domain.RunnerPort = (*Runner)(nil)

// Run scrapes qty repositories at limit per page and persists the snapshots
func (r *Runner) Run(ctx context.Context, qty, limit int) error {
	if r.scraper == nil {
		return perr.NotInitializedf("scraper not configured")
	}
	if r.storage == nil {
		return perr.NotInitializedf("storage not configured")
	}

	repos, err := r.scraper.Scrape(ctx, qty, limit)
	if err != nil {
		return err
	}

	var commits int64
	for i := range repos {
		commits += repos[i].TotalCommitsToday()
	}
	r.log.Info().
		Int("repositories", len(repos)).
		Int64("commits_today", commits).
		Msg("scrape complete, persisting")

	return r.storage.SaveRepositories(ctx, repos)
}
