package domain

import "context"

// ScraperPort collects the top repositories with today's commit activity
// qty is how many repositories to collect, limit the search page size
type ScraperPort interface {
	Scrape(ctx context.Context, qty, limit int) ([]Repository, error)
}

// StoragePort persists repository snapshots
type StoragePort interface {
	SaveRepositories(ctx context.Context, repos []Repository) error
	Close(ctx context.Context) error
}

// RunnerPort executes one scrape-and-persist cycle
type RunnerPort interface {
	Run(ctx context.Context, qty, limit int) error
}
