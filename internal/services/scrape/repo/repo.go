// Package repo persists repository snapshots to clickhouse
package repo

import (
	"context"
	"sync"
	"time"

	perr "starwatch/internal/platform/errors"
	"starwatch/internal/platform/logger"
	"starwatch/internal/platform/store"
	"starwatch/internal/services/scrape/domain"
)

// Snapshot tables
const (
	TableRepositories   = "repositories"
	TableAuthorsCommits = "repositories_authors_commits"
	TablePositions      = "repositories_positions"
)

const defaultBatchSize = 1000

var (
	repoColumns    = []string{"name", "owner", "stars", "watchers", "forks", "language", "updated"}
	authorsColumns = []string{"repository", "author", "commits"}
	posColumns     = []string{"repository", "position", "language"}
)

// CH writes snapshots into the three clickhouse tables
type CH struct {
	ch        store.Clickhouse
	log       logger.Logger
	batchSize int

	now func() time.Time
}

// NewCH builds the writer; batchSize <= 0 selects the default
func NewCH(chSeam store.Clickhouse, batchSize int) *CH {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &CH{
		ch:        chSeam,
		log:       *logger.Named("scrape.repo"),
		batchSize: batchSize,
		now:       time.Now,
	}
}

var _ domain.StoragePort = (*CH)(nil)

// SaveRepositories writes the three table projections concurrently
// Every failure is logged; the first one, in table order, is returned
func (r *CH) SaveRepositories(ctx context.Context, repos []domain.Repository) error {
	if r.ch == nil {
		return perr.NotInitializedf("clickhouse not configured")
	}

	// one snapshot timestamp shared by every repositories row
	updated := r.now()

	saves := []struct {
		table   string
		columns []string
		rows    [][]any
	}{
		{TableRepositories, repoColumns, repositoryRows(repos, updated)},
		{TableAuthorsCommits, authorsColumns, authorRows(repos)},
		{TablePositions, posColumns, positionRows(repos)},
	}

	errs := make([]error, len(saves))
	var wg sync.WaitGroup
	for i, sv := range saves {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := r.insertBatched(ctx, sv.table, sv.columns, sv.rows); err != nil {
				r.log.Error().Err(err).Str("table", sv.table).Int("rows", len(sv.rows)).Msg("snapshot save failed")
				errs[i] = perr.Wrapf(err, perr.ErrorCodeDB, "save %s failed", sv.table)
			}
		}()
	}
	wg.Wait()

	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	r.log.Info().Int("repositories", len(repos)).Msg("snapshot saved")
	return nil
}

// Close releases the clickhouse seam
func (r *CH) Close(context.Context) error {
	if r.ch == nil {
		return nil
	}
	return r.ch.Close()
}

// insertBatched writes rows in batchSize chunks
func (r *CH) insertBatched(ctx context.Context, table string, columns []string, rows [][]any) error {
	for start := 0; start < len(rows); start += r.batchSize {
		end := start + r.batchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := r.ch.Insert(ctx, table, columns, rows[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func repositoryRows(repos []domain.Repository, updated time.Time) [][]any {
	out := make([][]any, 0, len(repos))
	for i := range repos {
		r := &repos[i]
		out = append(out, []any{r.Name, r.Owner, r.Stars, r.Watchers, r.Forks, r.Language, updated})
	}
	return out
}

func authorRows(repos []domain.Repository) [][]any {
	var out [][]any
	for i := range repos {
		r := &repos[i]
		for _, ac := range r.AuthorsCommitsToday {
			out = append(out, []any{r.Name, ac.Author, ac.Commits})
		}
	}
	return out
}

func positionRows(repos []domain.Repository) [][]any {
	out := make([][]any, 0, len(repos))
	for i := range repos {
		r := &repos[i]
		out = append(out, []any{r.Name, int64(r.Position), r.Language})
	}
	return out
}
