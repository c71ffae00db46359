// Package service implements the repository scraping workflow
package service

import (
	"context"
	"net/http"
	"time"

	"starwatch/internal/adapters/github"
	perr "starwatch/internal/platform/errors"
	"starwatch/internal/platform/logger"
	"starwatch/internal/services/scrape/domain"

	"golang.org/x/sync/errgroup"
)

// apiClient is the slice of the github client the scraper needs
type apiClient interface {
	SearchRepositories(ctx context.Context, page, perPage int) (github.SearchResult, error)
	ListCommits(ctx context.Context, owner, repo string, page, perPage int, since time.Time) ([]github.Commit, error)
}

// Config tunes the scraping workflow
type Config struct {
	// MaxQty caps how many repositories one scrape may collect
	MaxQty int

	// MaxLimit caps the search page size
	MaxLimit int

	// Timezone anchors the start-of-today cutoff for commit activity
	Timezone string

	// CommitPageSize is the per_page used when walking commit pages
	CommitPageSize int

	// MaxCommitPages bounds the commit walk per repository
	MaxCommitPages int
}

const (
	defaultMaxQty         = 1000
	defaultMaxLimit       = 100
	defaultTimezone       = "Europe/Moscow"
	defaultCommitPageSize = 100
	defaultMaxCommitPages = 100
)

// Service collects top repositories and their commit activity for today
type Service struct {
	api apiClient
	cfg Config
	log logger.Logger

	// seam for tests
	now func() time.Time
}

// New builds the scraper service with defaults filled in
func New(api apiClient, cfg Config) *Service {
	if cfg.MaxQty <= 0 {
		cfg.MaxQty = defaultMaxQty
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = defaultMaxLimit
	}
	if cfg.Timezone == "" {
		cfg.Timezone = defaultTimezone
	}
	if cfg.CommitPageSize <= 0 {
		cfg.CommitPageSize = defaultCommitPageSize
	}
	if cfg.MaxCommitPages <= 0 {
		cfg.MaxCommitPages = defaultMaxCommitPages
	}
	return &Service{
		api: api,
		cfg: cfg,
		log: *logger.Named("scrape"),
		now: time.Now,
	}
}

var _ domain.ScraperPort = (*Service)(nil)

// Scrape fetches qty repositories ordered by stars, limit per search page,
// and enriches each with per-author commit counts since start of today
func (s *Service) Scrape(ctx context.Context, qty, limit int) ([]domain.Repository, error) {
	qty, err := s.clamp("qty", qty, s.cfg.MaxQty)
	if err != nil {
		return nil, err
	}
	limit, err = s.clamp("limit", limit, s.cfg.MaxLimit)
	if err != nil {
		return nil, err
	}

	repos, err := s.searchTop(ctx, qty, limit)
	if err != nil {
		return nil, err
	}

	since := s.startOfToday()
	s.log.Info().
		Int("repositories", len(repos)).
		Time("since", since).
		Msg("collecting commit activity")

	g, gctx := errgroup.WithContext(ctx)
	for i := range repos {
		g.Go(func() error {
			s.collectCommits(gctx, &repos[i], since)
			return nil
		})
	}
	_ = g.Wait()

	return repos, nil
}

// clamp validates an argument: negatives and zero are rejected, values over
// max are clamped with a warning
func (s *Service) clamp(name string, v, max int) (int, error) {
	if v <= 0 {
		return 0, perr.InvalidArgf("%s must be positive, got %d", name, v)
	}
	if v > max {
		s.log.Warn().Str("arg", name).Int("value", v).Int("max", max).Msg("argument over maximum, clamping")
		return max, nil
	}
	return v, nil
}

// searchTop fans out over search pages concurrently; a failed page is logged
// and skipped so one bad page does not sink the run
func (s *Service) searchTop(ctx context.Context, qty, limit int) ([]domain.Repository, error) {
	pages := (qty + limit - 1) / limit
	pageItems := make([][]github.RepoItem, pages)

	g, gctx := errgroup.WithContext(ctx)
	for p := 1; p <= pages; p++ {
		g.Go(func() error {
			perPage := limit
			if rem := qty - (p-1)*limit; rem < perPage {
				perPage = rem
			}
			res, err := s.api.SearchRepositories(gctx, p, perPage)
			if err != nil {
				s.log.Warn().Err(err).Int("page", p).Msg("search page failed, skipping")
				return nil
			}
			pageItems[p-1] = res.Items
			return nil
		})
	}
	_ = g.Wait()

	var repos []domain.Repository
	for _, items := range pageItems {
		for i, it := range items {
			lang := domain.UnknownLanguage
			if it.Language != nil && *it.Language != "" {
				lang = *it.Language
			}
			repos = append(repos, domain.Repository{
				Name:     it.Name,
				Owner:    it.Owner.Login,
				Position: i,
				Stars:    it.StargazersCount,
				Watchers: it.WatchersCount,
				Forks:    it.ForksCount,
				Language: lang,
			})
		}
	}
	return repos, nil
}

// collectCommits walks the commit pages for one repository and folds the
// per-author counts into it; failures degrade to an empty count
func (s *Service) collectCommits(ctx context.Context, r *domain.Repository, since time.Time) {
	for page := 1; page <= s.cfg.MaxCommitPages; page++ {
		commits, err := s.api.ListCommits(ctx, r.Owner, r.Name, page, s.cfg.CommitPageSize, since)
		if err != nil {
			// empty repositories answer 409, vanished ones 404
			if st, ok := github.StatusOf(err); ok && (st == http.StatusConflict || st == http.StatusNotFound) {
				s.log.Debug().Err(err).Str("repo", r.FullName()).Msg("no commit history available")
			} else {
				s.log.Warn().Err(err).Str("repo", r.FullName()).Int("page", page).Msg("commit fetch failed")
			}
			return
		}
		if len(commits) == 0 {
			return
		}
		r.AddCommits(s.aggregate(r, commits))
	}
}

// aggregate folds raw commits into per-author counts, preserving first-seen
// author order; commits without an author are skipped
func (s *Service) aggregate(r *domain.Repository, commits []github.Commit) []domain.RepositoryAuthorCommits {
	var (
		out []domain.RepositoryAuthorCommits
		idx = make(map[string]int)
	)
	for _, cm := range commits {
		if cm.Commit.Author == nil || cm.Commit.Author.Name == "" {
			s.log.Warn().Str("repo", r.FullName()).Str("sha", cm.SHA).Msg("commit has no author, skipping")
			continue
		}
		name := cm.Commit.Author.Name
		if i, ok := idx[name]; ok {
			out[i].Commits++
			continue
		}
		idx[name] = len(out)
		out = append(out, domain.RepositoryAuthorCommits{Author: name, Commits: 1})
	}
	return out
}

// startOfToday returns midnight of the current day in the configured zone
func (s *Service) startOfToday() time.Time {
	loc, err := time.LoadLocation(s.cfg.Timezone)
	if err != nil {
		s.log.Warn().Err(err).Str("tz", s.cfg.Timezone).Msg("bad timezone, falling back to UTC")
		loc = time.UTC
	}
	n := s.now().In(loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, loc)
}
