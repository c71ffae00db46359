package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"starwatch/internal/adapters/github"
	perr "starwatch/internal/platform/errors"
	"starwatch/internal/services/scrape/domain"
)

type searchCall struct{ page, perPage int }

type fakeAPI struct {
	mu          sync.Mutex
	searchCalls []searchCall
	sinceSeen   []time.Time

	searchFn  func(page, perPage int) (github.SearchResult, error)
	commitsFn func(owner, repo string, page, perPage int, since time.Time) ([]github.Commit, error)
}

func (f *fakeAPI) SearchRepositories(_ context.Context, page, perPage int) (github.SearchResult, error) {
	f.mu.Lock()
	f.searchCalls = append(f.searchCalls, searchCall{page, perPage})
	f.mu.Unlock()
	if f.searchFn == nil {
		return github.SearchResult{}, nil
	}
	return f.searchFn(page, perPage)
}

func (f *fakeAPI) ListCommits(_ context.Context, owner, repo string, page, perPage int, since time.Time) ([]github.Commit, error) {
	f.mu.Lock()
	f.sinceSeen = append(f.sinceSeen, since)
	f.mu.Unlock()
	if f.commitsFn == nil {
		return nil, nil
	}
	return f.commitsFn(owner, repo, page, perPage, since)
}

func lang(s string) *string { return &s }

func pageOfItems(page, n int) github.SearchResult {
	items := make([]github.RepoItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, github.RepoItem{
			Name:            fmt.Sprintf("repo-p%d-%d", page, i),
			Owner:           github.Owner{Login: "owner"},
			StargazersCount: int64(1000 - i),
			Language:        lang("Go"),
		})
	}
	return github.SearchResult{Items: items}
}

func TestScrapePaginationAndPositions(t *testing.T) {
	api := &fakeAPI{
		searchFn: func(page, perPage int) (github.SearchResult, error) {
			return pageOfItems(page, perPage), nil
		},
	}
	s := New(api, Config{Timezone: "UTC"})

	repos, err := s.Scrape(context.Background(), 250, 100)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	if len(repos) != 250 {
		t.Fatalf("got %d repos", len(repos))
	}

	// three pages: two full, one partial
	want := map[searchCall]bool{
		{1, 100}: true,
		{2, 100}: true,
		{3, 50}:  true,
	}
	if len(api.searchCalls) != 3 {
		t.Fatalf("search calls = %v", api.searchCalls)
	}
	for _, c := range api.searchCalls {
		if !want[c] {
			t.Fatalf("unexpected search call %+v", c)
		}
	}

	// positions restart on every page
	if repos[0].Position != 0 || repos[99].Position != 99 {
		t.Fatalf("page 1 positions wrong: %d %d", repos[0].Position, repos[99].Position)
	}
	if repos[100].Position != 0 || repos[100].Name != "repo-p2-0" {
		t.Fatalf("page 2 start = %+v", repos[100])
	}
	if repos[249].Position != 49 || repos[249].Name != "repo-p3-49" {
		t.Fatalf("last repo = %+v", repos[249])
	}
}

func TestScrapeClampsOversizedArguments(t *testing.T) {
	api := &fakeAPI{
		searchFn: func(page, perPage int) (github.SearchResult, error) {
			return pageOfItems(page, perPage), nil
		},
	}
	s := New(api, Config{MaxQty: 50, MaxLimit: 10, Timezone: "UTC"})

	repos, err := s.Scrape(context.Background(), 500, 100)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	if len(repos) != 50 {
		t.Fatalf("got %d repos, want clamped 50", len(repos))
	}
	for _, c := range api.searchCalls {
		if c.perPage > 10 {
			t.Fatalf("page size not clamped: %+v", c)
		}
	}
}

func TestScrapeRejectsNonPositiveArguments(t *testing.T) {
	s := New(&fakeAPI{}, Config{Timezone: "UTC"})
	for _, args := range [][2]int{{-1, 10}, {10, -5}, {0, 10}, {10, 0}} {
		_, err := s.Scrape(context.Background(), args[0], args[1])
		if got := perr.CodeOf(err); got != perr.ErrorCodeInvalidArgument {
			t.Fatalf("Scrape(%d, %d) code = %v", args[0], args[1], got)
		}
	}
}

func TestScrapeSkipsFailedPage(t *testing.T) {
	api := &fakeAPI{
		searchFn: func(page, perPage int) (github.SearchResult, error) {
			if page == 1 {
				return github.SearchResult{}, errors.New("page exploded")
			}
			return pageOfItems(page, perPage), nil
		},
	}
	s := New(api, Config{Timezone: "UTC"})

	repos, err := s.Scrape(context.Background(), 20, 10)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	if len(repos) != 10 || repos[0].Name != "repo-p2-0" {
		t.Fatalf("repos = %d, first %q", len(repos), repos[0].Name)
	}
}

func TestScrapeAllPagesFailedYieldsEmptySnapshot(t *testing.T) {
	api := &fakeAPI{
		searchFn: func(int, int) (github.SearchResult, error) {
			return github.SearchResult{}, errors.New("down")
		},
	}
	s := New(api, Config{Timezone: "UTC"})
	repos, err := s.Scrape(context.Background(), 20, 10)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	if len(repos) != 0 {
		t.Fatalf("repos = %+v", repos)
	}
	if len(api.sinceSeen) != 0 {
		t.Fatalf("commit fetches for an empty snapshot: %v", api.sinceSeen)
	}
}

func TestScrapeMissingLanguageDefaults(t *testing.T) {
	api := &fakeAPI{
		searchFn: func(page, perPage int) (github.SearchResult, error) {
			return github.SearchResult{Items: []github.RepoItem{
				{Name: "no-lang", Owner: github.Owner{Login: "o"}},
				{Name: "empty-lang", Owner: github.Owner{Login: "o"}, Language: lang("")},
			}}, nil
		},
	}
	s := New(api, Config{Timezone: "UTC"})
	repos, err := s.Scrape(context.Background(), 2, 2)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	for _, r := range repos {
		if r.Language != domain.UnknownLanguage {
			t.Fatalf("%s language = %q", r.Name, r.Language)
		}
	}
}

func commit(sha, author string) github.Commit {
	c := github.Commit{SHA: sha}
	if author != "" {
		c.Commit.Author = &github.CommitAuthor{Name: author}
	}
	return c
}

func TestCommitAggregationAcrossPages(t *testing.T) {
	api := &fakeAPI{
		searchFn: func(page, perPage int) (github.SearchResult, error) {
			return pageOfItems(page, 1), nil
		},
		commitsFn: func(_, _ string, page, perPage int, _ time.Time) ([]github.Commit, error) {
			switch page {
			case 1:
				// the authorless commit is skipped
				return []github.Commit{commit("a1", "alice"), commit("b1", "bob"), commit("x1", "")}, nil
			case 2:
				// a short page does not end the walk, only an empty one does
				return []github.Commit{commit("a2", "alice")}, nil
			case 3:
				return nil, nil
			default:
				t.Errorf("unexpected commit page %d", page)
				return nil, nil
			}
		},
	}
	s := New(api, Config{Timezone: "UTC", CommitPageSize: 3})

	repos, err := s.Scrape(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	got := repos[0].AuthorsCommitsToday
	want := []domain.RepositoryAuthorCommits{
		{Author: "alice", Commits: 2},
		{Author: "bob", Commits: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("authors = %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("authors[%d] = %+v want %+v", i, got[i], want[i])
		}
	}
}

func TestCommitFetchFailureDegradesToEmpty(t *testing.T) {
	api := &fakeAPI{
		searchFn: func(page, perPage int) (github.SearchResult, error) {
			return pageOfItems(page, 2), nil
		},
		commitsFn: func(_, repo string, page, _ int, _ time.Time) ([]github.Commit, error) {
			if repo == "repo-p1-0" {
				return nil, errors.New("commits broke")
			}
			if page > 1 {
				return nil, nil
			}
			return []github.Commit{commit("s", "alice")}, nil
		},
	}
	s := New(api, Config{Timezone: "UTC"})

	repos, err := s.Scrape(context.Background(), 2, 2)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	if len(repos[0].AuthorsCommitsToday) != 0 {
		t.Fatalf("failed repo should have no counts: %+v", repos[0].AuthorsCommitsToday)
	}
	if len(repos[1].AuthorsCommitsToday) != 1 {
		t.Fatalf("healthy repo lost counts: %+v", repos[1].AuthorsCommitsToday)
	}
}

func TestSinceIsStartOfTodayInConfiguredZone(t *testing.T) {
	api := &fakeAPI{
		searchFn: func(page, perPage int) (github.SearchResult, error) {
			return pageOfItems(page, 1), nil
		},
	}
	s := New(api, Config{Timezone: "UTC"})
	s.now = func() time.Time { return time.Date(2026, 8, 24, 17, 45, 12, 0, time.UTC) }

	if _, err := s.Scrape(context.Background(), 1, 1); err != nil {
		t.Fatalf("scrape: %v", err)
	}
	if len(api.sinceSeen) != 1 {
		t.Fatalf("since not captured: %v", api.sinceSeen)
	}
	want := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	if !api.sinceSeen[0].Equal(want) {
		t.Fatalf("since = %v want %v", api.sinceSeen[0], want)
	}
}

func TestBadTimezoneFallsBackToUTC(t *testing.T) {
	s := New(&fakeAPI{}, Config{Timezone: "Nowhere/Nope"})
	s.now = func() time.Time { return time.Date(2026, 8, 24, 3, 0, 0, 0, time.UTC) }
	got := s.startOfToday()
	want := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("startOfToday = %v want %v", got, want)
	}
}

type fakeScraper struct {
	repos []domain.Repository
	err   error
}

func (f *fakeScraper) Scrape(context.Context, int, int) ([]domain.Repository, error) {
	return f.repos, f.err
}

type fakeStorage struct {
	saved  []domain.Repository
	err    error
	closed bool
}

func (f *fakeStorage) SaveRepositories(_ context.Context, repos []domain.Repository) error {
	f.saved = repos
	return f.err
}
func (f *fakeStorage) Close(context.Context) error { f.closed = true; return nil }

func TestRunnerScrapesThenPersists(t *testing.T) {
	sc := &fakeScraper{repos: []domain.Repository{{Name: "go"}}}
	st := &fakeStorage{}
	r := NewRunner(sc, st)

	if err := r.Run(context.Background(), 10, 5); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(st.saved) != 1 || st.saved[0].Name != "go" {
		t.Fatalf("saved = %+v", st.saved)
	}
}

func TestRunnerPropagatesScrapeError(t *testing.T) {
	boom := errors.New("scrape failed")
	r := NewRunner(&fakeScraper{err: boom}, &fakeStorage{})
	if err := r.Run(context.Background(), 10, 5); !errors.Is(err, boom) {
		t.Fatalf("run = %v", err)
	}
}

func TestRunnerRequiresPorts(t *testing.T) {
	r0 := NewRunner(nil, &fakeStorage{})
	if got := perr.CodeOf(r0.Run(context.Background(), 1, 1)); got != perr.ErrorCodeNotInitialized {
		t.Fatalf("code = %v", got)
	}
	r := NewRunner(&fakeScraper{}, nil)
	if got := perr.CodeOf(r.Run(context.Background(), 1, 1)); got != perr.ErrorCodeNotInitialized {
		t.Fatalf("code = %v", got)
	}
}
