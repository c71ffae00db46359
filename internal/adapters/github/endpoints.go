package github

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	perr "starwatch/internal/platform/errors"
)

// sinceLayout renders commit cutoffs the way the commits API expects
const sinceLayout = "2006-01-02T15:04:05Z"

// SearchRepositories fetches one page of public repositories ordered by
// descending star count
func (c *Client) SearchRepositories(ctx context.Context, page, perPage int) (SearchResult, error) {
	params := map[string]string{
		"q":        "stars:>1",
		"sort":     "stars",
		"order":    "desc",
		"page":     strconv.Itoa(page),
		"per_page": strconv.Itoa(perPage),
	}
	raw, err := c.get(ctx, ResourceSearch, "/search/repositories", params)
	if err != nil {
		return SearchResult{}, err
	}
	var out SearchResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return SearchResult{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "github search payload decode failed")
	}
	return out, nil
}

// ListCommits fetches one page of commits for owner/repo not older than since
// since is rendered in UTC
func (c *Client) ListCommits(ctx context.Context, owner, repo string, page, perPage int, since time.Time) ([]Commit, error) {
	params := map[string]string{
		"page":     strconv.Itoa(page),
		"per_page": strconv.Itoa(perPage),
		"since":    since.UTC().Format(sinceLayout),
	}
	endpoint := fmt.Sprintf("/repos/%s/%s/commits", owner, repo)
	raw, err := c.get(ctx, ResourceCommits, endpoint, params)
	if err != nil {
		return nil, err
	}
	var out []Commit
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "github commits payload decode failed")
	}
	return out, nil
}
