// Package domain defines the scrape service types and ports
package domain

// UnknownLanguage stands in when the search API reports no language
const UnknownLanguage = "Unknown"

// RepositoryAuthorCommits is one author's commit count for a repository
type RepositoryAuthorCommits struct {
	Author  string
	Commits int64
}

// Repository is one scraped repository snapshot
// Position is the index of the repository within its search results page
type Repository struct {
	Name     string
	Owner    string
	Position int
	Stars    int64
	Watchers int64
	Forks    int64
	Language string

	AuthorsCommitsToday []RepositoryAuthorCommits
}

// FullName renders owner/name for logs
func (r Repository) FullName() string { return r.Owner + "/" + r.Name }

// AddCommits folds a batch of per-author counts into the snapshot,
// summing counts for authors already present
func (r *Repository) AddCommits(batch []RepositoryAuthorCommits) {
	if len(batch) == 0 {
		return
	}
	idx := make(map[string]int, len(r.AuthorsCommitsToday))
	for i, ac := range r.AuthorsCommitsToday {
		idx[ac.Author] = i
	}
	for _, ac := range batch {
		if i, ok := idx[ac.Author]; ok {
			r.AuthorsCommitsToday[i].Commits += ac.Commits
			continue
		}
		idx[ac.Author] = len(r.AuthorsCommitsToday)
		r.AuthorsCommitsToday = append(r.AuthorsCommitsToday, ac)
	}
}

// TotalCommitsToday sums the per-author counts
func (r Repository) TotalCommitsToday() int64 {
	var n int64
	for _, ac := range r.AuthorsCommitsToday {
		n += ac.Commits
	}
	return n
}
