package github

// Owner is the repository owner as returned by the search API
type Owner struct {
	Login string `json:"login"`
}

// RepoItem is one repository entry from the search API
type RepoItem struct {
	Name            string  `json:"name"`
	Owner           Owner   `json:"owner"`
	StargazersCount int64   `json:"stargazers_count"`
	WatchersCount   int64   `json:"watchers_count"`
	ForksCount      int64   `json:"forks_count"`
	Language        *string `json:"language"`
}

// SearchResult is the search API envelope
type SearchResult struct {
	TotalCount int64      `json:"total_count"`
	Items      []RepoItem `json:"items"`
}

// CommitAuthor is the author block inside a commit payload
// GitHub omits it for commits with unmapped authors
type CommitAuthor struct {
	Name string `json:"name"`
}

// CommitDetail is the nested commit object of the list commits API
type CommitDetail struct {
	Author *CommitAuthor `json:"author"`
}

// Commit is one entry from the list commits API
type Commit struct {
	SHA    string       `json:"sha"`
	Commit CommitDetail `json:"commit"`
}
