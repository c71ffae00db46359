package module

import (
	"time"

	"starwatch/internal/platform/config"
)

// Options controls scrape behavior. Values may also be read from env
type Options struct {
	// Snapshot size
	Qty   int
	Limit int

	// Storage knobs
	BatchSize int

	// Commit activity knobs
	Timezone       string
	MaxCommitPages int

	// Client knobs
	Token        string
	BaseURL      string
	Timeout      time.Duration
	MaxRetries   int
	WaitResetMax time.Duration
	CacheMaxLen  int
	CacheTTL     time.Duration

	// Rate limiting knobs
	MaxConcurrent      int
	MaxRequestsPerHour int
	SearchMaxRequests  int
	SearchWindow       time.Duration
}

// FromConfig reads options using the CORE_SCRAPE_ and SERVICE_GITHUB_ prefixes
func FromConfig(cfg config.Conf) Options {
	sc := cfg.Prefix("CORE_SCRAPE_")
	gh := cfg.Prefix("SERVICE_GITHUB_")
	return Options{
		Qty:       sc.MayInt("QTY", 1000),
		Limit:     sc.MayInt("LIMIT", 100),
		BatchSize: sc.MayInt("BATCH_SIZE", 1000),

		Timezone:       sc.MayString("TIMEZONE", "Europe/Moscow"),
		MaxCommitPages: sc.MayInt("MAX_COMMIT_PAGES", 100),

		Token:        gh.MayString("TOKEN", ""),
		BaseURL:      gh.MayString("BASE_URL", ""),
		Timeout:      sc.MayDuration("TIMEOUT", 15*time.Second),
		MaxRetries:   sc.MayInt("MAX_RETRIES", 3),
		WaitResetMax: sc.MayDuration("WAIT_RESET_MAX", 5*time.Second),
		CacheMaxLen:  sc.MayInt("CACHE_MAXLEN", 1000),
		CacheTTL:     sc.MayDuration("CACHE_TTL", 15*time.Minute),

		MaxConcurrent:      sc.MayInt("MAX_CONCURRENT", 50),
		MaxRequestsPerHour: sc.MayInt("MAX_REQUESTS_PER_HOUR", 4500),
		SearchMaxRequests:  sc.MayInt("SEARCH_MAX_REQUESTS", 20),
		SearchWindow:       sc.MayDuration("SEARCH_WINDOW", time.Minute),
	}
}
