// Package github provides a rate limited, caching GitHub REST v3 client
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"starwatch/internal/core/apicache"
	"starwatch/internal/core/ratelimit"
	perr "starwatch/internal/platform/errors"
	"starwatch/internal/platform/logger"
)

const (
	baseURLDefault      = "https://api.github.com"
	acceptHeader        = "application/vnd.github.v3+json"
	defaultTimeout      = 15 * time.Second
	defaultUA           = "starwatch-scraper"
	defaultMaxRetries   = 3
	defaultWaitResetMax = 5 * time.Second
	defaultCacheTTL     = 15 * time.Minute

	maxBodyBytes = 4 << 20
)

// Resource names understood by the limiter registry
const (
	ResourceSearch  = "search/repositories"
	ResourceCommits = "repos/commits"
)

// Options configures the Client
type Options struct {
	BaseURL   string
	Token     string
	UserAgent string
	Timeout   time.Duration

	// MaxRetries bounds retry attempts after the first request
	MaxRetries int

	// WaitResetMax caps how far away a rate limit reset may be before the
	// request fails instead of sleeping
	WaitResetMax time.Duration

	// CacheTTL is how long successful GET payloads stay cached
	CacheTTL time.Duration
}

// Client is a GitHub REST client with sliding-window rate limiting,
// response caching, and bounded retries
type Client struct {
	http   *http.Client
	opts   Options
	limits ratelimit.Resolver
	cache  apicache.Cache
	log    logger.Logger
	seq    atomic.Uint64

	// seams for tests
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a Client with sane defaults
// nil limits or cache disable the respective concern
func NewClient(o Options, limits ratelimit.Resolver, cache apicache.Cache) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = defaultMaxRetries
	}
	if o.WaitResetMax <= 0 {
		o.WaitResetMax = defaultWaitResetMax
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = defaultCacheTTL
	}
	if limits == nil {
		limits = ratelimit.NewRegistry()
	}
	if cache == nil {
		cache = apicache.Nop{}
	}
	return &Client{
		http:   &http.Client{Timeout: o.Timeout},
		opts:   o,
		limits: limits,
		cache:  cache,
		log:    *logger.Named("github"),
		now:    time.Now,
		sleep:  sleepCtx,
	}
}

// Close releases idle transport connections
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// get serves a GET from cache when possible, otherwise requests with retries
// and caches the successful payload
func (c *Client) get(ctx context.Context, resource, endpoint string, params map[string]string) (json.RawMessage, error) {
	key := cacheKey(http.MethodGet, endpoint, params)
	if v, ok := c.cache.Get(key); ok {
		if raw, ok := v.(json.RawMessage); ok {
			cacheHitsTotal.WithLabelValues(resource).Inc()
			c.log.Debug().Str("endpoint", endpoint).Msg("github cache hit")
			return raw, nil
		}
	}

	raw, err := c.requestWithRetry(ctx, resource, endpoint, params)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, raw, c.opts.CacheTTL)
	return raw, nil
}

// cacheKey is method:endpoint:canonical-json(params)
// json.Marshal emits map keys sorted, so equal param sets share a key
func cacheKey(method, endpoint string, params map[string]string) string {
	b, _ := json.Marshal(params)
	return fmt.Sprintf("%s:%s:%s", method, endpoint, string(b))
}

// requestWithRetry runs one logical request with the retry policy:
// up to MaxRetries attempts total; rate limited waits for the quota reset
// when it is near, transient server errors back off exponentially,
// everything else fails at once
func (c *Client) requestWithRetry(ctx context.Context, resource, endpoint string, params map[string]string) (json.RawMessage, error) {
	var lastErr error
	for retry := 0; retry < c.opts.MaxRetries; retry++ {
		raw, err := c.doOnce(ctx, resource, endpoint, params)
		if err == nil {
			return raw, nil
		}
		lastErr = err

		// the last attempt never sleeps
		if retry == c.opts.MaxRetries-1 {
			break
		}

		switch perr.CodeOf(err) {
		case perr.ErrorCodeTooManyRequests:
			reset, ok := ResetAt(err)
			if !ok {
				return nil, perr.Wrap(err, perr.ErrorCodeRetryExhausted,
					"github rate limited without a reset time")
			}
			until := time.Duration(reset-c.now().Unix()) * time.Second
			if until > c.opts.WaitResetMax {
				return nil, perr.Wrapf(err, perr.ErrorCodeRetryExhausted,
					"github rate limit resets in %s, beyond the %s wait cap", until, c.opts.WaitResetMax)
			}
			wait := until + time.Second
			if wait < 0 {
				wait = 0
			}
			retriesTotal.WithLabelValues(resource, "rate_limited").Inc()
			c.log.Warn().
				Str("endpoint", endpoint).
				Dur("wait", wait).
				Int("retry", retry).
				Msg("github rate limited, waiting for quota reset")
			if serr := c.sleep(ctx, wait); serr != nil {
				return nil, serr
			}

		case perr.ErrorCodeUnavailable:
			back := time.Duration(1<<uint(retry)) * time.Second
			retriesTotal.WithLabelValues(resource, "server_error").Inc()
			c.log.Warn().
				Str("endpoint", endpoint).
				Dur("backoff", back).
				Int("retry", retry).
				Msg("github server error, backing off")
			if serr := c.sleep(ctx, back); serr != nil {
				return nil, serr
			}

		default:
			return nil, perr.Wrap(err, perr.ErrorCodeRetryExhausted,
				"github request failed with a non-retriable error")
		}
	}
	return nil, perr.Wrapf(lastErr, perr.ErrorCodeRetryExhausted,
		"github request failed after %d attempts", c.opts.MaxRetries)
}

// doOnce performs a single attempt under the resource limiter
// The permit is released before returning on every path
func (c *Client) doOnce(ctx context.Context, resource, endpoint string, params map[string]string) (json.RawMessage, error) {
	lim := c.limits.For(resource)
	if err := lim.Acquire(ctx); err != nil {
		return nil, err
	}
	defer lim.Release()

	seq := c.seq.Add(1)
	ctx = logger.WithRequestSeq(ctx, seq)

	full := c.opts.BaseURL + endpoint
	if len(params) > 0 {
		full += "?" + encodeParams(params)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "github new request failed")
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", acceptHeader)
	if c.opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.Token)
	}

	start := c.now()
	resp, err := c.http.Do(req)
	lat := c.now().Sub(start)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "github transport error")
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.C(ctx).Error().Err(cerr).Str("endpoint", endpoint).Msg("github close body failed")
		}
	}()

	observeStatus(resource, resp.StatusCode)
	logger.C(ctx).Debug().
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Dur("latency", lat).
		Str("rate_remaining", resp.Header.Get("X-RateLimit-Remaining")).
		Msg("github http response")

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "github read body failed")
	}

	if resp.StatusCode/100 != 2 {
		return nil, classify(resp.StatusCode, resp.Header, errorMessage(body), full)
	}
	return body, nil
}

// encodeParams renders params as a query string with sorted keys
func encodeParams(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params[k]))
	}
	return b.String()
}

func atoi64(s string) int64 {
	if s == "" {
		return 0
	}
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

// sleepCtx sleeps for d unless ctx ends first
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
