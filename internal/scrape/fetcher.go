package scrape

import (
	"context"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// ErrBlocked is returned when a page answers with an anti-bot challenge.
var ErrBlocked = eris.New("scrape: blocked by challenge page")

// FetcherConfig configures an HTTPFetcher.
type FetcherConfig struct {
	UserAgent    string
	Timeout      time.Duration
	MaxRetries   int
	RatePerSec   float64 // per host
	Burst        int
	MaxBodyBytes int64
}

// DefaultFetcherConfig returns the settings used when none are configured.
func DefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		UserAgent:    "Mozilla/5.0 (compatible; ImporterIntel/1.0)",
		Timeout:      15 * time.Second,
		MaxRetries:   2,
		RatePerSec:   1,
		Burst:        2,
		MaxBodyBytes: 2 << 20,
	}
}

// HTTPFetcher performs GETs through a retrying client. Every attempt,
// retries included, waits on the target host's limiter.
type HTTPFetcher struct {
	client *retryablehttp.Client
	cfg    FetcherConfig

	mu       sync.Mutex
	limiters map[string]*AdaptiveLimiter
}

// NewFetcher builds an HTTPFetcher. Zero fields in cfg take their defaults.
func NewFetcher(cfg FetcherConfig) *HTTPFetcher {
	def := DefaultFetcherConfig()
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = def.RatePerSec
	}
	if cfg.Burst <= 0 {
		cfg.Burst = def.Burst
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = def.MaxBodyBytes
	}

	f := &HTTPFetcher{cfg: cfg, limiters: make(map[string]*AdaptiveLimiter)}

	client := retryablehttp.NewClient()
	client.Logger = log.New(io.Discard, "", 0)
	client.RetryMax = cfg.MaxRetries
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.HTTPClient.Timeout = cfg.Timeout
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, _ int) {
		// a cancelled context fails the request itself
		_ = f.limiter(req.URL.Host).Wait(req.Context())
	}
	client.ResponseLogHook = func(_ retryablehttp.Logger, resp *http.Response) {
		if resp.Request == nil {
			return
		}
		lim := f.limiter(resp.Request.URL.Host)
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			lim.OnRateLimit()
		case resp.StatusCode < 400:
			lim.OnSuccess()
		}
	}
	f.client = client
	return f
}

// Get fetches rawURL and returns the body. Challenge pages fail with
// ErrBlocked; any other status >= 400 is an error.
func (f *HTTPFetcher) Get(ctx context.Context, rawURL, accept string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: build request %s", rawURL)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: get %s", rawURL)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBodyBytes))
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: read %s", rawURL)
	}

	if bt := DetectBlock(resp.StatusCode, resp.Header, body); bt != BlockNone {
		return nil, eris.Wrapf(ErrBlocked, "scrape: %s (%s)", rawURL, bt)
	}
	if resp.StatusCode >= 400 {
		return nil, eris.Errorf("scrape: get %s: status %d", rawURL, resp.StatusCode)
	}
	return body, nil
}

func (f *HTTPFetcher) limiter(host string) *AdaptiveLimiter {
	f.mu.Lock()
	defer f.mu.Unlock()

	lim, ok := f.limiters[host]
	if !ok {
		lim = NewAdaptiveLimiter(host, rate.Limit(f.cfg.RatePerSec), f.cfg.Burst)
		f.limiters[host] = lim
	}
	return lim
}
