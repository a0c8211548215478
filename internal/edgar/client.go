// Package edgar implements the registry client: a rate-limited HTTP
// transport plus the filing search, primary-document resolution, bulk
// ticker export, and recent-filings feed operations built on it.
//
// The registry enforces a strict request-rate ceiling and rejects traffic
// without an identifying User-Agent, so every fetch issued anywhere in the
// program funnels through one Client.
package edgar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/seenimoa/edgarfetch/internal/config"
	"github.com/seenimoa/edgarfetch/internal/infra"
)

const (
	edgarBaseURL    = "https://www.sec.gov"
	edgarSearchURL  = "https://www.sec.gov/cgi-bin/browse-edgar"
	edgarTickersURL = "https://www.sec.gov/files/company_tickers.json"

	defaultRequestsPerSecond = 10
	defaultTimeout           = 30 * time.Second
	feedCacheTTL             = 10 * time.Minute
)

// Client talks to the registry. All requests pass through a shared
// fixed-interval rate gate and carry the configured User-Agent.
type Client struct {
	httpClient *http.Client
	userAgent  string
	baseURL    string
	searchURL  string
	tickersURL string
	cache      *infra.Cache
}

// rateLimitedTransport delays every request until the shared limiter
// grants a slot, so concurrent callers never exceed the global ceiling.
type rateLimitedTransport struct {
	transport http.RoundTripper
	limiter   *rate.Limiter
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.transport.RoundTrip(req)
}

// NewClient builds a registry client from configuration. A blank user agent
// is a ConfigurationError: the registry drops unidentified traffic.
func NewClient(cfg config.EdgarConfig) (*Client, error) {
	if strings.TrimSpace(cfg.UserAgent) == "" {
		return nil, &ConfigurationError{
			Setting: "edgar.user_agent",
			Reason:  "must identify the caller; the registry rejects unidentified traffic",
		}
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = edgarBaseURL
	}
	searchURL := cfg.SearchURL
	if searchURL == "" {
		searchURL = edgarSearchURL
	}
	tickersURL := cfg.TickersURL
	if tickersURL == "" {
		tickersURL = edgarTickersURL
	}

	// Burst of one keeps the gate at a fixed inter-request interval of
	// 1/rps rather than allowing bursts up to the per-second total.
	limiter := rate.NewLimiter(rate.Limit(rps), 1)

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &rateLimitedTransport{
				transport: http.DefaultTransport,
				limiter:   limiter,
			},
		},
		userAgent:  cfg.UserAgent,
		baseURL:    strings.TrimRight(baseURL, "/"),
		searchURL:  searchURL,
		tickersURL: tickersURL,
		cache:      infra.NewCache(feedCacheTTL),
	}, nil
}

// Fetch performs one rate-limited GET and returns the response body.
// Resource downloads during localization use this directly.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	body, _, err := c.fetch(ctx, url)
	return body, err
}

// FetchWithContentType additionally returns the Content-Type header, which
// carries the charset hint for encoding detection.
func (c *Client) FetchWithContentType(ctx context.Context, url string) ([]byte, string, error) {
	return c.fetch(ctx, url)
}

func (c *Client) fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("edgar: build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", &TransientNetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", &TransientNetworkError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &TransientNetworkError{URL: url, Err: err}
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// absoluteURL resolves a registry-relative href against the base host.
func (c *Client) absoluteURL(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return c.baseURL + href
}
