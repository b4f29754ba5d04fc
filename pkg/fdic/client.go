// Package fdic queries the FDIC institutions search API.
package fdic

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/loanscope/bankmatch/internal/resilience"
)

// searchFields are the candidate columns requested from the API.
const searchFields = "NAME,CERT,FED_RSSD,CITY,STALP,ACTIVE,ASSET,ENDEFYMD,FILDATE"

// searchLimit caps candidates per query. Results come back sorted by total
// assets descending; no pagination beyond the first page.
const searchLimit = 15

// minQueryLen guards against degenerate wildcard queries that would sweep
// in most of the registry.
const minQueryLen = 5

// Searcher is the registry search contract the matcher depends on.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Institution, error)
}

// Config holds client settings.
type Config struct {
	Endpoint   string
	Timeout    time.Duration
	MaxRetries int
	RatePerSec float64
	// ProxyURL optionally routes requests through an outbound proxy.
	ProxyURL string
	// InsecureSkipVerify disables TLS certificate validation. Honored
	// only when a proxy is configured; an explicit operator opt-in for
	// intercepting proxies.
	InsecureSkipVerify bool
}

// Client is safe for concurrent use; matcher workers share one instance so
// they also share its connection pool and rate limiter.
type Client struct {
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
}

var _ Searcher = (*Client)(nil)

// New creates a client from config.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, eris.New("fdic: endpoint is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	perSec := cfg.RatePerSec
	if perSec <= 0 {
		perSec = 5
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.ProxyURL != "" {
		proxyURL, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, eris.Wrap(err, "fdic: parse proxy url")
		}
		transport.Proxy = http.ProxyURL(proxyURL)
		if cfg.InsecureSkipVerify {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // operator opt-in behind a proxy
		}
	}

	return &Client{
		endpoint: cfg.Endpoint,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		limiter:    rate.NewLimiter(rate.Limit(perSec), 1),
		maxRetries: maxRetries,
	}, nil
}

// searchResponse is the JSON envelope returned by the institutions API.
type searchResponse struct {
	Meta struct {
		Total int `json:"total"`
	} `json:"meta"`
	Data []struct {
		Data Institution `json:"data"`
	} `json:"data"`
}

// Search runs one filter query and returns up to 15 candidates sorted by
// assets descending. Queries below the minimum length return no candidates
// without touching the network.
func (c *Client) Search(ctx context.Context, query string) ([]Institution, error) {
	if len(query) < minQueryLen {
		return nil, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "fdic: rate limit")
	}

	params := url.Values{
		"filters": {query},
		"fields":  {searchFields},
		"sort_by": {"ASSET"},
		"order":   {"DESC"},
		"limit":   {strconv.Itoa(searchLimit)},
		"format":  {"json"},
	}
	reqURL := c.endpoint + "?" + params.Encode()

	body, err := resilience.DoVal(ctx, resilience.RetryConfig{
		MaxAttempts: c.maxRetries,
		Operation:   "fdic.search",
	}, func(ctx context.Context) ([]byte, error) {
		return c.get(ctx, reqURL)
	})
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "fdic: parse response")
	}
	if resp.Meta.Total == 0 {
		return nil, nil
	}

	institutions := make([]Institution, 0, len(resp.Data))
	for _, item := range resp.Data {
		institutions = append(institutions, item.Data)
	}
	return institutions, nil
}

func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fdic: build request")
	}
	req.Header.Set("User-Agent", "bankmatch/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "fdic: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, &resilience.StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "fdic: read body")
	}
	return body, nil
}
