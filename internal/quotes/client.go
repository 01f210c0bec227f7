package quotes

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/guttosm/goldrate/internal/domain/models"
	"github.com/guttosm/goldrate/internal/logger"
	"github.com/guttosm/goldrate/internal/metrics"
)

const (
	// DefaultURLTemplate is the upstream quote endpoint; {codes} is replaced
	// by the comma-joined instrument codes.
	DefaultURLTemplate = "https://www.guojijinjia.com/d/gold.js?codes={codes}"
	CodesPlaceholder   = "{codes}"

	DefaultTimeout   = 8 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// MaxBodyBytes caps the upstream response. Larger bodies are rejected
	// rather than parsed from a truncated read.
	MaxBodyBytes = 1 << 20
)

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=quotes_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher performs one upstream request for a set of codes and returns the
// parsed feed.
type Fetcher interface {
	Fetch(ctx context.Context, codes []models.InstrumentCode) (models.Feed, error)
}

// Client fetches the quote feed from the upstream endpoint.
//
// It has an explicit lifecycle: Open acquires the HTTP client, Close
// releases its idle connections. Fetch on a client that is not open returns
// ErrClientClosed.
type Client struct {
	urlTemplate string
	timeout     time.Duration
	header      http.Header

	// custom is set through WithHTTPClient and is used instead of the
	// client built by Open.
	custom HTTPClient

	mu  sync.RWMutex
	hc  HTTPClient
	own *http.Client
}

var _ Fetcher = (*Client)(nil)

// ClientOption is a configuration option for Client.
type ClientOption func(*Client)

// WithURLTemplate sets the endpoint template. It must contain {codes}.
func WithURLTemplate(tmpl string) ClientOption {
	return func(c *Client) {
		if tmpl != "" {
			c.urlTemplate = tmpl
		}
	}
}

// WithHTTPClient replaces the HTTP client built by Open.
func WithHTTPClient(hc HTTPClient) ClientOption {
	return func(c *Client) {
		c.custom = hc
	}
}

// WithTimeout bounds every upstream request.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHeader adds headers sent with each request.
func WithHeader(header http.Header) ClientOption {
	return func(c *Client) {
		for key, values := range header {
			c.header.Del(key)
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// WithUserAgent overrides the browser-like default User-Agent.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.header.Set("User-Agent", ua)
		}
	}
}

// NewClient creates a closed Client; call Open before Fetch.
func NewClient(options ...ClientOption) *Client {
	c := &Client{
		urlTemplate: DefaultURLTemplate,
		timeout:     DefaultTimeout,
		header: http.Header{
			"User-Agent":      []string{DefaultUserAgent},
			"Accept":          []string{"*/*"},
			"Accept-Language": []string{"zh-CN,zh;q=0.9,en;q=0.8"},
			"Referer":         []string{"https://www.guojijinjia.com/"},
		},
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// Open acquires the underlying HTTP client. Calling Open on an open client
// is a no-op.
func (c *Client) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.hc != nil {
		return nil
	}
	if !strings.Contains(c.urlTemplate, CodesPlaceholder) {
		return fmt.Errorf("quotes: url template %q has no %s placeholder", c.urlTemplate, CodesPlaceholder)
	}
	if c.custom != nil {
		c.hc = c.custom
		return nil
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          50,
		MaxIdleConnsPerHost:   10,
		ForceAttemptHTTP2:     true,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: c.timeout,
	}
	c.own = &http.Client{Timeout: c.timeout, Transport: transport}
	c.hc = c.own
	return nil
}

// Close releases idle connections. The client can be re-opened.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.own != nil {
		c.own.CloseIdleConnections()
		c.own = nil
	}
	c.hc = nil
	return nil
}

// Ready reports whether the client is open.
func (c *Client) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hc != nil
}

// URL renders the request URL for a code set. Codes are sorted and
// de-duplicated so the same set always hits the same URL.
func (c *Client) URL(codes []models.InstrumentCode) string {
	uniq := sortedCodes(codes)
	escaped := make([]string, len(uniq))
	for i, code := range uniq {
		escaped[i] = url.QueryEscape(string(code))
	}
	return strings.Replace(c.urlTemplate, CodesPlaceholder, strings.Join(escaped, ","), 1)
}

// Fetch performs exactly one upstream request and parses the body.
// Retrying is the caller's business (see Cache).
func (c *Client) Fetch(ctx context.Context, codes []models.InstrumentCode) (models.Feed, error) {
	c.mu.RLock()
	hc := c.hc
	c.mu.RUnlock()
	if hc == nil {
		return nil, ErrClientClosed
	}

	u := c.URL(codes)
	log := logger.With("fetcher")

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for key, values := range c.header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	start := time.Now()
	res, err := hc.Do(req)
	metrics.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		netErr := &NetworkError{URL: u, Err: err}
		metrics.FetchAttempts.WithLabelValues(ErrorKind(netErr)).Inc()
		return nil, netErr
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			log.Warn().Err(err).Str("url", u).Msg("failed to close response body")
		}
	}()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		metrics.FetchAttempts.WithLabelValues("http_status").Inc()
		return nil, &HTTPStatusError{URL: u, StatusCode: res.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, MaxBodyBytes+1))
	if err != nil {
		metrics.FetchAttempts.WithLabelValues("network").Inc()
		return nil, &NetworkError{URL: u, Err: fmt.Errorf("read body: %w", err)}
	}
	if len(body) > MaxBodyBytes {
		metrics.FetchAttempts.WithLabelValues("body_too_large").Inc()
		return nil, fmt.Errorf("upstream %s: %w (limit %d bytes)", u, ErrBodyTooLarge, MaxBodyBytes)
	}

	feed, skipped := ParseFeedStats(string(body))
	metrics.FetchAttempts.WithLabelValues("ok").Inc()

	ev := log.Debug()
	if skipped > 0 {
		ev = log.Warn()
	}
	ev.Str("url", u).
		Int("records", len(feed)).
		Int("skipped_statements", skipped).
		Dur("elapsed", time.Since(start)).
		Msg("upstream feed fetched")

	return feed, nil
}

// sortedCodes returns the distinct non-empty codes in ascending order.
func sortedCodes(codes []models.InstrumentCode) []models.InstrumentCode {
	seen := make(map[models.InstrumentCode]struct{}, len(codes))
	out := make([]models.InstrumentCode, 0, len(codes))
	for _, code := range codes {
		code = models.InstrumentCode(strings.TrimSpace(string(code)))
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
