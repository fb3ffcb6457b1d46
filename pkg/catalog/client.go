// Package catalog is the HTTP client for the marketplace asset catalog: the
// paginated search feed the validator consumes and the metadata PATCH/DELETE
// surface it writes verdicts through.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/marketproof/attribution-cli/internal/model"
)

const (
	defaultPageSize   = 100
	defaultSearchRPS  = 5
	searchMaxRetries  = 3
	searchBackoffBase = 500 * time.Millisecond
)

// Client defines the catalog operations the validator consumes and produces.
// Each PATCH/DELETE is an independent idempotent call, safe to retry
// externally.
type Client interface {
	Search(ctx context.Context, query string, pageSize, maxResults int) ([]model.AssetRecord, error)
	Get(ctx context.Context, assetID string) (*model.AssetRecord, error)
	PatchField(ctx context.Context, assetID, field, value string) error
	DeleteField(ctx context.Context, assetID, field string) error
	PostComment(ctx context.Context, assetBaseID, text string) error
}

// searchPage is the wire shape of one search response page.
type searchPage struct {
	Results []model.AssetRecord `json:"results"`
	Total   int                 `json:"total"`
	Next    string              `json:"next"`
}

// APIError is a non-2xx response from the catalog.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("catalog: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Option configures the client.
type Option func(*httpClient)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit overrides the default search requests-per-second limit.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a catalog API client.
func NewClient(baseURL, apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(defaultSearchRPS), 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Search walks the paginated search feed until maxResults records are
// collected, a short page signals the end, or the backing index's hard
// result ceiling cuts the feed off. Transient page failures are retried
// with quadratic backoff (base * attempt²).
func (c *httpClient) Search(ctx context.Context, query string, pageSize, maxResults int) ([]model.AssetRecord, error) {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	var out []model.AssetRecord
	for page := 1; ; page++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return out, eris.Wrap(err, "catalog: rate limit wait")
		}

		pg, err := c.searchPage(ctx, query, page, pageSize)
		if err != nil {
			return out, err
		}

		out = append(out, pg.Results...)
		if maxResults > 0 && len(out) >= maxResults {
			out = out[:maxResults]
			break
		}
		if len(pg.Results) < pageSize || pg.Next == "" {
			break
		}
	}

	zap.L().Debug("catalog search complete",
		zap.String("query", query),
		zap.Int("results", len(out)),
	)
	return out, nil
}

// searchPage fetches a single page, retrying transient failures.
func (c *httpClient) searchPage(ctx context.Context, query string, page, pageSize int) (*searchPage, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(pageSize))
	endpoint := c.baseURL + "/assets/search?" + params.Encode()

	var lastErr error
	for attempt := 1; attempt <= searchMaxRetries; attempt++ {
		var pg searchPage
		lastErr = c.do(ctx, http.MethodGet, endpoint, nil, &pg)
		if lastErr == nil {
			return &pg, nil
		}
		if !retryable(lastErr) || ctx.Err() != nil || attempt == searchMaxRetries {
			break
		}

		// Quadratic backoff.
		delay := time.Duration(attempt*attempt) * searchBackoffBase
		zap.L().Warn("catalog search page failed, retrying",
			zap.Int("page", page),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(lastErr),
		)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, eris.Wrap(ctx.Err(), "catalog: search cancelled")
		case <-timer.C:
		}
	}
	return nil, eris.Wrap(lastErr, fmt.Sprintf("catalog: search page %d", page))
}

func (c *httpClient) Get(ctx context.Context, assetID string) (*model.AssetRecord, error) {
	var asset model.AssetRecord
	endpoint := c.baseURL + "/assets/" + url.PathEscape(assetID)
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &asset); err != nil {
		return nil, eris.Wrap(err, "catalog: get asset")
	}
	return &asset, nil
}

func (c *httpClient) PatchField(ctx context.Context, assetID, field, value string) error {
	endpoint := c.baseURL + "/assets/" + url.PathEscape(assetID) + "/fields/" + url.PathEscape(field)
	body := map[string]string{"value": value}
	if err := c.do(ctx, http.MethodPatch, endpoint, body, nil); err != nil {
		return eris.Wrap(err, fmt.Sprintf("catalog: patch field %s", field))
	}
	return nil
}

func (c *httpClient) DeleteField(ctx context.Context, assetID, field string) error {
	endpoint := c.baseURL + "/assets/" + url.PathEscape(assetID) + "/fields/" + url.PathEscape(field)
	if err := c.do(ctx, http.MethodDelete, endpoint, nil, nil); err != nil {
		return eris.Wrap(err, fmt.Sprintf("catalog: delete field %s", field))
	}
	return nil
}

func (c *httpClient) PostComment(ctx context.Context, assetBaseID, text string) error {
	endpoint := c.baseURL + "/assets/" + url.PathEscape(assetBaseID) + "/comments"
	body := map[string]string{"text": text}
	if err := c.do(ctx, http.MethodPost, endpoint, body, nil); err != nil {
		return eris.Wrap(err, "catalog: post comment")
	}
	return nil
}

// do executes one request and decodes the response into out when non-nil.
func (c *httpClient) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return eris.Wrap(err, "catalog: marshal request")
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return eris.Wrap(err, "catalog: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "catalog: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "catalog: read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: truncate(string(respBody), 200)}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return eris.Wrap(err, "catalog: unmarshal response")
		}
	}
	return nil
}

func retryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 408, 429, 500, 502, 503, 504:
			return true
		default:
			return false
		}
	}
	// Only transport-level failures (connection reset, timeout) are worth
	// another attempt; local errors like a failed request marshal are
	// permanent.
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
