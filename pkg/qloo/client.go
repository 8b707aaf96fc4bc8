// Package qloo provides a client for the Qloo taste-graph API: insight
// recommendations plus the tag and audience vocabulary search endpoints.
package qloo

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://hackathon.api.qloo.com"

// Client performs requests against the Qloo API.
type Client interface {
	// Insights queries GET /v2/insights with the serialized parameter set.
	Insights(ctx context.Context, params map[string]string) (*InsightsResponse, error)

	// SearchTags queries GET /v2/tags and returns the raw result payload.
	SearchTags(ctx context.Context, params map[string]string) (json.RawMessage, error)

	// SearchAudiences queries GET /v2/audiences/types and returns the raw
	// result payload.
	SearchAudiences(ctx context.Context, params map[string]string) (json.RawMessage, error)
}

// InsightsResponse is the response envelope of GET /v2/insights.
type InsightsResponse struct {
	Success bool            `json:"success"`
	Results InsightsResults `json:"results"`
}

// InsightsResults holds the nested result payload.
type InsightsResults struct {
	Entities []map[string]any `json:"entities"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit sets the requests-per-second limit for API calls.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), int(rps))
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Qloo API client. Search and insight calls can stall
// behind large taste-graph scans, hence the long default timeout.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 5 * time.Minute,
		},
		limiter: rate.NewLimiter(10, 10),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Insights(ctx context.Context, params map[string]string) (*InsightsResponse, error) {
	body, err := c.get(ctx, "/v2/insights", params)
	if err != nil {
		return nil, err
	}

	var result InsightsResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "qloo: unmarshal insights response")
	}
	if !result.Success {
		return nil, eris.New("qloo: insights response not successful")
	}
	return &result, nil
}

func (c *httpClient) SearchTags(ctx context.Context, params map[string]string) (json.RawMessage, error) {
	return c.get(ctx, "/v2/tags", params)
}

func (c *httpClient) SearchAudiences(ctx context.Context, params map[string]string) (json.RawMessage, error) {
	return c.get(ctx, "/v2/audiences/types", params)
}

func (c *httpClient) get(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "qloo: rate limit wait")
	}

	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}

	reqURL := c.baseURL + path
	if encoded := q.Encode(); encoded != "" {
		reqURL += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "qloo: create request %s", path)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "qloo: send request %s", path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrapf(err, "qloo: read response %s", path)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, eris.Errorf("qloo: unexpected status %d from %s: %s", resp.StatusCode, path, string(body))
	}

	return body, nil
}
