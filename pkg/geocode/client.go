// Package geocode provides forward geocoding via the HERE geocoding API.
package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://geocode.search.hereapi.com/v1"

// Client resolves free-text place names to coordinates.
type Client interface {
	// Geocode returns the best match for a place name, or (nil, nil) when
	// the provider finds no match.
	Geocode(ctx context.Context, place string) (*Result, error)
}

// Result holds the best-match coordinates and raw address fields.
type Result struct {
	Latitude  float64
	Longitude float64
	Address   map[string]any
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

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a HERE geocoding client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type geocodeResponse struct {
	Items []struct {
		Position struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"position"`
		Address map[string]any `json:"address"`
	} `json:"items"`
}

func (c *httpClient) Geocode(ctx context.Context, place string) (*Result, error) {
	if place == "" {
		return nil, eris.New("geocode: empty place name")
	}

	q := url.Values{}
	q.Set("q", place)
	q.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/geocode?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("geocode: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var parsed geocodeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, eris.Wrap(err, "geocode: unmarshal response")
	}

	if len(parsed.Items) == 0 {
		return nil, nil
	}

	best := parsed.Items[0]
	return &Result{
		Latitude:  best.Position.Lat,
		Longitude: best.Position.Lng,
		Address:   best.Address,
	}, nil
}
