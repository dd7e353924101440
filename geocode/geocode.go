// Package geocode wraps the address-to-coordinate HTTP API. A failed
// lookup is expected data-quality variance, not an error: callers get
// a nil result and persist the property with null coordinates.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// RequestDelay is the minimum gap between consecutive geocode calls
// within a batch. The caller sleeps after each call; the client itself
// holds no queue.
const RequestDelay = 100 * time.Millisecond

const defaultEndpoint = "https://maps.googleapis.com/maps/api/geocode/json"

// Result is one resolved address.
type Result struct {
	Lat              float64
	Lng              float64
	FormattedAddress string
}

type Client struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewClient builds a geocoder. An empty API key disables lookups:
// Geocode returns nil for every address and the pipeline proceeds
// with null coordinates.
func NewClient(endpoint, apiKey string, httpClient *http.Client) *Client {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   httpClient,
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

type apiResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Geocode resolves a full street address to coordinates. A non-OK API
// status or empty result set returns (nil, nil); only transport-level
// failures surface as errors, and callers treat those as a missing
// result too.
func (c *Client) Geocode(ctx context.Context, address string) (*Result, error) {
	if !c.Enabled() {
		return nil, nil
	}

	reqURL := fmt.Sprintf("%s?address=%s&key=%s", c.endpoint, url.QueryEscape(address), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("geocode status: %d", resp.StatusCode)
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if apiResp.Status != "OK" || len(apiResp.Results) == 0 {
		return nil, nil
	}

	first := apiResp.Results[0]
	return &Result{
		Lat:              first.Geometry.Location.Lat,
		Lng:              first.Geometry.Location.Lng,
		FormattedAddress: first.FormattedAddress,
	}, nil
}
