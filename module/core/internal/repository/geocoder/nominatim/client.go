package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/nandanugg/geofence-alerts/module/core/domain"
	"github.com/nandanugg/geofence-alerts/module/core/internal/repository/geocoder"
)

var _ geocoder.PlaceLookup = (*Client)(nil)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
}

// Lookup reverse-geocodes a point. When the service has no name for it the
// coordinate fallback is returned instead of an error.
func (c *Client) Lookup(ctx context.Context, lat, lon float64) (*domain.Place, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(lat, lon), nil)
	if err != nil {
		return nil, fmt.Errorf("build reverse geocode request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reverse geocode request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reverse geocode status: %s", resp.Status)
	}

	var body reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode reverse geocode response: %w", err)
	}

	address := body.DisplayName
	if address == "" {
		address = domain.FallbackAddress(lat, lon)
	}

	return &domain.Place{Address: address, Latitude: lat, Longitude: lon}, nil
}

func (c *Client) buildURL(lat, lon float64) string {
	params := url.Values{}
	params.Set("format", "jsonv2")
	params.Set("lat", fmt.Sprintf("%f", lat))
	params.Set("lon", fmt.Sprintf("%f", lon))
	return fmt.Sprintf("%s/reverse?%s", c.baseURL, params.Encode())
}
