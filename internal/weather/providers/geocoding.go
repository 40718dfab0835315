package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sony/gobreaker"

	"github.com/raceday/raceweather/internal/weather"
)

const defaultGeocodingBaseURL = "https://geocoding-api.open-meteo.com/v1/search"

// GeocodingClient queries the Open-Meteo name search. Country and region
// hints are not sent upstream; filtering happens client-side on the
// candidates it returns.
type GeocodingClient struct {
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// GeocodingOption tweaks a GeocodingClient.
type GeocodingOption func(*GeocodingClient)

// WithGeocodingBaseURL overrides the search endpoint; tests point this at a
// local server.
func WithGeocodingBaseURL(u string) GeocodingOption {
	return func(c *GeocodingClient) { c.baseURL = u }
}

// WithGeocodingBackoff overrides the retry policy.
func WithGeocodingBackoff(b BackoffConfig) GeocodingOption {
	return func(c *GeocodingClient) { c.httpCfg.Backoff = b }
}

// NewGeocodingClient creates a name-search client over the given HTTP client.
func NewGeocodingClient(client *http.Client, opts ...GeocodingOption) *GeocodingClient {
	c := &GeocodingClient{
		baseURL: defaultGeocodingBaseURL,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff(),
		},
		circuit: newBreaker("openmeteo-geocoding"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search returns up to count best matches for the free-text place name, in
// the upstream service's order.
func (c *GeocodingClient) Search(ctx context.Context, name string, count int) ([]weather.Candidate, error) {
	values := url.Values{}
	values.Set("name", name)
	values.Set("count", strconv.Itoa(count))
	values.Set("format", "json")

	body, err := getWithResilience(ctx, c.httpCfg, c.circuit, fmt.Sprintf("%s?%s", c.baseURL, values.Encode()))
	if err != nil {
		return nil, err
	}

	var payload struct {
		Results []struct {
			Name      string  `json:"name"`
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
			Country   string  `json:"country"`
			Admin1    string  `json:"admin1"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode geocoding response: %w", err)
	}

	candidates := make([]weather.Candidate, 0, len(payload.Results))
	for _, r := range payload.Results {
		candidates = append(candidates, weather.Candidate{
			Name:      r.Name,
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
			Country:   r.Country,
			Admin1:    r.Admin1,
		})
	}
	return candidates, nil
}
