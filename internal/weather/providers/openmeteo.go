package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sony/gobreaker"

	"github.com/raceday/raceweather/internal/weather"
)

const (
	defaultForecastBaseURL   = "https://api.open-meteo.com/v1/forecast"
	defaultHistoricalBaseURL = "https://historical-forecast-api.open-meteo.com/v1/forecast"

	// DefaultCacheTTL is how long identical requests are served from cache.
	DefaultCacheTTL = time.Hour
)

// OpenMeteoClient wraps the two Open-Meteo hourly endpoints: the historical
// forecast archive and the live short-range forecast. Responses are cached by
// full request URL and every request goes through retry/backoff and a
// circuit breaker.
type OpenMeteoClient struct {
	forecastURL   string
	historicalURL string
	httpCfg       HTTPClientConfig
	cache         *gocache.Cache
	forecastCB    *gobreaker.CircuitBreaker
	historicalCB  *gobreaker.CircuitBreaker
}

// OpenMeteoOption tweaks an OpenMeteoClient.
type OpenMeteoOption func(*OpenMeteoClient)

// WithForecastBaseURL overrides the live forecast endpoint; tests point this
// at a local server.
func WithForecastBaseURL(u string) OpenMeteoOption {
	return func(c *OpenMeteoClient) { c.forecastURL = u }
}

// WithHistoricalBaseURL overrides the historical forecast endpoint.
func WithHistoricalBaseURL(u string) OpenMeteoOption {
	return func(c *OpenMeteoClient) { c.historicalURL = u }
}

// WithBackoff overrides the retry policy.
func WithBackoff(b BackoffConfig) OpenMeteoOption {
	return func(c *OpenMeteoClient) { c.httpCfg.Backoff = b }
}

// WithCacheTTL overrides the response cache expiry.
func WithCacheTTL(ttl time.Duration) OpenMeteoOption {
	return func(c *OpenMeteoClient) { c.cache = gocache.New(ttl, 2*ttl) }
}

// NewOpenMeteoClient creates a client over the given HTTP client.
func NewOpenMeteoClient(client *http.Client, opts ...OpenMeteoOption) *OpenMeteoClient {
	c := &OpenMeteoClient{
		forecastURL:   defaultForecastBaseURL,
		historicalURL: defaultHistoricalBaseURL,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff(),
		},
		cache:        gocache.New(DefaultCacheTTL, 2*DefaultCacheTTL),
		forecastCB:   newBreaker("openmeteo-forecast"),
		historicalCB: newBreaker("openmeteo-historical"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HistoricalDay fetches one full day of hourly history at the coordinates.
func (c *OpenMeteoClient) HistoricalDay(ctx context.Context, lat, lon float64, day time.Time) ([]weather.HourlyPoint, error) {
	return c.fetchDay(ctx, c.historicalURL, c.historicalCB, lat, lon, day)
}

// ForecastDay fetches the live short-range forecast for a single day at the
// coordinates. The endpoint only covers a narrow window around today.
func (c *OpenMeteoClient) ForecastDay(ctx context.Context, lat, lon float64, day time.Time) ([]weather.HourlyPoint, error) {
	return c.fetchDay(ctx, c.forecastURL, c.forecastCB, lat, lon, day)
}

func (c *OpenMeteoClient) fetchDay(ctx context.Context, baseURL string, cb *gobreaker.CircuitBreaker, lat, lon float64, day time.Time) ([]weather.HourlyPoint, error) {
	u := c.buildURL(baseURL, lat, lon, day)

	if cached, ok := c.cache.Get(u); ok {
		return cached.([]weather.HourlyPoint), nil
	}

	body, err := getWithResilience(ctx, c.httpCfg, cb, u)
	if err != nil {
		return nil, &weather.ProviderError{Endpoint: baseURL, Err: err}
	}

	points, err := decodeHourly(body)
	if err != nil {
		return nil, &weather.ProviderError{Endpoint: baseURL, Err: err}
	}

	c.cache.SetDefault(u, points)
	return points, nil
}

// buildURL assembles the request. The hourly list is emitted in
// weather.HourlyVariables order; unit preferences are fixed at this boundary.
func (c *OpenMeteoClient) buildURL(baseURL string, lat, lon float64, day time.Time) string {
	date := day.Format("2006-01-02")

	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	values.Set("start_date", date)
	values.Set("end_date", date)
	values.Set("hourly", strings.Join(weather.HourlyVariables[:], ","))
	values.Set("temperature_unit", "fahrenheit")
	values.Set("wind_speed_unit", "mph")
	values.Set("timeformat", "unixtime")

	return fmt.Sprintf("%s?%s", baseURL, values.Encode())
}

type hourlyEnvelope struct {
	Hourly map[string]json.RawMessage `json:"hourly"`
}

// decodeHourly turns a provider payload into hourly points. The payload
// carries a unix timestamp sequence plus one same-length numeric array per
// requested variable; arrays are consumed by position against the timestamp
// sequence derived from (end-start)/interval.
func decodeHourly(body []byte) ([]weather.HourlyPoint, error) {
	var envelope hourlyEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode hourly payload: %w", err)
	}

	rawTimes, ok := envelope.Hourly["time"]
	if !ok {
		return nil, fmt.Errorf("hourly payload has no time block")
	}
	var times []int64
	if err := json.Unmarshal(rawTimes, &times); err != nil {
		return nil, fmt.Errorf("decode hourly timestamps: %w", err)
	}
	if len(times) == 0 {
		return nil, nil
	}

	start := times[0]
	var interval int64 = 3600
	if len(times) > 1 {
		interval = times[1] - times[0]
	}
	if interval <= 0 {
		return nil, fmt.Errorf("non-positive hourly interval %d", interval)
	}
	end := times[len(times)-1] + interval

	timestamps := timeline(start, end, interval)

	// One column per variable, decoded by name but aligned by index.
	var columns [weather.NumFields][]*float64
	for i, name := range weather.HourlyVariables {
		raw, ok := envelope.Hourly[name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &columns[i]); err != nil {
			return nil, fmt.Errorf("decode hourly variable %s: %w", name, err)
		}
	}

	points := make([]weather.HourlyPoint, len(timestamps))
	for slot, ts := range timestamps {
		p := weather.HourlyPoint{Time: ts}
		for f := 0; f < weather.NumFields; f++ {
			col := columns[f]
			if slot >= len(col) {
				continue
			}
			v := col[slot]
			// Not-a-number slots normalize to absent.
			if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
				continue
			}
			p.Fields[f] = v
		}
		points[slot] = p
	}
	return points, nil
}

// timeline derives the exact slot count as (end-start)/interval and generates
// that many sequential UTC timestamps starting at start.
func timeline(start, end, interval int64) []time.Time {
	n := (end - start) / interval
	if n <= 0 {
		return nil
	}
	out := make([]time.Time, 0, n)
	for i := int64(0); i < n; i++ {
		out = append(out, time.Unix(start+i*interval, 0).UTC())
	}
	return out
}
