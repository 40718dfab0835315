package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tj/assert"

	"github.com/raceday/raceweather/internal/weather"
)

func fastBackoff() BackoffConfig {
	return BackoffConfig{
		MaxRetries:      4,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
	}
}

func TestTimelineDerivesSlotCount(t *testing.T) {
	slots := timeline(0, 7200, 3600)
	assert.Len(t, slots, 2)
	assert.Equal(t, time.Unix(0, 0).UTC(), slots[0])
	assert.Equal(t, time.Unix(3600, 0).UTC(), slots[1])

	assert.Empty(t, timeline(0, 0, 3600))
}

// hourlyBody builds a provider payload for n hourly slots starting at start.
func hourlyBody(start int64, temps []string) string {
	times := make([]string, 0, len(temps))
	for i := range temps {
		times = append(times, fmt.Sprintf("%d", start+int64(i)*3600))
	}
	return fmt.Sprintf(`{
		"hourly": {
			"time": [%s],
			"temperature_2m": [%s],
			"relative_humidity_2m": [55, null],
			"wind_speed_10m": [4.2, 3.1]
		}
	}`, strings.Join(times, ","), strings.Join(temps, ","))
}

func TestHistoricalDayDecodesPositionally(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, hourlyBody(1720000800, []string{"71.5", "null"}))
	}))
	defer server.Close()

	client := NewOpenMeteoClient(server.Client(),
		WithHistoricalBaseURL(server.URL),
		WithBackoff(fastBackoff()),
	)

	day := time.Date(2024, time.July, 3, 0, 0, 0, 0, time.UTC)
	points, err := client.HistoricalDay(context.Background(), 30.27, -97.74, day)
	assert.NoError(t, err)
	assert.Len(t, points, 2)

	// Slot 0 carries values, slot 1 normalizes the null temperature away.
	assert.Equal(t, time.Unix(1720000800, 0).UTC(), points[0].Time)
	assert.Equal(t, 71.5, *points[0].Fields[0])
	assert.Equal(t, 55.0, *points[0].Fields[1])
	assert.Equal(t, 4.2, *points[0].Fields[7])
	assert.Nil(t, points[1].Fields[0])
	assert.Nil(t, points[1].Fields[1])
	assert.Equal(t, 3.1, *points[1].Fields[7])

	// Variables not present in the payload stay absent.
	assert.Nil(t, points[0].Fields[6])

	// The request pins units, date range and the ordered variable list.
	assert.Contains(t, gotQuery, "temperature_unit=fahrenheit")
	assert.Contains(t, gotQuery, "wind_speed_unit=mph")
	assert.Contains(t, gotQuery, "timeformat=unixtime")
	assert.Contains(t, gotQuery, "start_date=2024-07-03")
	assert.Contains(t, gotQuery, "end_date=2024-07-03")
}

func TestForecastDayRetriesTransientFailures(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts <= 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, hourlyBody(0, []string{"60", "61"}))
	}))
	defer server.Close()

	client := NewOpenMeteoClient(server.Client(),
		WithForecastBaseURL(server.URL),
		WithBackoff(fastBackoff()),
	)

	points, err := client.ForecastDay(context.Background(), 1, 2, time.Now())
	assert.NoError(t, err)
	assert.Len(t, points, 2)
	assert.Equal(t, 3, attempts)
}

func TestForecastDayExhaustedRetriesIsProviderError(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewOpenMeteoClient(server.Client(),
		WithForecastBaseURL(server.URL),
		WithBackoff(fastBackoff()),
	)

	_, err := client.ForecastDay(context.Background(), 1, 2, time.Now())
	assert.True(t, weather.IsProviderError(err))
	assert.Equal(t, 5, attempts)
}

func TestFetchDayServesRepeatsFromCache(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, hourlyBody(0, []string{"50", "51"}))
	}))
	defer server.Close()

	client := NewOpenMeteoClient(server.Client(),
		WithHistoricalBaseURL(server.URL),
		WithBackoff(fastBackoff()),
	)

	day := time.Date(2023, time.April, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		points, err := client.HistoricalDay(context.Background(), 1, 2, day)
		assert.NoError(t, err)
		assert.Len(t, points, 2)
	}
	assert.Equal(t, 1, hits)

	// A different day is a different request signature.
	_, err := client.HistoricalDay(context.Background(), 1, 2, day.AddDate(0, 0, 1))
	assert.NoError(t, err)
	assert.Equal(t, 2, hits)
}
