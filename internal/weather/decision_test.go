package weather

import (
	"testing"
	"time"

	"github.com/tj/assert"
)

func TestUseLiveForecastBoundaries(t *testing.T) {
	today := time.Date(2025, time.June, 10, 15, 30, 0, 0, time.UTC)

	cases := []struct {
		name     string
		raceDate time.Time
		want     bool
	}{
		{"race today is synthesis", today, false},
		{"race yesterday is synthesis", today.AddDate(0, 0, -1), false},
		{"race tomorrow is live", today.AddDate(0, 0, 1), true},
		{"race at horizon is live", today.AddDate(0, 0, 14), true},
		{"race past horizon is synthesis", today.AddDate(0, 0, 15), false},
		{"race far in the past is synthesis", today.AddDate(-2, 0, 0), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := UseLiveForecast(today, tc.raceDate, DefaultForecastHorizonDays)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestUseLiveForecastIgnoresTimeOfDay(t *testing.T) {
	// A race late tonight is still "today" regardless of the clock reading.
	today := time.Date(2025, time.June, 10, 23, 59, 0, 0, time.UTC)
	race := time.Date(2025, time.June, 10, 6, 0, 0, 0, time.UTC)
	assert.False(t, UseLiveForecast(today, race, DefaultForecastHorizonDays))

	// A race just after midnight tomorrow is live even if "now" is earlier
	// in wall-clock terms.
	race = time.Date(2025, time.June, 11, 0, 30, 0, 0, time.UTC)
	assert.True(t, UseLiveForecast(today, race, DefaultForecastHorizonDays))
}
