package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/tj/assert"

	"github.com/raceday/raceweather/internal/weather"
)

func fp(v float64) *float64 { return &v }

func TestMemoryUpsertReplacesAllFields(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	locID := uuid.New()
	ts := time.Date(2023, time.July, 4, 8, 0, 0, 0, time.UTC)

	first := weather.Observation{LocationID: locID, Timestamp: ts, Temperature: fp(70), Humidity: fp(50)}
	assert.NoError(t, s.UpsertObservation(ctx, first))

	// The replacement has no humidity; the old value must not survive.
	second := weather.Observation{LocationID: locID, Timestamp: ts, Temperature: fp(72)}
	assert.NoError(t, s.UpsertObservation(ctx, second))

	got, err := s.ObservationsInRange(ctx, locID, ts, ts.Add(time.Hour))
	assert.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 72.0, *got[0].Temperature)
	assert.Nil(t, got[0].Humidity)
}

func TestMemoryHistoricalByMonthDay(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	locID := uuid.New()
	other := uuid.New()

	stamps := []time.Time{
		time.Date(2022, time.July, 4, 8, 0, 0, 0, time.UTC),
		time.Date(2023, time.July, 4, 9, 0, 0, 0, time.UTC),
		time.Date(2024, time.July, 4, 8, 0, 0, 0, time.UTC), // excluded year
		time.Date(2023, time.July, 5, 8, 0, 0, 0, time.UTC), // wrong day
	}
	for _, ts := range stamps {
		assert.NoError(t, s.UpsertObservation(ctx, weather.Observation{LocationID: locID, Timestamp: ts}))
	}
	// Another location's rows never leak in.
	assert.NoError(t, s.UpsertObservation(ctx, weather.Observation{
		LocationID: other,
		Timestamp:  time.Date(2022, time.July, 4, 8, 0, 0, 0, time.UTC),
	}))

	got, err := s.HistoricalByMonthDay(ctx, locID, time.July, 4, 2024)
	assert.NoError(t, err)
	assert.Len(t, got, 2)
	assert.True(t, got[0].Timestamp.Before(got[1].Timestamp))
}

func TestMemoryRaceLookups(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	loc := &weather.Location{City: "Austin"}
	assert.NoError(t, s.SaveLocation(ctx, loc))
	assert.NotEqual(t, uuid.Nil, loc.ID)

	race := &weather.Race{Name: "Trail Half", Slug: "trail-half", Date: time.Now(), LocationID: loc.ID}
	assert.NoError(t, s.SaveRace(ctx, race))

	bySlug, err := s.GetRaceBySlug(ctx, "trail-half")
	assert.NoError(t, err)
	assert.Equal(t, race.ID, bySlug.ID)

	_, err = s.GetRaceBySlug(ctx, "missing")
	assert.Equal(t, ErrNotFound, err)

	_, err = s.GetRace(ctx, uuid.New())
	assert.Equal(t, ErrNotFound, err)
}
