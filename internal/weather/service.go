// Package weather holds the race weather pipeline: geocoding resolution,
// multi-year historical backfill and forecast synthesis over a keyed
// observation store.
package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/raceday/raceweather/internal/logger"
)

// Logf is the logging surface the service needs. It matches the
// internal/logger package.
type Logf interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type pkgLogger struct{}

func (pkgLogger) Infof(format string, args ...interface{})  { logger.Infof(format, args...) }
func (pkgLogger) Errorf(format string, args ...interface{}) { logger.Errorf(format, args...) }

// Service orchestrates the pipeline. Each operation runs synchronously to
// completion; callers invoking it over many entities are responsible for
// isolating per-entity failures.
type Service struct {
	store     Store
	geocoder  GeocodingClient
	forecasts ForecastClient

	tieBreak         TieBreak
	historyStartYear int
	horizonDays      int
	geocodeCount     int

	now func() time.Time
	log Logf
}

// Option tweaks a Service.
type Option func(*Service)

// WithHistoryStartYear overrides the earliest backfill year.
func WithHistoryStartYear(year int) Option {
	return func(s *Service) { s.historyStartYear = year }
}

// WithForecastHorizon overrides the live forecast window in days.
func WithForecastHorizon(days int) Option {
	return func(s *Service) { s.horizonDays = days }
}

// WithTieBreak swaps the geocoding tie-break strategy.
func WithTieBreak(tb TieBreak) Option {
	return func(s *Service) { s.tieBreak = tb }
}

// WithClock overrides the time source. Tests use this to pin "today".
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a pipeline service over the given store and clients.
func NewService(store Store, geocoder GeocodingClient, forecasts ForecastClient, opts ...Option) *Service {
	s := &Service{
		store:            store,
		geocoder:         geocoder,
		forecasts:        forecasts,
		tieBreak:         FirstMatch,
		historyStartYear: HistoryStartYear,
		horizonDays:      DefaultForecastHorizonDays,
		geocodeCount:     3,
		now:              time.Now,
		log:              pkgLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ResolveLocation resolves the location's city/state/country triple to a
// coordinate pair, writes it back onto the location and persists it.
// Returns *NotFoundError when the search yields no candidate or filtering
// eliminates all of them.
func (s *Service) ResolveLocation(ctx context.Context, loc *Location) (lat, lon float64, err error) {
	candidates, err := s.geocoder.Search(ctx, loc.City, s.geocodeCount)
	if err != nil {
		return 0, 0, fmt.Errorf("geocoding search for %q: %w", loc.City, err)
	}
	if len(candidates) == 0 {
		return 0, 0, &NotFoundError{City: loc.City, State: loc.State, Country: loc.Country}
	}

	filtered := FilterCandidates(candidates, loc.State, loc.Country)
	if len(filtered) == 0 {
		return 0, 0, &NotFoundError{City: loc.City, State: loc.State, Country: loc.Country}
	}

	best := s.tieBreak(filtered)
	loc.Lat = &best.Latitude
	loc.Lon = &best.Longitude

	if err := s.store.SaveLocation(ctx, loc); err != nil {
		return 0, 0, fmt.Errorf("save resolved location %s: %w", loc.City, err)
	}

	s.log.Infof("resolved %s to %f, %f", loc.City, best.Latitude, best.Longitude)
	return best.Latitude, best.Longitude, nil
}

// raceLocation loads the race's location and verifies it is usable by the
// pipeline.
func (s *Service) raceLocation(ctx context.Context, race *Race) (*Location, error) {
	loc, err := s.store.GetLocation(ctx, race.LocationID)
	if err != nil {
		return nil, fmt.Errorf("load location for race %s: %w", race.Slug, err)
	}
	if !loc.Resolved() {
		return nil, fmt.Errorf("location %s for race %s has no coordinates; resolve it first", loc.City, race.Slug)
	}
	return loc, nil
}

// RaceWeather returns the stored hourly series covering the race's calendar
// date, live or synthesized, ordered by timestamp.
func (s *Service) RaceWeather(ctx context.Context, race *Race) ([]Observation, error) {
	loc, err := s.store.GetLocation(ctx, race.LocationID)
	if err != nil {
		return nil, fmt.Errorf("load location for race %s: %w", race.Slug, err)
	}

	y, m, d := race.Date.Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, race.Date.Location())
	return s.store.ObservationsInRange(ctx, loc.ID, from, from.AddDate(0, 0, 1))
}
