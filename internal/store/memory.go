// Package store provides the weather record store implementations: postgres
// for deployments and an in-memory variant for tests and dev mode.
package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/raceday/raceweather/internal/weather"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// Memory is a concurrency-safe in-memory implementation of weather.Store.
// Observation rows are keyed by (location, timestamp) so upserts replay to
// the same end state.
type Memory struct {
	mu sync.RWMutex

	locations map[uuid.UUID]weather.Location
	races     map[uuid.UUID]weather.Race

	// key: location id, inner key: unix timestamp
	observations map[uuid.UUID]map[int64]weather.Observation
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		locations:    make(map[uuid.UUID]weather.Location),
		races:        make(map[uuid.UUID]weather.Race),
		observations: make(map[uuid.UUID]map[int64]weather.Observation),
	}
}

func (s *Memory) SaveLocation(ctx context.Context, loc *weather.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if loc.ID == uuid.Nil {
		loc.ID = uuid.New()
	}
	s.locations[loc.ID] = *loc
	return nil
}

func (s *Memory) GetLocation(ctx context.Context, id uuid.UUID) (*weather.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	loc, ok := s.locations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &loc, nil
}

func (s *Memory) ListLocations(ctx context.Context) ([]*weather.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*weather.Location, 0, len(s.locations))
	for _, loc := range s.locations {
		loc := loc
		out = append(out, &loc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].City < out[j].City })
	return out, nil
}

func (s *Memory) SaveRace(ctx context.Context, race *weather.Race) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if race.ID == uuid.Nil {
		race.ID = uuid.New()
	}
	s.races[race.ID] = *race
	return nil
}

func (s *Memory) GetRace(ctx context.Context, id uuid.UUID) (*weather.Race, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	race, ok := s.races[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &race, nil
}

func (s *Memory) GetRaceBySlug(ctx context.Context, slug string) (*weather.Race, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, race := range s.races {
		if race.Slug == slug {
			race := race
			return &race, nil
		}
	}
	return nil, ErrNotFound
}

func (s *Memory) ListRaces(ctx context.Context) ([]*weather.Race, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*weather.Race, 0, len(s.races))
	for _, race := range s.races {
		race := race
		out = append(out, &race)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *Memory) UpsertObservation(ctx context.Context, obs weather.Observation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byTime, ok := s.observations[obs.LocationID]
	if !ok {
		byTime = make(map[int64]weather.Observation)
		s.observations[obs.LocationID] = byTime
	}
	byTime[obs.Timestamp.Unix()] = obs
	return nil
}

func (s *Memory) HistoricalByMonthDay(ctx context.Context, locationID uuid.UUID, month time.Month, day int, excludeYear int) ([]weather.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []weather.Observation
	for _, obs := range s.observations[locationID] {
		ts := obs.Timestamp.UTC()
		if ts.Month() != month || ts.Day() != day || ts.Year() == excludeYear {
			continue
		}
		out = append(out, obs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (s *Memory) ObservationsInRange(ctx context.Context, locationID uuid.UUID, from, to time.Time) ([]weather.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []weather.Observation
	for _, obs := range s.observations[locationID] {
		if obs.Timestamp.Before(from) || !obs.Timestamp.Before(to) {
			continue
		}
		out = append(out, obs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}
