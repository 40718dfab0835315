package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// HistoryStartYear is the earliest year the provider's historical forecast
// archive reaches back to.
const HistoryStartYear = 2022

// YearError records why one year of a backfill window failed.
type YearError struct {
	Year int    `json:"year"`
	Err  string `json:"error"`
}

// BackfillSummary reports the outcome of one multi-year backfill. Partial
// success is the expected steady state, so the result is never collapsed
// into a single pass/fail.
type BackfillSummary struct {
	YearsAttempted int         `json:"yearsAttempted"`
	Succeeded      []int       `json:"succeeded"`
	Failed         []YearError `json:"failed,omitempty"`
}

// BackfillHistory fetches one full day of hourly history for the race's
// calendar month/day across every year from the provider floor up to the
// race's own year, upserting each hour into the store.
//
// A failure in one year is recorded in the summary and never stops the
// remaining years. A race dated before the floor yields an empty window and
// no work.
func (s *Service) BackfillHistory(ctx context.Context, race *Race) (BackfillSummary, error) {
	loc, err := s.raceLocation(ctx, race)
	if err != nil {
		return BackfillSummary{}, err
	}

	var summary BackfillSummary
	raceYear := race.Date.Year()
	for year := s.historyStartYear; year <= raceYear; year++ {
		summary.YearsAttempted++

		day, err := substituteYear(race.Date, year)
		if err != nil {
			summary.Failed = append(summary.Failed, YearError{Year: year, Err: err.Error()})
			s.log.Errorf("backfill %s: %v", race.Slug, err)
			continue
		}

		s.log.Infof("backfill %s: fetching weather for %s", race.Slug, day.Format("2006-01-02"))

		points, err := s.forecasts.HistoricalDay(ctx, *loc.Lat, *loc.Lon, day)
		if err != nil {
			summary.Failed = append(summary.Failed, YearError{Year: year, Err: err.Error()})
			s.log.Errorf("backfill %s: year %d: %v", race.Slug, year, err)
			continue
		}

		if err := s.upsertPoints(ctx, loc.ID, points); err != nil {
			summary.Failed = append(summary.Failed, YearError{Year: year, Err: err.Error()})
			s.log.Errorf("backfill %s: year %d: %v", race.Slug, year, err)
			continue
		}

		summary.Succeeded = append(summary.Succeeded, year)
	}

	s.log.Infof("backfill %s: %d/%d years succeeded", race.Slug, len(summary.Succeeded), summary.YearsAttempted)
	return summary, nil
}

// substituteYear places the race's month/day into another year. Feb 29 does
// not exist in non-leap years; that year is rejected rather than letting the
// date normalize into March 1.
func substituteYear(raceDate time.Time, year int) (time.Time, error) {
	_, m, d := raceDate.Date()
	candidate := time.Date(year, m, d, 0, 0, 0, 0, raceDate.Location())
	if candidate.Month() != m || candidate.Day() != d {
		return time.Time{}, fmt.Errorf("date %02d-%02d does not exist in year %d", m, d, year)
	}
	return candidate, nil
}

func (s *Service) upsertPoints(ctx context.Context, locationID uuid.UUID, points []HourlyPoint) error {
	for _, p := range points {
		obs := Observation{LocationID: locationID, Timestamp: p.Time}
		obs.SetValues(p.Fields)
		if err := s.store.UpsertObservation(ctx, obs); err != nil {
			return fmt.Errorf("upsert observation at %s: %w", p.Time.Format(time.RFC3339), err)
		}
	}
	return nil
}
