package weather

import (
	"context"
	"time"
)

// SynthesizeForecast ensures hourly weather coverage for the race's calendar
// date exists in the store. Races inside the live horizon get a real provider
// call; everything else is derived locally from the averages of every
// previously backfilled occurrence of that calendar date.
//
// The strategy choice is evaluated against the current date on every call: a
// race that was far away when created switches to the live path by itself
// once it draws near.
func (s *Service) SynthesizeForecast(ctx context.Context, race *Race) error {
	loc, err := s.raceLocation(ctx, race)
	if err != nil {
		return err
	}

	if UseLiveForecast(s.now(), race.Date, s.horizonDays) {
		return s.liveForecast(ctx, loc, race)
	}
	return s.synthesizeFromHistory(ctx, loc, race)
}

// liveForecast pulls the provider's short-range forecast for the race's
// single calendar date. Provider exhaustion is a hard failure here; there is
// no fallback to synthesis within the same call.
func (s *Service) liveForecast(ctx context.Context, loc *Location, race *Race) error {
	day := race.Date
	s.log.Infof("forecast %s: fetching live forecast for %s", race.Slug, day.Format("2006-01-02"))

	points, err := s.forecasts.ForecastDay(ctx, *loc.Lat, *loc.Lon, day)
	if err != nil {
		return err
	}
	return s.upsertPoints(ctx, loc.ID, points)
}

// synthesizeFromHistory derives an hourly forecast purely from stored
// history: every observation sharing the race's month and day but not its
// year, bucketed by hour of day and averaged per field. No network call is
// made, so backfill must have run for the location before this produces
// anything; without history the output is silently empty or sparse.
func (s *Service) synthesizeFromHistory(ctx context.Context, loc *Location, race *Race) error {
	_, month, day := race.Date.Date()
	historic, err := s.store.HistoricalByMonthDay(ctx, loc.ID, month, day, race.Date.Year())
	if err != nil {
		return err
	}

	buckets := make(map[int][]Observation)
	for _, obs := range historic {
		hour := obs.Timestamp.UTC().Hour()
		buckets[hour] = append(buckets[hour], obs)
	}

	written := 0
	for hour := 0; hour < 24; hour++ {
		samples, ok := buckets[hour]
		if !ok {
			// No history for this hour: produce nothing rather than a
			// fabricated zero. Downstream consumers read absence as signal.
			continue
		}

		ts := time.Date(race.Date.Year(), month, day, hour, 0, 0, 0, race.Date.Location())
		obs := Observation{LocationID: loc.ID, Timestamp: ts}
		obs.SetValues(averageFields(samples))
		if err := s.store.UpsertObservation(ctx, obs); err != nil {
			return err
		}
		written++
	}

	s.log.Infof("forecast %s: synthesized %d hours from %d historic records", race.Slug, written, len(historic))
	return nil
}

// averageFields computes, independently per field, the arithmetic mean over
// the non-nil sample values. A field with zero non-nil samples averages to
// nil, never to zero.
func averageFields(samples []Observation) [NumFields]*float64 {
	var sums [NumFields]float64
	var counts [NumFields]int

	for i := range samples {
		values := samples[i].Values()
		for f, v := range values {
			if v == nil {
				continue
			}
			sums[f] += *v
			counts[f]++
		}
	}

	var avgs [NumFields]*float64
	for f := 0; f < NumFields; f++ {
		if counts[f] == 0 {
			continue
		}
		mean := sums[f] / float64(counts[f])
		avgs[f] = &mean
	}
	return avgs
}
