// Package scheduler runs the optional forecast refresh job: races sitting
// inside the live forecast window get their stored hourly series re-fetched
// on an interval so it tracks provider updates.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/raceday/raceweather/internal/logger"
	"github.com/raceday/raceweather/internal/weather"
)

// Scheduler periodically refreshes forecasts for upcoming races.
type Scheduler struct {
	scheduler   *gocron.Scheduler
	service     *weather.Service
	store       weather.Store
	interval    time.Duration
	horizonDays int
}

// New creates a Scheduler refreshing at the given interval.
func New(service *weather.Service, store weather.Store, interval time.Duration, horizonDays int) *Scheduler {
	return &Scheduler{
		scheduler:   gocron.NewScheduler(time.UTC),
		service:     service,
		store:       store,
		interval:    interval,
		horizonDays: horizonDays,
	}
}

// Start schedules the refresh job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.interval).Do(s.refresh)
	if err != nil {
		return err
	}
	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// refresh re-runs forecast generation for every race inside the live window.
// Failures are isolated per race.
func (s *Scheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	races, err := s.store.ListRaces(ctx)
	if err != nil {
		logger.Errorf("scheduler: list races: %v", err)
		return
	}

	refreshed := 0
	for _, race := range races {
		if !weather.UseLiveForecast(time.Now(), race.Date, s.horizonDays) {
			continue
		}
		if err := s.service.SynthesizeForecast(ctx, race); err != nil {
			logger.Errorf("scheduler: refresh forecast for %s: %v", race.Slug, err)
			continue
		}
		refreshed++
	}

	if refreshed > 0 {
		logger.Infof("scheduler: refreshed forecasts for %d upcoming races", refreshed)
	}
}
