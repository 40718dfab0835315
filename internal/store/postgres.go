package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/raceday/raceweather/internal/weather"
)

// Postgres implements weather.Store on a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to the database and ensures the schema exists.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	s := &Postgres{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the connection pool.
func (s *Postgres) Close() {
	s.pool.Close()
}

func (s *Postgres) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS locations (
			id UUID PRIMARY KEY,
			city TEXT NOT NULL,
			state TEXT NOT NULL DEFAULT '',
			country TEXT NOT NULL DEFAULT '',
			lat DOUBLE PRECISION,
			lon DOUBLE PRECISION
		)`,
		`CREATE TABLE IF NOT EXISTS races (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			length TEXT NOT NULL DEFAULT '',
			race_date TIMESTAMPTZ NOT NULL,
			tz TEXT NOT NULL DEFAULT 'UTC',
			location_id UUID NOT NULL REFERENCES locations(id)
		)`,
		`CREATE TABLE IF NOT EXISTS observations (
			location_id UUID NOT NULL REFERENCES locations(id),
			observed_at TIMESTAMPTZ NOT NULL,
			temperature DOUBLE PRECISION,
			humidity DOUBLE PRECISION,
			rain DOUBLE PRECISION,
			precip_probability DOUBLE PRECISION,
			precipitation DOUBLE PRECISION,
			showers DOUBLE PRECISION,
			snowfall DOUBLE PRECISION,
			wind_speed DOUBLE PRECISION,
			wind_direction DOUBLE PRECISION,
			wind_gusts DOUBLE PRECISION,
			PRIMARY KEY (location_id, observed_at)
		)`,
		`CREATE INDEX IF NOT EXISTS observations_month_day_idx
			ON observations (location_id,
				(EXTRACT(MONTH FROM observed_at AT TIME ZONE 'UTC')),
				(EXTRACT(DAY FROM observed_at AT TIME ZONE 'UTC')))`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (s *Postgres) SaveLocation(ctx context.Context, loc *weather.Location) error {
	if loc.ID == uuid.Nil {
		loc.ID = uuid.New()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO locations (id, city, state, country, lat, lon)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET city = $2, state = $3, country = $4, lat = $5, lon = $6`,
		loc.ID, loc.City, loc.State, loc.Country, loc.Lat, loc.Lon,
	)
	if err != nil {
		return fmt.Errorf("save location: %w", err)
	}
	return nil
}

func (s *Postgres) GetLocation(ctx context.Context, id uuid.UUID) (*weather.Location, error) {
	var loc weather.Location
	err := s.pool.QueryRow(ctx,
		`SELECT id, city, state, country, lat, lon FROM locations WHERE id = $1`, id,
	).Scan(&loc.ID, &loc.City, &loc.State, &loc.Country, &loc.Lat, &loc.Lon)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get location: %w", err)
	}
	return &loc, nil
}

func (s *Postgres) ListLocations(ctx context.Context) ([]*weather.Location, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, city, state, country, lat, lon FROM locations ORDER BY city`)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	var out []*weather.Location
	for rows.Next() {
		var loc weather.Location
		if err := rows.Scan(&loc.ID, &loc.City, &loc.State, &loc.Country, &loc.Lat, &loc.Lon); err != nil {
			return nil, err
		}
		out = append(out, &loc)
	}
	return out, rows.Err()
}

func (s *Postgres) SaveRace(ctx context.Context, race *weather.Race) error {
	if race.ID == uuid.Nil {
		race.ID = uuid.New()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO races (id, name, slug, length, race_date, tz, location_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET name = $2, slug = $3, length = $4, race_date = $5, tz = $6, location_id = $7`,
		race.ID, race.Name, race.Slug, race.Length, race.Date, race.Date.Location().String(), race.LocationID,
	)
	if err != nil {
		return fmt.Errorf("save race: %w", err)
	}
	return nil
}

func (s *Postgres) GetRace(ctx context.Context, id uuid.UUID) (*weather.Race, error) {
	return s.scanRace(s.pool.QueryRow(ctx,
		`SELECT id, name, slug, length, race_date, tz, location_id FROM races WHERE id = $1`, id))
}

func (s *Postgres) GetRaceBySlug(ctx context.Context, slug string) (*weather.Race, error) {
	return s.scanRace(s.pool.QueryRow(ctx,
		`SELECT id, name, slug, length, race_date, tz, location_id FROM races WHERE slug = $1`, slug))
}

func (s *Postgres) scanRace(row pgx.Row) (*weather.Race, error) {
	var race weather.Race
	var tz string
	err := row.Scan(&race.ID, &race.Name, &race.Slug, &race.Length, &race.Date, &tz, &race.LocationID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get race: %w", err)
	}
	if zone, err := time.LoadLocation(tz); err == nil {
		race.Date = race.Date.In(zone)
	}
	return &race, nil
}

func (s *Postgres) ListRaces(ctx context.Context) ([]*weather.Race, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, slug, length, race_date, tz, location_id FROM races ORDER BY race_date`)
	if err != nil {
		return nil, fmt.Errorf("list races: %w", err)
	}
	defer rows.Close()

	var out []*weather.Race
	for rows.Next() {
		var race weather.Race
		var tz string
		if err := rows.Scan(&race.ID, &race.Name, &race.Slug, &race.Length, &race.Date, &tz, &race.LocationID); err != nil {
			return nil, err
		}
		if zone, err := time.LoadLocation(tz); err == nil {
			race.Date = race.Date.In(zone)
		}
		out = append(out, &race)
	}
	return out, rows.Err()
}

func (s *Postgres) UpsertObservation(ctx context.Context, obs weather.Observation) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO observations (
			location_id, observed_at, temperature, humidity, rain, precip_probability,
			precipitation, showers, snowfall, wind_speed, wind_direction, wind_gusts
		)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (location_id, observed_at) DO UPDATE SET
		   temperature = $3, humidity = $4, rain = $5, precip_probability = $6,
		   precipitation = $7, showers = $8, snowfall = $9, wind_speed = $10,
		   wind_direction = $11, wind_gusts = $12`,
		obs.LocationID, obs.Timestamp, obs.Temperature, obs.Humidity, obs.Rain, obs.PrecipProbability,
		obs.Precipitation, obs.Showers, obs.Snowfall, obs.WindSpeed, obs.WindDirection, obs.WindGusts,
	)
	if err != nil {
		return fmt.Errorf("upsert observation: %w", err)
	}
	return nil
}

const observationColumns = `location_id, observed_at, temperature, humidity, rain, precip_probability,
	precipitation, showers, snowfall, wind_speed, wind_direction, wind_gusts`

func (s *Postgres) HistoricalByMonthDay(ctx context.Context, locationID uuid.UUID, month time.Month, day int, excludeYear int) ([]weather.Observation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+observationColumns+`
		 FROM observations
		 WHERE location_id = $1
		   AND EXTRACT(MONTH FROM observed_at AT TIME ZONE 'UTC') = $2
		   AND EXTRACT(DAY FROM observed_at AT TIME ZONE 'UTC') = $3
		   AND EXTRACT(YEAR FROM observed_at AT TIME ZONE 'UTC') <> $4
		 ORDER BY observed_at`,
		locationID, int(month), day, excludeYear,
	)
	if err != nil {
		return nil, fmt.Errorf("historical by month/day: %w", err)
	}
	defer rows.Close()
	return scanObservations(rows)
}

func (s *Postgres) ObservationsInRange(ctx context.Context, locationID uuid.UUID, from, to time.Time) ([]weather.Observation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+observationColumns+`
		 FROM observations
		 WHERE location_id = $1 AND observed_at >= $2 AND observed_at < $3
		 ORDER BY observed_at`,
		locationID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("observations in range: %w", err)
	}
	defer rows.Close()
	return scanObservations(rows)
}

func scanObservations(rows pgx.Rows) ([]weather.Observation, error) {
	var out []weather.Observation
	for rows.Next() {
		var obs weather.Observation
		if err := rows.Scan(
			&obs.LocationID, &obs.Timestamp, &obs.Temperature, &obs.Humidity, &obs.Rain,
			&obs.PrecipProbability, &obs.Precipitation, &obs.Showers, &obs.Snowfall,
			&obs.WindSpeed, &obs.WindDirection, &obs.WindGusts,
		); err != nil {
			return nil, err
		}
		obs.Timestamp = obs.Timestamp.UTC()
		out = append(out, obs)
	}
	return out, rows.Err()
}
