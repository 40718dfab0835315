package weather

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// GeocodingClient abstracts the external name-search service. It returns up
// to count best matches for a free-text place name; country and region
// filtering happens client-side afterwards.
type GeocodingClient interface {
	Search(ctx context.Context, name string, count int) ([]Candidate, error)
}

// ForecastClient abstracts the weather provider's two hourly endpoints. Both
// take coordinates and a single calendar day and return one decoded point per
// hourly slot. Implementations are expected to retry transient failures and
// surface exhaustion as a *ProviderError.
type ForecastClient interface {
	// HistoricalDay fetches one full day of hourly history.
	HistoricalDay(ctx context.Context, lat, lon float64, day time.Time) ([]HourlyPoint, error)
	// ForecastDay fetches the live short-range forecast for one day.
	ForecastDay(ctx context.Context, lat, lon float64, day time.Time) ([]HourlyPoint, error)
}

// Store is the contract any weather record store (postgres, in-memory) must
// satisfy. Observation writes are idempotent keyed upserts; replays produce
// the same end state.
type Store interface {
	SaveLocation(ctx context.Context, loc *Location) error
	GetLocation(ctx context.Context, id uuid.UUID) (*Location, error)
	ListLocations(ctx context.Context) ([]*Location, error)

	SaveRace(ctx context.Context, race *Race) error
	GetRace(ctx context.Context, id uuid.UUID) (*Race, error)
	GetRaceBySlug(ctx context.Context, slug string) (*Race, error)
	ListRaces(ctx context.Context) ([]*Race, error)

	// UpsertObservation replaces all fields for (LocationID, Timestamp).
	UpsertObservation(ctx context.Context, obs Observation) error
	// HistoricalByMonthDay returns every stored observation for the location
	// whose timestamp falls on the given month/day in any year except
	// excludeYear, ordered by timestamp.
	HistoricalByMonthDay(ctx context.Context, locationID uuid.UUID, month time.Month, day int, excludeYear int) ([]Observation, error)
	// ObservationsInRange returns observations with from <= timestamp < to,
	// ordered by timestamp.
	ObservationsInRange(ctx context.Context, locationID uuid.UUID, from, to time.Time) ([]Observation, error)
}
