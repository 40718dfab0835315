package weather

import (
	"time"

	"github.com/google/uuid"
)

// Location is a physical place a race is held at. Coordinates are nil until
// the location has been resolved through the geocoder; the weather pipeline
// refuses to work with unresolved locations.
type Location struct {
	ID      uuid.UUID `json:"id"`
	City    string    `json:"city"`
	State   string    `json:"state,omitempty"`
	Country string    `json:"country,omitempty"`
	Lat     *float64  `json:"lat,omitempty"`
	Lon     *float64  `json:"lon,omitempty"`
}

// Resolved reports whether the location carries a usable coordinate pair.
func (l *Location) Resolved() bool {
	return l != nil && l.Lat != nil && l.Lon != nil &&
		*l.Lat >= -90 && *l.Lat <= 90 && *l.Lon >= -180 && *l.Lon <= 180
}

// Race is a single event at one location. Date carries the race's time zone;
// which forecast strategy applies to it is decided against "now" on every
// call, never at creation time.
type Race struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	Length     string    `json:"length,omitempty"`
	Date       time.Time `json:"date"`
	LocationID uuid.UUID `json:"locationId"`
}

// NumFields is the number of hourly weather variables tracked per observation.
const NumFields = 10

// HourlyVariables is the variable list requested from the provider, in request
// order. The order is load-bearing: decoded arrays are consumed by position.
var HourlyVariables = [NumFields]string{
	"temperature_2m",
	"relative_humidity_2m",
	"rain",
	"precipitation_probability",
	"precipitation",
	"showers",
	"snowfall",
	"wind_speed_10m",
	"wind_direction_10m",
	"wind_gusts_10m",
}

// Observation is one hour of weather for a location, real or synthesized.
// (LocationID, Timestamp) uniquely identifies a record; an upsert replaces
// every field for that key. Each field is independently nullable because the
// provider may have no data for some variables in a given hour.
type Observation struct {
	LocationID uuid.UUID `json:"locationId"`
	Timestamp  time.Time `json:"timestamp"`

	Temperature       *float64 `json:"temperature,omitempty"`
	Humidity          *float64 `json:"humidity,omitempty"`
	Rain              *float64 `json:"rain,omitempty"`
	PrecipProbability *float64 `json:"precipProbability,omitempty"`
	Precipitation     *float64 `json:"precipitation,omitempty"`
	Showers           *float64 `json:"showers,omitempty"`
	Snowfall          *float64 `json:"snowfall,omitempty"`
	WindSpeed         *float64 `json:"windSpeed,omitempty"`
	WindDirection     *float64 `json:"windDirection,omitempty"`
	WindGusts         *float64 `json:"windGusts,omitempty"`
}

// Values returns the numeric fields as a vector in HourlyVariables order.
func (o *Observation) Values() [NumFields]*float64 {
	return [NumFields]*float64{
		o.Temperature,
		o.Humidity,
		o.Rain,
		o.PrecipProbability,
		o.Precipitation,
		o.Showers,
		o.Snowfall,
		o.WindSpeed,
		o.WindDirection,
		o.WindGusts,
	}
}

// SetValues assigns the numeric fields from a vector in HourlyVariables order.
func (o *Observation) SetValues(v [NumFields]*float64) {
	o.Temperature = v[0]
	o.Humidity = v[1]
	o.Rain = v[2]
	o.PrecipProbability = v[3]
	o.Precipitation = v[4]
	o.Showers = v[5]
	o.Snowfall = v[6]
	o.WindSpeed = v[7]
	o.WindDirection = v[8]
	o.WindGusts = v[9]
}

// HourlyPoint is one decoded hourly slot from the provider, before it is
// attached to a location.
type HourlyPoint struct {
	Time   time.Time
	Fields [NumFields]*float64
}
