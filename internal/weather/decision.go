package weather

import "time"

// DefaultForecastHorizonDays is the far edge of the live forecast window the
// provider supports.
const DefaultForecastHorizonDays = 14

// UseLiveForecast decides which strategy covers a race date: a race strictly
// after today and at most horizonDays ahead takes the live provider call,
// everything else is synthesized from historical averages. A race today is
// deliberately on the synthesis side of the boundary.
//
// The decision is a pure function of the two dates and must be re-evaluated
// against the current date on every call.
func UseLiveForecast(today, raceDate time.Time, horizonDays int) bool {
	t := calendarDate(today)
	r := calendarDate(raceDate)
	return r.After(t) && !r.After(t.AddDate(0, 0, horizonDays))
}

// calendarDate strips a timestamp down to its calendar date as seen in its
// own zone, comparable across zones.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
