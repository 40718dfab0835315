package weather

import "strings"

// Candidate is one name-search match returned by the geocoding service.
type Candidate struct {
	Name      string
	Latitude  float64
	Longitude float64
	Country   string
	Admin1    string
}

// TieBreak picks the winner among candidates that survived filtering. The
// slice is never empty when a TieBreak is invoked.
type TieBreak func([]Candidate) Candidate

// FirstMatch keeps the upstream service's ordering authoritative and picks
// the first remaining candidate. No secondary ranking (population, radius,
// importance) is applied; that is a known limitation, not a bug.
func FirstMatch(cands []Candidate) Candidate {
	return cands[0]
}

// FilterCandidates applies case-insensitive, whitespace-trimmed equality
// filters on country and on admin-level-1 region. An empty input field skips
// that filter entirely: absence of state or country means "do not constrain
// on this dimension".
func FilterCandidates(cands []Candidate, state, country string) []Candidate {
	targetState := normalize(state)
	targetCountry := normalize(country)

	var filtered []Candidate
	for _, c := range cands {
		if targetCountry != "" && normalize(c.Country) != targetCountry {
			continue
		}
		if targetState != "" && normalize(c.Admin1) != targetState {
			continue
		}
		filtered = append(filtered, c)
	}
	return filtered
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
