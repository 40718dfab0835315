package weather

import (
	"testing"

	"github.com/tj/assert"
)

func TestFilterCandidates(t *testing.T) {
	candidates := []Candidate{
		{Name: "Austin", Country: "US", Admin1: "Texas", Latitude: 30.27, Longitude: -97.74},
		{Name: "Austin", Country: "US", Admin1: "California", Latitude: 37.0, Longitude: -120.0},
	}

	t.Run("state and country match keeps first", func(t *testing.T) {
		got := FilterCandidates(candidates, "Texas", "US")
		assert.Len(t, got, 1)
		assert.Equal(t, "Texas", got[0].Admin1)
	})

	t.Run("no match eliminates all", func(t *testing.T) {
		got := FilterCandidates(candidates, "Nevada", "US")
		assert.Empty(t, got)
	})

	t.Run("empty state skips the state filter", func(t *testing.T) {
		got := FilterCandidates(candidates, "", "US")
		assert.Len(t, got, 2)
	})

	t.Run("empty inputs keep everything", func(t *testing.T) {
		got := FilterCandidates(candidates, "", "")
		assert.Len(t, got, 2)
	})

	t.Run("matching is case-insensitive and trimmed", func(t *testing.T) {
		got := FilterCandidates(candidates, "  texas ", "us")
		assert.Len(t, got, 1)
		assert.Equal(t, "Texas", got[0].Admin1)
	})
}

func TestFirstMatchKeepsUpstreamOrder(t *testing.T) {
	candidates := []Candidate{
		{Name: "first", Latitude: 1},
		{Name: "second", Latitude: 2},
	}
	assert.Equal(t, "first", FirstMatch(candidates).Name)
}
