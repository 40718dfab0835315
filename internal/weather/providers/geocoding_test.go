package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tj/assert"
)

func TestGeocodingSearchDecodesCandidates(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, `{
			"results": [
				{"name": "Austin", "latitude": 30.26715, "longitude": -97.74306, "country": "United States", "admin1": "Texas"},
				{"name": "Austin", "latitude": 43.66663, "longitude": -92.97464, "country": "United States", "admin1": "Minnesota"}
			]
		}`)
	}))
	defer server.Close()

	client := NewGeocodingClient(server.Client(),
		WithGeocodingBaseURL(server.URL),
		WithGeocodingBackoff(fastBackoff()),
	)

	candidates, err := client.Search(context.Background(), "Austin", 3)
	assert.NoError(t, err)
	assert.Len(t, candidates, 2)
	assert.Equal(t, "Texas", candidates[0].Admin1)
	assert.Equal(t, 30.26715, candidates[0].Latitude)

	assert.Contains(t, gotQuery, "name=Austin")
	assert.Contains(t, gotQuery, "count=3")
	assert.Contains(t, gotQuery, "format=json")
}

func TestGeocodingSearchNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"generationtime_ms": 0.5}`)
	}))
	defer server.Close()

	client := NewGeocodingClient(server.Client(),
		WithGeocodingBaseURL(server.URL),
		WithGeocodingBackoff(fastBackoff()),
	)

	candidates, err := client.Search(context.Background(), "Nowhereville", 3)
	assert.NoError(t, err)
	assert.Empty(t, candidates)
}
