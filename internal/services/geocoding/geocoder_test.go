package geocoding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rar_kit/internal/models"
)

const searchBody = `[
  {"lat":"44.8125","lon":"20.4612","display_name":"Knez Mihailova, Belgrade","address":{"road":"Knez Mihailova","city":"Belgrade"}},
  {"lat":"44.8","lon":"20.5","display_name":"Belgrade, Serbia","address":{"city":"Belgrade"}},
  {"lat":"bad","lon":"20.5","display_name":"broken","address":{}}
]`

func newTestGeocoder(t *testing.T, handler http.HandlerFunc) (*Geocoder, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.MinInterval = 0
	return NewGeocoder(cfg, srv.Client()), &hits
}

func TestSearch_ParsesAndCaches(t *testing.T) {
	g, hits := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, "1", r.URL.Query().Get("addressdetails"))
		assert.Equal(t, "RAR-Kit/1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "en", r.Header.Get("Accept-Language"))
		_, _ = w.Write([]byte(searchBody))
	})
	ctx := context.Background()

	results := g.Search(ctx, "Knez Mihailova")
	require.Len(t, results, 2)
	assert.Equal(t, models.GeocodeResult{
		Address:     "Knez Mihailova",
		Latitude:    44.8125,
		Longitude:   20.4612,
		DisplayName: "Knez Mihailova, Belgrade",
	}, results[0])
	assert.Equal(t, "Belgrade", results[1].Address)

	// Same query, different case: served from cache.
	again := g.Search(ctx, "  knez mihailova ")
	assert.Equal(t, results, again)
	assert.Equal(t, int32(1), hits.Load())

	g.ClearCache()
	g.Search(ctx, "Knez Mihailova")
	assert.Equal(t, int32(2), hits.Load())
}

func TestSearch_ShortQuery(t *testing.T) {
	g, hits := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(searchBody))
	})
	assert.Empty(t, g.Search(context.Background(), " ab "))
	assert.NotNil(t, g.Search(context.Background(), ""))
	assert.Zero(t, hits.Load())
}

func TestSearch_FailureIsEmptyAndNotCached(t *testing.T) {
	g, hits := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	})
	ctx := context.Background()

	assert.Empty(t, g.Search(ctx, "Belgrade"))
	assert.Empty(t, g.Search(ctx, "Belgrade"))
	assert.Equal(t, int32(2), hits.Load())
}

func TestSearch_AddressFallsBackToQuery(t *testing.T) {
	g, _ := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"lat":"1","lon":"2","display_name":"Somewhere","address":{"town":""}}]`))
	})
	results := g.Search(context.Background(), "somewhere")
	require.Len(t, results, 1)
	assert.Equal(t, "somewhere", results[0].Address)
}

func TestReverse_CachesByRoundedCoords(t *testing.T) {
	g, hits := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "44.81251", r.URL.Query().Get("lat"))
		_, _ = w.Write([]byte(`{"display_name":"Terazije, Belgrade"}`))
	})
	ctx := context.Background()

	name := g.Reverse(ctx, models.LocationCoords{Latitude: 44.81251, Longitude: 20.46})
	assert.Equal(t, "Terazije, Belgrade", name)
	// Rounds to the same 4-decimal key.
	name = g.Reverse(ctx, models.LocationCoords{Latitude: 44.81249, Longitude: 20.46001})
	assert.Equal(t, "Terazije, Belgrade", name)
	assert.Equal(t, int32(1), hits.Load())
}

func TestReverse_Malformed(t *testing.T) {
	g, _ := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})
	assert.Equal(t, "", g.Reverse(context.Background(), models.LocationCoords{Latitude: 1, Longitude: 1}))
}

func TestRateLimit_SpacesRequests(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.MinInterval = 100 * time.Millisecond
	g := NewGeocoder(cfg, srv.Client())

	start := time.Now()
	g.Search(context.Background(), "first")
	g.Search(context.Background(), "second")
	g.Search(context.Background(), "third")
	assert.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)
	assert.Equal(t, int32(3), hits.Load())
}
