package controllers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rar_kit/internal/middleware"
	"rar_kit/internal/models"
	"rar_kit/internal/services/storage"
)

func newRideRouter(t *testing.T) (*gin.Engine, *storage.RideStore, string) {
	t.Helper()
	store := storage.NewRideStore(storage.NewGormKV(newTestDB(t)), 0)
	rc := &RideController{Rides: store}

	r := gin.New()
	rides := r.Group("/rides", middleware.RequireAuth())
	rides.GET("", rc.List)
	rides.DELETE("", rc.Clear)
	rides.GET("/stats", rc.Stats)
	rides.GET("/chart", rc.Chart)
	rides.GET("/:id", rc.Get)
	rides.GET("/:id/gpx", rc.GPX)
	rides.GET("/:id/fit", rc.FIT)
	rides.DELETE("/:id", rc.Delete)

	token, err := middleware.GenerateToken(1)
	require.NoError(t, err)
	return r, store, token
}

func seedRides(t *testing.T, store *storage.RideStore) {
	t.Helper()
	start := time.Date(2026, 6, 1, 7, 0, 0, 0, time.UTC)
	ctx := context.Background()
	require.NoError(t, store.SaveRide(ctx, models.Ride{
		ID: "no-gps", StartTime: start, EndTime: start.Add(time.Hour), Distance: 15, AvgSpeed: 15, CaloriesBurnt: 300,
	}))
	require.NoError(t, store.SaveRide(ctx, models.Ride{
		ID: "with-gps", StartTime: start.Add(24 * time.Hour), EndTime: start.Add(25 * time.Hour),
		Distance: 5, AvgSpeed: 5, CaloriesBurnt: 100,
		Route: []models.RoutePoint{{Lat: 44.8, Lng: 20.4}, {Lat: 44.81, Lng: 20.4}},
	}))
}

func TestRides_RequireAuth(t *testing.T) {
	r, _, _ := newRideRouter(t)
	w := doJSON(t, r, http.MethodGet, "/rides", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRides_ListStatsAndGet(t *testing.T) {
	r, store, token := newRideRouter(t)
	seedRides(t, store)

	w := doJSON(t, r, http.MethodGet, "/rides", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Rides []models.Ride `json:"rides"`
	}](t, w)
	require.Len(t, list.Rides, 2)
	assert.Equal(t, "with-gps", list.Rides[0].ID)

	w = doJSON(t, r, http.MethodGet, "/rides/stats", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[models.RideStatistics](t, w)
	assert.Equal(t, models.RideStatistics{
		TotalRides: 2, TotalDistance: 20, TotalDuration: 7200, AvgSpeed: 10, TotalCalories: 400,
	}, stats)

	w = doJSON(t, r, http.MethodGet, "/rides/no-gps", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 15.0, decode[models.Ride](t, w).Distance)

	w = doJSON(t, r, http.MethodGet, "/rides/missing", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRides_Exports(t *testing.T) {
	r, store, token := newRideRouter(t)
	seedRides(t, store)

	w := doJSON(t, r, http.MethodGet, "/rides/with-gps/gpx", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/gpx+xml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "ride-with-gps.gpx")
	assert.Contains(t, w.Body.String(), "<trkpt")

	w = doJSON(t, r, http.MethodGet, "/rides/no-gps/gpx", nil, token)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(t, r, http.MethodGet, "/rides/no-gps/fit", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ".FIT", string(w.Body.Bytes()[8:12]))

	w = doJSON(t, r, http.MethodGet, "/rides/missing/fit", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, "/rides/chart", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
}

func TestRides_Delete(t *testing.T) {
	r, store, token := newRideRouter(t)
	seedRides(t, store)

	w := doJSON(t, r, http.MethodDelete, "/rides/no-gps", nil, token)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(t, r, http.MethodDelete, "/rides/no-gps", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Len(t, store.AllRides(context.Background()), 1)

	w = doJSON(t, r, http.MethodDelete, "/rides", nil, token)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, store.AllRides(context.Background()))
}
