package bike

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rar_kit/internal/models"
	"rar_kit/internal/services/calories"
	"rar_kit/internal/timeutil"
)

func newTestSession(minDuration time.Duration) (*Session, *timeutil.MockClock) {
	clock := timeutil.NewMockClock(time.Date(2026, 6, 1, 7, 0, 0, 0, time.UTC))
	calc := calories.NewCalculator(calories.DefaultConfig(), 70)
	return NewSession(clock, calc, minDuration), clock
}

func TestSession_IgnoresSamplesWhenIdle(t *testing.T) {
	s, _ := newTestSession(0)
	s.OnBikeData(models.BikeData{Speed: 20})
	s.OnLocation(models.LocationCoords{Latitude: 1, Longitude: 1})

	assert.False(t, s.Active())
	assert.Equal(t, models.RealtimeMetrics{}, s.Metrics())
	_, err := s.EndRide()
	assert.ErrorIs(t, err, ErrRideNotActive)
}

func TestSession_AccumulatesMetrics(t *testing.T) {
	s, clock := newTestSession(time.Minute)
	require.NoError(t, s.StartRide())
	assert.ErrorIs(t, s.StartRide(), ErrRideActive)

	// Half an hour at 20 km/h, motor assisting the first quarter.
	for i := 0; i < 1800; i++ {
		clock.Advance(time.Second)
		s.OnBikeData(models.BikeData{Speed: 20, Cadence: 85, MotorActive: i < 450})
	}

	m := s.Metrics()
	assert.InDelta(t, 10.0, m.Distance, 1e-6)
	assert.Equal(t, 1800.0, m.Duration)
	assert.InDelta(t, 450.0, m.AssistanceTime, 1e-9)
	assert.Equal(t, 20.0, m.CurrentSpeed)
	assert.Greater(t, m.Calories, 0.0)

	ride, err := s.EndRide()
	require.NoError(t, err)
	assert.NotEmpty(t, ride.ID)
	assert.Equal(t, 30*time.Minute, ride.Duration())
	assert.InDelta(t, 10.0, ride.Distance, 1e-6)
	assert.InDelta(t, 20.0, ride.AvgSpeed, 1e-6)
	assert.Equal(t, 20.0, ride.MaxSpeed)
	// 10 MET * 0.7 * 70 kg * 0.5 h
	assert.Equal(t, 245.0, ride.CaloriesBurnt)
	assert.Nil(t, ride.Route)
	assert.Nil(t, ride.ElevationGain)
	assert.False(t, s.Active())
}

func TestSession_RouteAndElevation(t *testing.T) {
	s, clock := newTestSession(0)
	require.NoError(t, s.StartRide())

	alt := func(v float64) *float64 { return &v }
	s.OnLocation(models.LocationCoords{Latitude: 0, Longitude: 0, Altitude: alt(100)})
	s.OnLocation(models.LocationCoords{Latitude: 0.01, Longitude: 0, Altitude: alt(110)})
	s.OnLocation(models.LocationCoords{Latitude: 0.02, Longitude: 0, Altitude: alt(105)})
	s.OnLocation(models.LocationCoords{Latitude: 0.03, Longitude: 0, Altitude: alt(120)})
	clock.Advance(10 * time.Minute)

	ride, err := s.EndRide()
	require.NoError(t, err)
	assert.Len(t, ride.Route, 4)
	require.NotNil(t, ride.ElevationGain)
	assert.Equal(t, 25.0, *ride.ElevationGain)
	assert.InDelta(t, 3.3359, ride.Distance, 1e-3)
	assert.InDelta(t, 3.3359*6, ride.AvgSpeed, 1e-2)
}

func TestSession_TooShort(t *testing.T) {
	s, clock := newTestSession(time.Minute)
	require.NoError(t, s.StartRide())
	clock.Advance(59 * time.Second)

	_, err := s.EndRide()
	assert.ErrorIs(t, err, ErrRideTooShort)
	assert.False(t, s.Active())
}

func TestSession_StartResetsMetrics(t *testing.T) {
	s, clock := newTestSession(0)
	require.NoError(t, s.StartRide())
	clock.Advance(time.Second)
	s.OnBikeData(models.BikeData{Speed: 36})
	_, err := s.EndRide()
	require.NoError(t, err)

	require.NoError(t, s.StartRide())
	assert.Equal(t, models.RealtimeMetrics{}, s.Metrics())
}
