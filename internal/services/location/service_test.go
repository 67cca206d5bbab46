package location

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rar_kit/internal/models"
	"rar_kit/internal/timeutil"
)

type fakeProvider struct {
	mu      sync.Mutex
	granted bool
	fails   int
	calls   int
	fixes   []models.LocationCoords
}

func (f *fakeProvider) RequestPermission(context.Context) (bool, error) {
	return f.granted, nil
}

func (f *fakeProvider) Current(context.Context) (models.LocationCoords, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.fails {
		return models.LocationCoords{}, errors.New("timeout")
	}
	if len(f.fixes) == 0 {
		return models.LocationCoords{Latitude: 44.8, Longitude: 20.4}, nil
	}
	i := (f.calls - f.fails - 1) % len(f.fixes)
	return f.fixes[i], nil
}

func (f *fakeProvider) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestService(p Provider) (*Service, *timeutil.MockClock) {
	clock := timeutil.NewMockClock(time.Date(2026, 6, 1, 7, 0, 0, 0, time.UTC))
	return NewService(p, clock, DefaultConfig()), clock
}

func TestCurrentLocation_PermissionDenied(t *testing.T) {
	p := &fakeProvider{granted: false}
	s, _ := newTestService(p)

	_, err := s.CurrentLocation(context.Background())
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Zero(t, p.Calls())
}

func TestCurrentLocation_RetriesThenSucceeds(t *testing.T) {
	p := &fakeProvider{granted: true, fails: 2}
	s, clock := newTestService(p)

	coords, err := s.CurrentLocation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 44.8, coords.Latitude)
	assert.Equal(t, 3, p.Calls())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, clock.Sleeps())

	last, ok := s.LastKnown()
	require.True(t, ok)
	assert.Equal(t, coords, last)
}

func TestCurrentLocation_HaltsAfterFiveAttempts(t *testing.T) {
	p := &fakeProvider{granted: true, fails: 100}
	s, clock := newTestService(p)

	_, err := s.CurrentLocation(context.Background())
	assert.ErrorIs(t, err, ErrLocationUnavailable)
	assert.Equal(t, 5, p.Calls())
	assert.Equal(t, []time.Duration{
		time.Second, 2 * time.Second, 3 * time.Second, 4 * time.Second,
	}, clock.Sleeps())
}

func TestCurrentLocation_CancelledContext(t *testing.T) {
	p := &fakeProvider{granted: true, fails: 100}
	s, _ := newTestService(p)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.CurrentLocation(ctx)
	assert.ErrorIs(t, err, ErrLocationUnavailable)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, p.Calls())
}

func TestBackoff_Capped(t *testing.T) {
	s, _ := newTestService(&fakeProvider{})
	assert.Equal(t, time.Second, s.Backoff(1))
	assert.Equal(t, 5*time.Second, s.Backoff(5))
	assert.Equal(t, 5*time.Second, s.Backoff(9))
}

func TestTracking_SkipsNearbyFixes(t *testing.T) {
	p := &fakeProvider{granted: true, fixes: []models.LocationCoords{
		{Latitude: 44.8, Longitude: 20.4},
		{Latitude: 44.80001, Longitude: 20.4}, // ~1 m
		{Latitude: 44.801, Longitude: 20.4},   // ~111 m
	}}
	s := NewService(p, nil, DefaultConfig())

	var mu sync.Mutex
	var got []models.LocationCoords
	require.NoError(t, s.StartTracking(context.Background(), 5*time.Millisecond, func(c models.LocationCoords) {
		mu.Lock()
		got = append(got, c)
		mu.Unlock()
	}))
	assert.True(t, s.Tracking())

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) >= 2
	}, time.Second, 5*time.Millisecond)
	s.StopTracking()
	assert.False(t, s.Tracking())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 44.8, got[0].Latitude)
	assert.Equal(t, 44.801, got[1].Latitude)
}

func TestTracking_PermissionDenied(t *testing.T) {
	s := NewService(&fakeProvider{granted: false}, nil, DefaultConfig())
	err := s.StartTracking(context.Background(), time.Millisecond, func(models.LocationCoords) {})
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.False(t, s.Tracking())
}

func TestReportedProvider(t *testing.T) {
	clock := timeutil.NewMockClock(time.Date(2026, 6, 1, 7, 0, 0, 0, time.UTC))
	p := NewReportedProvider(clock, 10*time.Second)
	ctx := context.Background()

	_, err := p.Current(ctx)
	assert.ErrorIs(t, err, ErrNoFix)

	assert.Error(t, p.Report(models.LocationCoords{Latitude: 91}))
	require.NoError(t, p.Report(models.LocationCoords{Latitude: 0, Longitude: 0}))
	c, err := p.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.LocationCoords{}, c)

	clock.Advance(11 * time.Second)
	_, err = p.Current(ctx)
	assert.ErrorIs(t, err, ErrNoFix)

	p.SetPermission(false)
	granted, err := p.RequestPermission(ctx)
	require.NoError(t, err)
	assert.False(t, granted)
}

func TestSimulatedProvider_Moves(t *testing.T) {
	p := NewSimulatedProvider(44.8, 20.4)
	ctx := context.Background()
	a, err := p.Current(ctx)
	require.NoError(t, err)
	b, err := p.Current(ctx)
	require.NoError(t, err)

	assert.Greater(t, b.Latitude, a.Latitude)
	assert.Greater(t, b.Longitude, a.Longitude)
	require.NotNil(t, b.Altitude)
	d := NewService(p, nil, DefaultConfig()).Distance(a, b)
	assert.Greater(t, d, 0.0)
	assert.Less(t, d, 0.01)
}
