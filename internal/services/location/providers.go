package location

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"rar_kit/internal/models"
	"rar_kit/internal/timeutil"
)

// ReportedProvider serves the latest fix pushed by the phone.
type ReportedProvider struct {
	clock  timeutil.Clock
	maxAge time.Duration

	mu       sync.RWMutex
	granted  bool
	last     *models.LocationCoords
	received time.Time
}

// NewReportedProvider treats fixes older than maxAge as missing (0 disables
// the check). Permission starts granted until the phone reports otherwise.
func NewReportedProvider(clock timeutil.Clock, maxAge time.Duration) *ReportedProvider {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &ReportedProvider{clock: clock, maxAge: maxAge, granted: true}
}

// Report stores a fix from the phone.
func (p *ReportedProvider) Report(c models.LocationCoords) error {
	if err := c.Validate(); err != nil {
		return err
	}
	p.mu.Lock()
	p.last = &c
	p.received = p.clock.Now()
	p.mu.Unlock()
	return nil
}

// SetPermission mirrors the phone's foreground location permission.
func (p *ReportedProvider) SetPermission(granted bool) {
	p.mu.Lock()
	p.granted = granted
	p.mu.Unlock()
}

func (p *ReportedProvider) RequestPermission(context.Context) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.granted, nil
}

func (p *ReportedProvider) Current(ctx context.Context) (models.LocationCoords, error) {
	if err := ctx.Err(); err != nil {
		return models.LocationCoords{}, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.last == nil {
		return models.LocationCoords{}, ErrNoFix
	}
	if p.maxAge > 0 && p.clock.Now().Sub(p.received) > p.maxAge {
		return models.LocationCoords{}, ErrNoFix
	}
	return *p.last, nil
}

// SimulatedProvider drifts north-east from a start point on every read, for
// development without a phone.
type SimulatedProvider struct {
	mu  sync.Mutex
	lat float64
	lon float64
	alt float64
	rng *rand.Rand
}

func NewSimulatedProvider(startLat, startLon float64) *SimulatedProvider {
	return &SimulatedProvider{
		lat: startLat,
		lon: startLon,
		alt: 35,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (p *SimulatedProvider) RequestPermission(context.Context) (bool, error) {
	return true, nil
}

func (p *SimulatedProvider) Current(ctx context.Context) (models.LocationCoords, error) {
	if err := ctx.Err(); err != nil {
		return models.LocationCoords{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	// Roughly 15 km/h at one read per second.
	p.lat += 0.00003 + p.rng.Float64()*0.000005
	p.lon += 0.00003 + p.rng.Float64()*0.000005
	p.alt += p.rng.Float64() - 0.45

	alt := p.alt
	acc := 3 + p.rng.Float64()*2
	return models.LocationCoords{Latitude: p.lat, Longitude: p.lon, Altitude: &alt, Accuracy: &acc}, nil
}
