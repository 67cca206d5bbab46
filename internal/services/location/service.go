// Package location wraps the device GPS: permission checks, single reads
// with retry, and continuous tracking.
package location

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"rar_kit/internal/geo"
	"rar_kit/internal/models"
	"rar_kit/internal/timeutil"
)

var (
	ErrPermissionDenied    = errors.New("location permission denied")
	ErrLocationUnavailable = errors.New("location unavailable")
	ErrNoFix               = errors.New("no GPS fix")
)

// Provider is the device GPS.
type Provider interface {
	RequestPermission(ctx context.Context) (bool, error)
	Current(ctx context.Context) (models.LocationCoords, error)
}

type Config struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseBackoff time.Duration `yaml:"base_backoff"`
	MaxBackoff  time.Duration `yaml:"max_backoff"`
	// MinTrackDistance suppresses tracking updates closer than this many meters.
	MinTrackDistance float64       `yaml:"min_track_distance"`
	TrackInterval    time.Duration `yaml:"track_interval"`
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts:      5,
		BaseBackoff:      time.Second,
		MaxBackoff:       5 * time.Second,
		MinTrackDistance: 5,
		TrackInterval:    time.Second,
	}
}

type Service struct {
	provider Provider
	clock    timeutil.Clock
	cfg      Config

	mu        sync.Mutex
	stopTrack context.CancelFunc
	trackDone chan struct{}
	last      *models.LocationCoords
}

func NewService(provider Provider, clock timeutil.Clock, cfg Config) *Service {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultConfig().MaxAttempts
	}
	return &Service{provider: provider, clock: clock, cfg: cfg}
}

// RequestPermission asks the provider for foreground location access.
func (s *Service) RequestPermission(ctx context.Context) bool {
	granted, err := s.provider.RequestPermission(ctx)
	if err != nil {
		logrus.WithError(err).Warn("Location permission request failed.")
		return false
	}
	return granted
}

// Backoff is the wait after the given failed attempt (1-based):
// linear in the attempt number, capped at MaxBackoff.
func (s *Service) Backoff(attempt int) time.Duration {
	d := time.Duration(attempt) * s.cfg.BaseBackoff
	if s.cfg.MaxBackoff > 0 && d > s.cfg.MaxBackoff {
		return s.cfg.MaxBackoff
	}
	return d
}

// CurrentLocation reads one fix. Failed reads are retried up to MaxAttempts
// in total; after that the last error is returned wrapped in
// ErrLocationUnavailable. A denied permission is not retried.
func (s *Service) CurrentLocation(ctx context.Context) (models.LocationCoords, error) {
	if !s.RequestPermission(ctx) {
		return models.LocationCoords{}, ErrPermissionDenied
	}

	var lastErr error
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		coords, err := s.provider.Current(ctx)
		if err == nil {
			s.remember(coords)
			return coords, nil
		}
		lastErr = err
		logrus.WithError(err).WithFields(logrus.Fields{
			"attempt":      attempt,
			"max_attempts": s.cfg.MaxAttempts,
		}).Warn("Location read failed.")

		if attempt == s.cfg.MaxAttempts {
			break
		}
		if err := s.clock.Sleep(ctx, s.Backoff(attempt)); err != nil {
			return models.LocationCoords{}, fmt.Errorf("%w: %w", ErrLocationUnavailable, err)
		}
	}
	return models.LocationCoords{}, fmt.Errorf("%w after %d attempts: %w", ErrLocationUnavailable, s.cfg.MaxAttempts, lastErr)
}

// LastKnown returns the most recent fix seen by this service, if any.
func (s *Service) LastKnown() (models.LocationCoords, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return models.LocationCoords{}, false
	}
	return *s.last, true
}

func (s *Service) remember(c models.LocationCoords) {
	s.mu.Lock()
	s.last = &c
	s.mu.Unlock()
}

// StartTracking polls the provider every interval and calls fn for fixes at
// least MinTrackDistance meters from the previous one. A running tracker is
// replaced.
func (s *Service) StartTracking(ctx context.Context, interval time.Duration, fn func(models.LocationCoords)) error {
	if !s.RequestPermission(ctx) {
		return ErrPermissionDenied
	}
	if interval <= 0 {
		interval = s.cfg.TrackInterval
	}
	s.StopTracking()

	trackCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.mu.Lock()
	s.stopTrack = cancel
	s.trackDone = done
	s.mu.Unlock()

	go s.track(trackCtx, done, interval, fn)
	return nil
}

// StopTracking stops the tracker, if any, and waits for it to exit.
func (s *Service) StopTracking() {
	s.mu.Lock()
	stop, done := s.stopTrack, s.trackDone
	s.stopTrack, s.trackDone = nil, nil
	s.mu.Unlock()

	if stop != nil {
		stop()
		<-done
	}
}

func (s *Service) Tracking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopTrack != nil
}

func (s *Service) track(ctx context.Context, done chan struct{}, interval time.Duration, fn func(models.LocationCoords)) {
	defer close(done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var prev *models.LocationCoords
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			coords, err := s.provider.Current(ctx)
			if err != nil {
				logrus.WithError(err).Debug("Tracking: no fix this tick.")
				continue
			}
			if prev != nil && geo.Distance(*prev, coords)*1000 < s.cfg.MinTrackDistance {
				continue
			}
			prev = &coords
			s.remember(coords)
			fn(coords)
		}
	}
}

// Distance is the Haversine distance between two fixes in km.
func (s *Service) Distance(a, b models.LocationCoords) float64 {
	return geo.Distance(a, b)
}
