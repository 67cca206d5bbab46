package bike

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"rar_kit/internal/geo"
	"rar_kit/internal/models"
	"rar_kit/internal/timeutil"
)

var (
	ErrRideNotActive = errors.New("no active ride")
	ErrRideActive    = errors.New("ride already active")
	ErrRideTooShort  = errors.New("ride too short to save")
)

// CalorieEstimator is implemented by calories.Calculator.
type CalorieEstimator interface {
	Calories(durationSec, avgSpeed, cadence float64, assistanceActive bool) float64
	CalorieRate(speed, cadence float64, assistanceActive bool) float64
}

// Session accumulates realtime metrics between StartRide and EndRide.
// OnBikeData and OnLocation are fed from the telemetry and GPS streams.
type Session struct {
	clock       timeutil.Clock
	calories    CalorieEstimator
	minDuration time.Duration

	mu         sync.Mutex
	active     bool
	start      time.Time
	lastSample time.Time
	metrics    models.RealtimeMetrics
	maxSpeed   float64
	cadenceSum float64
	cadenceN   int
	route      []models.RoutePoint
	lastAlt    *float64
	gain       float64
	hasAlt     bool
}

func NewSession(clock timeutil.Clock, calories CalorieEstimator, minDuration time.Duration) *Session {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Session{clock: clock, calories: calories, minDuration: minDuration}
}

// StartRide resets the metrics and begins accumulating.
func (s *Session) StartRide() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return ErrRideActive
	}
	now := s.clock.Now()
	s.active = true
	s.start = now
	s.lastSample = now
	s.metrics = models.RealtimeMetrics{}
	s.maxSpeed = 0
	s.cadenceSum, s.cadenceN = 0, 0
	s.route = nil
	s.lastAlt = nil
	s.gain = 0
	s.hasAlt = false
	return nil
}

func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Metrics returns a snapshot of the realtime metrics.
func (s *Session) Metrics() models.RealtimeMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metrics
}

// OnBikeData integrates one telemetry sample. It is a bike.Listener.
func (s *Session) OnBikeData(d models.BikeData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}

	now := s.clock.Now()
	dt := now.Sub(s.lastSample).Seconds()
	s.lastSample = now
	if dt < 0 {
		dt = 0
	}

	s.metrics.CurrentSpeed = d.Speed
	s.metrics.Distance += d.Speed / 3600 * dt
	s.metrics.Duration = math.Floor(now.Sub(s.start).Seconds())
	if d.MotorActive {
		s.metrics.AssistanceTime += dt
	}
	if s.calories != nil {
		s.metrics.Calories += s.calories.CalorieRate(d.Speed, d.Cadence, d.MotorActive) * dt / 3600
	}
	if d.Speed > s.maxSpeed {
		s.maxSpeed = d.Speed
	}
	if d.Cadence > 0 {
		s.cadenceSum += d.Cadence
		s.cadenceN++
	}
}

// OnLocation appends a GPS fix to the ride route and tracks elevation gain.
func (s *Session) OnLocation(c models.LocationCoords) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	s.route = append(s.route, c.Point())
	if c.Altitude == nil {
		return
	}
	alt := *c.Altitude
	if s.lastAlt != nil && alt > *s.lastAlt {
		s.gain += alt - *s.lastAlt
	}
	s.lastAlt = &alt
	s.hasAlt = true
}

// EndRide stops the session and builds the Ride record. Rides shorter than
// the minimum duration are discarded with ErrRideTooShort.
func (s *Session) EndRide() (models.Ride, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return models.Ride{}, ErrRideNotActive
	}
	s.active = false

	end := s.clock.Now()
	duration := end.Sub(s.start)
	if duration < s.minDuration {
		return models.Ride{}, fmt.Errorf("%w: %s < %s", ErrRideTooShort, duration.Round(time.Second), s.minDuration)
	}

	hours := duration.Hours()
	var avgSpeed float64
	if hours > 0 {
		avgSpeed = s.metrics.Distance / hours
	}
	var avgCadence float64
	if s.cadenceN > 0 {
		avgCadence = s.cadenceSum / float64(s.cadenceN)
	}

	ride := models.Ride{
		ID:             uuid.NewString(),
		StartTime:      s.start,
		EndTime:        end,
		Distance:       s.metrics.Distance,
		AvgSpeed:       avgSpeed,
		MaxSpeed:       s.maxSpeed,
		AssistanceTime: s.metrics.AssistanceTime,
	}
	if len(s.route) > 0 {
		ride.Route = append([]models.RoutePoint(nil), s.route...)
		// A recorded track overrides the distance integrated from speed.
		if d := geo.PathKm(ride.Route); d > 0 {
			ride.Distance = d
			if hours > 0 {
				ride.AvgSpeed = d / hours
			}
		}
	}
	if s.calories != nil {
		ride.CaloriesBurnt = s.calories.Calories(duration.Seconds(), ride.AvgSpeed, avgCadence, s.metrics.AssistanceTime > 0)
	}
	if s.hasAlt {
		gain := s.gain
		ride.ElevationGain = &gain
	}
	return ride, nil
}
