package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"rar_kit/internal/models"
)

const (
	RidesKey       = "@rar_k:rides"
	MaxStoredRides = 100
)

var ErrRideNotFound = errors.New("ride not found")

// RideStore keeps the ride history, newest first, under a single key.
// Every mutation rewrites the whole list.
type RideStore struct {
	kv  KV
	max int
	mu  sync.Mutex
}

func NewRideStore(kv KV, max int) *RideStore {
	if max <= 0 {
		max = MaxStoredRides
	}
	return &RideStore{kv: kv, max: max}
}

// SaveRide prepends the ride and drops the oldest beyond the cap.
func (s *RideStore) SaveRide(ctx context.Context, ride models.Ride) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rides, err := s.loadForWrite(ctx)
	if err != nil {
		return err
	}
	rides = append([]models.Ride{ride}, rides...)
	if len(rides) > s.max {
		rides = rides[:s.max]
	}
	return s.store(ctx, rides)
}

// AllRides returns the history, newest first. A missing or corrupt value
// reads as empty.
func (s *RideStore) AllRides(ctx context.Context) []models.Ride {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *RideStore) RideByID(ctx context.Context, id string) (models.Ride, error) {
	for _, r := range s.AllRides(ctx) {
		if r.ID == id {
			return r, nil
		}
	}
	return models.Ride{}, ErrRideNotFound
}

func (s *RideStore) DeleteRide(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rides, err := s.loadForWrite(ctx)
	if err != nil {
		return err
	}
	kept := rides[:0]
	for _, r := range rides {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(rides) {
		return ErrRideNotFound
	}
	return s.store(ctx, kept)
}

func (s *RideStore) ClearAllRides(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Delete(ctx, RidesKey); err != nil {
		return fmt.Errorf("clear rides: %w", err)
	}
	return nil
}

// Statistics aggregates the whole history.
func (s *RideStore) Statistics(ctx context.Context) models.RideStatistics {
	return Aggregate(s.AllRides(ctx))
}

// Aggregate sums distance, duration and calories over rides. AvgSpeed is
// total distance over total hours, or 0 when no time was recorded.
func Aggregate(rides []models.Ride) models.RideStatistics {
	distances := make([]float64, len(rides))
	durations := make([]float64, len(rides))
	calories := make([]float64, len(rides))
	for i, r := range rides {
		distances[i] = r.Distance
		durations[i] = r.Duration().Seconds()
		calories[i] = r.CaloriesBurnt
	}

	stats := models.RideStatistics{
		TotalRides:    len(rides),
		TotalDistance: floats.Sum(distances),
		TotalDuration: floats.Sum(durations),
		TotalCalories: floats.Sum(calories),
	}
	if stats.TotalDuration > 0 {
		stats.AvgSpeed = stats.TotalDistance / (stats.TotalDuration / 3600)
	}
	return stats
}

func (s *RideStore) load(ctx context.Context) []models.Ride {
	rides, err := s.loadForWrite(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to read rides.")
		return []models.Ride{}
	}
	return rides
}

// loadForWrite fails on a store error so a mutation never overwrites history
// it could not read. A corrupt value still reads as empty.
func (s *RideStore) loadForWrite(ctx context.Context) ([]models.Ride, error) {
	raw, ok, err := s.kv.Get(ctx, RidesKey)
	if err != nil {
		return nil, fmt.Errorf("load rides: %w", err)
	}
	if !ok || raw == "" {
		return []models.Ride{}, nil
	}
	var rides []models.Ride
	if err := json.Unmarshal([]byte(raw), &rides); err != nil {
		logrus.WithError(err).Error("Stored rides are not valid JSON.")
		return []models.Ride{}, nil
	}
	return rides, nil
}

func (s *RideStore) store(ctx context.Context, rides []models.Ride) error {
	raw, err := json.Marshal(rides)
	if err != nil {
		return fmt.Errorf("encode rides: %w", err)
	}
	if err := s.kv.Set(ctx, RidesKey, string(raw)); err != nil {
		return fmt.Errorf("save rides: %w", err)
	}
	return nil
}
