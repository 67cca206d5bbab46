package models

import "time"

// RoutePoint is a single map coordinate on a ride or a navigation route.
type RoutePoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Ride is a finished ride. It is immutable once stored; only deletion is allowed.
type Ride struct {
	ID              string       `json:"id"`
	StartTime       time.Time    `json:"start_time"`
	EndTime         time.Time    `json:"end_time"`
	Distance        float64      `json:"distance"`         // km
	AvgSpeed        float64      `json:"avg_speed"`        // km/h
	MaxSpeed        float64      `json:"max_speed"`        // km/h
	AssistanceTime  float64      `json:"assistance_time"`  // seconds
	EnergyRecovered float64      `json:"energy_recovered"` // Wh
	CaloriesBurnt   float64      `json:"calories_burnt"`
	Route           []RoutePoint `json:"route,omitempty"`
	ElevationGain   *float64     `json:"elevation_gain,omitempty"` // meters
}

// Duration is the wall-clock length of the ride.
func (r Ride) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// RideStatistics aggregates every stored ride.
type RideStatistics struct {
	TotalRides    int     `json:"total_rides"`
	TotalDistance float64 `json:"total_distance"` // km
	TotalDuration float64 `json:"total_duration"` // seconds
	AvgSpeed      float64 `json:"avg_speed"`      // km/h
	TotalCalories float64 `json:"total_calories"`
}
