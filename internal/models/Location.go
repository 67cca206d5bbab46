package models

import "fmt"

// LocationCoords is a single GPS fix.
type LocationCoords struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Altitude  *float64 `json:"altitude,omitempty"` // meters
	Accuracy  *float64 `json:"accuracy,omitempty"` // meters
}

// Validate rejects coordinates outside the WGS84 ranges.
func (c LocationCoords) Validate() error {
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("latitude %f out of range", c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("longitude %f out of range", c.Longitude)
	}
	return nil
}

// Point drops altitude and accuracy.
func (c LocationCoords) Point() RoutePoint {
	return RoutePoint{Lat: c.Latitude, Lng: c.Longitude}
}
