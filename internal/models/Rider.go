package models

import "gorm.io/gorm"

const (
	SpeedUnitKmh   = "km/h"
	SpeedUnitMph   = "mph"
	DistanceUnitKm = "km"
	DistanceUnitMi = "mi"
)

// Rider is the single rider profile of this bike.
type Rider struct {
	gorm.Model
	Name         string  `json:"name"`
	Passcode     string  `json:"-"`
	Weight       float64 `json:"weight"` // kg
	SpeedUnit    string  `json:"speed_unit" gorm:"default:km/h"`
	DistanceUnit string  `json:"distance_unit" gorm:"default:km"`
}
