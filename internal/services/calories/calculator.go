// Package calories estimates energy expenditure from cycling metrics using
// MET values adjusted for cadence and motor assistance.
package calories

import (
	"math"
	"sync"
)

// Config holds the MET table and the assistance factor.
type Config struct {
	MetLow           float64 `yaml:"met_low"`       // < 16 km/h
	MetModerate      float64 `yaml:"met_moderate"`  // 16-19 km/h
	MetHigh          float64 `yaml:"met_high"`      // 19-22 km/h
	MetVeryHigh      float64 `yaml:"met_very_high"` // > 22 km/h
	AssistanceFactor float64 `yaml:"assistance_factor"`
	OptimalCadence   float64 `yaml:"optimal_cadence"`
	// MaxCadenceBonus is the MET increase reached at a cadence deviation of 100 RPM.
	MaxCadenceBonus float64 `yaml:"max_cadence_bonus"`
}

func DefaultConfig() Config {
	return Config{
		MetLow:           4.0,
		MetModerate:      6.8,
		MetHigh:          10.0,
		MetVeryHigh:      12.0,
		AssistanceFactor: 0.7,
		OptimalCadence:   85,
		MaxCadenceBonus:  0.15,
	}
}

const DefaultRiderWeight = 70.0

// Calculator is safe for concurrent use; the rider weight can change at runtime.
type Calculator struct {
	cfg Config

	mu          sync.RWMutex
	riderWeight float64
}

func NewCalculator(cfg Config, riderWeight float64) *Calculator {
	if riderWeight <= 0 {
		riderWeight = DefaultRiderWeight
	}
	return &Calculator{cfg: cfg, riderWeight: riderWeight}
}

// SetRiderWeight updates the weight in kg. Non-positive values are ignored.
func (c *Calculator) SetRiderWeight(kg float64) {
	if kg <= 0 {
		return
	}
	c.mu.Lock()
	c.riderWeight = kg
	c.mu.Unlock()
}

func (c *Calculator) RiderWeight() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.riderWeight
}

// Calories returns the rounded kcal burnt over durationSec at avgSpeed km/h.
// cadence 0 means unknown.
func (c *Calculator) Calories(durationSec, avgSpeed, cadence float64, assistanceActive bool) float64 {
	if durationSec <= 0 {
		return 0
	}
	met := c.metFromSpeed(avgSpeed)

	if cadence > 0 {
		met = c.adjustForCadence(met, cadence)
	}

	if assistanceActive {
		met *= c.cfg.AssistanceFactor
	}

	hours := durationSec / 3600
	return math.Round(met * c.RiderWeight() * hours)
}

// CalorieRate is the burn rate in kcal per hour.
func (c *Calculator) CalorieRate(speed, cadence float64, assistanceActive bool) float64 {
	return c.Calories(3600, speed, cadence, assistanceActive)
}

func (c *Calculator) metFromSpeed(speed float64) float64 {
	switch {
	case speed < 16:
		return c.cfg.MetLow
	case speed < 19:
		return c.cfg.MetModerate
	case speed < 22:
		return c.cfg.MetHigh
	default:
		return c.cfg.MetVeryHigh
	}
}

// adjustForCadence raises MET as cadence drifts from the optimum.
func (c *Calculator) adjustForCadence(met, cadence float64) float64 {
	diff := math.Min(math.Abs(cadence-c.cfg.OptimalCadence), 100)
	return met * (1 + diff/100*c.cfg.MaxCadenceBonus)
}
