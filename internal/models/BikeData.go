package models

import (
	"errors"
	"fmt"
	"strings"
)

// AssistanceMode is the motor-assist setting selected by the rider.
type AssistanceMode string

const (
	AssistanceOff       AssistanceMode = "off"
	AssistanceAutomatic AssistanceMode = "automatic"
	AssistanceHillClimb AssistanceMode = "hillClimb"
)

var ErrInvalidAssistanceMode = errors.New("invalid assistance mode")

// ParseAssistanceMode accepts the three wire names, case-insensitively.
func ParseAssistanceMode(raw string) (AssistanceMode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "off":
		return AssistanceOff, nil
	case "automatic":
		return AssistanceAutomatic, nil
	case "hillclimb":
		return AssistanceHillClimb, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidAssistanceMode, raw)
}

func (m AssistanceMode) Valid() bool {
	switch m {
	case AssistanceOff, AssistanceAutomatic, AssistanceHillClimb:
		return true
	}
	return false
}

// BikeData is one telemetry snapshot. It is replaced wholesale on every tick.
type BikeData struct {
	Speed          float64        `json:"speed"`         // km/h
	Cadence        float64        `json:"cadence"`       // RPM
	Torque         float64        `json:"torque"`        // Nm
	Power          float64        `json:"power"`         // Watts
	BatteryLevel   float64        `json:"battery_level"` // percentage 0-100
	AssistanceMode AssistanceMode `json:"assistance_mode"`
	MotorActive    bool           `json:"motor_active"`
	Temperature    *float64       `json:"temperature,omitempty"` // from weather API
}

const (
	BatteryHigh   = "high"
	BatteryMedium = "medium"
	BatteryLow    = "low"
)

// BatteryStatus buckets the battery level against the configured thresholds.
func (b BikeData) BatteryStatus(highThreshold, lowThreshold float64) string {
	level := ClampPercent(b.BatteryLevel)
	switch {
	case level > highThreshold:
		return BatteryHigh
	case level > lowThreshold:
		return BatteryMedium
	default:
		return BatteryLow
	}
}

// ClampPercent pins v to [0,100].
func ClampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// RealtimeMetrics accumulate while a ride session is active.
type RealtimeMetrics struct {
	CurrentSpeed   float64 `json:"current_speed"`
	Distance       float64 `json:"distance"` // km
	Duration       float64 `json:"duration"` // seconds
	Calories       float64 `json:"calories"`
	AssistanceTime float64 `json:"assistance_time"` // seconds
}
