package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"rar_kit/internal/middleware"
	"rar_kit/internal/models"
)

// SettingsController reads and updates the rider profile.
type SettingsController struct {
	DB       *gorm.DB
	Calories WeightSetter
}

type settingsInput struct {
	Name         *string  `json:"name"`
	Weight       *float64 `json:"weight" binding:"omitempty,gt=0,lt=400"`
	SpeedUnit    *string  `json:"speed_unit" binding:"omitempty,oneof=km/h mph"`
	DistanceUnit *string  `json:"distance_unit" binding:"omitempty,oneof=km mi"`
}

func (s *SettingsController) currentRider(c *gin.Context) (models.Rider, bool) {
	var rider models.Rider
	err := s.DB.First(&rider, c.GetUint(middleware.RiderIDKey)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "rider not found"})
		return rider, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error: " + err.Error()})
		return rider, false
	}
	return rider, true
}

func (s *SettingsController) Get(c *gin.Context) {
	rider, ok := s.currentRider(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, rider)
}

// Update applies the provided fields. A new weight feeds the calorie estimator.
func (s *SettingsController) Update(c *gin.Context) {
	var input settingsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rider, ok := s.currentRider(c)
	if !ok {
		return
	}

	if input.Name != nil && *input.Name != "" {
		rider.Name = *input.Name
	}
	if input.Weight != nil {
		rider.Weight = *input.Weight
	}
	if input.SpeedUnit != nil {
		rider.SpeedUnit = *input.SpeedUnit
	}
	if input.DistanceUnit != nil {
		rider.DistanceUnit = *input.DistanceUnit
	}

	if err := s.DB.Save(&rider).Error; err != nil {
		logrus.WithError(err).Error("Settings: could not save rider")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save settings"})
		return
	}
	if input.Weight != nil && s.Calories != nil {
		s.Calories.SetRiderWeight(rider.Weight)
	}
	c.JSON(http.StatusOK, rider)
}
