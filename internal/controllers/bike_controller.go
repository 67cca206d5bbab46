package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"rar_kit/internal/models"
	"rar_kit/internal/services/bike"
	"rar_kit/internal/services/location"
	"rar_kit/internal/services/storage"
)

// BikeController serves the dashboard: live telemetry, assistance mode and
// the ride session.
type BikeController struct {
	// Ctx bounds the telemetry stream and GPS tracking started from requests.
	Ctx      context.Context
	Bike     *bike.Connection
	Session  *bike.Session
	Rides    *storage.RideStore
	Location *location.Service
}

func (b *BikeController) baseCtx() context.Context {
	if b.Ctx != nil {
		return b.Ctx
	}
	return context.Background()
}

func (b *BikeController) GetBike(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"connected":      b.Bike.IsConnected(),
		"data":           b.Bike.CurrentData(),
		"battery_status": b.Bike.BatteryStatus(),
	})
}

func (b *BikeController) Connect(c *gin.Context) {
	if err := b.Bike.Connect(b.baseCtx()); err != nil {
		logrus.WithError(err).Error("Bike connect failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"connected": true})
}

func (b *BikeController) Disconnect(c *gin.Context) {
	b.Bike.Disconnect()
	c.JSON(http.StatusOK, gin.H{"connected": false})
}

// SetAssistance switches the motor-assist mode.
// @Summary Set assistance mode
// @Param body body object true "{\"mode\": \"off|automatic|hillClimb\"}"
// @Router /bike/assistance [put]
func (b *BikeController) SetAssistance(c *gin.Context) {
	var input struct {
		Mode string `json:"mode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	mode, err := models.ParseAssistanceMode(input.Mode)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := b.Bike.SetAssistanceMode(mode); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, b.Bike.CurrentData())
}

// StartRide begins a session. GPS tracking is best effort: without a
// location permission the ride is recorded from telemetry only.
func (b *BikeController) StartRide(c *gin.Context) {
	if !b.Bike.IsConnected() {
		c.JSON(http.StatusConflict, gin.H{"error": bike.ErrNotConnected.Error()})
		return
	}
	if err := b.Session.StartRide(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	tracking := false
	if b.Location != nil {
		err := b.Location.StartTracking(b.baseCtx(), 0, b.Session.OnLocation)
		if err != nil {
			logrus.WithError(err).Warn("Ride started without GPS tracking")
		} else {
			tracking = true
		}
	}
	c.JSON(http.StatusCreated, gin.H{"active": true, "gps_tracking": tracking})
}

func (b *BikeController) Metrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"active":  b.Session.Active(),
		"metrics": b.Session.Metrics(),
	})
}

// EndRide stops the session and stores the ride unless it was too short.
func (b *BikeController) EndRide(c *gin.Context) {
	if b.Location != nil {
		b.Location.StopTracking()
	}

	ride, err := b.Session.EndRide()
	switch {
	case errors.Is(err, bike.ErrRideNotActive):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case errors.Is(err, bike.ErrRideTooShort):
		logrus.WithError(err).Info("Ride discarded")
		c.JSON(http.StatusOK, gin.H{"saved": false, "reason": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := b.Rides.SaveRide(c.Request.Context(), ride); err != nil {
		logrus.WithError(err).WithField("ride_id", ride.ID).Error("Failed to save ride")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save ride"})
		return
	}
	logrus.WithFields(logrus.Fields{
		"ride_id":  ride.ID,
		"distance": ride.Distance,
		"calories": ride.CaloriesBurnt,
	}).Info("Ride saved")
	c.JSON(http.StatusCreated, gin.H{"saved": true, "ride": ride})
}
