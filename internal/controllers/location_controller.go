package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"rar_kit/internal/models"
	"rar_kit/internal/services/location"
)

// LocationController accepts GPS fixes from the phone and serves the
// current position.
type LocationController struct {
	Service *location.Service
	// Reported is nil when the GPS is simulated.
	Reported *location.ReportedProvider
}

func (l *LocationController) Report(c *gin.Context) {
	if l.Reported == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "GPS is simulated on this server"})
		return
	}
	var coords models.LocationCoords
	if err := c.ShouldBindJSON(&coords); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := l.Reported.Report(coords); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "received"})
}

// SetPermission mirrors the phone's location permission.
func (l *LocationController) SetPermission(c *gin.Context) {
	if l.Reported == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "GPS is simulated on this server"})
		return
	}
	var input struct {
		Granted *bool `json:"granted" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	l.Reported.SetPermission(*input.Granted)
	c.JSON(http.StatusOK, gin.H{"granted": *input.Granted})
}

// Current reads a fix, retrying while the GPS has none.
func (l *LocationController) Current(c *gin.Context) {
	coords, err := l.Service.CurrentLocation(c.Request.Context())
	switch {
	case errors.Is(err, location.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, coords)
	}
}
