package controllers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"rar_kit/internal/services/export"
	"rar_kit/internal/services/storage"
)

// RideController serves the ride history.
type RideController struct {
	Rides *storage.RideStore
}

func (r *RideController) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rides": r.Rides.AllRides(c.Request.Context())})
}

func (r *RideController) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, r.Rides.Statistics(c.Request.Context()))
}

// Chart renders the history as an HTML bar chart.
func (r *RideController) Chart(c *gin.Context) {
	var buf bytes.Buffer
	if err := export.HistoryChart(&buf, r.Rides.AllRides(c.Request.Context())); err != nil {
		logrus.WithError(err).Error("Ride chart render failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not render chart"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (r *RideController) Get(c *gin.Context) {
	ride, err := r.Rides.RideByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, storage.ErrRideNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ride)
}

func (r *RideController) GPX(c *gin.Context) {
	ride, err := r.Rides.RideByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	doc, err := export.GPX(ride)
	if errors.Is(err, export.ErrEmptyRoute) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		logrus.WithError(err).WithField("ride_id", ride.ID).Error("GPX export failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not export ride"})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "ride-"+ride.ID+".gpx"))
	c.Data(http.StatusOK, "application/gpx+xml", doc)
}

func (r *RideController) FIT(c *gin.Context) {
	ride, err := r.Rides.RideByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	var buf bytes.Buffer
	if err := export.FIT(&buf, ride); err != nil {
		logrus.WithError(err).WithField("ride_id", ride.ID).Error("FIT export failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not export ride"})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "ride-"+ride.ID+".fit"))
	c.Data(http.StatusOK, "application/vnd.ant.fit", buf.Bytes())
}

func (r *RideController) Delete(c *gin.Context) {
	err := r.Rides.DeleteRide(c.Request.Context(), c.Param("id"))
	if errors.Is(err, storage.ErrRideNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (r *RideController) Clear(c *gin.Context) {
	if err := r.Rides.ClearAllRides(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
