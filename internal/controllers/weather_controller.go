package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"rar_kit/internal/models"
)

var errInvalidCoords = errors.New("lat and lon query parameters must be numbers")

type WeatherProvider interface {
	Current(ctx context.Context, lat, lon float64) *models.WeatherData
}

type WeatherController struct {
	Weather WeatherProvider
}

func (w *WeatherController) Current(c *gin.Context) {
	coords, err := coordsFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	data := w.Weather.Current(c.Request.Context(), coords.Latitude, coords.Longitude)
	if data == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "weather unavailable"})
		return
	}
	c.JSON(http.StatusOK, data)
}
