package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"rar_kit/internal/geo"
	"rar_kit/internal/models"
	"rar_kit/internal/services/routing"
)

type Geocoder interface {
	Search(ctx context.Context, query string) []models.GeocodeResult
	Reverse(ctx context.Context, coords models.LocationCoords) string
}

type RouteCalculator interface {
	CalculateRoute(ctx context.Context, start, end models.LocationCoords, avgSpeed float64) models.Route
}

// NavigationController serves address search and route planning.
type NavigationController struct {
	Geocoder Geocoder
	Router   RouteCalculator
}

// RouteResponse is a computed route with its map geometry and display labels.
type RouteResponse struct {
	models.Route
	Geometry      string  `json:"geometry"` // GeoJSON LineString
	DistanceLabel string  `json:"distance_label"`
	TimeLabel     string  `json:"time_label"`
	Heading       float64 `json:"heading"` // initial bearing, degrees
}

func toRouteResponse(route models.Route) RouteResponse {
	geometry, err := route.GeoJSON()
	if err != nil {
		logrus.WithError(err).Warn("Could not encode route geometry")
	}
	var heading float64
	if len(route.Points) >= 2 {
		a, b := route.Points[0], route.Points[1]
		heading = geo.Bearing(
			models.LocationCoords{Latitude: a.Lat, Longitude: a.Lng},
			models.LocationCoords{Latitude: b.Lat, Longitude: b.Lng},
		)
	}
	return RouteResponse{
		Route:         route,
		Heading:       heading,
		Geometry:      geometry,
		DistanceLabel: routing.FormatDistance(route.Distance),
		TimeLabel:     routing.FormatTime(route.EstimatedTime),
	}
}

func (n *NavigationController) Search(c *gin.Context) {
	results := n.Geocoder.Search(c.Request.Context(), c.Query("q"))
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (n *NavigationController) Reverse(c *gin.Context) {
	coords, err := coordsFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": n.Geocoder.Reverse(c.Request.Context(), coords)})
}

// Route plans a cycling route. It never fails once the input is valid:
// the directions API falling over yields a straight line.
func (n *NavigationController) Route(c *gin.Context) {
	var input struct {
		Start    models.LocationCoords `json:"start"`
		End      models.LocationCoords `json:"end"`
		AvgSpeed float64               `json:"avg_speed"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	for _, p := range []models.LocationCoords{input.Start, input.End} {
		if err := p.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	route := n.Router.CalculateRoute(c.Request.Context(), input.Start, input.End, input.AvgSpeed)
	c.JSON(http.StatusOK, toRouteResponse(route))
}

func coordsFromQuery(c *gin.Context) (models.LocationCoords, error) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		return models.LocationCoords{}, errInvalidCoords
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		return models.LocationCoords{}, errInvalidCoords
	}
	coords := models.LocationCoords{Latitude: lat, Longitude: lon}
	if err := coords.Validate(); err != nil {
		return models.LocationCoords{}, err
	}
	return coords, nil
}
