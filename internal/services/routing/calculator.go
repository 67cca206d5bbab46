// Package routing computes cycling routes, falling back to a straight line
// when the directions API is unavailable.
package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"rar_kit/internal/geo"
	"rar_kit/internal/httputil"
	"rar_kit/internal/models"
)

const DefaultAvgSpeed = 15.0 // km/h

var errNoRoute = errors.New("directions response has no routes")

type Config struct {
	BaseURL string        `yaml:"base_url"`
	Profile string        `yaml:"profile"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL: "https://api.openrouteservice.org",
		Profile: "cycling-regular",
		Timeout: 10 * time.Second,
	}
}

type Calculator struct {
	cfg    Config
	client httputil.Doer
}

func NewCalculator(cfg Config, client httputil.Doer) *Calculator {
	if client == nil {
		client = httputil.NewClient(cfg.Timeout)
	}
	if cfg.Profile == "" {
		cfg.Profile = DefaultConfig().Profile
	}
	return &Calculator{cfg: cfg, client: client}
}

type directionsRequest struct {
	Coordinates [][2]float64 `json:"coordinates"`
	Units       string       `json:"units"`
}

type directionsResponse struct {
	Routes []struct {
		Summary struct {
			Distance float64 `json:"distance"` // km
			Duration float64 `json:"duration"` // seconds
		} `json:"summary"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

// CalculateRoute always returns a route. avgSpeed (km/h) only affects the
// straight-line fallback; values <= 0 mean DefaultAvgSpeed.
func (c *Calculator) CalculateRoute(ctx context.Context, start, end models.LocationCoords, avgSpeed float64) models.Route {
	if avgSpeed <= 0 {
		avgSpeed = DefaultAvgSpeed
	}
	route, err := c.directions(ctx, start, end)
	if err != nil {
		logrus.WithError(err).Warn("Directions unavailable, using straight line.")
		return StraightLine(start, end, avgSpeed)
	}
	return route
}

// StraightLine is the two-point fallback route.
func StraightLine(start, end models.LocationCoords, avgSpeed float64) models.Route {
	if avgSpeed <= 0 {
		avgSpeed = DefaultAvgSpeed
	}
	distance := geo.Distance(start, end)
	return models.Route{
		Points:        []models.RoutePoint{start.Point(), end.Point()},
		Distance:      distance,
		EstimatedTime: distance / avgSpeed * 60,
		Source:        models.RouteSourceStraightLine,
	}
}

func (c *Calculator) directions(ctx context.Context, start, end models.LocationCoords) (models.Route, error) {
	body, err := json.Marshal(directionsRequest{
		Coordinates: [][2]float64{
			{start.Longitude, start.Latitude},
			{end.Longitude, end.Latitude},
		},
		Units: "km",
	})
	if err != nil {
		return models.Route{}, err
	}

	url := fmt.Sprintf("%s/v2/directions/%s", c.cfg.BaseURL, c.cfg.Profile)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return models.Route{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, application/geo+json")
	req.Header.Set("Authorization", c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return models.Route{}, err
	}
	var dr directionsResponse
	if err := httputil.DecodeJSON(resp, &dr); err != nil {
		return models.Route{}, err
	}
	if len(dr.Routes) == 0 {
		return models.Route{}, errNoRoute
	}

	r := dr.Routes[0]
	points := make([]models.RoutePoint, 0, len(r.Geometry.Coordinates))
	for _, pair := range r.Geometry.Coordinates {
		if len(pair) < 2 {
			return models.Route{}, fmt.Errorf("malformed coordinate %v", pair)
		}
		points = append(points, models.RoutePoint{Lat: pair[1], Lng: pair[0]})
	}
	if len(points) == 0 {
		return models.Route{}, errNoRoute
	}
	return models.Route{
		Points:        points,
		Distance:      r.Summary.Distance,
		EstimatedTime: r.Summary.Duration / 60,
		Source:        models.RouteSourceDirections,
	}, nil
}

// FormatDistance renders km as "850 m" below one kilometre, else "3.2 km".
func FormatDistance(km float64) string {
	if km < 1 {
		return fmt.Sprintf("%d m", int(math.Round(km*1000)))
	}
	return fmt.Sprintf("%.1f km", km)
}

// FormatTime renders minutes as "12 min" below an hour, else "1h 5min".
func FormatTime(minutes float64) string {
	total := int(math.Round(minutes))
	if total < 60 {
		return fmt.Sprintf("%d min", total)
	}
	return fmt.Sprintf("%dh %dmin", total/60, total%60)
}
