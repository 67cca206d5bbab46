package models

import (
	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
)

const (
	RouteSourceDirections   = "directions"
	RouteSourceStraightLine = "straight_line"
)

// Route is a computed navigation route. It is never persisted.
type Route struct {
	Points        []RoutePoint `json:"points"`
	Distance      float64      `json:"distance"`       // km
	EstimatedTime float64      `json:"estimated_time"` // minutes
	Source        string       `json:"source"`
}

// LineString converts the route points into a go-geom geometry ([lng, lat] order).
func (r Route) LineString() (*geom.LineString, error) {
	coords := make([]geom.Coord, 0, len(r.Points))
	for _, p := range r.Points {
		coords = append(coords, geom.Coord{p.Lng, p.Lat})
	}
	return geom.NewLineString(geom.XY).SetCoords(coords)
}

// GeoJSON renders the route as a GeoJSON LineString for map polylines.
func (r Route) GeoJSON() (string, error) {
	if len(r.Points) == 0 {
		return "", nil
	}
	ls, err := r.LineString()
	if err != nil {
		return "", err
	}
	b, err := gjson.Marshal(ls)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
