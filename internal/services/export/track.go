// Package export renders stored rides as GPX tracks, FIT activities and
// HTML charts.
package export

import (
	"time"

	"rar_kit/internal/geo"
	"rar_kit/internal/models"
)

// trackPoint is a route point with an interpolated timestamp and the
// cumulative distance in km.
type trackPoint struct {
	models.RoutePoint
	Time     time.Time
	Distance float64
}

// timedTrack spreads the ride's duration evenly over its route points.
func timedTrack(ride models.Ride) []trackPoint {
	n := len(ride.Route)
	out := make([]trackPoint, 0, n)
	var step time.Duration
	if n > 1 {
		step = ride.Duration() / time.Duration(n-1)
	}
	var dist float64
	for i, p := range ride.Route {
		if i > 0 {
			prev := ride.Route[i-1]
			dist += geo.HaversineKm(prev.Lat, prev.Lng, p.Lat, p.Lng)
		}
		out = append(out, trackPoint{
			RoutePoint: p,
			Time:       ride.StartTime.Add(time.Duration(i) * step),
			Distance:   dist,
		})
	}
	return out
}
