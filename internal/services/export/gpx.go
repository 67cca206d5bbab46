package export

import (
	"errors"
	"fmt"

	"github.com/tkrajina/gpxgo/gpx"

	"rar_kit/internal/models"
)

var ErrEmptyRoute = errors.New("ride has no recorded route")

// GPX renders the ride route as a single-segment GPX 1.1 track.
func GPX(ride models.Ride) ([]byte, error) {
	if len(ride.Route) == 0 {
		return nil, ErrEmptyRoute
	}

	segment := gpx.GPXTrackSegment{}
	for _, p := range timedTrack(ride) {
		segment.Points = append(segment.Points, gpx.GPXPoint{
			Point:     gpx.Point{Latitude: p.Lat, Longitude: p.Lng},
			Timestamp: p.Time.UTC(),
		})
	}

	doc := gpx.GPX{
		Creator: "RAR Kit",
		Name:    rideName(ride),
		Time:    &ride.StartTime,
		Tracks: []gpx.GPXTrack{{
			Name:     rideName(ride),
			Type:     "cycling",
			Segments: []gpx.GPXTrackSegment{segment},
		}},
	}
	return doc.ToXml(gpx.ToXmlParams{Version: "1.1", Indent: true})
}

func rideName(ride models.Ride) string {
	return fmt.Sprintf("Ride %s", ride.StartTime.Format("2006-01-02 15:04"))
}
