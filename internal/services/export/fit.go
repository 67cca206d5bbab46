package export

import (
	"io"
	"math"

	"github.com/muktihari/fit/encoder"
	"github.com/muktihari/fit/profile/mesgdef"
	"github.com/muktihari/fit/profile/typedef"
	"github.com/muktihari/fit/proto"

	"rar_kit/internal/models"
)

// FIT position unit.
const degreesToSemicircles = 2147483648.0 / 180.0

// speedScale converts km/h to the FIT enhanced speed unit (mm/s).
func speedScale(kmh float64) uint32 {
	return uint32(math.Round(kmh / 3.6 * 1000))
}

// FIT writes the ride as a cycling activity: one record per route point
// followed by a timer stop event, a lap and the session summary.
func FIT(w io.Writer, ride models.Ride) error {
	msgs := []proto.Message{
		(&mesgdef.FileId{
			Type:         typedef.FileActivity,
			Manufacturer: typedef.ManufacturerDevelopment,
			TimeCreated:  ride.StartTime,
		}).ToMesg(nil),
	}

	for _, p := range timedTrack(ride) {
		rec := mesgdef.Record{
			Timestamp:    p.Time,
			PositionLat:  int32(p.Lat * degreesToSemicircles),
			PositionLong: int32(p.Lng * degreesToSemicircles),
			Distance:     uint32(math.Round(p.Distance * 1000 * 100)), // cm
		}
		msgs = append(msgs, rec.ToMesg(nil))
	}

	elapsed := uint32(ride.Duration().Milliseconds())
	distance := uint32(math.Round(ride.Distance * 1000 * 100))
	calories := uint16(math.Min(math.Round(ride.CaloriesBurnt), math.MaxUint16-1))

	msgs = append(msgs,
		(&mesgdef.Event{
			Timestamp: ride.EndTime,
			Event:     typedef.EventTimer,
			EventType: typedef.EventTypeStopAll,
		}).ToMesg(nil),
		(&mesgdef.Lap{
			Timestamp:        ride.EndTime,
			StartTime:        ride.StartTime,
			TotalElapsedTime: elapsed,
			TotalTimerTime:   elapsed,
			TotalDistance:    distance,
			TotalCalories:    calories,
			Event:            typedef.EventLap,
			EventType:        typedef.EventTypeStop,
		}).ToMesg(nil),
		(&mesgdef.Session{
			Timestamp:        ride.EndTime,
			StartTime:        ride.StartTime,
			TotalElapsedTime: elapsed,
			TotalTimerTime:   elapsed,
			TotalDistance:    distance,
			TotalCalories:    calories,
			EnhancedAvgSpeed: speedScale(ride.AvgSpeed),
			EnhancedMaxSpeed: speedScale(ride.MaxSpeed),
			Sport:            typedef.SportCycling,
			SubSport:         typedef.SubSportGeneric,
			Event:            typedef.EventSession,
			EventType:        typedef.EventTypeStop,
			Trigger:          typedef.SessionTriggerActivityEnd,
		}).ToMesg(nil),
	)

	fit := proto.FIT{Messages: msgs}
	return encoder.New(w).Encode(&fit)
}
