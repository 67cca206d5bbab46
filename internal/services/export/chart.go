package export

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"rar_kit/internal/models"
	"rar_kit/internal/services/storage"
)

// HistoryChart renders distance and average speed per ride, oldest first,
// as a standalone HTML page. rides is newest first as stored.
func HistoryChart(w io.Writer, rides []models.Ride) error {
	stats := storage.Aggregate(rides)

	labels := make([]string, 0, len(rides))
	distances := make([]opts.BarData, 0, len(rides))
	speeds := make([]opts.BarData, 0, len(rides))
	for i := len(rides) - 1; i >= 0; i-- {
		r := rides[i]
		labels = append(labels, r.StartTime.Format("Jan 2 15:04"))
		distances = append(distances, opts.BarData{Value: round1(r.Distance)})
		speeds = append(speeds, opts.BarData{Value: round1(r.AvgSpeed)})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Ride history", Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Ride history",
			Subtitle: fmt.Sprintf("%d rides, %.1f km, avg %.1f km/h", stats.TotalRides, stats.TotalDistance, stats.AvgSpeed),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(labels).
		AddSeries("distance (km)", distances).
		AddSeries("avg speed (km/h)", speeds)

	return bar.Render(w)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
