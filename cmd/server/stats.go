package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"rar_kit/internal/config"
	"rar_kit/internal/models"
	"rar_kit/internal/services/routing"
	"rar_kit/internal/services/storage"
)

func newStatsCmd(configPath *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print ride statistics from the local store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			db, err := config.InitDB(cfg.DB)
			if err != nil {
				return err
			}
			store := storage.NewRideStore(storage.NewGormKV(db), cfg.Ride.MaxStoredRides)
			rides := store.AllRides(cmd.Context())
			printStats(cmd.OutOrStdout(), rides, limit)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "last", "n", 5, "number of recent rides to list")
	return cmd
}

func printStats(w io.Writer, rides []models.Ride, limit int) {
	stats := storage.Aggregate(rides)
	fmt.Fprintf(w, "Rides:     %d\n", stats.TotalRides)
	fmt.Fprintf(w, "Distance:  %s\n", routing.FormatDistance(stats.TotalDistance))
	fmt.Fprintf(w, "Time:      %s\n", routing.FormatTime(stats.TotalDuration/60))
	fmt.Fprintf(w, "Avg speed: %.1f km/h\n", stats.AvgSpeed)
	fmt.Fprintf(w, "Calories:  %.0f kcal\n", stats.TotalCalories)

	if limit > len(rides) {
		limit = len(rides)
	}
	for _, r := range rides[:max(limit, 0)] {
		fmt.Fprintf(w, "  %s  %8s  %6.1f km/h  %4.0f kcal\n",
			r.StartTime.Format("2006-01-02 15:04"), routing.FormatDistance(r.Distance), r.AvgSpeed, r.CaloriesBurnt)
	}
}
