package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	var configPath string

	root := &cobra.Command{
		Use:          "rar-kit",
		Short:        "E-bike dashboard backend",
		Long:         "rar-kit serves live bike telemetry, navigation and ride history to the RAR Kit phone app.",
		Version:      version,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (defaults to $RAR_CONFIG)")

	root.AddCommand(newServeCmd(&configPath), newStatsCmd(&configPath))

	if err := fang.Execute(context.Background(), root); err != nil {
		os.Exit(1)
	}
}
