package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	Version = "0.1.0"
	appName = "nearby"
)

func main() {
	if err := rootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// flags override the matching environment variables when set.
type flags struct {
	envFile  string
	port     string
	cadence  int
	radius   float64
	sampler  string
	replay   string
	staticAt []float64
}

func rootCmd() *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Unlock location-bound songs when you are near a known place",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&f.envFile, "env-file", ".env", "Env file to load before reading the environment")
	cmd.PersistentFlags().IntVar(&f.cadence, "cadence-ms", 0, "Milliseconds between proximity cycles (CADENCE_MS)")
	cmd.PersistentFlags().Float64Var(&f.radius, "radius", 0, "Proximity radius in meters (RADIUS_METERS)")
	cmd.PersistentFlags().StringVar(&f.sampler, "sampler", "", "Position source: static or replay (SAMPLER)")
	cmd.PersistentFlags().StringVar(&f.replay, "track", "", "YAML track replayed by the replay sampler (REPLAY_PATH)")
	cmd.PersistentFlags().Float64SliceVar(&f.staticAt, "at", nil, "lat,lon reported by the static sampler (STATIC_LAT, STATIC_LON)")

	cmd.AddCommand(serveCmd(f), checkCmd(f))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", appName, Version)
		},
	})

	return cmd
}
