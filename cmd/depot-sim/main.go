// Package main provides depot-sim, an n-body gravity simulation that runs
// several independent depot worlds side by side.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/TheBitDrifter/depot"
)

var (
	// configFile is set by the --config flag.
	configFile string

	// profileMode is set by the --profile flag.
	profileMode string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "depot-sim",
	Short: "Run an n-body gravity simulation on depot worlds",
	Long: `depot-sim spawns bodies with position, velocity and mass, pins the first
one in place, and advances every world for a number of ticks. Each world is
independent and runs on its own goroutine.`,
	SilenceUsage: true,
	RunE:         runSim,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&configFile, "config", "", "config file (yaml)")
	flags.StringVar(&profileMode, "profile", "", "write a cpu or mem profile to the working directory")
	registerSimFlags(flags)
}

func runSim(cmd *cobra.Command, args []string) error {
	params, err := loadParams(cmd.Flags(), configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	switch profileMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	default:
		return fmt.Errorf("unknown profile mode %q", profileMode)
	}

	logger, err := depot.NewLogger(params.World.LogLevel)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()
	params.World.Logger = logger

	summaries, err := runWorlds(params)
	if err != nil {
		return err
	}
	for i, s := range summaries {
		fmt.Fprintf(cmd.OutOrStdout(), "world %d %s: %d bodies, %d archetypes, kinetic energy %.4f\n",
			i, s.ID, s.Bodies, s.Archetypes, s.KineticEnergy)
	}
	logger.Info("simulation finished", zap.Int("worlds", len(summaries)), zap.Int("ticks", params.Ticks))
	return nil
}

// runWorlds simulates params.Worlds worlds concurrently. Worlds share
// nothing, so each goroutine owns its world outright.
func runWorlds(params simParams) ([]summary, error) {
	summaries := make([]summary, params.Worlds)
	var g errgroup.Group
	for i := range params.Worlds {
		seed := params.Seed + uint64(i)
		g.Go(func() error {
			s, err := simulate(params, seed)
			if err != nil {
				return fmt.Errorf("world %d: %w", i, err)
			}
			summaries[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}
