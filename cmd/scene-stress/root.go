package main

import (
	"fmt"
	"os"

	"github.com/plus3/scenic/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "scene-stress",
	Short: "Stress the scene graph with a deep tree and concurrent command producers",
	Long: `scene-stress builds a forest of render, rigid and light objects, then runs frames
as fast as possible while worker goroutines read registry snapshots and push
transform writes, reparents and respawns through the command buffer.`,
	SilenceUsage: true,
	RunE:         runStress,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "TOML configuration file")

	flags := rootCmd.Flags()
	flags.Duration("duration", 0, "total run time")
	flags.Int("depth", 0, "levels below each top-level object")
	flags.Int("breadth", 0, "children per node")
	flags.Int("roots", 0, "top-level objects")
	flags.Int("workers", 0, "command producing goroutines")
	flags.Float64("churn", 0, "fraction of render objects reparented or respawned per frame")
	flags.String("profile", "", "profile mode: cpu, mem, allocs, block, mutex or trace")
	flags.String("metrics-file", "", "write the final Prometheus metrics to this file")
	flags.Bool("gc-pause-metrics", false, "include GC pause totals in the report")
}

// loadConfig reads --config and applies the flags the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("duration") {
		cfg.Stress.Duration, _ = flags.GetDuration("duration")
	}
	if flags.Changed("depth") {
		cfg.Stress.Depth, _ = flags.GetInt("depth")
	}
	if flags.Changed("breadth") {
		cfg.Stress.Breadth, _ = flags.GetInt("breadth")
	}
	if flags.Changed("roots") {
		cfg.Stress.Roots, _ = flags.GetInt("roots")
	}
	if flags.Changed("workers") {
		cfg.Stress.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("churn") {
		cfg.Stress.Churn, _ = flags.GetFloat64("churn")
	}
	if flags.Changed("profile") {
		cfg.Profile.Mode, _ = flags.GetString("profile")
	}
	if flags.Changed("gc-pause-metrics") {
		cfg.Stress.GCPauses, _ = flags.GetBool("gc-pause-metrics")
	}
	return cfg, cfg.Validate()
}
