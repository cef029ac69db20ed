package main

import (
	"fmt"
	"os"

	"github.com/plus3/scenic/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "scene-view [scene.yaml]",
	Short: "View and edit a scene file",
	Long: `scene-view loads a YAML scene file, or a built-in demo scene when no file is
given, and runs it with physics in a top-down view. The hierarchy and
inspector windows edit the live scene; every edit can be undone.

Keys: Ctrl+Z undo, Ctrl+Y redo, Delete removes the selection, F1 toggles the
editor windows, Escape quits. Left click selects, Shift adds to the
selection, right drag pans and the wheel zooms.`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runView,
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
	flags.Int("width", 0, "window width")
	flags.Int("height", 0, "window height")
	flags.Float32("zoom", 0, "screen pixels per world unit")
	flags.String("save", "", "write the scene to this file on exit")
}

// loadConfig reads --config and applies the flags the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("width") {
		cfg.View.Width, _ = flags.GetInt("width")
	}
	if flags.Changed("height") {
		cfg.View.Height, _ = flags.GetInt("height")
	}
	if flags.Changed("zoom") {
		cfg.View.Zoom, _ = flags.GetFloat32("zoom")
	}
	return cfg, cfg.Validate()
}
