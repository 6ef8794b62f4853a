package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"voxelfield/internal/logging"

	"github.com/spf13/cobra"
)

func init() {
	// GLFW and GL calls must stay on the main thread
	runtime.LockOSThread()
}

var (
	scenePath string
	logLevel  string
	logJSON   bool

	logger   *slog.Logger
	levelVar *slog.LevelVar

	rootCmd = &cobra.Command{
		Use:   "voxelfield",
		Short: "Sample a density function over a voxel lattice and render its visible surface",
		Long: `voxelfield evaluates a density function on an N×N×N lattice at a fixed
recompute rate, culls fully enclosed cells, and draws the rest as instanced
cubes. Scenes are YAML files naming a density preset and its parameters.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			logger, levelVar, err = logging.New(logging.Config{Level: logLevel, JSON: logJSON})
			if err != nil {
				return err
			}
			slog.SetDefault(logger)
			return nil
		},
	}
)

func main() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "always log JSON lines")

	rootCmd.AddCommand(runCmd, headlessCmd, snapshotCmd, presetsCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "voxelfield:", err)
		os.Exit(1)
	}
}

// addSceneFlag registers the -c/--config flag on cmd
func addSceneFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&scenePath, "config", "c", "scene.yaml", "scene file")
}
