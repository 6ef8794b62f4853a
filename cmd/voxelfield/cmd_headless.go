package main

import (
	"errors"
	"fmt"
	"time"

	"voxelfield/internal/game"
	"voxelfield/internal/logging"
	"voxelfield/internal/meshing"
	"voxelfield/internal/profiling"

	"github.com/spf13/cobra"
)

var (
	headlessTicks int
	headlessFPS   int

	headlessCmd = &cobra.Command{
		Use:   "headless",
		Short: "Drive the scheduler with synthetic frame timestamps and print recompute stats",
		Args:  cobra.NoArgs,
		RunE:  runHeadless,
	}
)

func init() {
	addSceneFlag(headlessCmd)
	headlessCmd.Flags().IntVar(&headlessTicks, "ticks", 600, "host frames to simulate")
	headlessCmd.Flags().IntVar(&headlessFPS, "fps", 60, "simulated host frame rate")
}

// countingSurface closes after a fixed number of frames
type countingSurface struct {
	frames, limit int
}

func (s *countingSurface) ShouldClose() bool { return s.frames >= s.limit }
func (s *countingSurface) Present()          { s.frames++ }

func runHeadless(cmd *cobra.Command, args []string) error {
	if headlessTicks <= 0 || headlessFPS <= 0 {
		return errors.New("--ticks and --fps must be positive")
	}

	batch := meshing.NewBatch()
	metrics := profiling.NewMetrics()
	reporter := logging.NewReporter(logger)
	session := game.NewSession(game.SessionOptions{
		Sink:     batch,
		Reporter: reporter,
		Metrics:  metrics,
		Logger:   logger,
		LevelVar: levelVar,
	})
	if err := session.Load(scenePath); err != nil {
		return err
	}

	frame := time.Second / time.Duration(headlessFPS)
	clock := time.Unix(0, 0)
	surface := &countingSurface{limit: headlessTicks}
	app := game.NewApp(session.Scheduler, surface, game.AppOptions{
		Now: func() time.Time {
			clock = clock.Add(frame)
			return clock
		},
		Logger: logger,
	})

	start := time.Now()
	runErr := app.Run(cmd.Context())
	wall := time.Since(start)

	stats := session.Scheduler.LastStats()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "frames:      %d (%v simulated, %v wall)\n", surface.frames, frame*time.Duration(surface.frames), wall.Round(time.Millisecond))
	fmt.Fprintf(out, "recomputes:  %d\n", batch.Frames)
	fmt.Fprintf(out, "resolution:  %d (%d cells)\n", session.Scheduler.Field().Resolution(), stats.Cells)
	fmt.Fprintf(out, "present:     %d\n", stats.Present)
	fmt.Fprintf(out, "emitted:     %d\n", stats.Emitted)
	fmt.Fprintf(out, "state:       %s\n", session.Scheduler.State())
	if runErr != nil {
		return fmt.Errorf("%w: %v", runErr, reporter.Last())
	}
	return nil
}
