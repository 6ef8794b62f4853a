package main

import (
	"context"
	"errors"

	"voxelfield/internal/game"
	"voxelfield/internal/graphics"
	"voxelfield/internal/logging"
	"voxelfield/internal/profiling"
	"voxelfield/internal/watch"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spf13/cobra"
	"github.com/xlab/closer"
)

var (
	watchScene  bool
	metricsAddr string
	vsync       bool
	fpsCap      int

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Open a window and render the scene, recomputing at its rate",
		Args:  cobra.NoArgs,
		RunE:  runWindow,
	}
)

func init() {
	addSceneFlag(runCmd)
	runCmd.Flags().BoolVar(&watchScene, "watch", false, "reload the scene when the file changes")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	runCmd.Flags().BoolVar(&vsync, "vsync", true, "sync presents to the display")
	runCmd.Flags().IntVar(&fpsCap, "fps", 0, "cap host frames per second (0 = uncapped)")
}

func runWindow(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// closer calls cancel from its signal goroutine and then exits the process,
	// so the deferred GL and watcher teardown below only runs on a normal return.
	closer.Bind(cancel)

	if err := glfw.Init(); err != nil {
		return err
	}
	defer glfw.Terminate()

	window, err := graphics.SetupWindow("voxelfield", vsync)
	if err != nil {
		return err
	}
	defer window.Destroy()

	renderer, err := graphics.NewRenderer(graphics.NewCamera(graphics.WinWidth, graphics.WinHeight))
	if err != nil {
		return err
	}
	defer renderer.Dispose()
	surface := graphics.NewWindow(window, renderer)

	var metrics *profiling.Metrics
	if metricsAddr != "" {
		metrics = profiling.NewMetrics()
		go func() {
			if err := metrics.Serve(ctx, metricsAddr, logger); err != nil {
				logger.Error("metrics endpoint stopped", "error", err)
			}
		}()
	}

	session := game.NewSession(game.SessionOptions{
		Sink:       renderer,
		Reporter:   logging.NewReporter(logger),
		Metrics:    metrics,
		Logger:     logger,
		LevelVar:   levelVar,
		Predicates: surface.Predicates(),
	})
	if err := session.Load(scenePath); err != nil {
		return err
	}
	surface.OnReload = func() { session.Reload(scenePath) }

	if watchScene {
		watcher, err := watch.New(scenePath, session.Reload, watch.Options{Logger: logger})
		if err != nil {
			return err
		}
		defer watcher.Stop()
		if err := watcher.Start(ctx); err != nil {
			return err
		}
		logger.Info("watching scene", "path", watcher.Path())
	}

	app := game.NewApp(session.Scheduler, surface, game.AppOptions{
		FPS:    fpsCap,
		Resume: session.Resume(),
		Logger: logger,
	})
	if err := app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
