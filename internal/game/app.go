package game

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrHalted is returned by Run when a recompute failed and the app has no
// resume channel to wait on.
var ErrHalted = errors.New("game: tick loop halted after a failed recompute")

// Surface is the host side of a frame: a window, or a counter when headless.
type Surface interface {
	ShouldClose() bool
	// Present shows the frame and processes pending host events.
	Present()
}

// App is the host loop. It calls Tick once per frame while the scheduler
// wants ticks, and keeps presenting the last frame while halted.
type App struct {
	sched   *Scheduler
	surface Surface
	limiter *FPSLimiter
	resume  <-chan struct{}
	logger  *slog.Logger
	now     func() time.Time
}

// AppOptions configures an App
type AppOptions struct {
	// FPS caps the host frame rate; 0 leaves pacing to the surface (vsync).
	FPS int
	// Resume wakes a halted loop once a new configuration has been applied.
	// Nil makes a halt end Run with ErrHalted.
	Resume <-chan struct{}
	// Now defaults to time.Now
	Now    func() time.Time
	Logger *slog.Logger
}

// NewApp returns a loop driving sched against surface
func NewApp(sched *Scheduler, surface Surface, opts AppOptions) *App {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		sched:   sched,
		surface: surface,
		limiter: NewFPSLimiter(opts.FPS),
		resume:  opts.Resume,
		logger:  logger,
		now:     now,
	}
}

// Run loops until the surface closes or ctx is cancelled
func (a *App) Run(ctx context.Context) error {
	a.sched.Enter(a.now())
	halted := false
	for !a.surface.ShouldClose() {
		if err := ctx.Err(); err != nil {
			return err
		}

		if halted {
			// a reload queued while halted is applied here and signals resume
			a.sched.Drain()
			select {
			case <-a.resume:
				halted = false
				a.sched.Enter(a.now())
			default:
			}
		}

		if !halted && !a.sched.Tick(a.now()) {
			if a.resume == nil {
				return ErrHalted
			}
			halted = true
			a.discardResume()
			a.logger.Warn("tick loop halted, waiting for a scene reload", "run_id", a.sched.RunID())
		}

		a.surface.Present()
		a.limiter.Wait(halted)
	}
	return nil
}

// discardResume drops a signal left over from before the halt; only a
// configuration applied after the failure may restart the loop.
func (a *App) discardResume() {
	select {
	case <-a.resume:
	default:
	}
}
