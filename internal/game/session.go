package game

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"voxelfield/internal/config"
	"voxelfield/internal/density"
	"voxelfield/internal/logging"
	"voxelfield/internal/meshing"
	"voxelfield/internal/profiling"
)

// SessionOptions configures a Session. Sink and Reporter are required.
type SessionOptions struct {
	Sink     meshing.Sink
	Reporter Reporter
	Update   func()
	Metrics  *profiling.Metrics
	Logger   *slog.Logger
	// LevelVar, when set, follows the scene's log_level.
	LevelVar *slog.LevelVar
	// Predicates are host pause predicates addressable by name from the scene.
	Predicates map[string]func() bool
}

// Session binds scene files to a scheduler. It owns the density environment
// and turns each loaded scene into a single queued batch.
type Session struct {
	Scheduler *Scheduler

	env        *density.Env
	reporter   Reporter
	logger     *slog.Logger
	levelVar   *slog.LevelVar
	predicates map[string]func() bool

	start  time.Time
	resume chan struct{}

	mu      sync.Mutex
	current config.File
	loaded  bool
}

// NewSession creates the scheduler and the environment its presets read.
func NewSession(opts SessionOptions) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		env:        density.NewEnv(),
		reporter:   opts.Reporter,
		logger:     logger,
		levelVar:   opts.LevelVar,
		predicates: opts.Predicates,
		resume:     make(chan struct{}, 1),
	}
	s.Scheduler = New(Options{
		Sink:            opts.Sink,
		Reporter:        opts.Reporter,
		Update:          opts.Update,
		BeforeRecompute: s.advanceTime,
		Metrics:         opts.Metrics,
		Logger:          logger,
	})
	return s
}

// Env returns the environment presets read params and time from
func (s *Session) Env() *density.Env {
	return s.env
}

// advanceTime publishes seconds since the first recompute to the presets.
func (s *Session) advanceTime(now time.Time) {
	if s.start.IsZero() {
		s.start = now
	}
	s.env.SetTime(now.Sub(s.start).Seconds())
}

// Apply resolves f and enqueues it as one batch. Names that do not resolve are
// returned immediately; range errors are rejected when the batch is drained.
func (s *Session) Apply(f config.File) error {
	preset, err := density.Lookup(f.Density)
	if err != nil {
		return err
	}
	sliders, checks, err := f.SplitParams()
	if err != nil {
		return err
	}
	pause, err := f.Pause.Resolve(s.predicates, s.env)
	if err != nil {
		return err
	}
	level, err := logging.ParseLevel(f.LogLevel)
	if err != nil {
		return err
	}

	configure := s.Scheduler.Configure(Config{
		Resolution: f.Resolution,
		Rate:       f.Rate,
		Density:    preset.Build(s.env),
		Pause:      pause,
	})
	s.Scheduler.Enqueue(func() error {
		if err := configure(); err != nil {
			return err
		}
		s.env.SetParams(sliders, checks)
		if s.levelVar != nil {
			s.levelVar.Set(level)
		}
		s.mu.Lock()
		s.current = f
		s.loaded = true
		s.mu.Unlock()
		s.logger.Info("scene applied",
			"density", f.Density,
			"resolution", f.Resolution,
			"rate", f.Rate,
			"run_id", s.Scheduler.RunID(),
		)
		if s.Scheduler.Halted() {
			s.signalResume()
		}
		return nil
	})
	return nil
}

// Load reads path and applies it. A failure leaves the running scene as is.
func (s *Session) Load(path string) error {
	f, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := s.Apply(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Reload is the watcher callback. Load failures are reported and leave the
// running scene untouched.
func (s *Session) Reload(path string) {
	if err := s.Load(path); err != nil {
		s.reporter.Report("scene reload failed", err)
		return
	}
	s.logger.Info("scene reloaded", "path", path)
}

// Resume is signalled when a scene is applied while the scheduler is halted.
// A batch rejected at drain time never signals.
func (s *Session) Resume() <-chan struct{} {
	return s.resume
}

func (s *Session) signalResume() {
	select {
	case s.resume <- struct{}{}:
	default:
	}
}

// Current returns the last scene that was applied on a tick
func (s *Session) Current() (config.File, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.loaded
}
