package game

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"voxelfield/internal/config"
	"voxelfield/internal/density"
	"voxelfield/internal/meshing"
	"voxelfield/internal/profiling"
	"voxelfield/internal/world"

	"github.com/google/uuid"
)

// RunState is the scheduler lifecycle state
type RunState int

const (
	StateIdle RunState = iota
	StateRunning
	StateError
)

var stateNames = []string{"idle", "running", "error"}

func (s RunState) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// ErrInvalidRate is returned for non-positive or non-finite rates.
var ErrInvalidRate = errors.New("game: rate must be a positive number")

// Reporter receives failures the scheduler cannot handle itself.
type Reporter interface {
	Report(msg string, err error)
}

// PanicError wraps a value recovered from a panicking density function.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("density function panicked: %v", e.Value)
}

// Config is one atomic configuration batch
type Config struct {
	Resolution int
	Rate       float64
	Density    density.Func
	Pause      config.Pause
}

// Options wires the scheduler to its collaborators. Sink and Reporter are
// required; the rest are optional.
type Options struct {
	Sink     meshing.Sink
	Reporter Reporter

	// Update is the host's per-tick callback (camera, controls, draw).
	Update func()
	// BeforeRecompute runs once per update tick before the first sample.
	BeforeRecompute func(now time.Time)

	Metrics *profiling.Metrics
	Logger  *slog.Logger
}

// Scheduler drives recomputes from host ticks. It owns the field and the
// active configuration; everything except Enqueue must be called from the
// tick goroutine.
type Scheduler struct {
	field *world.Field
	queue *config.Queue
	pacer *Pacer

	sink            meshing.Sink
	reporter        Reporter
	update          func()
	beforeRecompute func(now time.Time)
	metrics         *profiling.Metrics
	logger          *slog.Logger

	density density.Func
	pause   config.Pause
	rate    float64

	state RunState
	last  time.Time
	runID string

	lastStats meshing.Stats
}

// New returns an idle scheduler with the default rate and no resolution.
func New(opts Options) *Scheduler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		field:           world.NewField(),
		queue:           config.NewQueue(),
		pacer:           NewPacer(config.DefaultRate),
		sink:            opts.Sink,
		reporter:        opts.Reporter,
		update:          opts.Update,
		beforeRecompute: opts.BeforeRecompute,
		metrics:         opts.Metrics,
		logger:          logger,
		rate:            config.DefaultRate,
		state:           StateIdle,
	}
	s.metrics.SetState(s.state.String(), stateNames)
	return s
}

// Enqueue defers a configuration change to the next tick. Safe from any goroutine.
func (s *Scheduler) Enqueue(a config.Action) {
	s.queue.Enqueue(a)
}

// Configure returns an action that applies c as a whole, or rejects it as a
// whole if any field is invalid.
func (s *Scheduler) Configure(c Config) config.Action {
	return func() error {
		if !world.ValidResolution(c.Resolution) {
			return fmt.Errorf("%w: got %d", world.ErrInvalidResolution, c.Resolution)
		}
		if !validRate(c.Rate) {
			return fmt.Errorf("%w: got %v", ErrInvalidRate, c.Rate)
		}
		if c.Density == nil {
			return meshing.ErrNoDensity
		}

		if err := s.SetResolution(c.Resolution); err != nil {
			return err
		}
		if err := s.SetRate(c.Rate); err != nil {
			return err
		}
		s.SetDensity(c.Density)
		s.SetPause(c.Pause)
		return nil
	}
}

// SetResolution resizes the field and the sink. Equal resolutions are a no-op.
func (s *Scheduler) SetResolution(n int) error {
	changed, err := s.field.SetResolution(n)
	if err != nil {
		return err
	}
	if changed {
		s.sink.SetCapacity(n * n * n)
		s.logger.Debug("field reallocated", "resolution", n, "cells", n*n*n, "run_id", s.runID)
	}
	return nil
}

// SetRate changes how many recomputes per second are allowed
func (s *Scheduler) SetRate(rate float64) error {
	if !validRate(rate) {
		return fmt.Errorf("%w: got %v", ErrInvalidRate, rate)
	}
	if rate == s.rate {
		return nil
	}
	s.rate = rate
	s.pacer.SetRate(rate)
	return nil
}

// SetDensity replaces the density function
func (s *Scheduler) SetDensity(fn density.Func) {
	s.density = fn
}

// SetPause replaces the pause predicate
func (s *Scheduler) SetPause(p config.Pause) {
	s.pause = p
}

// Enter (re-)enters the tick loop at now: the pacing clock restarts and an
// Error state is cleared back to Idle.
func (s *Scheduler) Enter(now time.Time) {
	s.last = now
	s.pacer.Reset()
	s.runID = uuid.NewString()[:8]
	if s.state == StateError {
		s.setState(StateIdle)
	}
	s.logger.Info("tick loop entered", "run_id", s.runID, "state", s.state.String())
}

// Tick runs one host frame and reports whether the host should schedule
// another. It returns false once a recompute has failed.
func (s *Scheduler) Tick(now time.Time) bool {
	if s.state == StateError {
		return false
	}

	profiling.ResetFrame()
	s.metrics.ObserveTick()

	s.drain()

	var elapsed time.Duration
	if !s.last.IsZero() {
		elapsed = now.Sub(s.last)
	}
	s.last = now
	isUpdate := s.pacer.Advance(elapsed)

	s.computeState()

	if s.state == StateRunning && isUpdate {
		if err := s.recompute(now); err != nil {
			s.setState(StateError)
			s.metrics.ObserveFailure()
			s.reporter.Report("error during density sampling", err)
			return false
		}
	}

	if s.update != nil {
		func() { defer profiling.Track("game.update")(); s.update() }()
	}

	if spent := profiling.SumWithPrefix(""); spent > s.pacer.Interval() {
		s.logger.Debug("slow tick", "duration", spent, "top", profiling.TopN(3), "run_id", s.runID)
	}
	return true
}

// Drain applies queued configuration without ticking. A halted host calls it
// so a reload can land before the loop is re-entered.
func (s *Scheduler) Drain() {
	s.drain()
}

func (s *Scheduler) drain() {
	defer profiling.Track("game.drain")()
	for _, err := range s.queue.Drain() {
		s.metrics.ObserveRejected()
		s.reporter.Report("configuration rejected", err)
	}
}

func (s *Scheduler) computeState() {
	paused := s.pause.Paused()
	if s.IsRunning() && paused {
		s.Stop()
	} else if !s.IsRunning() && !paused {
		s.Start()
	}
}

// recompute runs the pipeline, converting a density panic into an error.
// Missing resolution or density is not a failure; the tick just emits nothing.
func (s *Scheduler) recompute(now time.Time) (err error) {
	if s.field.Resolution() < world.MinResolution || s.density == nil {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()

	if s.beforeRecompute != nil {
		s.beforeRecompute(now)
	}

	start := time.Now()
	stats, err := meshing.Recompute(s.field, s.density, s.sink)
	if err != nil {
		if errors.Is(err, meshing.ErrNoResolution) || errors.Is(err, meshing.ErrNoDensity) {
			return nil
		}
		return err
	}
	s.lastStats = stats
	s.metrics.ObserveRecompute(time.Since(start), stats.Present, stats.Emitted)
	return nil
}

// Start moves Idle or Error to Running
func (s *Scheduler) Start() {
	if s.state == StateRunning {
		return
	}
	s.setState(StateRunning)
}

// Stop moves to Idle
func (s *Scheduler) Stop() {
	if s.state == StateIdle {
		return
	}
	s.setState(StateIdle)
}

func (s *Scheduler) setState(st RunState) {
	if s.state == st {
		return
	}
	s.logger.Debug("run state changed", "from", s.state.String(), "to", st.String(), "run_id", s.runID)
	s.state = st
	s.metrics.SetState(st.String(), stateNames)
}

// IsRunning reports whether the state is Running
func (s *Scheduler) IsRunning() bool {
	return s.state == StateRunning
}

// State returns the current run state
func (s *Scheduler) State() RunState {
	return s.state
}

// Halted reports whether a failure stopped the tick loop
func (s *Scheduler) Halted() bool {
	return s.state == StateError
}

// Field returns the scheduler's lattice
func (s *Scheduler) Field() *world.Field {
	return s.field
}

// Rate returns the active recompute rate
func (s *Scheduler) Rate() float64 {
	return s.rate
}

// LastStats returns the stats of the last successful recompute
func (s *Scheduler) LastStats() meshing.Stats {
	return s.lastStats
}

// RunID identifies the current loop entry in logs
func (s *Scheduler) RunID() string {
	return s.runID
}
