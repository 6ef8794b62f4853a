package game

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"voxelfield/internal/config"
	"voxelfield/internal/density"
	"voxelfield/internal/meshing"
	"voxelfield/internal/world"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionHarness struct {
	session  *Session
	sink     *meshing.Batch
	reporter *fakeReporter
	level    *slog.LevelVar
	now      time.Time
}

func newSessionHarness(t *testing.T, predicates map[string]func() bool) *sessionHarness {
	t.Helper()
	h := &sessionHarness{
		sink:     meshing.NewBatch(),
		reporter: &fakeReporter{},
		level:    new(slog.LevelVar),
		now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	h.session = NewSession(SessionOptions{
		Sink:       h.sink,
		Reporter:   h.reporter,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		LevelVar:   h.level,
		Predicates: predicates,
	})
	h.session.Scheduler.Enter(h.now)
	return h
}

func (h *sessionHarness) step(d time.Duration) bool {
	h.now = h.now.Add(d)
	return h.session.Scheduler.Tick(h.now)
}

func writeScene(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestSessionApplyLandsOnNextTick(t *testing.T) {
	h := newSessionHarness(t, nil)
	f := config.Default()
	f.Resolution = 3
	f.Density = "solid"
	f.Params = map[string]any{"radius": 0.25, "hollow": true}
	f.LogLevel = "debug"

	require.NoError(t, h.session.Apply(f))
	_, loaded := h.session.Current()
	assert.False(t, loaded, "nothing applied before the tick drains")
	assert.Equal(t, 0.5, h.session.Env().Slider("radius", 0.5))

	require.True(t, h.step(50*time.Millisecond))
	cur, loaded := h.session.Current()
	require.True(t, loaded)
	assert.Equal(t, "solid", cur.Density)
	assert.Equal(t, 3, h.session.Scheduler.Field().Resolution())
	assert.Equal(t, 0.25, h.session.Env().Slider("radius", 0.5))
	assert.True(t, h.session.Env().Checkbox("hollow", false))
	assert.Equal(t, slog.LevelDebug, h.level.Level())
	assert.Equal(t, 26, h.sink.Count())
}

func TestSessionApplyRejectsUnknownNames(t *testing.T) {
	h := newSessionHarness(t, nil)

	f := config.Default()
	f.Density = "teapot"
	assert.ErrorIs(t, h.session.Apply(f), density.ErrUnknownPreset)

	f.Density = "solid"
	f.Pause = config.PauseSpec{Set: true, Predicate: "unfocused"}
	assert.ErrorIs(t, h.session.Apply(f), config.ErrUnknownPause)

	require.True(t, h.step(50*time.Millisecond))
	assert.Equal(t, 0, h.session.Scheduler.Field().Resolution(), "nothing was enqueued")
	assert.Empty(t, h.reporter.reports)
}

func TestSessionRejectedBatchKeepsParams(t *testing.T) {
	h := newSessionHarness(t, nil)
	good := config.Default()
	good.Resolution = 2
	good.Density = "solid"
	good.Params = map[string]any{"radius": 0.3}
	require.NoError(t, h.session.Apply(good))
	require.True(t, h.step(time.Millisecond))

	bad := good
	bad.Resolution = 1
	bad.Params = map[string]any{"radius": 0.9}
	require.NoError(t, h.session.Apply(bad), "range errors surface at drain time")
	require.True(t, h.step(time.Millisecond))

	require.Len(t, h.reporter.reports, 1)
	assert.ErrorIs(t, h.reporter.reports[0].err, world.ErrInvalidResolution)
	assert.Equal(t, 0.3, h.session.Env().Slider("radius", 0))
	assert.Equal(t, 2, h.session.Scheduler.Field().Resolution())
}

func TestSessionReload(t *testing.T) {
	h := newSessionHarness(t, nil)

	h.session.Reload(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Len(t, h.reporter.reports, 1)
	assert.Equal(t, "scene reload failed", h.reporter.reports[0].msg)
	select {
	case <-h.session.Resume():
		t.Fatal("failed reload must not resume")
	default:
	}

	path := writeScene(t, "resolution: 4\ndensity: ball\nparams:\n  radius: 0.4\n")
	h.session.Reload(path)
	require.True(t, h.step(50*time.Millisecond))
	assert.Equal(t, 4, h.session.Scheduler.Field().Resolution())
	assert.Greater(t, h.sink.Count(), 0)
	select {
	case <-h.session.Resume():
		t.Fatal("a reload applied while running must not signal resume")
	default:
	}
}

func TestSessionResumeOnlyAfterAppliedWhileHalted(t *testing.T) {
	h := newSessionHarness(t, nil)
	require.NoError(t, h.session.Load(writeScene(t, "resolution: 2\ndensity: faulty\nparams:\n  fail_x: -1\n")))
	require.False(t, h.step(50*time.Millisecond))
	require.True(t, h.session.Scheduler.Halted())

	// Parses, but the batch is rejected when drained.
	bad := config.Default()
	bad.Density = "solid"
	bad.Resolution = 1
	require.NoError(t, h.session.Apply(bad))
	h.session.Scheduler.Drain()
	select {
	case <-h.session.Resume():
		t.Fatal("rejected batch must not signal resume")
	default:
	}

	h.session.Reload(writeScene(t, "resolution: 3\ndensity: solid\n"))
	select {
	case <-h.session.Resume():
		t.Fatal("resume waits until the batch is applied")
	default:
	}
	h.session.Scheduler.Drain()
	select {
	case <-h.session.Resume():
	default:
		t.Fatal("applied batch while halted should signal resume")
	}
	assert.Equal(t, 3, h.session.Scheduler.Field().Resolution())
}

func TestSessionParamPause(t *testing.T) {
	h := newSessionHarness(t, nil)
	path := writeScene(t, "resolution: 2\ndensity: solid\npause: param:hold\nparams:\n  hold: true\n")
	require.NoError(t, h.session.Load(path))

	require.True(t, h.step(50*time.Millisecond))
	assert.Equal(t, StateIdle, h.session.Scheduler.State())
	assert.Equal(t, 0, h.sink.Count())

	h.session.Env().SetParams(nil, map[string]bool{"hold": false})
	require.True(t, h.step(50*time.Millisecond))
	assert.Equal(t, StateRunning, h.session.Scheduler.State())
	assert.Equal(t, 8, h.sink.Count())
}

func TestSessionHostPredicate(t *testing.T) {
	unfocused := true
	h := newSessionHarness(t, map[string]func() bool{
		"unfocused": func() bool { return unfocused },
	})
	path := writeScene(t, "resolution: 2\ndensity: solid\npause: unfocused\n")
	require.NoError(t, h.session.Load(path))

	require.True(t, h.step(50*time.Millisecond))
	assert.False(t, h.session.Scheduler.IsRunning())

	unfocused = false
	require.True(t, h.step(50*time.Millisecond))
	assert.True(t, h.session.Scheduler.IsRunning())
}

func TestSessionTimeAdvancesPerRecompute(t *testing.T) {
	h := newSessionHarness(t, nil)
	f := config.Default()
	f.Resolution = 2
	f.Density = "solid"
	require.NoError(t, h.session.Apply(f))

	require.True(t, h.step(50*time.Millisecond))
	assert.Equal(t, 0.0, h.session.Env().Time(), "first recompute starts the clock")

	require.True(t, h.step(50*time.Millisecond))
	require.True(t, h.step(50*time.Millisecond))
	assert.InDelta(t, 0.1, h.session.Env().Time(), 1e-9)
}
