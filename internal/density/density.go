// Package density holds the sampling functions evaluated over the lattice and
// the per-tick environment they read (time and tunable params).
package density

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Func maps a normalized lattice position in [0,1]³ to a color. ok is false
// for empty cells. A non-nil error aborts the recompute in progress.
type Func func(p mgl32.Vec3) (color mgl32.Vec3, ok bool, err error)

// Env is the state a density function may read besides its position.
// Time is refreshed once per tick, before the first sample.
type Env struct {
	mu     sync.RWMutex
	time   float64
	params map[string]float64
	checks map[string]bool
}

// NewEnv returns an environment with no params and time zero
func NewEnv() *Env {
	return &Env{
		params: make(map[string]float64),
		checks: make(map[string]bool),
	}
}

// SetTime sets the time value in seconds
func (e *Env) SetTime(seconds float64) {
	e.mu.Lock()
	e.time = seconds
	e.mu.Unlock()
}

// Time returns the time value in seconds
func (e *Env) Time() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.time
}

// SetParams replaces all slider and checkbox values at once
func (e *Env) SetParams(sliders map[string]float64, checks map[string]bool) {
	s := make(map[string]float64, len(sliders))
	for k, v := range sliders {
		s[k] = v
	}
	c := make(map[string]bool, len(checks))
	for k, v := range checks {
		c[k] = v
	}

	e.mu.Lock()
	e.params = s
	e.checks = c
	e.mu.Unlock()
}

// Slider returns the named numeric param, or def when unset
func (e *Env) Slider(name string, def float64) float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if v, ok := e.params[name]; ok {
		return v
	}
	return def
}

// Checkbox returns the named boolean param, or def when unset
func (e *Env) Checkbox(name string, def bool) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if v, ok := e.checks[name]; ok {
		return v
	}
	return def
}

// Fract returns the fractional part of each component (v - floor(v))
func Fract(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{fract(v[0]), fract(v[1]), fract(v[2])}
}

func fract(f float32) float32 {
	return f - float32(math.Floor(float64(f)))
}

// Mix linearly interpolates a toward b by t
func Mix(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// Clamp limits each component to [lo, hi]
func Clamp(v mgl32.Vec3, lo, hi float32) mgl32.Vec3 {
	return mgl32.Vec3{
		mgl32.Clamp(v[0], lo, hi),
		mgl32.Clamp(v[1], lo, hi),
		mgl32.Clamp(v[2], lo, hi),
	}
}

// AddScalar adds s to every component
func AddScalar(v mgl32.Vec3, s float32) mgl32.Vec3 {
	return mgl32.Vec3{v[0] + s, v[1] + s, v[2] + s}
}
