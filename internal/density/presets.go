package density

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrUnknownPreset is returned by Lookup for names not in the registry.
var ErrUnknownPreset = errors.New("density: unknown preset")

// Preset is a named density function factory. Build is called once per
// configuration load; the returned Func reads env on every sample.
type Preset struct {
	Name        string
	Description string
	Build       func(env *Env) Func
}

var presets = map[string]Preset{}

func register(p Preset) {
	presets[p.Name] = p
}

func init() {
	register(Preset{
		Name:        "spheres",
		Description: "tiled spheres, colors cycling with time (params: tiles, radius, r, g, b)",
		Build:       buildSpheres,
	})
	register(Preset{
		Name:        "ball",
		Description: "every cell within radius of the origin, colored by position (params: radius)",
		Build:       buildBall,
	})
	register(Preset{
		Name:        "noise",
		Description: "thresholded 3D octave noise drifting over time (params: scale, threshold, speed, seed)",
		Build:       buildNoise,
	})
	register(Preset{
		Name:        "solid",
		Description: "the full lattice, colored by position",
		Build:       buildSolid,
	})
	register(Preset{
		Name:        "shell",
		Description: "hollow sphere around the lattice center (params: radius, thickness)",
		Build:       buildShell,
	})
	register(Preset{
		Name:        "wave",
		Description: "animated sine height field (params: frequency, amplitude, speed)",
		Build:       buildWave,
	})
	register(Preset{
		Name:        "faulty",
		Description: "fails once x passes a threshold (params: fail_x); exercises the error path",
		Build:       buildFaulty,
	})
}

// Lookup returns the preset registered under name
func Lookup(name string) (Preset, error) {
	p, ok := presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return p, nil
}

// Presets returns every registered preset sorted by name
func Presets() []Preset {
	out := make([]Preset, 0, len(presets))
	for _, p := range presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func buildSpheres(env *Env) Func {
	return func(p mgl32.Vec3) (mgl32.Vec3, bool, error) {
		tiles := float32(env.Slider("tiles", 2))
		q := AddScalar(Fract(p.Mul(tiles)), -0.5).Mul(2)

		if q.Len() > float32(env.Slider("radius", 1)) {
			return mgl32.Vec3{}, false, nil
		}

		tint := mgl32.Vec3{
			float32(env.Slider("r", 1)),
			float32(env.Slider("g", 1)),
			float32(env.Slider("b", 1)),
		}
		c := Fract(AddScalar(q, float32(env.Time())))
		return mgl32.Vec3{c[0] * tint[0], c[1] * tint[1], c[2] * tint[2]}, true, nil
	}
}

func buildBall(env *Env) Func {
	return func(p mgl32.Vec3) (mgl32.Vec3, bool, error) {
		if p.Len() > float32(env.Slider("radius", 1)) {
			return mgl32.Vec3{}, false, nil
		}
		return p, true, nil
	}
}

func buildNoise(env *Env) Func {
	return func(p mgl32.Vec3) (mgl32.Vec3, bool, error) {
		scale := env.Slider("scale", 4)
		drift := env.Time() * env.Slider("speed", 0.25)
		seed := int64(env.Slider("seed", 1337))

		v := OctaveNoise3D(
			float64(p[0])*scale,
			float64(p[1])*scale,
			float64(p[2])*scale+drift,
			seed, 3, 0.5, 2.0,
		)
		if v < env.Slider("threshold", 0.55) {
			return mgl32.Vec3{}, false, nil
		}
		shade := float32(v)
		return mgl32.Vec3{p[0] * shade, shade, p[2] * shade}, true, nil
	}
}

func buildSolid(_ *Env) Func {
	return func(p mgl32.Vec3) (mgl32.Vec3, bool, error) {
		return p, true, nil
	}
}

func buildShell(env *Env) Func {
	center := mgl32.Vec3{0.5, 0.5, 0.5}
	return func(p mgl32.Vec3) (mgl32.Vec3, bool, error) {
		r := float32(env.Slider("radius", 0.45))
		thickness := float32(env.Slider("thickness", 0.1))
		d := p.Sub(center).Len()
		if d > r || d < r-thickness {
			return mgl32.Vec3{}, false, nil
		}
		return Mix(mgl32.Vec3{0.9, 0.3, 0.1}, mgl32.Vec3{0.1, 0.4, 0.9}, p[1]), true, nil
	}
}

func buildWave(env *Env) Func {
	return func(p mgl32.Vec3) (mgl32.Vec3, bool, error) {
		freq := env.Slider("frequency", 1.5)
		amp := env.Slider("amplitude", 0.2)
		phase := env.Time() * env.Slider("speed", 1)

		h := 0.5 + amp*math.Sin(2*math.Pi*(float64(p[0])*freq+phase))*math.Cos(2*math.Pi*float64(p[2])*freq)
		if float64(p[1]) > h {
			return mgl32.Vec3{}, false, nil
		}
		return Clamp(mgl32.Vec3{0.2, p[1] * 1.5, 0.8 - p[1]}, 0, 1), true, nil
	}
}

// errFaulty is what the faulty preset fails with
var errFaulty = errors.New("faulty preset tripped")

func buildFaulty(env *Env) Func {
	return func(p mgl32.Vec3) (mgl32.Vec3, bool, error) {
		if float64(p[0]) > env.Slider("fail_x", 0.5) {
			return mgl32.Vec3{}, false, errFaulty
		}
		return p, true, nil
	}
}
