package density

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFract(t *testing.T) {
	got := Fract(mgl32.Vec3{1.25, -0.25, 3})
	assert.InDelta(t, 0.25, got[0], 1e-6)
	assert.InDelta(t, 0.75, got[1], 1e-6)
	assert.InDelta(t, 0, got[2], 1e-6)
}

func TestMixAndClamp(t *testing.T) {
	a := mgl32.Vec3{0, 0, 0}
	b := mgl32.Vec3{2, 4, -2}
	assert.Equal(t, mgl32.Vec3{1, 2, -1}, Mix(a, b, 0.5))
	assert.Equal(t, mgl32.Vec3{1, 1, 0}, Clamp(mgl32.Vec3{3, 1, -5}, 0, 1))
}

func TestEnvParamsDefaults(t *testing.T) {
	env := NewEnv()
	assert.Equal(t, 2.5, env.Slider("missing", 2.5))
	assert.True(t, env.Checkbox("missing", true))

	env.SetParams(map[string]float64{"radius": 0.3}, map[string]bool{"pause": true})
	assert.Equal(t, 0.3, env.Slider("radius", 1))
	assert.True(t, env.Checkbox("pause", false))

	env.SetParams(nil, nil)
	assert.Equal(t, 1.0, env.Slider("radius", 1), "SetParams replaces the whole set")
}

func TestEnvParamsAreCopied(t *testing.T) {
	env := NewEnv()
	src := map[string]float64{"radius": 0.3}
	env.SetParams(src, nil)
	src["radius"] = 9
	assert.Equal(t, 0.3, env.Slider("radius", 1))
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup("nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownPreset))
}

func TestPresetsSortedAndBuildable(t *testing.T) {
	ps := Presets()
	require.NotEmpty(t, ps)
	env := NewEnv()
	for i, p := range ps {
		if i > 0 {
			assert.Less(t, ps[i-1].Name, p.Name)
		}
		fn := p.Build(env)
		require.NotNil(t, fn, p.Name)
		_, _, _ = fn(mgl32.Vec3{0.1, 0.1, 0.1})
	}
}

func TestBallMatchesDistance(t *testing.T) {
	p, err := Lookup("ball")
	require.NoError(t, err)
	fn := p.Build(NewEnv())

	corners := []mgl32.Vec3{
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1},
		{1, 1, 0}, {1, 0, 1}, {0, 1, 1}, {1, 1, 1},
	}
	for _, c := range corners {
		color, ok, err := fn(c)
		require.NoError(t, err)
		want := c.Len() <= 1
		if ok != want {
			t.Fatalf("corner %v: got present=%v, want %v", c, ok, want)
		}
		if ok {
			assert.Equal(t, c, color)
		}
	}
}

func TestSpheresAnimateWithTime(t *testing.T) {
	p, err := Lookup("spheres")
	require.NoError(t, err)
	env := NewEnv()
	fn := p.Build(env)

	pos := mgl32.Vec3{0.25, 0.25, 0.3}
	c0, ok, err := fn(pos)
	require.NoError(t, err)
	require.True(t, ok)

	env.SetTime(0.5)
	c1, ok, err := fn(pos)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEqual(t, c0, c1)
}

func TestFaultyFails(t *testing.T) {
	p, err := Lookup("faulty")
	require.NoError(t, err)
	fn := p.Build(NewEnv())

	_, ok, err := fn(mgl32.Vec3{0.1, 0, 0})
	require.NoError(t, err)
	assert.True(t, ok)

	_, _, err = fn(mgl32.Vec3{0.9, 0, 0})
	assert.ErrorIs(t, err, errFaulty)
}

func TestValueNoiseDeterministicAndBounded(t *testing.T) {
	for i := 0; i < 200; i++ {
		x, y, z := float64(i)*0.37, float64(i)*0.11, float64(i)*-0.53
		a := OctaveNoise3D(x, y, z, 42, 3, 0.5, 2)
		b := OctaveNoise3D(x, y, z, 42, 3, 0.5, 2)
		if a != b {
			t.Fatalf("noise not deterministic at %d: %v != %v", i, a, b)
		}
		if a < 0 || a > 1 {
			t.Fatalf("noise out of [0,1] at %d: %v", i, a)
		}
	}
}

func TestValueNoiseMatchesLatticeAtIntegers(t *testing.T) {
	got := ValueNoise3D(3, -2, 5, 7)
	assert.InDelta(t, latticeValue(3, -2, 5, 7), got, 1e-12)
}
