package meshing

import (
	"errors"
	"fmt"

	"voxelfield/internal/density"
	"voxelfield/internal/profiling"
	"voxelfield/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrNoResolution is returned when a recompute runs before the field has a
// resolution.
var ErrNoResolution = errors.New("meshing: field resolution not set")

// ErrNoDensity is returned when a recompute runs without a density function.
var ErrNoDensity = errors.New("meshing: density function not set")

// SamplingError reports a density function failure at a specific cell
type SamplingError struct {
	X, Y, Z  int
	Position mgl32.Vec3
	Err      error
}

func (e *SamplingError) Error() string {
	return fmt.Sprintf("density failed at cell (%d,%d,%d) p=(%.3f,%.3f,%.3f): %v",
		e.X, e.Y, e.Z, e.Position[0], e.Position[1], e.Position[2], e.Err)
}

func (e *SamplingError) Unwrap() error {
	return e.Err
}

// Stats summarizes one recompute
type Stats struct {
	Cells   int
	Present int
	Emitted int
}

// Recompute samples fn over every cell of f, then writes the visible cells to
// sink in x-major, then y, then z order. The sink is not touched when
// sampling fails; its active count is only set after the full scan.
func Recompute(f *world.Field, fn density.Func, sink Sink) (Stats, error) {
	n := f.Resolution()
	if n < world.MinResolution {
		return Stats{}, ErrNoResolution
	}
	if fn == nil {
		return Stats{}, ErrNoDensity
	}

	present, err := sample(f, fn)
	if err != nil {
		return Stats{}, err
	}
	emitted := emit(f, sink)

	return Stats{Cells: f.Cells(), Present: present, Emitted: emitted}, nil
}

// sample runs the density function once per cell and records presence and color.
func sample(f *world.Field, fn density.Func) (int, error) {
	defer profiling.Track("meshing.sample")()

	n := f.Resolution()
	inv := 1 / float32(n-1)
	present := 0

	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			for z := 0; z < n; z++ {
				p := mgl32.Vec3{float32(x) * inv, float32(y) * inv, float32(z) * inv}
				color, ok, err := fn(p)
				if err != nil {
					return 0, &SamplingError{X: x, Y: y, Z: z, Position: p, Err: err}
				}

				i := f.IndexOf(x, y, z)
				f.SetPresent(i, ok)
				if ok {
					f.SetColor(i, color)
					present++
				}
			}
		}
	}
	return present, nil
}

// emit compacts visible cells into the sink and returns the emitted count.
func emit(f *world.Field, sink Sink) int {
	defer profiling.Track("meshing.emit")()

	n := f.Resolution()
	inv := 1 / float32(n-1)
	culler := world.NewCuller(f)
	ptr := 0

	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			for z := 0; z < n; z++ {
				i := f.IndexOf(x, y, z)
				if !f.IsPresent(i) {
					continue
				}
				if culler.IsHidden(x, y, z) {
					continue
				}

				pos := mgl32.Vec3{
					float32(x)*inv - 0.5,
					float32(y)*inv - 0.5,
					float32(z)*inv - 0.5,
				}
				sink.SetInstance(ptr, pos, f.ColorAt(i))
				ptr++
			}
		}
	}

	sink.SetActiveCount(ptr)
	return ptr
}
