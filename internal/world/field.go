package world

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// MinResolution is the smallest lattice edge the sampler can normalize
	// positions for (x/(N-1) needs N > 1).
	MinResolution = 2
	// MaxResolution bounds storage at 512³ cells (about 1.6 GiB of planes).
	MaxResolution = 512
)

// ErrInvalidResolution is returned for lattice edges outside
// [MinResolution, MaxResolution].
var ErrInvalidResolution = errors.New("world: resolution must be between 2 and 512")

// ValidResolution reports whether n is an allocatable lattice edge
func ValidResolution(n int) bool {
	return n >= MinResolution && n <= MaxResolution
}

// Field is the N×N×N sample lattice: one presence bit and one RGB triple per
// cell. Cells are addressed by IndexOf, x-major.
type Field struct {
	resolution int
	presence   Bitset

	r []float32
	g []float32
	b []float32
}

// NewField returns an empty field with no resolution set.
func NewField() *Field {
	return &Field{}
}

// Resolution returns the lattice edge length, 0 if never set
func (f *Field) Resolution() int {
	return f.resolution
}

// Cells returns the total number of cells (N³)
func (f *Field) Cells() int {
	return f.resolution * f.resolution * f.resolution
}

// SetResolution reallocates presence and color storage for an n×n×n lattice.
// It reports whether storage changed; setting the current resolution again is
// a no-op.
func (f *Field) SetResolution(n int) (bool, error) {
	if !ValidResolution(n) {
		return false, fmt.Errorf("%w: got %d", ErrInvalidResolution, n)
	}
	if n == f.resolution {
		return false, nil
	}

	total := n * n * n
	f.resolution = n
	f.presence = NewBitset(total)
	f.r = make([]float32, total)
	f.g = make([]float32, total)
	f.b = make([]float32, total)
	return true, nil
}

// IndexOf maps lattice coordinates to the linear cell index. Callers must
// bounds-check with InBounds first.
func (f *Field) IndexOf(x, y, z int) int {
	n := f.resolution
	return x + y*n + z*n*n
}

// InBounds reports whether all three coordinates lie in [0, N)
func (f *Field) InBounds(x, y, z int) bool {
	n := f.resolution
	return x >= 0 && y >= 0 && z >= 0 && x < n && y < n && z < n
}

// IsPresent reports whether cell i sampled to a color. Unallocated fields
// and out of range indices read as absent.
func (f *Field) IsPresent(i int) bool {
	return f.presence.Get(i)
}

// SetPresent sets or clears the presence bit of cell i
func (f *Field) SetPresent(i int, v bool) {
	f.presence.Set(i, v)
}

// SetColor stores the color of cell i
func (f *Field) SetColor(i int, c mgl32.Vec3) {
	f.r[i] = c[0]
	f.g[i] = c[1]
	f.b[i] = c[2]
}

// ColorAt returns the color of cell i. The result is only meaningful when
// IsPresent(i) holds.
func (f *Field) ColorAt(i int) mgl32.Vec3 {
	return mgl32.Vec3{f.r[i], f.g[i], f.b[i]}
}

// PresentCount returns the number of present cells
func (f *Field) PresentCount() int {
	return f.presence.Count()
}

// PresenceWords returns the number of 32-bit words backing the presence set
func (f *Field) PresenceWords() int {
	return f.presence.Words()
}
