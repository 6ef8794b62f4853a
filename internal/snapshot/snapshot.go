// Package snapshot renders a batch of instances to a PNG without a GPU.
//
// The lattice is viewed head-on along -Z: each pixel takes the color of the
// nearest visible cell in its column, shaded by depth, then the image is
// upscaled with nearest-neighbor sampling so every cell stays a crisp square.
package snapshot

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"

	"voxelfield/internal/meshing"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/draw"
)

var background = color.NRGBA{R: 20, G: 20, B: 26, A: 255}

// ErrEmptyLattice is returned for resolutions below 2
var ErrEmptyLattice = errors.New("snapshot: resolution must be at least 2")

// Options controls the output image
type Options struct {
	// Scale is the pixel size of one cell; values below 1 mean 1.
	Scale int
	// DepthShade darkens far cells by up to this fraction (0..1).
	DepthShade float32
}

// Render projects instances of an n³ lattice into an image
func Render(instances []meshing.Instance, n int, opts Options) (*image.NRGBA, error) {
	if n < 2 {
		return nil, ErrEmptyLattice
	}
	small := image.NewNRGBA(image.Rect(0, 0, n, n))
	draw.Draw(small, small.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	depth := make([]float32, n*n)
	for i := range depth {
		depth[i] = float32(math.Inf(-1))
	}

	shade := mgl32.Clamp(opts.DepthShade, 0, 1)
	for _, inst := range instances {
		x, y, z := cellOf(inst.Position, n)
		if x < 0 || y < 0 || x >= n || y >= n {
			continue
		}
		k := y*n + x
		if inst.Position.Z() <= depth[k] {
			continue
		}
		depth[k] = inst.Position.Z()

		// z is 0 at the back, n-1 at the front
		f := 1 - shade*(1-float32(z)/float32(n-1))
		c := inst.Color.Mul(f)
		// image rows grow downward, lattice y grows upward
		small.SetNRGBA(x, n-1-y, color.NRGBA{
			R: channel(c[0]),
			G: channel(c[1]),
			B: channel(c[2]),
			A: 255,
		})
	}

	scale := max(opts.Scale, 1)
	if scale == 1 {
		return small, nil
	}
	out := image.NewNRGBA(image.Rect(0, 0, n*scale, n*scale))
	draw.NearestNeighbor.Scale(out, out.Bounds(), small, small.Bounds(), draw.Src, nil)
	return out, nil
}

// Encode writes img as PNG
func Encode(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// WriteFile renders and writes a PNG to path
func WriteFile(path string, instances []meshing.Instance, n int, opts Options) error {
	img, err := Render(instances, n, opts)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create snapshot: %w", err)
	}
	if err := Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return f.Close()
}

// cellOf inverts the world position p - 0.5 with p = idx/(n-1)
func cellOf(pos mgl32.Vec3, n int) (int, int, int) {
	idx := func(v float32) int {
		return int(math.Round(float64((v + 0.5) * float32(n-1))))
	}
	return idx(pos[0]), idx(pos[1]), idx(pos[2])
}

func channel(v float32) uint8 {
	return uint8(mgl32.Clamp(v, 0, 1)*255 + 0.5)
}
