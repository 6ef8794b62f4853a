package graphics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestCameraOrbitClampsPitch(t *testing.T) {
	c := NewCamera(800, 400)
	assert.Equal(t, float32(2), c.AspectRatio)

	c.Orbit(0, 500)
	assert.Equal(t, float32(maxPitch), c.Pitch)
	c.Orbit(0, -1000)
	assert.Equal(t, float32(minPitch), c.Pitch)

	c.Orbit(400, 0)
	assert.InDelta(t, 85, c.Yaw, 1e-4)
}

func TestCameraEyeKeepsDistance(t *testing.T) {
	c := NewCamera(WinWidth, WinHeight)
	for _, yaw := range []float32{0, 33, 180, 270} {
		c.Yaw = yaw
		assert.InDelta(t, c.Distance, c.Eye().Len(), 1e-4)
	}

	c.Yaw, c.Pitch = 0, 0
	assert.True(t, c.Eye().ApproxEqualThreshold(mgl32.Vec3{0, 0, c.Distance}, 1e-5))
}

func TestCameraZoomBounds(t *testing.T) {
	c := NewCamera(WinWidth, WinHeight)
	for i := 0; i < 100; i++ {
		c.Zoom(0.5)
	}
	assert.Equal(t, float32(minDistance), c.Distance)
	c.Zoom(-1)
	assert.Equal(t, float32(minDistance), c.Distance, "non-positive factors are ignored")
	for i := 0; i < 100; i++ {
		c.Zoom(2)
	}
	assert.Equal(t, float32(maxDistance), c.Distance)
}

func TestViewMatrixLooksAtOrigin(t *testing.T) {
	c := NewCamera(WinWidth, WinHeight)
	origin := c.GetViewMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	// Origin sits straight ahead on the view axis
	assert.InDelta(t, 0, origin.X(), 1e-5)
	assert.InDelta(t, 0, origin.Y(), 1e-5)
	assert.InDelta(t, -c.Distance, origin.Z(), 1e-4)
}

func TestPackInstanceAndCubeRoot(t *testing.T) {
	buf := make([]float32, 2*instanceStride)
	packInstance(buf, 1, mgl32.Vec3{1, 2, 3}, mgl32.Vec3{0.1, 0.2, 0.3})
	assert.Equal(t, []float32{0, 0, 0, 0, 0, 0, 1, 2, 3, 0.1, 0.2, 0.3}, buf)

	assert.Equal(t, 4, cubeRootInt(64))
	assert.Equal(t, 40, cubeRootInt(64000))
	assert.Equal(t, 0, cubeRootInt(10))
}
