package graphics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	minPitch    = -89.0
	maxPitch    = 89.0
	minDistance = 0.5
	maxDistance = 20.0
)

// Camera orbits the origin, where the lattice is centered
type Camera struct {
	AspectRatio float32
	FOV         float32
	NearPlane   float32
	FarPlane    float32

	Yaw      float32 // degrees around +Y
	Pitch    float32 // degrees above the XZ plane
	Distance float32
}

func NewCamera(width, height int) *Camera {
	c := &Camera{
		FOV:       60.0,
		NearPlane: 0.05,
		FarPlane:  100.0,
		Yaw:       45,
		Pitch:     30,
		Distance:  2.2,
	}
	c.SetViewport(width, height)
	return c
}

// SetViewport updates the aspect ratio; a zero height is ignored
func (c *Camera) SetViewport(width, height int) {
	if height <= 0 {
		return
	}
	c.AspectRatio = float32(width) / float32(height)
}

// Orbit rotates by the given degrees, clamping pitch short of the poles
func (c *Camera) Orbit(dYaw, dPitch float32) {
	c.Yaw = float32(math.Mod(float64(c.Yaw+dYaw), 360))
	c.Pitch = mgl32.Clamp(c.Pitch+dPitch, minPitch, maxPitch)
}

// Zoom scales the distance by factor
func (c *Camera) Zoom(factor float32) {
	if factor <= 0 {
		return
	}
	c.Distance = mgl32.Clamp(c.Distance*factor, minDistance, maxDistance)
}

// Eye returns the camera position in world space
func (c *Camera) Eye() mgl32.Vec3 {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	pitch := float64(mgl32.DegToRad(c.Pitch))
	d := float64(c.Distance)
	return mgl32.Vec3{
		float32(d * math.Cos(pitch) * math.Sin(yaw)),
		float32(d * math.Sin(pitch)),
		float32(d * math.Cos(pitch) * math.Cos(yaw)),
	}
}

func (c *Camera) GetProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}

func (c *Camera) GetViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye(), mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
}
