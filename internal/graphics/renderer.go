package graphics

import (
	"voxelfield/internal/meshing"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	WinWidth  = 900
	WinHeight = 600
)

// floats per instance: offset xyz, color rgb
const instanceStride = 6

var (
	backgroundColor = mgl32.Vec3{0.08, 0.08, 0.1}
	lightDirection  = mgl32.Vec3{-0.4, -1.0, -0.6}
)

var _ meshing.Sink = (*Renderer)(nil)

// Renderer draws the visible cells as instanced cubes. It is the render sink
// the scheduler writes into; writes are staged on the CPU and uploaded on the
// next Draw. All methods must run on the goroutine owning the GL context.
type Renderer struct {
	shader *Shader
	camera *Camera

	cubeVAO     uint32
	cubeVBO     uint32
	instanceVBO uint32

	staging  []float32
	capacity int
	count    int
	cellSize float32

	// dirty instance range [dirtyLo, dirtyHi)
	dirtyLo, dirtyHi int
}

// NewRenderer compiles the cube program and uploads the cube mesh. A GL
// context must be current.
func NewRenderer(camera *Camera) (*Renderer, error) {
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)

	shader, err := NewShader(cubeVertexShader, cubeFragmentShader)
	if err != nil {
		return nil, err
	}

	r := &Renderer{shader: shader, camera: camera}
	r.setupCubeVAO()
	return r, nil
}

func (r *Renderer) setupCubeVAO() {
	gl.GenVertexArrays(1, &r.cubeVAO)
	gl.BindVertexArray(r.cubeVAO)

	gl.GenBuffers(1, &r.cubeVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.cubeVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(CubeVertices)*4, gl.Ptr(CubeVertices), gl.STATIC_DRAW)

	stride := int32(6 * 4)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)
	gl.BindVertexArray(0)
}

// SetCapacity drops the old instance buffer before allocating one for n
// instances. Every resolution change goes through here.
func (r *Renderer) SetCapacity(n int) {
	if r.instanceVBO != 0 {
		gl.DeleteBuffers(1, &r.instanceVBO)
		r.instanceVBO = 0
	}
	r.capacity = n
	r.count = 0
	r.staging = make([]float32, n*instanceStride)
	r.dirtyLo, r.dirtyHi = 0, 0
	if res := cubeRootInt(n); res > 1 {
		r.cellSize = 1 / float32(res)
	} else {
		r.cellSize = 1
	}

	gl.BindVertexArray(r.cubeVAO)
	gl.GenBuffers(1, &r.instanceVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.instanceVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(r.staging)*4, nil, gl.DYNAMIC_DRAW)

	stride := int32(instanceStride * 4)
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(2, 3, gl.FLOAT, false, stride, 0)
	gl.VertexAttribDivisor(2, 1)
	gl.EnableVertexAttribArray(3)
	gl.VertexAttribPointerWithOffset(3, 3, gl.FLOAT, false, stride, 3*4)
	gl.VertexAttribDivisor(3, 1)
	gl.BindVertexArray(0)
}

// SetInstance stages instance i; out-of-range writes are dropped
func (r *Renderer) SetInstance(i int, pos, color mgl32.Vec3) {
	if i < 0 || i >= r.capacity {
		return
	}
	packInstance(r.staging, i, pos, color)
	if r.dirtyLo == r.dirtyHi {
		r.dirtyLo, r.dirtyHi = i, i+1
		return
	}
	r.dirtyLo = min(r.dirtyLo, i)
	r.dirtyHi = max(r.dirtyHi, i+1)
}

// SetActiveCount sets how many instances Draw renders
func (r *Renderer) SetActiveCount(n int) {
	r.count = max(0, min(n, r.capacity))
}

// Count returns the active instance count
func (r *Renderer) Count() int {
	return r.count
}

// Camera returns the orbit camera
func (r *Renderer) Camera() *Camera {
	return r.camera
}

// SetViewport resizes the GL viewport and the camera aspect
func (r *Renderer) SetViewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
	r.camera.SetViewport(width, height)
}

// Draw uploads staged instances and renders the active ones
func (r *Renderer) Draw() {
	gl.ClearColor(backgroundColor[0], backgroundColor[1], backgroundColor[2], 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	if r.dirtyHi > r.dirtyLo && r.instanceVBO != 0 {
		off := r.dirtyLo * instanceStride
		size := (r.dirtyHi - r.dirtyLo) * instanceStride
		gl.BindBuffer(gl.ARRAY_BUFFER, r.instanceVBO)
		gl.BufferSubData(gl.ARRAY_BUFFER, off*4, size*4, gl.Ptr(r.staging[off:off+size]))
		r.dirtyLo, r.dirtyHi = 0, 0
	}
	if r.count == 0 {
		return
	}

	view := r.camera.GetViewMatrix()
	projection := r.camera.GetProjectionMatrix()

	r.shader.Use()
	r.shader.SetMatrix4("view", &view[0])
	r.shader.SetMatrix4("projection", &projection[0])
	r.shader.SetFloat("cellSize", r.cellSize)
	r.shader.SetVector3("lightDir", lightDirection[0], lightDirection[1], lightDirection[2])

	gl.BindVertexArray(r.cubeVAO)
	gl.DrawArraysInstanced(gl.TRIANGLES, 0, int32(len(CubeVertices)/6), int32(r.count))
	gl.BindVertexArray(0)
}

// Dispose releases GL objects
func (r *Renderer) Dispose() {
	if r.instanceVBO != 0 {
		gl.DeleteBuffers(1, &r.instanceVBO)
		r.instanceVBO = 0
	}
	gl.DeleteBuffers(1, &r.cubeVBO)
	gl.DeleteVertexArrays(1, &r.cubeVAO)
	r.shader.Delete()
}

func packInstance(buf []float32, i int, pos, color mgl32.Vec3) {
	o := i * instanceStride
	copy(buf[o:o+3], pos[:])
	copy(buf[o+3:o+6], color[:])
}

// cubeRootInt returns the integer edge length of an n-cell cube, or 0
func cubeRootInt(n int) int {
	for k := 1; k*k*k <= n; k++ {
		if k*k*k == n {
			return k
		}
	}
	return 0
}
