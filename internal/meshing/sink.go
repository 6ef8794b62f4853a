package meshing

import "github.com/go-gl/mathgl/mgl32"

// Sink receives per-instance transforms and colors for the visible cells.
type Sink interface {
	// SetCapacity reallocates storage for up to n instances, releasing any
	// previous storage first.
	SetCapacity(n int)
	SetInstance(i int, pos, color mgl32.Vec3)
	SetActiveCount(n int)
}

// Instance is one emitted cube
type Instance struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
}

// Batch is an in-memory Sink. It backs headless runs, snapshots and tests.
type Batch struct {
	instances []Instance
	count     int

	// Allocations counts SetCapacity calls that replaced storage
	Allocations int
	// Frames counts completed emits (SetActiveCount calls)
	Frames int
}

// NewBatch returns an empty batch with no capacity
func NewBatch() *Batch {
	return &Batch{}
}

// SetCapacity implements Sink
func (b *Batch) SetCapacity(n int) {
	if n < 0 {
		n = 0
	}
	b.instances = make([]Instance, n)
	b.count = 0
	b.Allocations++
}

// SetInstance implements Sink. Writes beyond capacity are dropped.
func (b *Batch) SetInstance(i int, pos, color mgl32.Vec3) {
	if i < 0 || i >= len(b.instances) {
		return
	}
	b.instances[i] = Instance{Position: pos, Color: color}
}

// SetActiveCount implements Sink
func (b *Batch) SetActiveCount(n int) {
	if n > len(b.instances) {
		n = len(b.instances)
	}
	b.count = n
	b.Frames++
}

// Capacity returns the allocated instance slots
func (b *Batch) Capacity() int {
	return len(b.instances)
}

// Count returns the active instance count
func (b *Batch) Count() int {
	return b.count
}

// Instances returns the active instances. The slice aliases the batch storage.
func (b *Batch) Instances() []Instance {
	return b.instances[:b.count]
}
