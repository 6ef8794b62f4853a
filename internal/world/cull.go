package world

// neighborOffsets are the six axis-aligned face neighbors
var neighborOffsets = [6][3]int{
	{-1, 0, 0},
	{1, 0, 0},
	{0, -1, 0},
	{0, 1, 0},
	{0, 0, -1},
	{0, 0, 1},
}

// Culler decides which present cells face empty space. It reads the field's
// current presence bits only, so it must run after the field is fully sampled.
type Culler struct {
	field *Field
}

// NewCuller returns a culler over f
func NewCuller(f *Field) Culler {
	return Culler{field: f}
}

// IsHidden reports whether all six neighbors of (x,y,z) are in bounds and present.
func (c Culler) IsHidden(x, y, z int) bool {
	f := c.field
	for _, o := range neighborOffsets {
		nx, ny, nz := x+o[0], y+o[1], z+o[2]
		if !f.InBounds(nx, ny, nz) {
			return false
		}
		if !f.IsPresent(f.IndexOf(nx, ny, nz)) {
			return false
		}
	}
	return true
}

// IsVisible reports whether (x,y,z) is present and has at least one face
// toward an absent or out of bounds neighbor.
func (c Culler) IsVisible(x, y, z int) bool {
	f := c.field
	if !f.InBounds(x, y, z) || !f.IsPresent(f.IndexOf(x, y, z)) {
		return false
	}
	return !c.IsHidden(x, y, z)
}

// VisibleCount counts visible cells over the whole lattice
func (c Culler) VisibleCount() int {
	n := c.field.Resolution()
	count := 0
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			for z := 0; z < n; z++ {
				if c.IsVisible(x, y, z) {
					count++
				}
			}
		}
	}
	return count
}
