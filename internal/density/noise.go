package density

import "math"

// Deterministic 3D value noise: hashed lattice values, smoothstep-faded
// trilinear interpolation, summed over octaves. Output is in [0,1].

func fade(t float64) float64 {
	// 6t^5 - 15t^4 + 10t^3
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func hash3(x, y, z int64, seed int64) uint64 {
	// SplitMix64 finalizer over a per-axis weighted sum
	v := uint64(x)*0x9E3779B97F4A7C15 + uint64(y)*0x517CC1B727220A95 + uint64(z)*0x6C62272E07BB0142 + uint64(seed)
	v += 0x9E3779B97F4A7C15
	v = (v ^ (v >> 30)) * 0xBF58476D1CE4E5B9
	v = (v ^ (v >> 27)) * 0x94D049BB133111EB
	return v ^ (v >> 31)
}

func latticeValue(x, y, z int64, seed int64) float64 {
	return float64(hash3(x, y, z, seed)&0xFFFFFFFF) / float64(0xFFFFFFFF)
}

// ValueNoise3D samples single-octave value noise at (x,y,z)
func ValueNoise3D(x, y, z float64, seed int64) float64 {
	x0, y0, z0 := math.Floor(x), math.Floor(y), math.Floor(z)
	ix, iy, iz := int64(x0), int64(y0), int64(z0)

	fx := fade(x - x0)
	fy := fade(y - y0)
	fz := fade(z - z0)

	i00 := lerp(latticeValue(ix, iy, iz, seed), latticeValue(ix+1, iy, iz, seed), fx)
	i10 := lerp(latticeValue(ix, iy+1, iz, seed), latticeValue(ix+1, iy+1, iz, seed), fx)
	i01 := lerp(latticeValue(ix, iy, iz+1, seed), latticeValue(ix+1, iy, iz+1, seed), fx)
	i11 := lerp(latticeValue(ix, iy+1, iz+1, seed), latticeValue(ix+1, iy+1, iz+1, seed), fx)

	return lerp(lerp(i00, i10, fy), lerp(i01, i11, fy), fz)
}

// OctaveNoise3D sums octaves of ValueNoise3D, normalized back to [0,1]
func OctaveNoise3D(x, y, z float64, seed int64, octaves int, persistence, lacunarity float64) float64 {
	amplitude := 1.0
	frequency := 1.0
	sum := 0.0
	norm := 0.0
	for i := range octaves {
		sum += ValueNoise3D(x*frequency, y*frequency, z*frequency, seed+int64(i*131)) * amplitude
		norm += amplitude
		amplitude *= persistence
		frequency *= lacunarity
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}
