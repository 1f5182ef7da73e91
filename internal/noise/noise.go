// Package noise is the shared procedural density field: a lattice hash,
// smoothed value noise, and two fractal sums built on top of it. Terrain
// height, nebula density and surface masks are all derived from here.
//
// Every function is pure. The same input always yields the same output,
// which the tests rely on.
package noise

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/spacehole-rogue/hyperjump/internal/vmath"
)

// Octaves parameterizes a fractal sum.
type Octaves struct {
	Count      int     // number of octaves summed
	Amplitude  float64 // weight of the first octave
	Gain       float64 // amplitude multiplier per octave
	Lacunarity float64 // frequency multiplier per octave
}

// Named octave sets.
var (
	TerrainFBM    = Octaves{Count: 6, Amplitude: 0.5, Gain: 0.5, Lacunarity: 2.0}
	TerrainRidged = Octaves{Count: 4, Amplitude: 0.5, Gain: 0.5, Lacunarity: 2.0}
	NebulaFBM     = Octaves{Count: 6, Amplitude: 0.5, Gain: 0.5, Lacunarity: 2.13}
	NebulaRidged  = Octaves{Count: 4, Amplitude: 0.6, Gain: 0.5, Lacunarity: 2.1}
)

// Bound is the largest value FBM3 or Ridged3 can return with these octaves:
// the sum of all octave amplitudes.
func (o Octaves) Bound() float64 {
	sum, amp := 0.0, o.Amplitude
	for i := 0; i < o.Count; i++ {
		sum += amp
		amp *= o.Gain
	}
	return sum
}

var hashOffset = mgl64.Vec3{0.1, 0.2, 0.3}

// Hash scrambles a lattice coordinate into [0, 1). Not cryptographic.
func Hash(p mgl64.Vec3) float64 {
	p = vmath.FractV(p.Mul(0.3183099).Add(hashOffset)).Mul(17)
	return vmath.Fract(p[0] * p[1] * p[2] * (p[0] + p[1] + p[2]))
}

// Noise3 is value noise in [0, 1]: the hash at the eight corners of the
// unit cell containing p, blended with smoothstep weights per axis.
func Noise3(p mgl64.Vec3) float64 {
	i := vmath.FloorV(p)
	f := p.Sub(i)

	n000 := Hash(i)
	n100 := Hash(i.Add(mgl64.Vec3{1, 0, 0}))
	n010 := Hash(i.Add(mgl64.Vec3{0, 1, 0}))
	n110 := Hash(i.Add(mgl64.Vec3{1, 1, 0}))
	n001 := Hash(i.Add(mgl64.Vec3{0, 0, 1}))
	n101 := Hash(i.Add(mgl64.Vec3{1, 0, 1}))
	n011 := Hash(i.Add(mgl64.Vec3{0, 1, 1}))
	n111 := Hash(i.Add(mgl64.Vec3{1, 1, 1}))

	ux := f[0] * f[0] * (3 - 2*f[0])
	uy := f[1] * f[1] * (3 - 2*f[1])
	uz := f[2] * f[2] * (3 - 2*f[2])

	nx00 := vmath.Mix(n000, n100, ux)
	nx10 := vmath.Mix(n010, n110, ux)
	nx01 := vmath.Mix(n001, n101, ux)
	nx11 := vmath.Mix(n011, n111, ux)

	nxy0 := vmath.Mix(nx00, nx10, uy)
	nxy1 := vmath.Mix(nx01, nx11, uy)

	return vmath.Mix(nxy0, nxy1, uz)
}

// FBM3 sums Noise3 over o.Count octaves. The result lies in [0, o.Bound()].
func FBM3(p mgl64.Vec3, o Octaves) float64 {
	sum, amp, freq := 0.0, o.Amplitude, 1.0
	for i := 0; i < o.Count; i++ {
		sum += amp * Noise3(p.Mul(freq))
		freq *= o.Lacunarity
		amp *= o.Gain
	}
	return sum
}

// Ridged3 is FBM3 with each octave folded as 1−|2n−1|, which turns the
// midpoints of the noise into sharp crests.
func Ridged3(p mgl64.Vec3, o Octaves) float64 {
	sum, amp, freq := 0.0, o.Amplitude, 1.0
	for i := 0; i < o.Count; i++ {
		sum += amp * Fold(Noise3(p.Mul(freq)))
		freq *= o.Lacunarity
		amp *= o.Gain
	}
	return sum
}

// Fold maps n in [0,1] to 1−|2n−1|: 0 at the ends, 1 in the middle.
func Fold(n float64) float64 {
	d := n*2 - 1
	if d < 0 {
		d = -d
	}
	return 1 - d
}
