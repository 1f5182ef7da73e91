package starfield

import (
	"image/color"
	"math"

	"github.com/spacehole-rogue/hyperjump/internal/raster"
	"github.com/spacehole-rogue/hyperjump/internal/vmath"
)

// Profile is the unit-intensity brightness of a star sprite at radius r
// (0 center, 1 edge) and polar angle: a Gaussian core, four diffraction
// spikes that fade out by r = 0.6, and a soft halo.
func Profile(r, angle float64) float64 {
	core := math.Exp(-r * r * 12)
	spikes := math.Pow(math.Abs(math.Cos(angle*4)), 40)
	spike := spikes * vmath.Smoothstep(0.6, 0.1, r)
	halo := math.Exp(-r*6) * 0.4
	return core + spike + halo
}

// Sprite renders the white unit-intensity star profile into a size×size
// frame. Pixels below 1% opacity are left transparent.
func Sprite(size int) *raster.Frame {
	f := raster.NewFrame(size, size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			u := (float64(x)+0.5)/float64(size)*2 - 1
			v := (float64(y)+0.5)/float64(size)*2 - 1
			b := Profile(math.Hypot(u, v), math.Atan2(v, u))
			a := vmath.Saturate(b)
			if a < 0.01 {
				continue
			}
			c := uint8(a*255 + 0.5)
			f.Set(x, y, color.RGBA{c, c, c, c})
		}
	}
	return f
}
