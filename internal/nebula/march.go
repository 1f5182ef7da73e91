// Package nebula renders the volumetric background cloud by marching view
// rays through a noise-driven density field inside an axis-aligned box.
package nebula

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/spacehole-rogue/hyperjump/internal/noise"
	"github.com/spacehole-rogue/hyperjump/internal/vmath"
)

var ErrInvalidConfig = errors.New("nebula: invalid config")

// Palette selects the color grading applied to the density field.
type Palette uint8

const (
	Hubble Palette = iota
	JWST
)

func (p Palette) String() string {
	switch p {
	case Hubble:
		return "hubble"
	case JWST:
		return "jwst"
	}
	return fmt.Sprintf("palette(%d)", uint8(p))
}

// ParsePalette accepts the names returned by String.
func ParsePalette(s string) (Palette, error) {
	switch s {
	case "hubble":
		return Hubble, nil
	case "jwst":
		return JWST, nil
	}
	return 0, fmt.Errorf("unknown palette %q: %w", s, ErrInvalidConfig)
}

// Box is an axis-aligned bounding box.
type Box struct {
	Min, Max mgl64.Vec3
}

// Intersect clips the ray ro + t·rd against the box. hit is false when the
// ray misses or the box lies entirely behind the origin.
func (b Box) Intersect(ro, rd mgl64.Vec3) (tNear, tFar float64, hit bool) {
	tNear, tFar = math.Inf(-1), math.Inf(1)
	for i := 0; i < 3; i++ {
		if rd[i] == 0 {
			if ro[i] < b.Min[i] || ro[i] > b.Max[i] {
				return 0, 0, false
			}
			continue
		}
		t0 := (b.Min[i] - ro[i]) / rd[i]
		t1 := (b.Max[i] - ro[i]) / rd[i]
		tNear = math.Max(tNear, math.Min(t0, t1))
		tFar = math.Min(tFar, math.Max(t0, t1))
	}
	return tNear, tFar, tFar > math.Max(tNear, 0)
}

// Config is the nebula field. Only Palette may change after construction.
type Config struct {
	Density    float64
	Palette    Palette
	Box        Box
	Center     mgl64.Vec3 // ellipsoid falloff center
	Radii      mgl64.Vec3 // ellipsoid falloff radii
	Steps      int
	StepWeight float64
	SpinRate   float64 // radians per frame about the box center's Y axis
}

// DefaultConfig is the nebula surrounding the star system.
func DefaultConfig() Config {
	return Config{
		Density:    0.85,
		Palette:    Hubble,
		Box:        Box{Min: mgl64.Vec3{-20, -10, -20}, Max: mgl64.Vec3{20, 10, 20}},
		Center:     mgl64.Vec3{0, 0, -5},
		Radii:      mgl64.Vec3{16, 10, 16},
		Steps:      52,
		StepWeight: 0.07,
		SpinRate:   0.00015,
	}
}

// Validate rejects degenerate fields.
func (c Config) Validate() error {
	if !(c.Density > 0) || math.IsInf(c.Density, 0) {
		return fmt.Errorf("density %v: %w", c.Density, ErrInvalidConfig)
	}
	for i := 0; i < 3; i++ {
		if !(c.Box.Max[i] > c.Box.Min[i]) {
			return fmt.Errorf("box %v..%v is empty on axis %d: %w", c.Box.Min, c.Box.Max, i, ErrInvalidConfig)
		}
		if !(c.Radii[i] > 0) {
			return fmt.Errorf("radii %v: %w", c.Radii, ErrInvalidConfig)
		}
	}
	if c.Steps < 1 || !(c.StepWeight > 0) {
		return fmt.Errorf("steps %d weight %v: %w", c.Steps, c.StepWeight, ErrInvalidConfig)
	}
	if c.Palette != Hubble && c.Palette != JWST {
		return fmt.Errorf("%v: %w", c.Palette, ErrInvalidConfig)
	}
	if !vmath.Finite(c.Center) || !vmath.Finite(c.Box.Min) || !vmath.Finite(c.Box.Max) {
		return fmt.Errorf("non-finite placement: %w", ErrInvalidConfig)
	}
	return nil
}

// Background is the deep-space color the accumulated cloud is mixed over.
var Background = mgl64.Vec3{0.003, 0.003, 0.01}

const (
	// MinAlpha is the opacity below which a ray contributes nothing.
	MinAlpha = 0.02

	opaque     = 0.98
	minDensity = 0.001
	drift      = 0.25
	fieldScale = 0.06
)

// Sample is the result of marching one ray.
type Sample struct {
	Color   mgl64.Vec3 // background mixed toward the accumulated cloud by Alpha
	Alpha   float64
	Visible bool
}

var (
	hubbleTeal  = mgl64.Vec3{0.2, 0.8, 0.9}
	hubbleGold  = mgl64.Vec3{1.0, 0.8, 0.3}
	hubbleGreen = mgl64.Vec3{0.6, 0.9, 0.5}

	jwstWarmGold = mgl64.Vec3{1.1, 0.7, 0.35}
	jwstEmber    = mgl64.Vec3{1.0, 0.4, 0.2}
	jwstCoolDust = mgl64.Vec3{0.3, 0.6, 1.1}
)

// Grade colors one density sample.
func (p Palette) Grade(d, shape, ridge float64) mgl64.Vec3 {
	var col mgl64.Vec3
	switch p {
	case JWST:
		hot := vmath.Smoothstep(0.5, 1.0, d)
		col = vmath.MixV(jwstCoolDust, jwstWarmGold, shape)
		col = vmath.MixV(col, jwstEmber, hot)
		col = col.Add(vmath.Splat(ridge * 0.35))
	default:
		col = vmath.MixV(hubbleGold, hubbleTeal, vmath.Smoothstep(0.2, 0.8, d))
		col = vmath.MixV(col, hubbleGreen, 0.35)
		col = col.Mul(0.2 + shape*0.8)
		col = col.Add(vmath.Splat(ridge * 0.3))
	}
	return col
}

// compress is the logarithmic tone curve applied before accumulation.
func compress(c mgl64.Vec3) mgl64.Vec3 {
	for i := range c {
		c[i] = math.Pow(math.Log(c[i]*1.5+1), 0.9)
	}
	return c
}

// March integrates the field along ro + t·rd at scene time t, front to back.
// rd must be normalized. A miss yields the zero Sample.
func March(c Config, ro, rd mgl64.Vec3, t float64) Sample {
	tNear, tFar, hit := c.Box.Intersect(ro, rd)
	if !hit {
		return Sample{}
	}
	tNear = math.Max(tNear, 0)
	step := (tFar - tNear) / float64(c.Steps)

	tau := t * drift
	offset := mgl64.Vec3{0, tau * 0.35, tau * 0.08}

	var color mgl64.Vec3
	alpha := 0.0
	for i := 0; i < c.Steps; i++ {
		pos := ro.Add(rd.Mul(tNear + float64(i)*step))
		local := pos.Mul(fieldScale).Add(offset)

		base := noise.FBM3(local, noise.NebulaFBM)
		ridge := noise.Ridged3(local.Mul(0.8), noise.NebulaRidged)
		radius := vmath.DivV(pos.Sub(c.Center), c.Radii).Len()
		shape := vmath.Smoothstep(1, 0, radius)
		dust := vmath.Smoothstep(0.4, 0.9, noise.FBM3(local.Mul(1.7), noise.NebulaFBM))

		density := base * shape * c.Density
		density *= 1 - dust*0.8
		density *= 1 - alpha
		if density < minDensity {
			continue
		}

		col := compress(c.Palette.Grade(base, shape, ridge))
		color = color.Add(col.Mul(density * c.StepWeight))
		alpha += density * c.StepWeight
		if alpha > opaque {
			break
		}
	}

	alpha = vmath.Saturate(alpha)
	if alpha < MinAlpha {
		return Sample{Alpha: alpha}
	}
	return Sample{
		Color:   vmath.MixV(Background, color, alpha),
		Alpha:   alpha,
		Visible: true,
	}
}
