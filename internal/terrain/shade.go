// Package terrain is the per-planet surface shading model: height from the
// shared noise field, biome coloring, optional lava and ice glints, and the
// diffuse plus limb-light combination.
package terrain

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/spacehole-rogue/hyperjump/internal/noise"
	"github.com/spacehole-rogue/hyperjump/internal/vmath"
)

// Shading constants shared by every planet.
var (
	Drift          = mgl64.Vec3{0.01, 0.01, 0.01} // continent drift per second
	AtmosphereTint = mgl64.Vec3{0.2, 0.25, 0.3}
	LavaColor      = mgl64.Vec3{1.0, 0.35, 0.05}
	SparkleColor   = mgl64.Vec3{0.9, 0.95, 1.0}
)

const (
	continentFreq = 3.0
	mountainFreq  = 8.0

	// biome A→B blend window over height
	biomeLow  = 0.25
	biomeHigh = 0.6

	lavaBand  = 0.1
	lavaPower = 3.0
	iceBand   = 0.05
)

// Input is one surface fragment. Point is the unit-sphere direction in the
// planet's own frame; View, when non-zero, is the direction toward the
// viewer in that same frame. Normal and Light share the lighting frame.
type Input struct {
	Point  mgl64.Vec3
	Normal mgl64.Vec3
	Light  mgl64.Vec3
	View   mgl64.Vec3
	Time   float64
}

// Sample is the full result of shading one fragment.
type Sample struct {
	Height    float64
	Continent float64
	Mountains float64
	Base      mgl64.Vec3 // unlit biome color
	Color     mgl64.Vec3 // final, unclamped linear RGB
	LavaMask  float64
	Sparkle   float64
}

// Shader produces a lit color for a surface fragment.
type Shader interface {
	Shade(in Input) mgl64.Vec3
}

// RGB converts a colorful color into a vector for shading math.
func RGB(c colorful.Color) mgl64.Vec3 {
	return mgl64.Vec3{c.R, c.G, c.B}
}

// Height evaluates the terrain at unit direction p and time t. The returned
// height is never below the surface's ocean level.
func (s Surface) Height(p mgl64.Vec3, t float64) (height, continent, mountains float64) {
	continent = noise.FBM3(p.Mul(continentFreq).Add(Drift.Mul(t)), noise.TerrainFBM) * s.ElevationScale
	mountains = noise.Ridged3(p.Mul(mountainFreq), noise.TerrainRidged) * s.MountainSharpness
	height = math.Max(continent+mountains, s.OceanLevel)
	return height, continent, mountains
}

// parallax nudges p along the tangential view direction by a coarse height
// tap so high ground appears to stand off the sphere.
func (s Surface) parallax(p, view mgl64.Vec3) mgl64.Vec3 {
	if view.LenSqr() == 0 || s.ParallaxScale == 0 {
		return p
	}
	tangent := view.Sub(p.Mul(p.Dot(view)))
	h0 := noise.Noise3(p.Mul(continentFreq))
	q := p.Add(tangent.Mul((h0 - 0.5) * s.ParallaxScale * 0.1))
	if q.LenSqr() == 0 {
		return p
	}
	return q.Normalize()
}

// Pulse is the slow lava brightness modulation.
func Pulse(t float64) float64 {
	return 0.75 + 0.25*math.Sin(t*1.5)
}

// Sample shades one fragment.
func (s Surface) Sample(in Input) Sample {
	p := s.parallax(in.Point, in.View)
	height, continent, mountains := s.Height(p, in.Time)

	base := RGB(s.BiomeA.BlendRgb(s.BiomeB, vmath.Smoothstep(biomeLow, biomeHigh, height)))
	if height > s.IceThreshold {
		base = RGB(s.BiomeC)
	}

	ndl := in.Normal.Dot(in.Light)
	diffuse := math.Max(ndl, 0)
	back := math.Max(-ndl, 0)
	color := base.Mul(diffuse).Add(AtmosphereTint.Mul(back * back))

	out := Sample{
		Height:    height,
		Continent: continent,
		Mountains: mountains,
		Base:      base,
	}

	// emissive, independent of the light so it shows on the night side
	if s.Lava.Enabled() {
		mask := vmath.Smoothstep(s.Lava.Threshold, s.Lava.Threshold+lavaBand, mountains)
		mask = math.Pow(mask, lavaPower) * Pulse(in.Time)
		out.LavaMask = mask
		color = color.Add(LavaColor.Mul(mask * s.Lava.Intensity))
	}

	if s.Sparkle.Enabled() {
		ice := vmath.Smoothstep(s.IceThreshold-iceBand, s.IceThreshold+iceBand, height)
		glint := math.Pow(diffuse, s.Sparkle.Sharpness) * ice * s.Sparkle.Intensity
		out.Sparkle = glint
		color = color.Add(SparkleColor.Mul(glint))
	}

	out.Color = color
	return out
}

// Shade implements Shader.
func (s Surface) Shade(in Input) mgl64.Vec3 {
	return s.Sample(in).Color
}

// Moon is the cratered grey surface used for satellites.
type Moon struct{}

var (
	moonLight = mgl64.Vec3{0.62, 0.62, 0.62}
	moonMid   = mgl64.Vec3{0.45, 0.45, 0.45}
	moonDark  = mgl64.Vec3{0.22, 0.22, 0.22}
)

// Crater returns the crater relief at unit direction p: broad fbm zones,
// sharp folded-noise rims, and a little warp.
func Crater(p mgl64.Vec3) float64 {
	base := noise.FBM3(p.Mul(5), noise.TerrainFBM)
	warp := noise.Noise3(p.Mul(12))
	c := math.Pow(noise.Fold(noise.Noise3(p.Mul(15))), 4)
	return base*0.3 + c*1.2 + warp*0.2
}

// Shade implements Shader.
func (Moon) Shade(in Input) mgl64.Vec3 {
	dust := noise.FBM3(in.Point.Mul(2), noise.TerrainFBM) * 0.25
	h := Crater(in.Point) + dust*0.4

	col := vmath.MixV(moonLight, moonMid, h)
	col = vmath.MixV(col, moonDark, vmath.Smoothstep(0.6, 1.0, h))

	ndl := in.Normal.Dot(in.Light)
	diff := math.Max(ndl, 0)
	back := math.Pow(math.Max(-ndl, 0), 3)
	return col.Mul(0.15 + diff*0.85).Add(vmath.Splat(back * 0.2))
}

// Atmosphere is a rim glow drawn as a shell around a planet.
type Atmosphere struct {
	Color     colorful.Color
	Intensity float64
}

// NoAtmosphere is the disabled shell.
var NoAtmosphere = Atmosphere{}

// Enabled reports whether the shell is drawn.
func (a Atmosphere) Enabled() bool { return a.Intensity > 0 }

// Glow returns the shell color and opacity at unit direction p, strongest
// along the horizon band and slightly brighter on the lit side.
func (a Atmosphere) Glow(p, light mgl64.Vec3) (mgl64.Vec3, float64) {
	rim := math.Pow(1-math.Abs(p[1]), 3)
	lit := math.Max(p.Dot(light), 0)
	glow := rim*0.85 + lit*0.15
	return RGB(a.Color).Mul(glow * a.Intensity), glow * 0.6
}
