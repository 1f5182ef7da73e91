package terrain

import (
	"errors"
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrInvalidConfig is returned for surface configs that cannot be shaded.
var ErrInvalidConfig = errors.New("terrain: invalid surface config")

// Lava turns on an emissive glow along the mountain crests.
type Lava struct {
	Intensity float64
	Threshold float64 // mountain value where the glow starts
}

// Sparkle turns on a sharp glint over iced terrain.
type Sparkle struct {
	Intensity float64
	Sharpness float64 // exponent applied to N·L
}

// Disabled feature defaults. A zero intensity switches the term off; the
// remaining fields keep the math well defined.
var (
	NoLava    = Lava{Intensity: 0, Threshold: 1}
	NoSparkle = Sparkle{Intensity: 0, Sharpness: 20}
)

// DefaultParallaxScale is used when a config leaves ParallaxScale at zero.
const DefaultParallaxScale = 0.15

// Enabled reports whether the lava term contributes.
func (l Lava) Enabled() bool { return l.Intensity > 0 }

// Enabled reports whether the sparkle term contributes.
func (s Sparkle) Enabled() bool { return s.Intensity > 0 }

// SurfaceConfig describes one planet's look as authored. Lava and Sparkle
// are optional; most planets leave them nil.
type SurfaceConfig struct {
	Name              string
	ElevationScale    float64
	MountainSharpness float64
	OceanLevel        float64

	BiomeA colorful.Color // lowlands
	BiomeB colorful.Color // highlands
	BiomeC colorful.Color // ice caps

	IceThreshold  float64
	ParallaxScale float64

	Lava       *Lava
	Sparkle    *Sparkle
	Atmosphere *Atmosphere
}

// Surface is a normalized SurfaceConfig: every optional block is resolved to
// a concrete, possibly disabled value, so shading never checks for presence.
type Surface struct {
	Name              string
	ElevationScale    float64
	MountainSharpness float64
	OceanLevel        float64
	BiomeA            colorful.Color
	BiomeB            colorful.Color
	BiomeC            colorful.Color
	IceThreshold      float64
	ParallaxScale     float64
	Lava              Lava
	Sparkle           Sparkle
	Atmosphere        Atmosphere
}

// Validate rejects configs with non-finite or negative scales.
func (c SurfaceConfig) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"elevation scale", c.ElevationScale},
		{"mountain sharpness", c.MountainSharpness},
		{"ocean level", c.OceanLevel},
		{"ice threshold", c.IceThreshold},
		{"parallax scale", c.ParallaxScale},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%s: %s is not finite: %w", c.Name, f.name, ErrInvalidConfig)
		}
	}
	if c.ElevationScale < 0 || c.MountainSharpness < 0 || c.ParallaxScale < 0 {
		return fmt.Errorf("%s: negative scale: %w", c.Name, ErrInvalidConfig)
	}
	if c.Lava != nil && (c.Lava.Intensity < 0 || math.IsNaN(c.Lava.Threshold)) {
		return fmt.Errorf("%s: bad lava block: %w", c.Name, ErrInvalidConfig)
	}
	if c.Sparkle != nil && (c.Sparkle.Intensity < 0 || c.Sparkle.Sharpness <= 0) {
		return fmt.Errorf("%s: bad sparkle block: %w", c.Name, ErrInvalidConfig)
	}
	return nil
}

// NewSurface validates c and resolves its optional blocks.
func NewSurface(c SurfaceConfig) (Surface, error) {
	if err := c.Validate(); err != nil {
		return Surface{}, err
	}
	s := Surface{
		Name:              c.Name,
		ElevationScale:    c.ElevationScale,
		MountainSharpness: c.MountainSharpness,
		OceanLevel:        c.OceanLevel,
		BiomeA:            c.BiomeA,
		BiomeB:            c.BiomeB,
		BiomeC:            c.BiomeC,
		IceThreshold:      c.IceThreshold,
		ParallaxScale:     c.ParallaxScale,
		Lava:              NoLava,
		Sparkle:           NoSparkle,
		Atmosphere:        NoAtmosphere,
	}
	if s.ParallaxScale == 0 {
		s.ParallaxScale = DefaultParallaxScale
	}
	if c.Lava != nil {
		s.Lava = *c.Lava
	}
	if c.Sparkle != nil {
		s.Sparkle = *c.Sparkle
	}
	if c.Atmosphere != nil {
		s.Atmosphere = *c.Atmosphere
	}
	return s, nil
}

func hex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(fmt.Sprintf("terrain: bad color literal %q: %v", s, err))
	}
	return c
}

// Presets. Fixed data, never edited at runtime.

func Earthlike() SurfaceConfig {
	return SurfaceConfig{
		Name:              "Earthlike",
		ElevationScale:    1.0,
		MountainSharpness: 1.0,
		OceanLevel:        0.02,
		BiomeA:            hex("#1b4d2a"),
		BiomeB:            hex("#5b4a32"),
		BiomeC:            hex("#ffffff"),
		IceThreshold:      0.65,
		ParallaxScale:     0.2,
		Atmosphere:        &Atmosphere{Color: hex("#5ab8ff"), Intensity: 1.25},
	}
}

func Desert() SurfaceConfig {
	return SurfaceConfig{
		Name:              "Desert",
		ElevationScale:    0.9,
		MountainSharpness: 0.7,
		OceanLevel:        -0.2,
		BiomeA:            hex("#d6a55b"),
		BiomeB:            hex("#a66b35"),
		BiomeC:            hex("#f8e6b0"),
		IceThreshold:      10,
		ParallaxScale:     0.2,
	}
}

func Volcanic() SurfaceConfig {
	return SurfaceConfig{
		Name:              "Volcanic",
		ElevationScale:    1.3,
		MountainSharpness: 2.0,
		OceanLevel:        -0.3,
		BiomeA:            hex("#2a120c"),
		BiomeB:            hex("#7a1b08"),
		BiomeC:            hex("#ff7b2a"),
		IceThreshold:      5.0,
		ParallaxScale:     0.28,
		Lava:              &Lava{Intensity: 2.2, Threshold: 0.45},
	}
}

func Iceworld() SurfaceConfig {
	return SurfaceConfig{
		Name:              "Iceworld",
		ElevationScale:    0.6,
		MountainSharpness: 0.7,
		OceanLevel:        0.25,
		BiomeA:            hex("#8fb4ff"),
		BiomeB:            hex("#c5dcff"),
		BiomeC:            hex("#ffffff"),
		IceThreshold:      0.3,
		ParallaxScale:     0.12,
		Sparkle:           &Sparkle{Intensity: 1.8, Sharpness: 28.0},
	}
}
