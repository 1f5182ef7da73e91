// Package starfield generates the three background star layers and drives
// their twinkle and parallax.
package starfield

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/spacehole-rogue/hyperjump/internal/graph"
	"github.com/spacehole-rogue/hyperjump/internal/vmath"
)

// Twinkle is a layer's opacity wave: Base + Amplitude·sin(τ·Rate + Phase)
// with τ = 4t.
type Twinkle struct {
	Base, Amplitude, Rate, Phase float64
}

// At evaluates the wave at scene time t.
func (tw Twinkle) At(t float64) float64 {
	return tw.Base + tw.Amplitude*math.Sin(t*twinkleSpeed*tw.Rate+tw.Phase)
}

const twinkleSpeed = 4.0

// LayerSpec describes one shell of stars.
type LayerSpec struct {
	Name      string
	Count     int // candidates drawn; fewer survive the galactic cut
	RadiusMin float64
	RadiusMax float64
	Twinkle   Twinkle
}

// DefaultLayers are near, mid and far. Nearer layers twinkle faster and
// stronger.
var DefaultLayers = []LayerSpec{
	{Name: "near", Count: 300, RadiusMin: 6, RadiusMax: 14, Twinkle: Twinkle{0.7, 0.1, 1, 1.3}},
	{Name: "mid", Count: 800, RadiusMin: 25, RadiusMax: 80, Twinkle: Twinkle{0.65, 0.07, 0.7, 0}},
	{Name: "far", Count: 1200, RadiusMin: 120, RadiusMax: 320, Twinkle: Twinkle{0.55, 0.05, 0.4, 0}},
}

// Star is one generated point.
type Star struct {
	Position  mgl64.Vec3
	Class     int
	Color     colorful.Color
	Size      float64 // sprite size in pixels at distance SizeDistance
	Intensity float64
}

// Ranges for per-star attributes.
const (
	SizeMin, SizeMax           = 2.0, 10.0
	IntensityMin, IntensityMax = 0.5, 1.4

	// SizeDistance is the view distance at which a star is drawn at Size.
	SizeDistance = 50.0

	galacticScale = 120.0
	galacticWidth = 0.25

	parallax = 0.02
)

// GalacticDensity is the chance that a candidate at p is kept: a Gaussian
// in its height above the galactic plane (the Z axis).
func GalacticDensity(p mgl64.Vec3) float64 {
	z := p[2] / galacticScale
	return math.Exp(-(z * z) / galacticWidth)
}

// GenerateLayer draws spec.Count candidates from rng and keeps those that
// survive the galactic density cut.
func GenerateLayer(spec LayerSpec, rng *rand.Rand) []Star {
	stars := make([]Star, 0, spec.Count)
	for i := 0; i < spec.Count; i++ {
		r := vmath.Mix(spec.RadiusMin, spec.RadiusMax, rng.Float64())
		phi := rng.Float64() * 2 * math.Pi
		cosTheta := vmath.Mix(-1, 1, rng.Float64())
		sinTheta := math.Sin(math.Acos(cosTheta))

		p := mgl64.Vec3{
			r * sinTheta * math.Cos(phi),
			r * sinTheta * math.Sin(phi),
			r * cosTheta,
		}
		if rng.Float64() > GalacticDensity(p) {
			continue
		}

		class := ClassFor(rng.Float64())
		stars = append(stars, Star{
			Position:  p,
			Class:     class,
			Color:     Classes[class].Color,
			Size:      vmath.Mix(SizeMin, SizeMax, rng.Float64()),
			Intensity: vmath.Mix(IntensityMin, IntensityMax, rng.Float64()),
		})
	}
	return stars
}

// Layer is a generated shell and its current opacity.
type Layer struct {
	Spec    LayerSpec
	Stars   []Star
	Opacity float64
	Node    graph.Node
}

// Field is the star field component. Its group node sits under the scene
// root; the hyperjump scales it.
type Field struct {
	g      *graph.Graph
	group  graph.Node
	layers []*Layer
	log    *slog.Logger
}

// New generates every layer and attaches the group beneath parent.
func New(g *graph.Graph, parent graph.Node, specs []LayerSpec, rng *rand.Rand, log *slog.Logger) (*Field, error) {
	if log == nil {
		log = slog.Default()
	}
	group, err := g.NewNode("stars", parent)
	if err != nil {
		return nil, fmt.Errorf("starfield: %w", err)
	}
	f := &Field{g: g, group: group, log: log.With("component", "starfield")}
	for _, spec := range specs {
		if spec.Count < 0 || spec.RadiusMin < 0 || spec.RadiusMax < spec.RadiusMin {
			g.Remove(group)
			return nil, fmt.Errorf("starfield: layer %q has invalid bounds", spec.Name)
		}
		node, err := g.NewNode("stars/"+spec.Name, group)
		if err != nil {
			g.Remove(group)
			return nil, fmt.Errorf("starfield: %w", err)
		}
		l := &Layer{Spec: spec, Stars: GenerateLayer(spec, rng), Node: node, Opacity: spec.Twinkle.At(0)}
		f.layers = append(f.layers, l)
		f.log.Debug("layer generated", "layer", spec.Name, "requested", spec.Count, "kept", len(l.Stars))
	}
	return f, nil
}

// Group is the node holding every layer.
func (f *Field) Group() graph.Node { return f.group }

// Layers returns the generated layers, near to far.
func (f *Field) Layers() []*Layer { return f.layers }

// Update sets each layer's twinkle opacity and offsets the group by a small
// fraction of the camera position.
func (f *Field) Update(t float64, camPos mgl64.Vec3) {
	for _, l := range f.layers {
		l.Opacity = l.Spec.Twinkle.At(t)
	}
	if tr := f.g.Transform(f.group); tr != nil {
		tr.Position = camPos.Mul(parallax)
	}
}

// SetScale scales the whole field about its group origin.
func (f *Field) SetScale(s float64) {
	if tr := f.g.Transform(f.group); tr != nil {
		tr.Scale = s
	}
}

// Scale returns the current group scale.
func (f *Field) Scale() float64 {
	if tr := f.g.Transform(f.group); tr != nil {
		return tr.Scale
	}
	return 1
}

// Dispose detaches the group. Later calls do nothing.
func (f *Field) Dispose() {
	if !f.g.Alive(f.group) {
		return
	}
	f.g.Remove(f.group)
	f.log.Debug("disposed")
}
