// Package dust is the drifting cloud of faint particles around the planets.
package dust

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/ojrac/opensimplex-go"

	"github.com/spacehole-rogue/hyperjump/internal/graph"
)

// Config sizes the cloud and its motion.
type Config struct {
	Count  int
	Radius float64
	SpinY  float64 // radians per frame
	SpinX  float64 // radians per frame
	Jitter float64 // peak per-particle drift in world units
}

// DefaultConfig is the cloud used by the scene.
func DefaultConfig() Config {
	return Config{Count: 1800, Radius: 7, SpinY: 0.0006, SpinX: 0.0002, Jitter: 0.05}
}

// Color is the particle tint.
var Color = mustHex("#93c5fd")

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(fmt.Sprintf("dust: bad color literal %q: %v", s, err))
	}
	return c
}

const driftRate = 0.2

// Cloud owns the particle positions and the group node that spins them.
type Cloud struct {
	cfg     Config
	g       *graph.Graph
	node    graph.Node
	base    []mgl64.Vec3
	points  []mgl64.Vec3
	drift   opensimplex.Noise
	opacity float64
	log     *slog.Logger
}

// New scatters cfg.Count particles. Radii are drawn linearly, so the cloud
// is densest near its center.
func New(g *graph.Graph, parent graph.Node, cfg Config, rng *rand.Rand, log *slog.Logger) (*Cloud, error) {
	if cfg.Count < 0 || !(cfg.Radius > 0) {
		return nil, fmt.Errorf("dust: invalid config count=%d radius=%v", cfg.Count, cfg.Radius)
	}
	if log == nil {
		log = slog.Default()
	}
	node, err := g.NewNode("dust", parent)
	if err != nil {
		return nil, fmt.Errorf("dust: %w", err)
	}
	c := &Cloud{
		cfg:    cfg,
		g:      g,
		node:   node,
		base:   make([]mgl64.Vec3, cfg.Count),
		points: make([]mgl64.Vec3, cfg.Count),
		drift:  opensimplex.New(rng.Int64()),
		log:    log.With("component", "dust"),
	}
	for i := range c.base {
		r := cfg.Radius * rng.Float64()
		theta := math.Acos(2*rng.Float64() - 1)
		phi := rng.Float64() * 2 * math.Pi
		st, ct := math.Sincos(theta)
		c.base[i] = mgl64.Vec3{r * st * math.Cos(phi), r * st * math.Sin(phi), r * ct}
	}
	copy(c.points, c.base)
	c.opacity = Opacity(0)
	return c, nil
}

// Opacity is the cloud's slow breathing.
func Opacity(t float64) float64 {
	return 0.4 + math.Sin(t*0.7)*0.2
}

// Update spins the group, breathes the opacity and drifts each particle
// along a simplex noise field.
func (c *Cloud) Update(t float64) {
	if tr := c.g.Transform(c.node); tr != nil {
		tr.RotationY += c.cfg.SpinY
		tr.RotationX += c.cfg.SpinX
	}
	c.opacity = Opacity(t)
	if c.cfg.Jitter == 0 {
		return
	}
	tt := t * driftRate
	for i, p := range c.base {
		fi := float64(i)
		c.points[i] = p.Add(mgl64.Vec3{
			c.drift.Eval3(fi, tt, 0),
			c.drift.Eval3(fi, tt, 17.3),
			c.drift.Eval3(fi, tt, 41.9),
		}.Mul(c.cfg.Jitter))
	}
}

// Node is the group holding the particles.
func (c *Cloud) Node() graph.Node { return c.node }

// Points returns the particle positions in the group's frame.
func (c *Cloud) Points() []mgl64.Vec3 { return c.points }

// Opacity returns the current cloud opacity.
func (c *Cloud) Opacity() float64 { return c.opacity }

// Dispose detaches the group. Later calls do nothing.
func (c *Cloud) Dispose() {
	if !c.g.Alive(c.node) {
		return
	}
	c.g.Remove(c.node)
	c.log.Debug("disposed")
}
