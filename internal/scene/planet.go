package scene

import (
	"context"
	"fmt"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/spacehole-rogue/hyperjump/internal/camera"
	"github.com/spacehole-rogue/hyperjump/internal/graph"
	"github.com/spacehole-rogue/hyperjump/internal/raster"
	"github.com/spacehole-rogue/hyperjump/internal/terrain"
)

// LightDir is the fixed sun direction in world space.
var LightDir = mgl64.Vec3{1, 0.4, 0.2}.Normalize()

// haloScale is the impostor extent, in planet radii, when an atmosphere
// shell is drawn.
const haloScale = 1.15

// Body is the authored description of a planet or moon.
type Body struct {
	Name       string
	Shader     terrain.Shader
	Atmosphere terrain.Atmosphere
	Radius     float64
	Distance   float64 // along the pivot's X axis
	Spin       float64 // self rotation, radians per frame
	Orbit      float64 // pivot rotation, radians per frame
}

func (b Body) validate() error {
	if b.Shader == nil {
		return fmt.Errorf("body %q has no shader", b.Name)
	}
	if !(b.Radius > 0) || math.IsInf(b.Radius, 0) || math.IsNaN(b.Distance) {
		return fmt.Errorf("body %q: radius %v distance %v", b.Name, b.Radius, b.Distance)
	}
	return nil
}

// Planet is a body placed in the graph with its own impostor surface.
type Planet struct {
	Body

	g     *graph.Graph
	pivot graph.Node
	mesh  graph.Node

	ctx      raster.Context
	surface  raster.Surface
	frame    *raster.Frame
	cursor   int
	extent   float64
	time     float64
	disposed bool
}

func newPlanet(g *graph.Graph, parent graph.Node, ctx raster.Context, b Body, size int) (*Planet, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	pivot, err := g.NewNode(b.Name+"/pivot", parent)
	if err != nil {
		return nil, err
	}
	mesh, err := g.NewNode(b.Name, pivot)
	if err != nil {
		g.Remove(pivot)
		return nil, err
	}
	g.Transform(mesh).Position = mgl64.Vec3{b.Distance, 0, 0}
	g.Transform(mesh).Scale = b.Radius

	surface, err := ctx.Allocate(b.Name, size, size)
	if err != nil {
		g.Remove(pivot)
		return nil, fmt.Errorf("planet %s: %w", b.Name, err)
	}
	extent := 1.0
	if b.Atmosphere.Enabled() {
		extent = haloScale
	}
	return &Planet{
		Body:    b,
		g:       g,
		pivot:   pivot,
		mesh:    mesh,
		ctx:     ctx,
		surface: surface,
		frame:   raster.NewFrame(size, size),
		extent:  extent,
	}, nil
}

// Pivot is the group the planet orbits within. Children attached here
// follow the planet's position but not its spin.
func (p *Planet) Pivot() graph.Node { return p.pivot }

// Node is the planet body itself.
func (p *Planet) Node() graph.Node { return p.mesh }

// Surface is the impostor texture.
func (p *Planet) Surface() raster.Surface { return p.surface }

// Update records scene time t and advances spin and orbit by one frame.
func (p *Planet) Update(t float64) {
	if p.disposed {
		return
	}
	p.time = t
	if tr := p.g.Transform(p.mesh); tr != nil {
		tr.RotationY += p.Spin
	}
	if tr := p.g.Transform(p.pivot); tr != nil {
		tr.RotationY += p.Orbit
	}
}

// Time is the scene time of the last Update.
func (p *Planet) Time() float64 { return p.time }

// Dispose detaches the pivot, and with it the body and anything orbiting
// it, then releases the impostor surface. Later calls do nothing.
func (p *Planet) Dispose() {
	if p.disposed {
		return
	}
	p.disposed = true
	p.g.Remove(p.pivot)
	p.ctx.Release(p.surface)
}

// Center is the planet's world-space position.
func (p *Planet) Center() mgl64.Vec3 { return p.g.WorldPosition(p.mesh) }

// Placement is where the impostor lands on screen: center, half-size in
// pixels and view depth. ok is false when the planet is behind the camera.
func (p *Planet) Placement(cam *camera.Camera) (x, y, half, depth float64, ok bool) {
	x, y, depth, ok = cam.Project(p.Center())
	if !ok {
		return 0, 0, 0, depth, false
	}
	half = p.Radius * p.extent / depth * cam.Focal()
	return x, y, half, depth, true
}

// Render shades the next band of rows of the impostor as seen from cam and
// uploads it. rows <= 0 shades the whole texture.
func (p *Planet) Render(ctx context.Context, cam *camera.Camera, t float64, rows, workers int) error {
	if p.disposed || !p.g.Alive(p.mesh) {
		return nil
	}
	size := p.frame.W
	if rows <= 0 || rows > size {
		rows = size
	}
	y0 := p.cursor
	y1 := min(y0+rows, size)

	basis := cam.Basis()
	toLocal := p.g.World(p.mesh).Mat3()
	// The mesh scale is the radius; strip it to get a pure rotation.
	toLocal = toLocal.Mul(1 / p.Radius).Transpose()
	view := basis.Mul3x1(mgl64.Vec3{0, 0, 1})
	viewLocal := toLocal.Mul3x1(view)
	lightLocal := toLocal.Mul3x1(LightDir)

	err := raster.Rasterize(ctx, p.frame, y0, y1, workers, func(x, y int) color.RGBA {
		u := ((float64(x)+0.5)/float64(size)*2 - 1) * p.extent
		v := (1 - (float64(y)+0.5)/float64(size)*2) * p.extent
		rr := u*u + v*v
		if rr <= 1 {
			n := basis.Mul3x1(mgl64.Vec3{u, v, math.Sqrt(1 - rr)})
			c := p.Shader.Shade(terrain.Input{
				Point:  toLocal.Mul3x1(n),
				Normal: n,
				Light:  LightDir,
				View:   viewLocal,
				Time:   t,
			})
			return raster.RGBA(c, 1)
		}
		r := math.Sqrt(rr)
		if r > p.extent || !p.Atmosphere.Enabled() {
			return color.RGBA{}
		}
		n := basis.Mul3x1(mgl64.Vec3{u / r, v / r, 0})
		glow, alpha := p.Atmosphere.Glow(toLocal.Mul3x1(n), lightLocal)
		fade := 1 - (r-1)/(p.extent-1)
		return raster.RGBA(glow, alpha*fade)
	})
	if err != nil {
		return fmt.Errorf("planet %s: %w", p.Name, err)
	}
	p.cursor = y1 % size
	return p.surface.Upload(p.frame)
}
