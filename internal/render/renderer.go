package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/spacehole-rogue/hyperjump/internal/camera"
	"github.com/spacehole-rogue/hyperjump/internal/dust"
	"github.com/spacehole-rogue/hyperjump/internal/hyperjump"
	"github.com/spacehole-rogue/hyperjump/internal/raster"
	"github.com/spacehole-rogue/hyperjump/internal/scene"
	"github.com/spacehole-rogue/hyperjump/internal/starfield"
	"github.com/spacehole-rogue/hyperjump/internal/vmath"
)

const (
	spriteSize   = 32
	maxStarSize  = 48.0
	dustSize     = 0.035 // world units
	vignetteOff  = 0.25
	vignetteDark = 0.7
	cellW, cellH = 8, 16
)

// Renderer draws a scene onto the screen in passes, back to front.
type Renderer struct {
	atlas  *FontAtlas
	grid   *GridRenderer
	hud    *CellBuffer
	sprite *ebiten.Image
	white  *ebiten.Image // 1x1 inside a 3x3 so linear sampling stays white

	vignette *ebiten.Image
	vw, vh   int

	vertices []ebiten.Vertex
	indices  []uint16
	placed   []placement
}

// NewRenderer builds the shared textures. Call it after the window exists.
func NewRenderer() *Renderer {
	atlas := NewFontAtlas()
	sprite := ebiten.NewImage(spriteSize, spriteSize)
	sprite.WritePixels(starfield.Sprite(spriteSize).Pix)
	white := ebiten.NewImage(3, 3)
	white.Fill(color.White)
	return &Renderer{
		atlas:  atlas,
		grid:   NewGridRenderer(atlas, cellW, cellH),
		hud:    NewCellBuffer(0, 0),
		sprite: sprite,
		white:  white.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image),
	}
}

// Draw renders s at the screen's size.
func (r *Renderer) Draw(screen *ebiten.Image, s *scene.Scene) {
	screen.Fill(Background)
	cam := s.Camera()

	r.drawNebula(screen, s)
	r.drawStars(screen, s, cam)
	r.drawDust(screen, s, cam)
	r.drawPlanets(screen, s, cam)
	r.drawTunnel(screen, s, cam)
	r.drawFlash(screen, s.Hyperjump().Flash())
	r.drawVignette(screen)
	r.drawHUD(screen, s)
}

func (r *Renderer) drawNebula(screen *ebiten.Image, s *scene.Scene) {
	img := imageOf(s.Nebula().Surface())
	if img == nil {
		return
	}
	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	iw, ih := img.Bounds().Dx(), img.Bounds().Dy()
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(float64(sw)/float64(iw), float64(sh)/float64(ih))
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(img, &op)
}

// spriteDraw is one projected point sprite.
type spriteDraw struct {
	X, Y, Size float64
	R, G, B, A float32
}

// projectStar places a star of a layer whose node-to-world matrix is world.
func projectStar(cam *camera.Camera, world mgl64.Mat4, st starfield.Star, opacity float64) (spriteDraw, bool) {
	p := world.Mul4x1(st.Position.Vec4(1)).Vec3()
	x, y, depth, ok := cam.Project(p)
	if !ok || opacity <= 0 {
		return spriteDraw{}, false
	}
	size := min(st.Size*starfield.SizeDistance/depth, maxStarSize)
	d := spriteDraw{X: x, Y: y, Size: size}
	d.R, d.G, d.B, d.A = premultiply(st.Color, vmath.Saturate(st.Intensity*opacity))
	return d, true
}

func (r *Renderer) drawStars(screen *ebiten.Image, s *scene.Scene, cam *camera.Camera) {
	g := s.Graph()
	sw, sh := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())
	var op ebiten.DrawImageOptions
	for _, l := range s.Stars().Layers() {
		if !g.Visible(l.Node) {
			continue
		}
		world := g.World(l.Node)
		for _, st := range l.Stars {
			d, ok := projectStar(cam, world, st, l.Opacity)
			if !ok || d.X < -d.Size || d.Y < -d.Size || d.X > sw+d.Size || d.Y > sh+d.Size {
				continue
			}
			op = ebiten.DrawImageOptions{}
			op.GeoM.Translate(-spriteSize/2, -spriteSize/2)
			op.GeoM.Scale(d.Size/spriteSize, d.Size/spriteSize)
			op.GeoM.Translate(d.X, d.Y)
			op.ColorScale.Scale(d.R, d.G, d.B, d.A)
			op.Blend = ebiten.BlendLighter
			op.Filter = ebiten.FilterLinear
			screen.DrawImage(r.sprite, &op)
		}
	}
}

// projectDust places one particle. Particle size is fixed in world units.
func projectDust(cam *camera.Camera, world mgl64.Mat4, p mgl64.Vec3, opacity float64) (spriteDraw, bool) {
	x, y, depth, ok := cam.Project(world.Mul4x1(p.Vec4(1)).Vec3())
	if !ok || opacity <= 0 {
		return spriteDraw{}, false
	}
	d := spriteDraw{X: x, Y: y, Size: max(dustSize*cam.Focal()/depth, 1)}
	d.R, d.G, d.B, d.A = premultiply(dust.Color, opacity)
	return d, true
}

func (r *Renderer) drawDust(screen *ebiten.Image, s *scene.Scene, cam *camera.Camera) {
	cloud := s.Dust()
	g := s.Graph()
	if !g.Visible(cloud.Node()) {
		return
	}
	world := g.World(cloud.Node())
	var op ebiten.DrawImageOptions
	for _, p := range cloud.Points() {
		d, ok := projectDust(cam, world, p, cloud.Opacity())
		if !ok {
			continue
		}
		op = ebiten.DrawImageOptions{}
		op.GeoM.Scale(d.Size, d.Size)
		op.GeoM.Translate(d.X-d.Size/2, d.Y-d.Size/2)
		op.ColorScale.Scale(d.R, d.G, d.B, d.A)
		op.Blend = ebiten.BlendLighter
		screen.DrawImage(r.white, &op)
	}
}

// placement is a planet impostor ready to draw.
type placement struct {
	planet        *scene.Planet
	x, y, half, z float64
}

// sortPlacements orders impostors far to near.
func sortPlacements(p []placement) {
	sort.SliceStable(p, func(i, j int) bool { return p[i].z > p[j].z })
}

func (r *Renderer) drawPlanets(screen *ebiten.Image, s *scene.Scene, cam *camera.Camera) {
	g := s.Graph()
	r.placed = r.placed[:0]
	for _, p := range s.Planets() {
		if !g.Visible(p.Node()) {
			continue
		}
		x, y, half, z, ok := p.Placement(cam)
		if !ok || half < 0.5 {
			continue
		}
		r.placed = append(r.placed, placement{planet: p, x: x, y: y, half: half, z: z})
	}
	sortPlacements(r.placed)

	var op ebiten.DrawImageOptions
	for _, pl := range r.placed {
		img := imageOf(pl.planet.Surface())
		if img == nil {
			continue
		}
		size := float64(img.Bounds().Dx())
		op = ebiten.DrawImageOptions{}
		op.GeoM.Scale(2*pl.half/size, 2*pl.half/size)
		op.GeoM.Translate(pl.x-pl.half, pl.y-pl.half)
		op.Filter = ebiten.FilterLinear
		screen.DrawImage(img, &op)
	}
}

// tunnelTriangles projects the tunnel mesh into screen vertices and keeps
// the triangles whose corners are all in front of the camera.
func tunnelTriangles(cam *camera.Camera, world mgl64.Mat4, tun *hyperjump.Tunnel, verts []ebiten.Vertex, idx []uint16) ([]ebiten.Vertex, []uint16) {
	verts, idx = verts[:0], idx[:0]
	front := make([]bool, len(tun.Mesh.Vertices))
	for i, v := range tun.Mesh.Vertices {
		x, y, _, ok := cam.Project(world.Mul4x1(v.Vec4(1)).Vec3())
		front[i] = ok
		cr, cg, cb, ca := premultiply(tun.Mesh.Colors[i], tun.Opacity)
		verts = append(verts, ebiten.Vertex{
			DstX: float32(x), DstY: float32(y),
			SrcX: 1, SrcY: 1,
			ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca,
		})
	}
	for i := 0; i+2 < len(tun.Mesh.Indices); i += 3 {
		a, b, c := tun.Mesh.Indices[i], tun.Mesh.Indices[i+1], tun.Mesh.Indices[i+2]
		if front[a] && front[b] && front[c] {
			idx = append(idx, a, b, c)
		}
	}
	return verts, idx
}

func (r *Renderer) drawTunnel(screen *ebiten.Image, s *scene.Scene, cam *camera.Camera) {
	tun := s.Hyperjump().Tunnel()
	g := s.Graph()
	if tun.Opacity <= 0 || !g.Visible(tun.Node) {
		return
	}
	r.vertices, r.indices = tunnelTriangles(cam, g.World(tun.Node), tun, r.vertices, r.indices)
	if len(r.indices) == 0 {
		return
	}
	screen.DrawTriangles(r.vertices, r.indices, r.white, &ebiten.DrawTrianglesOptions{
		Blend:          ebiten.BlendLighter,
		ColorScaleMode: ebiten.ColorScaleModePremultipliedAlpha,
	})
}

func (r *Renderer) drawFlash(screen *ebiten.Image, flash float64) {
	if flash <= 0 {
		return
	}
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy()))
	op.ColorScale.ScaleAlpha(float32(vmath.Saturate(flash)))
	screen.DrawImage(r.white, &op)
}

// Vignette rasterizes the darkening overlay for a w×h screen: black with
// alpha rising toward the corners.
func Vignette(ctx context.Context, w, h int) (*raster.Frame, error) {
	f := raster.NewFrame(w, h)
	err := raster.Rasterize(ctx, f, 0, h, 0, func(x, y int) color.RGBA {
		u := (float64(x)+0.5)/float64(w) - 0.5
		v := (float64(y)+0.5)/float64(h) - 0.5
		d := math.Hypot(u, v)
		keep := vmath.Smoothstep(0.8, vignetteOff*0.799, d*(vignetteDark+vignetteOff))
		return raster.RGBA(mgl64.Vec3{}, 1-keep)
	})
	if err != nil {
		return nil, fmt.Errorf("vignette: %w", err)
	}
	return f, nil
}

func (r *Renderer) drawVignette(screen *ebiten.Image) {
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	if r.vignette == nil || r.vw != w || r.vh != h {
		f, err := Vignette(context.Background(), w, h)
		if err != nil {
			slog.Warn("vignette skipped", "error", err)
			return
		}
		if r.vignette != nil {
			r.vignette.Deallocate()
		}
		r.vignette = ebiten.NewImage(w, h)
		r.vignette.WritePixels(f.Pix)
		r.vw, r.vh = w, h
	}
	screen.DrawImage(r.vignette, nil)
}

func (r *Renderer) drawHUD(screen *ebiten.Image, s *scene.Scene) {
	cols := screen.Bounds().Dx() / cellW
	rows := screen.Bounds().Dy() / cellH
	r.hud.Resize(cols, rows)
	st := StatusOf(s)
	st.FPS = ebiten.ActualFPS()
	ComposeHUD(r.hud, st)
	r.grid.Draw(screen, r.hud)
}
