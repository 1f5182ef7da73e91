// Package render draws the scene with Ebitengine: GPU images backing the
// software-shaded surfaces, sprite and triangle passes for stars, dust and
// the tunnel, and a glyph HUD for the event log.
package render

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/spacehole-rogue/hyperjump/internal/raster"
)

// Surface is an ebiten image fed from a raster.Frame.
type Surface struct {
	name  string
	w, h  int
	image *ebiten.Image
}

func (s *Surface) Name() string     { return s.name }
func (s *Surface) Size() (int, int) { return s.w, s.h }

// Image is the GPU texture to draw.
func (s *Surface) Image() *ebiten.Image { return s.image }

// Upload copies f into the texture.
func (s *Surface) Upload(f *raster.Frame) error {
	if f.W != s.w || f.H != s.h {
		return fmt.Errorf("upload %dx%d frame to %s (%dx%d)", f.W, f.H, s.name, s.w, s.h)
	}
	if s.image == nil {
		return fmt.Errorf("upload to released surface %s", s.name)
	}
	s.image.WritePixels(f.Pix)
	return nil
}

// Context allocates ebiten-backed surfaces.
type Context struct {
	log *slog.Logger

	mu   sync.Mutex
	live map[*Surface]struct{}
}

// NewContext creates an empty context.
func NewContext(log *slog.Logger) *Context {
	if log == nil {
		log = slog.Default()
	}
	return &Context{
		log:  log.With("component", "render"),
		live: make(map[*Surface]struct{}),
	}
}

// Allocate creates a w×h texture.
func (c *Context) Allocate(name string, w, h int) (raster.Surface, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%s %dx%d: %w", name, w, h, raster.ErrAllocate)
	}
	s := &Surface{name: name, w: w, h: h, image: ebiten.NewImage(w, h)}
	c.mu.Lock()
	c.live[s] = struct{}{}
	c.mu.Unlock()
	c.log.Debug("surface allocated", "name", name, "w", w, "h", h)
	return s, nil
}

// Release frees the texture. Releasing twice, or a surface from another
// context, does nothing.
func (c *Context) Release(rs raster.Surface) {
	s, ok := rs.(*Surface)
	if !ok {
		return
	}
	c.mu.Lock()
	_, live := c.live[s]
	delete(c.live, s)
	c.mu.Unlock()
	if !live {
		return
	}
	s.image.Deallocate()
	s.image = nil
	c.log.Debug("surface released", "name", s.name)
}

// Live is the number of allocated surfaces.
func (c *Context) Live() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.live)
}

// imageOf returns the texture behind rs, or nil if it is not drawable.
func imageOf(rs raster.Surface) *ebiten.Image {
	if s, ok := rs.(*Surface); ok {
		return s.image
	}
	return nil
}
