// Package raster is the software side of the render context: CPU pixel
// buffers filled in parallel row bands, and the allocation interface the
// window backend implements to turn them into drawable textures.
package raster

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"runtime"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/sync/errgroup"

	"github.com/spacehole-rogue/hyperjump/internal/vmath"
)

var ErrAllocate = errors.New("raster: cannot allocate surface")

// Surface is a drawable texture owned by the render context.
type Surface interface {
	Name() string
	Size() (w, h int)
	// Upload replaces the texture contents with f. f must match Size.
	Upload(f *Frame) error
}

// Context allocates and frees surfaces. Allocation failures are fatal to
// the caller; nothing substitutes a missing surface.
type Context interface {
	Allocate(name string, w, h int) (Surface, error)
	Release(s Surface)
}

// Frame is a premultiplied RGBA pixel buffer, 4 bytes per pixel.
type Frame struct {
	W, H int
	Pix  []byte
}

// NewFrame allocates a cleared frame.
func NewFrame(w, h int) *Frame {
	return &Frame{W: w, H: h, Pix: make([]byte, 4*w*h)}
}

// Set writes pixel (x, y).
func (f *Frame) Set(x, y int, c color.RGBA) {
	i := 4 * (y*f.W + x)
	f.Pix[i], f.Pix[i+1], f.Pix[i+2], f.Pix[i+3] = c.R, c.G, c.B, c.A
}

// At reads pixel (x, y).
func (f *Frame) At(x, y int) color.RGBA {
	i := 4 * (y*f.W + x)
	return color.RGBA{f.Pix[i], f.Pix[i+1], f.Pix[i+2], f.Pix[i+3]}
}

// Clear zeroes every pixel.
func (f *Frame) Clear() {
	clear(f.Pix)
}

// PixelFunc computes the premultiplied color of pixel (x, y).
type PixelFunc func(x, y int) color.RGBA

// Rasterize evaluates fn for rows [y0, y1) of f, split into one band per
// worker. It returns after every band is written. workers <= 0 uses
// GOMAXPROCS.
func Rasterize(ctx context.Context, f *Frame, y0, y1, workers int, fn PixelFunc) error {
	y0 = max(y0, 0)
	y1 = min(y1, f.H)
	if y0 >= y1 {
		return nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	rows := y1 - y0
	band := (rows + workers - 1) / workers

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := y0; start < y1; start += band {
		end := min(start+band, y1)
		g.Go(func() error {
			for y := start; y < end; y++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				for x := 0; x < f.W; x++ {
					f.Set(x, y, fn(x, y))
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("rasterize rows %d-%d: %w", y0, y1, err)
	}
	return nil
}

// RGBA converts a linear color and opacity into a premultiplied pixel,
// clamping both to [0, 1].
func RGBA(c mgl64.Vec3, alpha float64) color.RGBA {
	a := vmath.Saturate(alpha)
	return color.RGBA{
		R: channel(vmath.Saturate(c[0]) * a),
		G: channel(vmath.Saturate(c[1]) * a),
		B: channel(vmath.Saturate(c[2]) * a),
		A: channel(a),
	}
}

func channel(v float64) uint8 {
	return uint8(vmath.Saturate(v)*255 + 0.5)
}
