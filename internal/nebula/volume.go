package nebula

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/spacehole-rogue/hyperjump/internal/camera"
	"github.com/spacehole-rogue/hyperjump/internal/input"
	"github.com/spacehole-rogue/hyperjump/internal/raster"
	"github.com/spacehole-rogue/hyperjump/internal/vmath"
)

// Options control the software rendering of the volume.
type Options struct {
	Divisor     int // output pixels per nebula pixel along each axis
	RowsPerTick int // rows re-marched per Render call; 0 renders all rows
	Workers     int
}

// Volume is the nebula component: owns the field config, its render
// surface, and the palette toggle.
type Volume struct {
	cfg  Config
	opts Options
	log  *slog.Logger

	ctx     raster.Context
	surface raster.Surface
	frame   *raster.Frame
	cursor  int

	src  input.Source
	time float64
	cam  camera.Camera
	spin float64

	disposed bool
}

// NewVolume validates cfg and allocates a surface sized to the camera
// viewport divided by opts.Divisor.
func NewVolume(ctx raster.Context, cfg Config, opts Options, cam *camera.Camera, log *slog.Logger) (*Volume, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Divisor < 1 {
		opts.Divisor = 1
	}
	if log == nil {
		log = slog.Default()
	}
	vw, vh := cam.Viewport()
	w, h := max(vw/opts.Divisor, 1), max(vh/opts.Divisor, 1)
	surface, err := ctx.Allocate("nebula", w, h)
	if err != nil {
		return nil, fmt.Errorf("nebula surface: %w", err)
	}
	return &Volume{
		cfg:     cfg,
		opts:    opts,
		log:     log.With("component", "nebula"),
		ctx:     ctx,
		surface: surface,
		frame:   raster.NewFrame(w, h),
		cam:     *cam,
	}, nil
}

// Config returns the current field config.
func (v *Volume) Config() Config { return v.cfg }

// Palette returns the active palette.
func (v *Volume) Palette() Palette { return v.cfg.Palette }

// SetPalette switches the color grading. Density is unaffected.
func (v *Volume) SetPalette(p Palette) {
	if p == v.cfg.Palette {
		return
	}
	v.cfg.Palette = p
	v.log.Info("palette switched", "palette", p)
}

// Listen attaches the input source drained on each Update.
func (v *Volume) Listen(src input.Source) { v.src = src }

// Update consumes pending palette signals, records the time and camera for
// the next render, and advances the spin.
func (v *Volume) Update(t float64, cam *camera.Camera) {
	if v.src != nil {
		for {
			sig, ok := v.src.Poll()
			if !ok {
				break
			}
			switch sig {
			case input.SelectPaletteA:
				v.SetPalette(Hubble)
			case input.SelectPaletteB:
				v.SetPalette(JWST)
			}
		}
	}
	v.time = t
	v.cam = *cam
	v.spin += v.cfg.SpinRate
}

// March samples the volume along a world-space ray at the current time and
// spin.
func (v *Volume) March(ro, rd mgl64.Vec3) Sample {
	return March(v.cfg, v.toField(ro), v.toFieldDir(rd), v.time)
}

// toField moves a world point into the spun frame of the box. The box
// rotates about its own center.
func (v *Volume) toField(p mgl64.Vec3) mgl64.Vec3 {
	mid := v.cfg.Box.Min.Add(v.cfg.Box.Max).Mul(0.5)
	return vmath.RotateY(p.Sub(mid), -v.spin).Add(mid)
}

func (v *Volume) toFieldDir(d mgl64.Vec3) mgl64.Vec3 {
	return vmath.RotateY(d, -v.spin)
}

// Render re-marches the next band of rows and uploads the frame.
func (v *Volume) Render(ctx context.Context) error {
	if v.disposed {
		return nil
	}
	h := v.frame.H
	rows := v.opts.RowsPerTick
	if rows <= 0 || rows > h {
		rows = h
	}
	y0 := v.cursor
	y1 := min(y0+rows, h)

	w := v.frame.W
	cam := v.cam
	err := raster.Rasterize(ctx, v.frame, y0, y1, v.opts.Workers, func(x, y int) color.RGBA {
		ro, rd := cam.Ray(float64(x)+0.5, float64(y)+0.5, w, h)
		s := v.March(ro, rd)
		if !s.Visible {
			return color.RGBA{}
		}
		return raster.RGBA(s.Color, s.Alpha)
	})
	if err != nil {
		return fmt.Errorf("nebula: %w", err)
	}
	v.cursor = y1 % h
	return v.surface.Upload(v.frame)
}

// Surface is the texture holding the latest nebula frame.
func (v *Volume) Surface() raster.Surface { return v.surface }

// Dispose releases the surface. Later calls do nothing.
func (v *Volume) Dispose() {
	if v.disposed {
		return
	}
	v.disposed = true
	v.ctx.Release(v.surface)
	v.log.Debug("disposed")
}
