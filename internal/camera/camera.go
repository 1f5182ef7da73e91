// Package camera is the perspective camera shared by the flight controller,
// the hyperjump sequencer and the renderer.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Defaults match the scene's opening shot.
const (
	DefaultFOV  = 60.0 // vertical, degrees
	DefaultNear = 0.1
	DefaultFar  = 2000.0
)

var (
	DefaultPosition = mgl64.Vec3{0, 1.2, 6}
	worldUp         = mgl64.Vec3{0, 1, 0}
)

// Camera is a look-at perspective camera. Position, Target and FOV are
// written by the controllers each frame; the viewport is owned by the
// compositor.
type Camera struct {
	Position mgl64.Vec3
	Target   mgl64.Vec3
	FOV      float64 // vertical field of view in degrees
	Near     float64
	Far      float64

	width, height int
}

// New creates a camera at the default position looking at the origin.
func New(width, height int) *Camera {
	c := &Camera{
		Position: DefaultPosition,
		FOV:      DefaultFOV,
		Near:     DefaultNear,
		Far:      DefaultFar,
	}
	c.SetViewport(width, height)
	return c
}

// SetViewport updates the output size used for projection.
func (c *Camera) SetViewport(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	c.width, c.height = width, height
}

// Viewport returns the output size in pixels.
func (c *Camera) Viewport() (int, int) { return c.width, c.height }

// Aspect is width over height.
func (c *Camera) Aspect() float64 { return float64(c.width) / float64(c.height) }

// LookAt points the camera at target.
func (c *Camera) LookAt(target mgl64.Vec3) { c.Target = target }

// View is the world-to-camera matrix.
func (c *Camera) View() mgl64.Mat4 {
	return mgl64.LookAtV(c.Position, c.Target, worldUp)
}

// Projection is the camera-to-clip matrix.
func (c *Camera) Projection() mgl64.Mat4 {
	return mgl64.Perspective(mgl64.DegToRad(c.FOV), c.Aspect(), c.Near, c.Far)
}

// Basis returns the camera-to-world rotation: columns are right, up and
// back (the camera looks down −Z in its own frame).
func (c *Camera) Basis() mgl64.Mat3 {
	return c.View().Mat3().Transpose()
}

// Focal is the distance in pixels that one unit spans at depth one.
func (c *Camera) Focal() float64 {
	return float64(c.height) / 2 / math.Tan(mgl64.DegToRad(c.FOV)/2)
}

// Project maps a world point to screen pixels. depth is the distance along
// the view axis; ok is false for points at or behind the near plane.
func (c *Camera) Project(p mgl64.Vec3) (x, y, depth float64, ok bool) {
	v := c.View().Mul4x1(p.Vec4(1))
	depth = -v[2]
	if depth <= c.Near {
		return 0, 0, depth, false
	}
	f := c.Focal()
	x = float64(c.width)/2 + v[0]/depth*f
	y = float64(c.height)/2 - v[1]/depth*f
	return x, y, depth, true
}

// Ray returns the world-space ray through screen pixel (px, py) for an
// output of w×h pixels. The image may be smaller than the viewport; only
// the aspect ratio and FOV matter.
func (c *Camera) Ray(px, py float64, w, h int) (origin, dir mgl64.Vec3) {
	tanHalf := math.Tan(mgl64.DegToRad(c.FOV) / 2)
	aspect := float64(w) / float64(h)
	ndcX := (px/float64(w))*2 - 1
	ndcY := 1 - (py/float64(h))*2
	local := mgl64.Vec3{ndcX * tanHalf * aspect, ndcY * tanHalf, -1}
	return c.Position, c.Basis().Mul3x1(local).Normalize()
}

// ToCamera rotates a world-space direction into the camera frame.
func (c *Camera) ToCamera(dir mgl64.Vec3) mgl64.Vec3 {
	return c.View().Mat3().Mul3x1(dir)
}
