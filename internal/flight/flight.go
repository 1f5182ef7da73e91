// Package flight drives the opening camera move: a ten second eased glide
// from a wide establishing shot in toward the planets while the look-at
// target sweeps across a fixed list of waypoints.
package flight

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/spacehole-rogue/hyperjump/internal/camera"
	"github.com/spacehole-rogue/hyperjump/internal/vmath"
)

// Duration is the length of the flight in seconds.
const Duration = 10.0

var (
	Start = mgl64.Vec3{0, 1.2, 6}
	End   = mgl64.Vec3{4.5, 0.6, 1.5}
)

var (
	ErrNoWaypoints = errors.New("flight: waypoint sequence is empty")
	ErrNilCamera   = errors.New("flight: camera is nil")
)

// Controller writes position and look-at target into a shared camera. It
// is a pure function of elapsed time; Update can be called with any t in
// any order.
type Controller struct {
	cam       *camera.Camera
	start     mgl64.Vec3
	end       mgl64.Vec3
	waypoints []mgl64.Vec3
}

// New creates a controller over the given look-at waypoints.
func New(cam *camera.Camera, waypoints []mgl64.Vec3) (*Controller, error) {
	if cam == nil {
		return nil, ErrNilCamera
	}
	if len(waypoints) == 0 {
		return nil, ErrNoWaypoints
	}
	for i, w := range waypoints {
		if !vmath.Finite(w) {
			return nil, fmt.Errorf("flight: waypoint %d is not finite: %v", i, w)
		}
	}
	wps := make([]mgl64.Vec3, len(waypoints))
	copy(wps, waypoints)
	return &Controller{cam: cam, start: Start, end: End, waypoints: wps}, nil
}

// Ease is the quintic smootherstep used for the glide.
func Ease(x float64) float64 { return vmath.Quintic(x) }

// Progress maps elapsed seconds to eased progress in [0, 1].
func Progress(t float64) float64 {
	return Ease(vmath.Saturate(t / Duration))
}

// Evaluate returns the camera position and look-at target at time t.
func (c *Controller) Evaluate(t float64) (position, target mgl64.Vec3) {
	a := Progress(t)
	position = mgl64.Vec3{
		vmath.Mix(c.start[0], c.end[0], a),
		vmath.Mix(c.start[1], c.end[1], a),
		vmath.Mix(c.start[2], c.end[2], a),
	}
	return position, c.target(a)
}

// target walks the waypoint polyline: a is scaled onto the segments, the
// integer part picks the segment and the remainder interpolates within it.
func (c *Controller) target(a float64) mgl64.Vec3 {
	segments := len(c.waypoints) - 1
	if segments == 0 {
		return c.waypoints[0]
	}
	scaled := a * float64(segments)
	seg := int(math.Floor(scaled))
	if seg >= segments {
		seg = segments - 1
	}
	if seg < 0 {
		seg = 0
	}
	local := scaled - float64(seg)
	return vmath.MixV(c.waypoints[seg], c.waypoints[seg+1], local)
}

// Update writes the flight pose for time t into the camera.
func (c *Controller) Update(t float64) {
	pos, target := c.Evaluate(t)
	c.cam.Position = pos
	c.cam.LookAt(target)
}

// Waypoints returns a copy of the look-at sequence.
func (c *Controller) Waypoints() []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(c.waypoints))
	copy(out, c.waypoints)
	return out
}

// Dispose is a no-op: the controller owns no render resources.
func (c *Controller) Dispose() {}
