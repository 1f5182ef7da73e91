package flight

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/spacehole-rogue/hyperjump/internal/camera"
)

var testWaypoints = []mgl64.Vec3{{0, 0, 0}, {3.2, 0, 0}, {-4.2, 0, 0}}

func newController(t *testing.T) (*Controller, *camera.Camera) {
	t.Helper()
	cam := camera.New(1280, 720)
	c, err := New(cam, testWaypoints)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, cam
}

func TestEndpoints(t *testing.T) {
	c, cam := newController(t)

	c.Update(0)
	if cam.Position != Start {
		t.Fatalf("t=0 position: got %v, want %v", cam.Position, Start)
	}
	if cam.Target != testWaypoints[0] {
		t.Fatalf("t=0 target: got %v, want %v", cam.Target, testWaypoints[0])
	}

	for _, tt := range []float64{10, 10.5, 30, 1e6} {
		c.Update(tt)
		if !cam.Position.ApproxEqualThreshold(End, 1e-12) {
			t.Fatalf("t=%v position: got %v, want %v", tt, cam.Position, End)
		}
		if !cam.Target.ApproxEqualThreshold(testWaypoints[2], 1e-12) {
			t.Fatalf("t=%v target: got %v, want %v", tt, cam.Target, testWaypoints[2])
		}
	}
}

func TestMonotonicPosition(t *testing.T) {
	c, _ := newController(t)
	prev, _ := c.Evaluate(0)
	for i := 1; i <= 1000; i++ {
		pos, _ := c.Evaluate(float64(i) / 100)
		for axis := 0; axis < 3; axis++ {
			dir := End[axis] - Start[axis]
			step := pos[axis] - prev[axis]
			if dir > 0 && step < 0 || dir < 0 && step > 0 {
				t.Fatalf("axis %d not monotonic at t=%v: %v -> %v", axis, float64(i)/100, prev[axis], pos[axis])
			}
		}
		prev = pos
	}
}

func TestZeroVelocityAtEnds(t *testing.T) {
	const h = 1e-4
	if d := (Progress(h) - Progress(0)) / h; d > 1e-6 {
		t.Fatalf("start velocity should vanish, got %v", d)
	}
	if d := (Progress(Duration) - Progress(Duration-h)) / h; d > 1e-6 {
		t.Fatalf("end velocity should vanish, got %v", d)
	}
}

func TestTargetPath(t *testing.T) {
	c, _ := newController(t)
	// Halfway through the eased flight the target sits on the middle waypoint.
	if got := c.target(0.5); !got.ApproxEqualThreshold(testWaypoints[1], 1e-12) {
		t.Fatalf("a=0.5 target: got %v", got)
	}
	if got := c.target(0.25); !got.ApproxEqualThreshold(mgl64.Vec3{1.6, 0, 0}, 1e-12) {
		t.Fatalf("a=0.25 target: got %v", got)
	}
	if got := c.target(1); !got.ApproxEqualThreshold(testWaypoints[2], 1e-12) {
		t.Fatalf("a=1 target: got %v", got)
	}
}

func TestSingleWaypoint(t *testing.T) {
	cam := camera.New(10, 10)
	c, err := New(cam, []mgl64.Vec3{{1, 2, 3}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, target := c.Evaluate(5)
	if target != (mgl64.Vec3{1, 2, 3}) {
		t.Fatalf("single waypoint target: got %v", target)
	}
}

func TestConstructionErrors(t *testing.T) {
	if _, err := New(camera.New(1, 1), nil); !errors.Is(err, ErrNoWaypoints) {
		t.Fatalf("empty waypoints: got %v", err)
	}
	if _, err := New(nil, testWaypoints); !errors.Is(err, ErrNilCamera) {
		t.Fatalf("nil camera: got %v", err)
	}
}
