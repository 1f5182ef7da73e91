package hyperjump

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/spacehole-rogue/hyperjump/internal/camera"
	"github.com/spacehole-rogue/hyperjump/internal/graph"
)

type scaleRecorder struct{ scale float64 }

func (s *scaleRecorder) SetScale(v float64) { s.scale = v }

type rig struct {
	m      *Machine
	g      *graph.Graph
	cam    *camera.Camera
	system graph.Node
	stars  *scaleRecorder
	events []Event
}

func newRig(t *testing.T) *rig {
	t.Helper()
	g := graph.New()
	system, err := g.NewNode("system", g.Root())
	if err != nil {
		t.Fatal(err)
	}
	r := &rig{g: g, cam: camera.New(800, 600), system: system, stars: &scaleRecorder{scale: 1}}
	r.m, err = New(DefaultConfig(), Targets{
		Camera:      r.cam,
		Graph:       g,
		Root:        g.Root(),
		SolarSystem: system,
		Starfield:   r.stars,
	}, rand.New(rand.NewPCG(11, 13)), nil)
	if err != nil {
		t.Fatal(err)
	}
	r.m.OnEvent = func(e Event) { r.events = append(r.events, e) }
	return r
}

func TestTimeline(t *testing.T) {
	r := newRig(t)

	want := func(tt float64) State {
		switch {
		case tt < 12:
			return Idle
		case tt < 13:
			return Windup
		case tt < 14.5:
			return Transit
		case tt < 15.5:
			return Resolve
		}
		return Idle
	}

	for i := 0; i <= 1550; i++ {
		tt := float64(i) / 100
		r.m.Update(tt)
		if got := r.m.State(); got != want(tt) {
			t.Fatalf("t=%.2f: state %v, want %v", tt, got, want(tt))
		}
	}

	var phases []State
	var times []float64
	for _, e := range r.events {
		if e.Kind == PhaseChanged {
			phases = append(phases, e.State)
			times = append(times, e.Time)
		}
	}
	wantPhases := []State{Windup, Transit, Resolve, Idle}
	wantTimes := []float64{12, 13, 14.5, 15.5}
	if len(phases) != len(wantPhases) {
		t.Fatalf("phase events: %v at %v", phases, times)
	}
	for i := range phases {
		if phases[i] != wantPhases[i] || times[i] != wantTimes[i] {
			t.Fatalf("event %d: %v at %v, want %v at %v", i, phases[i], times[i], wantPhases[i], wantTimes[i])
		}
	}
	var relocations []float64
	for _, e := range r.events {
		if e.Kind == Relocated {
			relocations = append(relocations, e.Time)
		}
	}
	if len(relocations) != 1 || relocations[0] != 14.75 {
		t.Fatalf("relocations: %v", relocations)
	}
}

func TestJumpCycleRepeats(t *testing.T) {
	r := newRig(t)
	for i := 0; i <= 2800; i++ {
		r.m.Update(float64(i) / 100)
	}

	// Each Windup opens a cycle that relocates exactly once.
	var windups, relocations []float64
	for _, e := range r.events {
		switch {
		case e.Kind == PhaseChanged && e.State == Windup:
			windups = append(windups, e.Time)
		case e.Kind == Relocated:
			relocations = append(relocations, e.Time)
		}
	}
	if len(windups) != 5 {
		t.Fatalf("windups at %v, want 5 cycles by t=28", windups)
	}
	if windups[0] != 12 || math.Abs(windups[1]-15.51) > 1e-9 {
		t.Fatalf("second cycle should start the frame after returning to idle: %v", windups)
	}
	complete := 0
	for i, start := range windups {
		end := math.Inf(1)
		if i+1 < len(windups) {
			end = windups[i+1]
		}
		n := 0
		for _, at := range relocations {
			if at > start && at < end {
				n++
			}
		}
		if i+1 < len(windups) && n != 1 {
			t.Fatalf("cycle %d starting at %v relocated %d times", i, start, n)
		}
		complete += n
	}
	if complete != len(relocations) {
		t.Fatalf("relocations outside any cycle: %v", relocations)
	}
}

func TestRelocationWithinExtent(t *testing.T) {
	r := newRig(t)
	for i := 0; i <= 1600; i++ {
		r.m.Update(float64(i) / 100)
	}
	pos := r.g.Transform(r.system).Position
	ext := DefaultConfig().Extent
	for axis := 0; axis < 3; axis++ {
		if math.Abs(pos[axis]) > ext[axis]/2 {
			t.Fatalf("offset %v outside extent %v", pos, ext)
		}
	}
	if pos == (mgl64.Vec3{}) {
		t.Fatal("system should have moved")
	}
}

func TestVisualsDuringJump(t *testing.T) {
	r := newRig(t)
	tunnel := r.m.Tunnel()

	r.m.Update(11.99)
	if r.g.Visible(tunnel.Node) || r.cam.FOV != 60 {
		t.Fatal("idle: tunnel hidden, base fov")
	}

	r.m.Update(12)
	if !r.g.Visible(tunnel.Node) {
		t.Fatal("windup: tunnel shown")
	}
	r.m.Update(12.5)
	if math.Abs(r.cam.FOV-66) > 1e-9 || math.Abs(tunnel.Opacity-0.3) > 1e-9 || math.Abs(r.m.Flash()-0.1) > 1e-9 {
		t.Fatalf("windup midpoint: fov %v opacity %v flash %v", r.cam.FOV, tunnel.Opacity, r.m.Flash())
	}
	if math.Abs(r.stars.scale-1.1) > 1e-9 {
		t.Fatalf("starfield scale %v", r.stars.scale)
	}

	r.m.Update(13)
	r.m.Update(14.5)
	if r.cam.FOV != 90 || math.Abs(r.m.Flash()-0.9) > 1e-9 {
		t.Fatalf("transit end: fov %v flash %v", r.cam.FOV, r.m.Flash())
	}
	tr := r.g.Transform(tunnel.Node)
	if tr.Scale != 2.5 || tr.Position[2] >= 0 {
		t.Fatalf("tunnel should be scaled and pushed back: %+v", tr)
	}

	r.m.Update(15.5)
	if r.m.State() != Idle {
		t.Fatalf("state %v", r.m.State())
	}
	if r.g.Visible(tunnel.Node) || tr.Scale != 1 || tr.Position != (mgl64.Vec3{}) {
		t.Fatalf("tunnel not reset: %+v", tr)
	}
	if r.stars.scale != 1 || r.m.Flash() != 0 || r.cam.FOV != 60 {
		t.Fatalf("visuals not reset: scale %v flash %v fov %v", r.stars.scale, r.m.Flash(), r.cam.FOV)
	}

	// Still past the trigger, so the next frame winds up again.
	r.m.Update(15.51)
	if r.m.State() != Windup || !r.g.Visible(tunnel.Node) {
		t.Fatalf("next frame: state %v", r.m.State())
	}
}

func TestOneTransitionPerUpdate(t *testing.T) {
	r := newRig(t)
	r.m.Update(100)
	if r.m.State() != Windup {
		t.Fatalf("first update: %v", r.m.State())
	}
	r.m.Update(200)
	if r.m.State() != Transit {
		t.Fatalf("second update: %v", r.m.State())
	}
}

func TestTunnelMesh(t *testing.T) {
	m := NewTunnelMesh()
	want := (TunnelSegments + 1) * (TunnelRadial + 1)
	if len(m.Vertices) != want || len(m.Colors) != want {
		t.Fatalf("vertices %d colors %d, want %d", len(m.Vertices), len(m.Colors), want)
	}
	if len(m.Indices) != TunnelSegments*TunnelRadial*6 {
		t.Fatalf("indices %d", len(m.Indices))
	}
	for _, idx := range m.Indices {
		if int(idx) >= want {
			t.Fatalf("index %d out of range", idx)
		}
	}
	for _, v := range m.Vertices {
		if r := math.Hypot(v[0], v[1]); math.Abs(r-TunnelRadius) > 1e-9 {
			t.Fatalf("vertex off the cylinder: %v", v)
		}
	}
	// Cyan-blue sweep: blue dominates red everywhere.
	for _, c := range m.Colors {
		if c.B <= c.R {
			t.Fatalf("unexpected tunnel hue %v", c)
		}
	}
}

func TestConstruction(t *testing.T) {
	g := graph.New()
	sys, _ := g.NewNode("system", g.Root())
	cfg := DefaultConfig()
	cfg.Transit = 0
	_, err := New(cfg, Targets{Camera: camera.New(1, 1), Graph: g, Root: g.Root(), SolarSystem: sys, Starfield: &scaleRecorder{}}, rand.New(rand.NewPCG(1, 1)), nil)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("zero transit: %v", err)
	}
	_, err = New(DefaultConfig(), Targets{Graph: g, SolarSystem: sys}, nil, nil)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("missing targets: %v", err)
	}
	_, err = New(DefaultConfig(), Targets{Camera: camera.New(1, 1), Graph: g, Root: g.Root(), SolarSystem: sys, Starfield: &scaleRecorder{}}, nil, nil)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("nil rng: %v", err)
	}

	r := newRig(t)
	r.m.Dispose()
	r.m.Dispose()
	if r.g.Alive(r.m.Tunnel().Node) {
		t.Fatal("tunnel node should be removed")
	}
	r.m.Update(12)
	if r.m.State() != Idle {
		t.Fatal("disposed machine should not advance")
	}
}
