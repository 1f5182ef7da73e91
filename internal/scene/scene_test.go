package scene

import (
	"context"
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/spacehole-rogue/hyperjump/internal/camera"
	"github.com/spacehole-rogue/hyperjump/internal/graph"
	"github.com/spacehole-rogue/hyperjump/internal/hyperjump"
	"github.com/spacehole-rogue/hyperjump/internal/input"
	"github.com/spacehole-rogue/hyperjump/internal/nebula"
	"github.com/spacehole-rogue/hyperjump/internal/raster"
	"github.com/spacehole-rogue/hyperjump/internal/terrain"
)

func testOptions() Options {
	opts := DefaultOptions()
	opts.Width, opts.Height = 64, 36
	opts.NebulaDivisor = 8
	opts.NebulaRows = 2
	opts.PlanetTexture = 8
	opts.PlanetRows = 4
	opts.Workers = 2
	opts.Seed = 1
	return opts
}

func TestBuildRunDispose(t *testing.T) {
	ctx := &raster.MemoryContext{}
	ch := input.NewChannel(2)
	s, err := Build(ctx, testOptions(), ch, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(s.Planets()); got != 5 {
		t.Fatalf("planets: %d", got)
	}
	if got := ctx.Live(); got != 6 {
		t.Fatalf("surfaces: got %d, want 5 planets + nebula", got)
	}

	clock := &ManualClock{}
	ch.Send(input.SelectPaletteB)
	for i := 0; i <= 930; i++ {
		clock.T = float64(i) / 60
		s.Update(clock.Elapsed())
		if i%97 == 0 {
			if err := s.Render(context.Background()); err != nil {
				t.Fatal(err)
			}
		}
		if s.Hyperjump().State() == hyperjump.Transit && s.Camera().FOV < 72 {
			t.Fatalf("t=%v: hyperjump should own the field of view during transit, got %v", clock.T, s.Camera().FOV)
		}
	}
	if s.Nebula().Palette() != nebula.JWST {
		t.Fatal("palette signal not consumed")
	}
	if s.Hyperjump().State() != hyperjump.Idle {
		t.Fatalf("state after jump: %v", s.Hyperjump().State())
	}
	if pos := s.Graph().Transform(s.SolarSystem()).Position; pos == (mgl64.Vec3{}) {
		t.Fatal("solar system should have been relocated")
	}

	var jumped, arrived bool
	for _, e := range s.Events.Entries {
		jumped = jumped || e.Priority == PriorityJump
		arrived = arrived || e.Priority == PriorityArrive
	}
	if !jumped || !arrived {
		t.Fatalf("event log missing jump entries: %+v", s.Events.Entries)
	}

	s.Dispose()
	s.Dispose()
	if ctx.Live() != 0 {
		t.Fatalf("%d surfaces leaked", ctx.Live())
	}
	if n := s.Graph().Len(); n != 1 {
		t.Fatalf("%d nodes left after dispose", n)
	}
	s.Update(20)
	if err := s.Render(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestBuildFailsOnAllocation(t *testing.T) {
	ctx := &raster.MemoryContext{Limit: 3}
	s, err := Build(ctx, testOptions(), nil, nil)
	if !errors.Is(err, raster.ErrAllocate) {
		t.Fatalf("expected allocation failure, got %v", err)
	}
	if s != nil {
		t.Fatal("failed build should not return a scene")
	}
	if ctx.Live() != 0 {
		t.Fatalf("%d surfaces leaked by failed build", ctx.Live())
	}
}

func TestBuildRejectsBadHyperjump(t *testing.T) {
	opts := testOptions()
	opts.Hyperjump.Windup = 0
	if _, err := Build(&raster.MemoryContext{}, opts, nil, nil); !errors.Is(err, hyperjump.ErrInvalidConfig) {
		t.Fatalf("got %v", err)
	}
}

func TestMoonOrbitsEarthlike(t *testing.T) {
	s, err := Build(&raster.MemoryContext{}, testOptions(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Dispose()

	earth, moon := s.Planets()[0], s.Planets()[4]
	before := moon.Center()
	for i := 0; i < 100; i++ {
		s.Update(float64(i) / 60)
	}
	after := moon.Center()
	if d := after.Sub(earth.Center()).Len(); d < 1.8-1e-9 || d > 1.8+1e-9 {
		t.Fatalf("moon orbit radius %v", d)
	}
	if before.ApproxEqualThreshold(after, 1e-6) {
		t.Fatal("moon should move along its orbit")
	}
}

func TestPlanetUpdateDispose(t *testing.T) {
	g := graph.New()
	ctx := &raster.MemoryContext{}
	host, err := newPlanet(g, g.Root(), ctx, Body{Name: "host", Shader: terrain.Moon{}, Radius: 1, Spin: 0.01, Orbit: 0.02}, 8)
	if err != nil {
		t.Fatal(err)
	}
	moon, err := newPlanet(g, host.Pivot(), ctx, Body{Name: "moon", Shader: terrain.Moon{}, Radius: 0.25, Distance: 1.8}, 8)
	if err != nil {
		t.Fatal(err)
	}

	host.Update(0.5)
	host.Update(0.75)
	if host.Time() != 0.75 {
		t.Fatalf("time %v", host.Time())
	}
	if ry := g.Transform(host.Node()).RotationY; ry < 0.02-1e-12 || ry > 0.02+1e-12 {
		t.Fatalf("spin after two frames: %v", ry)
	}
	if ry := g.Transform(host.Pivot()).RotationY; ry < 0.04-1e-12 || ry > 0.04+1e-12 {
		t.Fatalf("orbit after two frames: %v", ry)
	}

	host.Dispose()
	host.Dispose()
	if ctx.Live() != 1 {
		t.Fatalf("live surfaces after disposing host: %d", ctx.Live())
	}
	if g.Alive(host.Pivot()) || g.Alive(moon.Node()) {
		t.Fatal("host pivot and its moon should be detached")
	}
	host.Update(1)
	if host.Time() != 0.75 {
		t.Fatal("disposed planet should not advance")
	}
	if err := host.Render(context.Background(), camera.New(8, 8), 1, 0, 1); err != nil {
		t.Fatal(err)
	}

	moon.Dispose()
	if ctx.Live() != 0 {
		t.Fatalf("%d surfaces leaked", ctx.Live())
	}
	if g.Len() != 1 {
		t.Fatalf("%d nodes left", g.Len())
	}
}

func TestPlacement(t *testing.T) {
	s, err := Build(&raster.MemoryContext{}, testOptions(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Dispose()
	cam := s.Camera()
	cam.Position = mgl64.Vec3{0, 0, 5}
	cam.LookAt(mgl64.Vec3{})

	x, y, half, depth, ok := s.Planets()[0].Placement(cam)
	if !ok || depth != 5 {
		t.Fatalf("placement ok=%v depth=%v", ok, depth)
	}
	if x != 32 || y != 18 {
		t.Fatalf("earthlike should sit at screen center, got %v,%v", x, y)
	}
	if want := haloScale / 5 * cam.Focal(); half < want-1e-9 || half > want+1e-9 {
		t.Fatalf("half size %v, want %v", half, want)
	}
}

func TestEventLog(t *testing.T) {
	l := NewEventLog(3, 10)
	l.Add("one two three four five", PriorityInfo)
	if len(l.Entries) != 3 {
		t.Fatalf("wrapped lines: %+v", l.Entries)
	}
	for _, e := range l.Entries {
		if len(e.Text) > 10 {
			t.Fatalf("line too long: %q", e.Text)
		}
	}
	l.Add("jump", PriorityJump)
	if len(l.Entries) != 3 || l.Entries[2].Text != "jump" || l.Entries[0].Text != "three four" {
		t.Fatalf("eviction: %+v", l.Entries)
	}
	if got := l.Recent(1); len(got) != 1 || got[0].Text != "jump" {
		t.Fatalf("Recent: %+v", got)
	}
}

func TestEventLogMinimumSize(t *testing.T) {
	l := NewEventLog(0, 0)
	l.Add("first", PriorityInfo)
	l.Add("second", PriorityArrive)
	if len(l.Entries) != 1 || l.Entries[0].Text != "second" {
		t.Fatalf("entries: %+v", l.Entries)
	}
	got := wrapText("  spaced\tout\nwords ", 8)
	if len(got) != 3 || got[0] != "spaced" || got[1] != "out" || got[2] != "words" {
		t.Fatalf("wrap: %q", got)
	}
}
