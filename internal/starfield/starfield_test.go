package starfield

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/spacehole-rogue/hyperjump/internal/graph"
)

func TestClassDistribution(t *testing.T) {
	const draws = 100_000
	rng := rand.New(rand.NewPCG(42, 7))
	counts := make([]int, len(Classes))
	for i := 0; i < draws; i++ {
		counts[ClassFor(rng.Float64())]++
	}
	for i, c := range Classes {
		got := float64(counts[i]) / draws
		if want := Probability(i); math.Abs(got-want) > 0.01 {
			t.Errorf("class %s: got %.4f, want %.4f ±0.01", c.Name, got, want)
		}
	}
}

func TestClassForEdges(t *testing.T) {
	tests := []struct {
		u    float64
		want string
	}{
		{0, "O"},
		{0.0000003, "B"},
		{0.0013, "A"},
		{0.1, "G"},
		{0.2333, "M"},
		{0.9999999, "M"},
	}
	for _, tt := range tests {
		if got := Classes[ClassFor(tt.u)].Name; got != tt.want {
			t.Errorf("ClassFor(%v): got %s, want %s", tt.u, got, tt.want)
		}
	}
}

func TestGenerateLayerBounds(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))
	for _, spec := range DefaultLayers {
		stars := GenerateLayer(spec, rng)
		if len(stars) > spec.Count || len(stars) == 0 {
			t.Fatalf("%s: kept %d of %d", spec.Name, len(stars), spec.Count)
		}
		for _, s := range stars {
			r := s.Position.Len()
			if r < spec.RadiusMin-1e-9 || r > spec.RadiusMax+1e-9 {
				t.Fatalf("%s: radius %v outside band", spec.Name, r)
			}
			if s.Size < SizeMin || s.Size >= SizeMax {
				t.Fatalf("size %v", s.Size)
			}
			if s.Intensity < IntensityMin || s.Intensity >= IntensityMax {
				t.Fatalf("intensity %v", s.Intensity)
			}
			if s.Color != Classes[s.Class].Color {
				t.Fatalf("color does not match class %d", s.Class)
			}
		}
	}
}

func TestGalacticCutThinsFarLayer(t *testing.T) {
	// Near stars sit well inside the plane's Gaussian and are nearly all kept;
	// the far shell loses a large share to the cut.
	rng := rand.New(rand.NewPCG(5, 5))
	near := GenerateLayer(DefaultLayers[0], rng)
	far := GenerateLayer(DefaultLayers[2], rng)
	nearKept := float64(len(near)) / float64(DefaultLayers[0].Count)
	farKept := float64(len(far)) / float64(DefaultLayers[2].Count)
	if nearKept < 0.95 || farKept > 0.8 {
		t.Fatalf("kept fractions near %.2f far %.2f", nearKept, farKept)
	}
	if d := GalacticDensity(mgl64.Vec3{50, 50, 0}); d != 1 {
		t.Fatalf("density on the plane: %v", d)
	}
}

func TestFieldUpdate(t *testing.T) {
	g := graph.New()
	f, err := New(g, g.Root(), DefaultLayers, rand.New(rand.NewPCG(3, 3)), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(f.Layers()); got != 3 {
		t.Fatalf("layers: %d", got)
	}

	cam := mgl64.Vec3{10, -5, 2}
	for _, tt := range []float64{0, 0.4, 3.3, 12} {
		f.Update(tt, cam)
		near, mid, far := f.Layers()[0], f.Layers()[1], f.Layers()[2]
		if want := 0.7 + 0.1*math.Sin(4*tt+1.3); math.Abs(near.Opacity-want) > 1e-12 {
			t.Fatalf("near opacity at %v: got %v want %v", tt, near.Opacity, want)
		}
		if want := 0.65 + 0.07*math.Sin(4*tt*0.7); math.Abs(mid.Opacity-want) > 1e-12 {
			t.Fatalf("mid opacity at %v: got %v want %v", tt, mid.Opacity, want)
		}
		if want := 0.55 + 0.05*math.Sin(4*tt*0.4); math.Abs(far.Opacity-want) > 1e-12 {
			t.Fatalf("far opacity at %v: got %v want %v", tt, far.Opacity, want)
		}
	}
	if got := g.Transform(f.Group()).Position; !got.ApproxEqualThreshold(cam.Mul(0.02), 1e-12) {
		t.Fatalf("parallax offset: got %v", got)
	}

	f.SetScale(1.2)
	if f.Scale() != 1.2 {
		t.Fatalf("scale: %v", f.Scale())
	}

	f.Dispose()
	f.Dispose()
	if g.Alive(f.Group()) || g.Len() != 1 {
		t.Fatalf("group should be removed, %d nodes left", g.Len())
	}
}

func TestProfile(t *testing.T) {
	if c := Profile(0, 0); c < 2 {
		t.Fatalf("center should include core, spike and halo: %v", c)
	}
	// On a spike axis the sprite is brighter than between spikes.
	if Profile(0.3, 0) <= Profile(0.3, math.Pi/8) {
		t.Fatal("spike should outshine the gap between spikes")
	}
	if Profile(1, math.Pi/8) > 0.05 {
		t.Fatal("edge should be dim")
	}
	s := Sprite(16)
	if s.At(8, 8).A == 0 || s.At(0, 0).A != 0 {
		t.Fatalf("sprite center %v corner %v", s.At(8, 8), s.At(0, 0))
	}
}
