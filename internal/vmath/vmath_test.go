package vmath

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestSmoothstep(t *testing.T) {
	tests := []struct {
		e0, e1, x, want float64
	}{
		{0, 1, -1, 0},
		{0, 1, 0, 0},
		{0, 1, 0.5, 0.5},
		{0, 1, 1, 1},
		{0, 1, 2, 1},
		{1, 0, 0, 1}, // falling ramp
		{1, 0, 1, 0},
		{0.5, 0.5, 0.4, 0},
		{0.5, 0.5, 0.6, 1},
	}
	for _, tc := range tests {
		got := Smoothstep(tc.e0, tc.e1, tc.x)
		if math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("Smoothstep(%v, %v, %v) = %v, want %v", tc.e0, tc.e1, tc.x, got, tc.want)
		}
	}
}

func TestQuinticEndpoints(t *testing.T) {
	if Quintic(0) != 0 || Quintic(1) != 1 {
		t.Fatalf("Quintic endpoints: got %v, %v", Quintic(0), Quintic(1))
	}
	prev := 0.0
	for i := 1; i <= 100; i++ {
		v := Quintic(float64(i) / 100)
		if v < prev {
			t.Fatalf("Quintic not monotonic at %d: %v < %v", i, v, prev)
		}
		prev = v
	}
}

func TestFract(t *testing.T) {
	for _, x := range []float64{-2.75, -1, 0, 0.25, 3.5, 1e6 + 0.125} {
		f := Fract(x)
		if f < 0 || f >= 1 {
			t.Errorf("Fract(%v) = %v, out of [0,1)", x, f)
		}
	}
	if got := Fract(-0.25); math.Abs(got-0.75) > 1e-12 {
		t.Errorf("Fract(-0.25) = %v, want 0.75", got)
	}
}

func TestRotateY(t *testing.T) {
	v := RotateY(mgl64.Vec3{1, 0, 0}, math.Pi/2)
	if !v.ApproxEqualThreshold(mgl64.Vec3{0, 0, -1}, 1e-12) {
		t.Fatalf("RotateY quarter turn: got %v", v)
	}
}
