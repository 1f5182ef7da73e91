package raster

import (
	"context"
	"errors"
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestRasterizeCoversRows(t *testing.T) {
	f := NewFrame(17, 23)
	fn := func(x, y int) color.RGBA {
		return color.RGBA{uint8(x), uint8(y), 0, 255}
	}
	for _, workers := range []int{0, 1, 3, 64} {
		f.Clear()
		if err := Rasterize(context.Background(), f, 5, 19, workers, fn); err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		for y := 0; y < f.H; y++ {
			for x := 0; x < f.W; x++ {
				got := f.At(x, y)
				inside := y >= 5 && y < 19
				if inside && got != fn(x, y) {
					t.Fatalf("workers=%d (%d,%d): got %v", workers, x, y, got)
				}
				if !inside && got.A != 0 {
					t.Fatalf("workers=%d (%d,%d) outside range was written", workers, x, y)
				}
			}
		}
	}
}

func TestRasterizeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Rasterize(ctx, NewFrame(4, 4), 0, 4, 2, func(int, int) color.RGBA { return color.RGBA{} })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRGBAPremultiplied(t *testing.T) {
	c := RGBA(mgl64.Vec3{4, 0.5, -1}, 0.5)
	if c.A != 128 {
		t.Fatalf("alpha: got %d", c.A)
	}
	if c.R > c.A || c.G > c.A || c.B != 0 {
		t.Fatalf("not premultiplied: %v", c)
	}
	if got := RGBA(mgl64.Vec3{1, 1, 1}, 2); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("clamped opaque white: got %v", got)
	}
}

func TestMemoryContext(t *testing.T) {
	m := &MemoryContext{Limit: 2}
	if _, err := m.Allocate("bad", 0, 4); !errors.Is(err, ErrAllocate) {
		t.Fatalf("zero width: got %v", err)
	}
	a, err := m.Allocate("a", 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Allocate("b", 2, 2); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Allocate("c", 2, 2); !errors.Is(err, ErrAllocate) {
		t.Fatalf("over limit: got %v", err)
	}
	if err := a.Upload(NewFrame(3, 3)); err == nil {
		t.Fatal("size mismatch should fail")
	}
	if err := a.Upload(NewFrame(2, 2)); err != nil {
		t.Fatal(err)
	}
	m.Release(a)
	m.Release(a)
	if got := m.Live(); got != 1 {
		t.Fatalf("Live: got %d", got)
	}
}
