package raster

import (
	"fmt"
	"sync"
)

// MemoryContext is a headless Context. Surfaces keep the last uploaded
// frame in memory. A positive Limit caps the number of live surfaces.
type MemoryContext struct {
	Limit int

	mu   sync.Mutex
	live map[*MemorySurface]struct{}
}

// MemorySurface is the surface type returned by MemoryContext.
type MemorySurface struct {
	name    string
	w, h    int
	Frame   *Frame
	Uploads int
}

func (s *MemorySurface) Name() string     { return s.name }
func (s *MemorySurface) Size() (int, int) { return s.w, s.h }

func (s *MemorySurface) Upload(f *Frame) error {
	if f.W != s.w || f.H != s.h {
		return fmt.Errorf("upload %dx%d into %q (%dx%d): size mismatch", f.W, f.H, s.name, s.w, s.h)
	}
	if s.Frame == nil {
		s.Frame = NewFrame(s.w, s.h)
	}
	copy(s.Frame.Pix, f.Pix)
	s.Uploads++
	return nil
}

// Allocate implements Context.
func (m *MemoryContext) Allocate(name string, w, h int) (Surface, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%q %dx%d: %w", name, w, h, ErrAllocate)
	}
	if m.Limit > 0 && len(m.live) >= m.Limit {
		return nil, fmt.Errorf("%q: limit of %d surfaces reached: %w", name, m.Limit, ErrAllocate)
	}
	if m.live == nil {
		m.live = make(map[*MemorySurface]struct{})
	}
	s := &MemorySurface{name: name, w: w, h: h}
	m.live[s] = struct{}{}
	return s, nil
}

// Release implements Context. Releasing twice is harmless.
func (m *MemoryContext) Release(s Surface) {
	ms, ok := s.(*MemorySurface)
	if !ok {
		return
	}
	m.mu.Lock()
	delete(m.live, ms)
	m.mu.Unlock()
}

// Live returns the number of allocated, unreleased surfaces.
func (m *MemoryContext) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}
