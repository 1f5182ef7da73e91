package hyperjump

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
)

// Tunnel geometry.
const (
	TunnelRadius   = 3.8
	TunnelLength   = 80.0
	TunnelRadial   = 32
	TunnelSegments = 40
)

// Mesh is an open cylinder along the Z axis, seen from inside.
type Mesh struct {
	Vertices []mgl64.Vec3
	Colors   []colorful.Color
	Indices  []uint16
}

// NewTunnelMesh builds the tunnel cylinder. Vertex colors sweep hue from
// 0.55 to 0.65 of the wheel in vertex order.
func NewTunnelMesh() Mesh {
	rings := TunnelSegments + 1
	cols := TunnelRadial + 1
	n := rings * cols

	m := Mesh{
		Vertices: make([]mgl64.Vec3, 0, n),
		Colors:   make([]colorful.Color, 0, n),
		Indices:  make([]uint16, 0, TunnelSegments*TunnelRadial*6),
	}
	for ring := 0; ring < rings; ring++ {
		z := TunnelLength/2 - float64(ring)/TunnelSegments*TunnelLength
		for c := 0; c < cols; c++ {
			theta := float64(c) / TunnelRadial * 2 * math.Pi
			s, co := math.Sincos(theta)
			m.Vertices = append(m.Vertices, mgl64.Vec3{TunnelRadius * s, TunnelRadius * co, z})

			hue := 0.55 + float64(len(m.Colors))/float64(n)*0.1
			m.Colors = append(m.Colors, colorful.Hsl(hue*360, 1, 0.5))
		}
	}
	for ring := 0; ring < TunnelSegments; ring++ {
		for c := 0; c < TunnelRadial; c++ {
			a := uint16(ring*cols + c)
			b := uint16((ring+1)*cols + c)
			m.Indices = append(m.Indices, a, b, a+1, b, b+1, a+1)
		}
	}
	return m
}
