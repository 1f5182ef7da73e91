package render

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/spacehole-rogue/hyperjump/internal/scene"
)

// HUD palette, taken from the bright half of the CGA set.
var (
	ColorLightCyan  = color.RGBA{85, 255, 255, 255}
	ColorYellow     = color.RGBA{255, 255, 85, 255}
	ColorLightGreen = color.RGBA{85, 255, 85, 255}
	ColorLightGray  = color.RGBA{170, 170, 170, 255}
	ColorWhite      = color.RGBA{255, 255, 255, 255}
)

// Background is the clear color behind the nebula.
var Background = color.RGBA{1, 1, 3, 255}

// PriorityColor maps an event log priority to its HUD color.
func PriorityColor(p scene.Priority) color.RGBA {
	switch p {
	case scene.PriorityJump:
		return ColorYellow
	case scene.PriorityArrive:
		return ColorLightGreen
	}
	return ColorLightCyan
}

// premultiply scales c by alpha into float channels for ColorScale and
// vertex colors.
func premultiply(c colorful.Color, alpha float64) (r, g, b, a float32) {
	c = c.Clamped()
	return float32(c.R * alpha), float32(c.G * alpha), float32(c.B * alpha), float32(alpha)
}
