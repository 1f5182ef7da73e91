package render

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	GlyphWidth  = 8
	GlyphHeight = 16
	AtlasCols   = 16
	AtlasRows   = 8 // codes 0-127

	// GlyphBlock is the full cell block used for meters.
	GlyphBlock byte = 127
)

// FontAtlas holds the HUD glyph atlas and cached sub-images.
type FontAtlas struct {
	image  *ebiten.Image
	glyphs [AtlasCols * AtlasRows]*ebiten.Image
}

// NewFontAtlas renders printable ASCII with basicfont.Face7x13 and a solid
// block at GlyphBlock. Other codes stay blank.
func NewFontAtlas() *FontAtlas {
	eimg := ebiten.NewImageFromImage(atlasImage())
	a := &FontAtlas{image: eimg}
	for code := range a.glyphs {
		x := code % AtlasCols * GlyphWidth
		y := code / AtlasCols * GlyphHeight
		a.glyphs[code] = eimg.SubImage(image.Rect(x, y, x+GlyphWidth, y+GlyphHeight)).(*ebiten.Image)
	}
	return a
}

// Glyph returns the cached sub-image for an ASCII code, or nil outside the
// atlas.
func (a *FontAtlas) Glyph(code byte) *ebiten.Image {
	if int(code) >= len(a.glyphs) {
		return nil
	}
	return a.glyphs[code]
}

// atlasImage draws the glyph sheet on the CPU.
func atlasImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, AtlasCols*GlyphWidth, AtlasRows*GlyphHeight))
	face := basicfont.Face7x13
	for code := 32; code < 127; code++ {
		drawFontGlyph(img, face, code%AtlasCols*GlyphWidth, code/AtlasCols*GlyphHeight, rune(code))
	}
	bx := int(GlyphBlock) % AtlasCols * GlyphWidth
	by := int(GlyphBlock) / AtlasCols * GlyphHeight
	for y := 2; y < GlyphHeight-2; y++ {
		for x := 0; x < GlyphWidth-1; x++ {
			img.SetNRGBA(bx+x, by+y, color.NRGBA{255, 255, 255, 255})
		}
	}
	return img
}

// drawFontGlyph renders one character with its baseline 13px into the cell.
func drawFontGlyph(img *image.NRGBA, face font.Face, cellX, cellY int, r rune) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot:  fixed.P(cellX, cellY+13),
	}
	d.DrawString(string(r))
}
