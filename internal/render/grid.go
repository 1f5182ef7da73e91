package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// Cell is a single character cell of the HUD.
type Cell struct {
	Glyph byte
	FG    color.RGBA
}

// CellBuffer is a 2D grid of character cells. Blank cells are transparent.
type CellBuffer struct {
	Cols  int
	Rows  int
	Cells []Cell
}

// NewCellBuffer creates a blank buffer.
func NewCellBuffer(cols, rows int) *CellBuffer {
	return &CellBuffer{Cols: cols, Rows: rows, Cells: make([]Cell, cols*rows)}
}

// Resize reallocates the buffer if the grid changed, leaving it blank.
func (b *CellBuffer) Resize(cols, rows int) {
	if cols == b.Cols && rows == b.Rows {
		b.Clear()
		return
	}
	*b = *NewCellBuffer(cols, rows)
}

// Set writes a single cell at (x, y). Out-of-bounds writes are ignored.
func (b *CellBuffer) Set(x, y int, glyph byte, fg color.RGBA) {
	if x >= 0 && x < b.Cols && y >= 0 && y < b.Rows {
		b.Cells[y*b.Cols+x] = Cell{Glyph: glyph, FG: fg}
	}
}

// Get reads a single cell at (x, y). Out-of-bounds reads return a blank cell.
func (b *CellBuffer) Get(x, y int) Cell {
	if x >= 0 && x < b.Cols && y >= 0 && y < b.Rows {
		return b.Cells[y*b.Cols+x]
	}
	return Cell{}
}

// Clear blanks every cell.
func (b *CellBuffer) Clear() {
	clear(b.Cells)
}

// WriteString writes s starting at (x, y) and returns the column after the
// last character. Runes outside ASCII are written as '?'.
func (b *CellBuffer) WriteString(x, y int, s string, fg color.RGBA) int {
	for _, ch := range s {
		if ch > 126 {
			ch = '?'
		}
		b.Set(x, y, byte(ch), fg)
		x++
	}
	return x
}

// Text returns row y as a string with blanks as spaces.
func (b *CellBuffer) Text(y int) string {
	row := make([]byte, b.Cols)
	for x := range row {
		g := b.Get(x, y).Glyph
		if g == 0 {
			g = ' '
		}
		row[x] = g
	}
	return string(row)
}

// GridRenderer draws a CellBuffer over the screen.
type GridRenderer struct {
	Atlas *FontAtlas
	CellW int
	CellH int
}

// NewGridRenderer creates a renderer with the given atlas and cell size.
func NewGridRenderer(atlas *FontAtlas, cellW, cellH int) *GridRenderer {
	return &GridRenderer{Atlas: atlas, CellW: cellW, CellH: cellH}
}

// Draw renders every non-blank cell.
func (r *GridRenderer) Draw(screen *ebiten.Image, buf *CellBuffer) {
	scaleX := float64(r.CellW) / GlyphWidth
	scaleY := float64(r.CellH) / GlyphHeight

	var op ebiten.DrawImageOptions
	for y := 0; y < buf.Rows; y++ {
		for x := 0; x < buf.Cols; x++ {
			cell := buf.Cells[y*buf.Cols+x]
			if cell.Glyph == ' ' || cell.Glyph == 0 {
				continue
			}
			glyph := r.Atlas.Glyph(cell.Glyph)
			if glyph == nil {
				continue
			}
			op = ebiten.DrawImageOptions{}
			op.GeoM.Scale(scaleX, scaleY)
			op.GeoM.Translate(float64(x*r.CellW), float64(y*r.CellH))
			op.ColorScale.ScaleWithColor(cell.FG)
			screen.DrawImage(glyph, &op)
		}
	}
}
