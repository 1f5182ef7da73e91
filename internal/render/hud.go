package render

import (
	"fmt"
	"strings"

	"github.com/spacehole-rogue/hyperjump/internal/hyperjump"
	"github.com/spacehole-rogue/hyperjump/internal/nebula"
	"github.com/spacehole-rogue/hyperjump/internal/scene"
	"github.com/spacehole-rogue/hyperjump/internal/vmath"
)

const (
	meterWidth = 16
	hudEvents  = 6
	hudHint    = "H hubble  J jwst  ESC quit"
)

// Status is what the HUD shows for one frame.
type Status struct {
	Time    float64
	Palette nebula.Palette
	State   hyperjump.State
	Charge  float64 // drive meter, 0..1
	Events  []scene.Entry
	FPS     float64
}

// StatusOf samples s.
func StatusOf(s *scene.Scene) Status {
	jump := s.Hyperjump()
	return Status{
		Time:    s.Time(),
		Palette: s.Nebula().Palette(),
		State:   jump.State(),
		Charge:  Charge(jump.State(), s.Time(), jump.Config().Trigger),
		Events:  s.Events.Recent(hudEvents),
	}
}

// Charge is the drive meter: filling toward the trigger, full during a
// jump, empty on the idle frame between cycles.
func Charge(state hyperjump.State, t, trigger float64) float64 {
	switch {
	case state != hyperjump.Idle:
		return 1
	case t >= trigger:
		return 0
	case trigger <= 0:
		return 1
	}
	return vmath.Saturate(t / trigger)
}

// ComposeHUD lays st out in buf: status and meter top left, key hints top
// right, the event log along the bottom.
func ComposeHUD(buf *CellBuffer, st Status) {
	buf.Clear()
	status := fmt.Sprintf("T+%06.1f  %-6s  %s", st.Time, strings.ToUpper(st.Palette.String()), strings.ToUpper(st.State.String()))
	buf.WriteString(1, 0, status, ColorLightGray)

	x := buf.WriteString(1, 1, "DRIVE [", ColorLightGray)
	filled := int(vmath.Saturate(st.Charge)*meterWidth + 0.5)
	meter := ColorLightCyan
	if st.State != hyperjump.Idle {
		meter = ColorYellow
	}
	for i := 0; i < filled; i++ {
		buf.Set(x+i, 1, GlyphBlock, meter)
	}
	buf.WriteString(x+meterWidth, 1, "]", ColorLightGray)

	buf.WriteString(buf.Cols-len(hudHint)-1, 0, hudHint, ColorLightGray)

	if st.FPS > 0 {
		fps := fmt.Sprintf("FPS: %.0f", st.FPS)
		buf.WriteString(buf.Cols-len(fps)-1, buf.Rows-1, fps, ColorLightGray)
	}

	y := buf.Rows - len(st.Events)
	for _, e := range st.Events {
		buf.WriteString(1, y, e.Text, PriorityColor(e.Priority))
		y++
	}
}
