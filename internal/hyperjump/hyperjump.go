// Package hyperjump sequences the jump effect: a timed Idle, Windup,
// Transit, Resolve cycle that widens the camera, runs the tunnel and flash,
// and relocates the solar system mid-flash.
package hyperjump

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/spacehole-rogue/hyperjump/internal/camera"
	"github.com/spacehole-rogue/hyperjump/internal/graph"
	"github.com/spacehole-rogue/hyperjump/internal/vmath"
)

// State is the active phase.
type State uint8

const (
	Idle State = iota
	Windup
	Transit
	Resolve
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Windup:
		return "windup"
	case Transit:
		return "transit"
	case Resolve:
		return "resolve"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

var ErrInvalidConfig = errors.New("hyperjump: invalid config")

// Config holds the timeline. Durations are in seconds.
type Config struct {
	Trigger float64

	BaseFOV    float64
	WindupFOV  float64
	TransitFOV float64

	Windup  float64
	Transit float64
	Resolve float64

	// RelocateAt is the offset into Resolve at which the system moves.
	RelocateAt float64
	// Extent is the full width of the random relocation box per axis.
	Extent mgl64.Vec3
}

// DefaultConfig jumps twelve seconds into the session.
func DefaultConfig() Config {
	return Config{
		Trigger:    12,
		BaseFOV:    camera.DefaultFOV,
		WindupFOV:  72,
		TransitFOV: 90,
		Windup:     1.0,
		Transit:    1.5,
		Resolve:    1.0,
		RelocateAt: 0.25,
		Extent:     mgl64.Vec3{8, 3, 6},
	}
}

func (c Config) Validate() error {
	if c.Windup <= 0 || c.Transit <= 0 || c.Resolve <= 0 {
		return fmt.Errorf("phase durations %v/%v/%v: %w", c.Windup, c.Transit, c.Resolve, ErrInvalidConfig)
	}
	if c.RelocateAt < 0 || c.RelocateAt > c.Resolve {
		return fmt.Errorf("relocation at %v outside resolve: %w", c.RelocateAt, ErrInvalidConfig)
	}
	if c.Trigger < 0 {
		return fmt.Errorf("trigger %v: %w", c.Trigger, ErrInvalidConfig)
	}
	if c.BaseFOV <= 0 || c.WindupFOV <= 0 || c.TransitFOV <= 0 {
		return fmt.Errorf("fov: %w", ErrInvalidConfig)
	}
	return nil
}

// EventKind distinguishes machine events.
type EventKind uint8

const (
	PhaseChanged EventKind = iota
	Relocated
)

// Event reports a transition or the relocation.
type Event struct {
	Kind   EventKind
	State  State // state entered, or the current state for Relocated
	Time   float64
	Offset mgl64.Vec3 // new solar-system position for Relocated
}

// Scaler is the part of the star field the jump drives.
type Scaler interface {
	SetScale(s float64)
}

// Targets are the objects the machine mutates.
type Targets struct {
	Camera      *camera.Camera
	Graph       *graph.Graph
	Root        graph.Node // parent for the tunnel
	SolarSystem graph.Node
	Starfield   Scaler
}

// Tunnel is the live tunnel visual.
type Tunnel struct {
	Mesh    Mesh
	Node    graph.Node
	Opacity float64
}

// phase is one row of the transition table.
type phase struct {
	duration float64
	next     State
	apply    func(m *Machine, k, dt float64)
}

// Machine is the hyperjump component.
type Machine struct {
	cfg     Config
	t       Targets
	rng     *rand.Rand
	log     *slog.Logger
	table   [4]phase
	OnEvent func(Event)

	state     State
	start     float64
	now       float64
	relocated bool

	tunnel   Tunnel
	flash    float64
	disposed bool
}

// New builds the machine and its tunnel node. rng drives relocation.
func New(cfg Config, t Targets, rng *rand.Rand, log *slog.Logger) (*Machine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if t.Camera == nil || t.Graph == nil || t.Starfield == nil || rng == nil {
		return nil, fmt.Errorf("hyperjump: missing targets: %w", ErrInvalidConfig)
	}
	if !t.Graph.Alive(t.SolarSystem) {
		return nil, fmt.Errorf("hyperjump: solar system: %w", graph.ErrDeadNode)
	}
	node, err := t.Graph.NewNode("tunnel", t.Root)
	if err != nil {
		return nil, fmt.Errorf("hyperjump: %w", err)
	}
	t.Graph.Transform(node).Visible = false
	if log == nil {
		log = slog.Default()
	}

	m := &Machine{
		cfg:    cfg,
		t:      t,
		rng:    rng,
		log:    log.With("component", "hyperjump"),
		tunnel: Tunnel{Mesh: NewTunnelMesh(), Node: node},
	}
	m.table = [4]phase{
		Idle:    {},
		Windup:  {duration: cfg.Windup, next: Transit, apply: (*Machine).windup},
		Transit: {duration: cfg.Transit, next: Resolve, apply: (*Machine).transit},
		Resolve: {duration: cfg.Resolve, next: Idle, apply: (*Machine).resolve},
	}
	return m, nil
}

// State returns the active phase.
func (m *Machine) State() State { return m.state }

func (m *Machine) Config() Config { return m.cfg }

// Flash is the white overlay opacity.
func (m *Machine) Flash() float64 { return m.flash }

// Tunnel returns the tunnel visual.
func (m *Machine) Tunnel() *Tunnel { return &m.tunnel }

// Update advances the machine to scene time t. At most one transition
// happens per call.
func (m *Machine) Update(t float64) {
	if m.disposed {
		return
	}
	m.now = t
	if m.state == Idle {
		if t >= m.cfg.Trigger {
			m.relocated = false
			m.transform().Visible = true
			m.enter(Windup, t)
			m.table[Windup].apply(m, 0, 0)
		}
		return
	}

	p := m.table[m.state]
	dt := t - m.start
	p.apply(m, vmath.Saturate(dt/p.duration), dt)
	if dt >= p.duration {
		if p.next == Idle {
			m.reset()
		}
		m.enter(p.next, t)
	}
}

func (m *Machine) enter(s State, t float64) {
	m.state = s
	m.start = t
	m.log.Debug("phase", "state", s, "t", t)
	m.emit(Event{Kind: PhaseChanged, State: s, Time: t})
}

func (m *Machine) emit(e Event) {
	if m.OnEvent != nil {
		m.OnEvent(e)
	}
}

func (m *Machine) transform() *graph.Transform {
	if tr := m.t.Graph.Transform(m.tunnel.Node); tr != nil {
		return tr
	}
	return &graph.Transform{}
}

func (m *Machine) windup(k, _ float64) {
	m.t.Camera.FOV = vmath.Mix(m.cfg.BaseFOV, m.cfg.WindupFOV, k)
	m.tunnel.Opacity = k * 0.6
	m.flash = k * 0.2
	m.t.Starfield.SetScale(1 + k*0.2)
}

func (m *Machine) transit(k, _ float64) {
	m.t.Camera.FOV = vmath.Mix(m.cfg.WindupFOV, m.cfg.TransitFOV, k)
	tr := m.transform()
	tr.Position[2] -= k * 3
	tr.Scale = 1 + k*1.5
	m.flash = k * 0.9
}

func (m *Machine) resolve(k, dt float64) {
	m.t.Camera.FOV = vmath.Mix(m.cfg.TransitFOV, m.cfg.BaseFOV, k)
	m.flash = 1 - k
	if dt >= m.cfg.RelocateAt && !m.relocated {
		m.relocated = true
		m.relocate()
	}
}

func (m *Machine) relocate() {
	e := m.cfg.Extent
	offset := mgl64.Vec3{
		(m.rng.Float64() - 0.5) * e[0],
		(m.rng.Float64() - 0.5) * e[1],
		(m.rng.Float64() - 0.5) * e[2],
	}
	if tr := m.t.Graph.Transform(m.t.SolarSystem); tr != nil {
		tr.Position = offset
	}
	m.log.Info("solar system relocated", "offset", offset, "t", m.now)
	m.emit(Event{Kind: Relocated, State: m.state, Time: m.now, Offset: offset})
}

// reset returns every visual the jump touched to rest.
func (m *Machine) reset() {
	tr := m.transform()
	tr.Visible = false
	tr.Position = mgl64.Vec3{}
	tr.Scale = 1
	m.tunnel.Opacity = 0
	m.flash = 0
	m.t.Starfield.SetScale(1)
	m.t.Camera.FOV = m.cfg.BaseFOV
	m.relocated = false
}

// Dispose removes the tunnel node. Later calls do nothing.
func (m *Machine) Dispose() {
	if m.disposed {
		return
	}
	m.disposed = true
	m.t.Graph.Remove(m.tunnel.Node)
	m.log.Debug("disposed")
}
