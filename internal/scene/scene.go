// Package scene assembles the star system: planets, stars, dust, nebula,
// the opening flight and the hyperjump, all hung off one scene graph and
// advanced together once per frame.
package scene

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/spacehole-rogue/hyperjump/internal/camera"
	"github.com/spacehole-rogue/hyperjump/internal/dust"
	"github.com/spacehole-rogue/hyperjump/internal/flight"
	"github.com/spacehole-rogue/hyperjump/internal/graph"
	"github.com/spacehole-rogue/hyperjump/internal/hyperjump"
	"github.com/spacehole-rogue/hyperjump/internal/input"
	"github.com/spacehole-rogue/hyperjump/internal/nebula"
	"github.com/spacehole-rogue/hyperjump/internal/raster"
	"github.com/spacehole-rogue/hyperjump/internal/starfield"
	"github.com/spacehole-rogue/hyperjump/internal/terrain"
)

// Options configure a scene build.
type Options struct {
	Width, Height int
	Workers       int

	NebulaDivisor int
	NebulaRows    int
	PlanetTexture int
	PlanetRows    int

	Palette   nebula.Palette
	Hyperjump hyperjump.Config

	// Seed fixes star, dust and relocation randomness. Zero seeds from the
	// clock so every session differs.
	Seed      uint64
}

// DefaultOptions renders at 1280×720.
func DefaultOptions() Options {
	return Options{
		Width:         1280,
		Height:        720,
		NebulaDivisor: 8,
		NebulaRows:    12,
		PlanetTexture: 96,
		PlanetRows:    24,
		Palette:       nebula.Hubble,
		Hyperjump:     hyperjump.DefaultConfig(),
	}
}

// Bodies returns the planets in build order. The first three are the
// flight's look-at waypoints; the moon orbits the first.
func Bodies() ([]Body, Body, error) {
	presets := []struct {
		cfg      terrain.SurfaceConfig
		radius   float64
		distance float64
		spin     float64
	}{
		{terrain.Earthlike(), 1.0, 0, 0.003},
		{terrain.Desert(), 0.55, 3.2, 0.002},
		{terrain.Volcanic(), 0.75, -4.2, 0.0012},
		{terrain.Iceworld(), 0.42, 6.8, 0.0018},
	}
	bodies := make([]Body, 0, len(presets))
	for _, p := range presets {
		s, err := terrain.NewSurface(p.cfg)
		if err != nil {
			return nil, Body{}, err
		}
		bodies = append(bodies, Body{
			Name:       s.Name,
			Shader:     s,
			Atmosphere: s.Atmosphere,
			Radius:     p.radius,
			Distance:   p.distance,
			Spin:       p.spin,
		})
	}
	moon := Body{Name: "moon", Shader: terrain.Moon{}, Radius: 0.25, Distance: 1.8, Orbit: 0.004}
	return bodies, moon, nil
}

// Scene owns every component and the graph they share.
type Scene struct {
	opts Options
	log  *slog.Logger

	graph   *graph.Graph
	camera  *camera.Camera
	system  graph.Node
	planets []*Planet
	stars   *starfield.Field
	dust    *dust.Cloud
	nebula  *nebula.Volume
	flight  *flight.Controller
	jump    *hyperjump.Machine

	Events *EventLog

	time     float64
	frames   uint64
	disposed bool
}

// Build creates the full scene. Any allocation or configuration failure
// releases what was already built and returns the error.
func Build(ctx raster.Context, opts Options, src input.Source, log *slog.Logger) (s *Scene, err error) {
	if log == nil {
		log = slog.Default()
	}
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	g := graph.New()
	s = &Scene{
		opts:   opts,
		log:    log.With("component", "scene"),
		graph:  g,
		camera: camera.New(opts.Width, opts.Height),
		Events: NewEventLog(8, 48),
	}
	defer func() {
		if err != nil {
			s.Dispose()
			s = nil
		}
	}()

	s.system, err = g.NewNode("solar-system", g.Root())
	if err != nil {
		return s, err
	}

	bodies, moon, err := Bodies()
	if err != nil {
		return s, fmt.Errorf("planets: %w", err)
	}
	for _, b := range bodies {
		p, err := newPlanet(g, s.system, ctx, b, opts.PlanetTexture)
		if err != nil {
			return s, err
		}
		s.planets = append(s.planets, p)
	}
	m, err := newPlanet(g, s.planets[0].Pivot(), ctx, moon, opts.PlanetTexture)
	if err != nil {
		return s, err
	}
	s.planets = append(s.planets, m)

	if s.stars, err = starfield.New(g, g.Root(), starfield.DefaultLayers, rng, log); err != nil {
		return s, err
	}
	if s.dust, err = dust.New(g, g.Root(), dust.DefaultConfig(), rng, log); err != nil {
		return s, err
	}

	ncfg := nebula.DefaultConfig()
	ncfg.Palette = opts.Palette
	s.nebula, err = nebula.NewVolume(ctx, ncfg, nebula.Options{
		Divisor:     opts.NebulaDivisor,
		RowsPerTick: opts.NebulaRows,
		Workers:     opts.Workers,
	}, s.camera, log)
	if err != nil {
		return s, err
	}
	if src != nil {
		s.nebula.Listen(src)
	}

	waypoints := make([]mgl64.Vec3, 0, 3)
	for _, p := range s.planets[:3] {
		waypoints = append(waypoints, p.Center())
	}
	if s.flight, err = flight.New(s.camera, waypoints); err != nil {
		return s, err
	}

	s.jump, err = hyperjump.New(opts.Hyperjump, hyperjump.Targets{
		Camera:      s.camera,
		Graph:       g,
		Root:        g.Root(),
		SolarSystem: s.system,
		Starfield:   s.stars,
	}, rng, log)
	if err != nil {
		return s, err
	}
	s.jump.OnEvent = s.onJump

	s.flight.Update(0)
	s.Events.Add("Systems nominal. Approaching the inner planets.", PriorityInfo)
	s.log.Info("scene built", "nodes", g.Len(), "seed", seed, "palette", opts.Palette)
	return s, nil
}

func (s *Scene) onJump(e hyperjump.Event) {
	switch {
	case e.Kind == hyperjump.Relocated:
		s.Events.Add(fmt.Sprintf("Arrived. System offset %.1f %.1f %.1f.", e.Offset[0], e.Offset[1], e.Offset[2]), PriorityArrive)
	case e.State == hyperjump.Windup:
		s.Events.Add("Hyperdrive spooling.", PriorityJump)
	case e.State == hyperjump.Transit:
		s.Events.Add("Jump.", PriorityJump)
	}
}

// Update advances every component to scene time t. The hyperjump runs after
// the flight so its field of view wins.
func (s *Scene) Update(t float64) {
	if s.disposed {
		return
	}
	s.time = t
	s.frames++
	for _, p := range s.planets {
		p.Update(t)
	}
	s.stars.Update(t, s.camera.Position)
	s.dust.Update(t)
	s.nebula.Update(t, s.camera)
	s.flight.Update(t)
	s.jump.Update(t)
}

// Render refreshes the software-shaded surfaces: the next nebula band and
// the next band of each planet impostor.
func (s *Scene) Render(ctx context.Context) error {
	if s.disposed {
		return nil
	}
	if err := s.nebula.Render(ctx); err != nil {
		return err
	}
	for _, p := range s.planets {
		if err := p.Render(ctx, s.camera, s.time, s.opts.PlanetRows, s.opts.Workers); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scene) Graph() *graph.Graph { return s.graph }
func (s *Scene) Camera() *camera.Camera { return s.camera }
func (s *Scene) SolarSystem() graph.Node { return s.system }
func (s *Scene) Planets() []*Planet { return s.planets }
func (s *Scene) Stars() *starfield.Field { return s.stars }
func (s *Scene) Dust() *dust.Cloud { return s.dust }
func (s *Scene) Nebula() *nebula.Volume { return s.nebula }
func (s *Scene) Flight() *flight.Controller { return s.flight }
func (s *Scene) Hyperjump() *hyperjump.Machine { return s.jump }
func (s *Scene) Time() float64 { return s.time }
func (s *Scene) Frames() uint64 { return s.frames }

// Dispose releases every component once. Later calls do nothing.
func (s *Scene) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	if s.jump != nil {
		s.jump.Dispose()
	}
	if s.flight != nil {
		s.flight.Dispose()
	}
	if s.nebula != nil {
		s.nebula.Dispose()
	}
	if s.dust != nil {
		s.dust.Dispose()
	}
	if s.stars != nil {
		s.stars.Dispose()
	}
	for _, p := range s.planets {
		p.Dispose()
	}
	s.graph.Remove(s.system)
	s.log.Info("scene disposed", "frames", s.frames)
}
