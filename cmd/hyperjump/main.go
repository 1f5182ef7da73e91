package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/spacehole-rogue/hyperjump/internal/config"
	"github.com/spacehole-rogue/hyperjump/internal/input"
	"github.com/spacehole-rogue/hyperjump/internal/render"
	"github.com/spacehole-rogue/hyperjump/internal/scene"
)

// Game is the Ebitengine game struct. It owns the window loop and input.
// Everything that moves lives in the scene.
type Game struct {
	cfg      config.Config
	log      *slog.Logger
	ctx      *render.Context
	renderer *render.Renderer
	signals  *input.Channel
	clock    scene.Clock
	scene    *scene.Scene
}

func NewGame(cfg config.Config, log *slog.Logger) (*Game, error) {
	ctx := render.NewContext(log)
	signals := input.NewChannel(4)
	s, err := scene.Build(ctx, cfg.SceneOptions(), signals, log)
	if err != nil {
		return nil, err
	}
	return &Game{
		cfg:      cfg,
		log:      log,
		ctx:      ctx,
		renderer: render.NewRenderer(),
		signals:  signals,
		clock:    scene.NewMonotonicClock(),
		scene:    s,
	}, nil
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.send(input.SelectPaletteA)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyJ) {
		g.send(input.SelectPaletteB)
	}

	g.scene.Update(g.clock.Elapsed())
	return g.scene.Render(context.Background())
}

func (g *Game) send(sig input.Signal) {
	if !g.signals.Send(sig) {
		g.log.Warn("input dropped", "signal", sig)
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.renderer.Draw(screen, g.scene)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.cfg.Width, g.cfg.Height
}

// Close releases the scene and reports leaked surfaces.
func (g *Game) Close() {
	g.scene.Dispose()
	if n := g.ctx.Live(); n > 0 {
		g.log.Warn("surfaces still allocated after dispose", "count", n)
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	level, _ := cfg.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.LogJSON {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	slog.SetDefault(log)
	log.Debug("config loaded", "width", cfg.Width, "height", cfg.Height, "palette", cfg.Palette)

	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetFullscreen(cfg.Fullscreen)

	game, err := NewGame(cfg, log)
	if err != nil {
		return err
	}
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		slog.Error("hyperjump exited", "error", err)
		os.Exit(1)
	}
}
