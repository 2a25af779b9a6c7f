package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/milk9111/volgkeep/assets"
	"github.com/milk9111/volgkeep/common"
	"github.com/milk9111/volgkeep/config"
	"github.com/milk9111/volgkeep/logger"
	"github.com/milk9111/volgkeep/prefabs"
	"github.com/milk9111/volgkeep/save"
	"github.com/milk9111/volgkeep/scene"
	"github.com/milk9111/volgkeep/sound"
)

type Game struct {
	debug      bool
	log        *slog.Logger
	controller *scene.Controller
	bus        *sound.Bus
	closers    []func() error
}

func NewGame(ctx context.Context, cfg *config.Config, log *slog.Logger, debug bool) (*Game, error) {
	g := &Game{debug: debug, log: log}

	src := g.source(ctx, cfg)
	player, err := prefabs.LoadPlayerSpec(ctx, src)
	if err != nil {
		return nil, err
	}
	looks, err := prefabs.LoadProjectilesSpec(ctx, src)
	if err != nil {
		return nil, err
	}
	bank, err := prefabs.LoadSoundBank(ctx, src)
	if err != nil {
		return nil, err
	}

	g.bus = sound.NewBus(sound.NewBankLoader(audio.NewContext(sound.SampleRate), assets.FS, bank), log)

	store, err := save.Open(cfg.AppName, log)
	if err != nil {
		logger.WithError(log, err).Warn("Save data disabled")
		store = nil
	}

	env := &scene.Env{
		Config: cfg,
		Log:    log,
		Source: src,
		Arenas: prefabs.Layers{os.DirFS(cfg.PrefabDir), prefabs.FS},
		Audio:  g.bus,
		Save:   store,
		Player: player,
		Looks:  looks,
	}
	if cfg.Watch {
		env.Changes = g.watch(cfg.PrefabDir)
	}
	g.controller = scene.NewController(env)
	return g, nil
}

// source chains Redis overrides, the prefab directory and the embedded
// copy, in that order. Redis is skipped when unreachable.
func (g *Game) source(ctx context.Context, cfg *config.Config) prefabs.Source {
	var chain prefabs.Chain
	if cfg.RedisURL != "" {
		rs, err := prefabs.NewRedisSource(ctx, cfg.RedisURL, g.log)
		if err != nil {
			logger.WithError(g.log, err).Warn("Redis prefab source disabled")
		} else {
			chain = append(chain, rs)
			g.closers = append(g.closers, rs.Close)
		}
	}
	if st, err := os.Stat(cfg.PrefabDir); err == nil && st.IsDir() {
		chain = append(chain, prefabs.Dir(cfg.PrefabDir))
	}
	return append(chain, prefabs.Embedded())
}

func (g *Game) watch(dir string) <-chan prefabs.Change {
	w, err := prefabs.NewWatcher(dir)
	if err != nil {
		logger.WithError(g.log, err).Warn("Prefab hot reload disabled", "dir", dir)
		return nil
	}
	g.closers = append(g.closers, w.Close)
	go func() {
		for err := range w.Errors {
			logger.WithError(g.log, err).Warn("Prefab watcher error")
		}
	}()
	g.log.Info("Watching prefabs for changes", "dir", dir)
	return w.Events
}

func (g *Game) Update() error {
	err := g.controller.Update()
	if errors.Is(err, scene.ErrQuit) {
		return ebiten.Termination
	}
	return err
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.controller.Draw(screen)
	if g.debug {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("TPS: %.1f    FPS: %.1f", ebiten.ActualTPS(), ebiten.ActualFPS()))
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return common.BaseWidth, common.BaseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}

func (g *Game) Close() {
	g.bus.Close()
	for _, c := range g.closers {
		if err := c(); err != nil {
			logger.WithError(g.log, err).Warn("Shutdown error")
		}
	}
}
