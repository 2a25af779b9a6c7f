package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/volgkeep/config"
	"github.com/milk9111/volgkeep/logger"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug mode")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	configPath := flag.String("config", "volgkeep.yaml", "optional YAML config overlay")
	bossID := flag.String("boss", "", "boss id; skips the title and starts the encounter")
	storyID := flag.String("story", "", "story id; skips the title and plays it")
	flag.Parse()

	cfg := config.Load()
	if err := cfg.ApplyFile(*configPath); err != nil {
		log.Fatal(err)
	}
	if *debug {
		cfg.LogLevel = slog.LevelDebug
	}
	if *bossID != "" {
		cfg.BossID = *bossID
	}
	logr := logger.Setup(cfg)

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(1280, 720)
	ebiten.SetWindowTitle("volgkeep")

	game, err := NewGame(context.Background(), cfg, logr, *debug)
	if err != nil {
		log.Fatal(err)
	}
	defer game.Close()

	switch {
	case *storyID != "":
		game.controller.StartStory(*storyID)
	case *bossID != "":
		game.controller.StartEncounter(cfg.ArenaName)
	default:
		game.controller.ShowTitle()
	}

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		logger.WithError(logr, err).Error("Game exited")
	}
}
