// Command storyconsole plays a story script in the terminal. Music, sound
// and background ops are shown as cues in the transcript.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.design/x/clipboard"

	"github.com/milk9111/volgkeep/config"
	"github.com/milk9111/volgkeep/logger"
	"github.com/milk9111/volgkeep/prefabs"
)

func main() {
	dir := flag.String("dir", "", "prefab directory overriding the embedded stories")
	redisURL := flag.String("redis", os.Getenv("VOLG_REDIS_URL"), "redis url overriding both")
	logPath := flag.String("log", "", "write logs to this file")
	flag.Parse()

	id := flag.Arg(0)
	if id == "" {
		id = "intro"
	}

	cfg := config.Load()
	log := logger.Discard()
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer func() {
			_ = f.Close()
		}()
		cfg.LogLevel = slog.LevelDebug
		log = logger.SetupWriter(cfg, f)
	}

	ctx := context.Background()
	var src prefabs.Chain
	if *redisURL != "" {
		rs, err := prefabs.NewRedisSource(ctx, *redisURL, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Redis unavailable, using files: %v\n", err)
		} else {
			defer func() {
				_ = rs.Close()
			}()
			src = append(src, rs)
		}
	}
	if *dir != "" {
		src = append(src, prefabs.Dir(*dir))
	}
	src = append(src, prefabs.Embedded())

	prog, err := prefabs.LoadStory(ctx, src, id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load story: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(NewConsoleUI(prog, log, copyText),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func copyText(s string) error {
	if err := clipboard.Init(); err != nil {
		return err
	}
	clipboard.Write(clipboard.FmtText, []byte(s))
	return nil
}
