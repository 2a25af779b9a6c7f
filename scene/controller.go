package scene

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/volgkeep/arena"
	"github.com/milk9111/volgkeep/logger"
	"github.com/milk9111/volgkeep/prefabs"
	"github.com/milk9111/volgkeep/story"
)

// Controller switches between the title, story and arena scenes. Scenes
// report back only through the controller's channels.
type Controller struct {
	env     *Env
	log     *slog.Logger
	current Scene

	storyEnded     chan StoryEnded
	encounterEnded chan EncounterEnded

	newStory func(id string) (Scene, error)
	newArena func(name string) (Scene, error)
	newTitle func() Scene
}

func NewController(env *Env) *Controller {
	log := env.Log
	if log == nil {
		log = logger.Discard()
	}
	c := &Controller{
		env:            env,
		log:            log,
		storyEnded:     make(chan StoryEnded, 4),
		encounterEnded: make(chan EncounterEnded, 4),
	}
	c.newStory = c.loadStory
	c.newArena = func(name string) (Scene, error) {
		return NewArenaScene(c.env, name, c.encounterEnded)
	}
	c.newTitle = func() Scene {
		cleared := false
		if c.env.Save != nil {
			cleared = c.env.Save.Cleared(c.bossID())
		}
		return NewTitleScene(c.env, cleared, c.Begin)
	}
	return c
}

func (c *Controller) Current() Scene { return c.current }

func (c *Controller) Update() error {
	if c.current != nil {
		if err := c.current.Update(); err != nil {
			return err
		}
	}
	c.drain()
	return nil
}

func (c *Controller) Draw(screen *ebiten.Image) {
	if c.current != nil {
		c.current.Draw(screen)
	}
}

// ShowTitle switches to the title scene.
func (c *Controller) ShowTitle() {
	c.switchTo(c.newTitle())
}

// Begin starts a new run: the configured opening story, or the arena's own
// intro when none is configured, then the encounter.
func (c *Controller) Begin() {
	id := c.env.Config.StartStory
	if id == "" {
		if layout, err := arena.Load(c.env.Arenas, c.env.Config.ArenaName); err == nil {
			id = layout.Intro
		}
	}
	if id == "" {
		c.StartEncounter(c.env.Config.ArenaName)
		return
	}
	c.StartStory(id)
}

// StartStory loads story id and switches to it. Failures fall back to the
// title scene.
func (c *Controller) StartStory(id string) {
	s, err := c.newStory(id)
	if err != nil {
		logger.WithError(c.log, err).Error("scene: cannot start story", "story", id)
		c.ShowTitle()
		return
	}
	c.switchTo(s)
}

// StartEncounter builds the arena called name and switches to it.
func (c *Controller) StartEncounter(name string) {
	s, err := c.newArena(name)
	if err != nil {
		logger.WithError(c.log, err).Error("scene: cannot start encounter", "arena", name)
		c.ShowTitle()
		return
	}
	c.switchTo(s)
}

// bossID is the configured boss, or the one the arena map names.
func (c *Controller) bossID() string {
	if id := c.env.Config.BossID; id != "" {
		return id
	}
	if layout, err := arena.Load(c.env.Arenas, c.env.Config.ArenaName); err == nil {
		return layout.BossID
	}
	return ""
}

func (c *Controller) loadStory(id string) (Scene, error) {
	prog, err := prefabs.LoadStory(context.Background(), c.env.Source, id)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	return NewStoryScene(c.env, prog, c.storyEnded), nil
}

func (c *Controller) switchTo(s Scene) {
	if closer, ok := c.current.(Closer); ok {
		closer.Close()
	}
	c.current = s
}

// drain handles every message queued this frame without blocking.
func (c *Controller) drain() {
	for {
		select {
		case ev := <-c.storyEnded:
			c.onStoryEnded(ev)
		case ev := <-c.encounterEnded:
			c.onEncounterEnded(ev)
		case ch, ok := <-c.env.Changes:
			if !ok {
				c.env.Changes = nil
				continue
			}
			c.onChange(ch)
		default:
			return
		}
	}
}

func (c *Controller) onChange(ch prefabs.Change) {
	r, ok := c.current.(Reloader)
	if !ok {
		c.log.Debug("scene: prefab changed", "kind", ch.Kind, "id", ch.ID)
		return
	}
	r.Reload(ch)
}

func (c *Controller) onStoryEnded(ev StoryEnded) {
	log := logger.WithSession(c.log, ev.SessionID)
	log.Info("scene: story ended", "story", ev.ScriptID, "return_to", ev.ReturnTo)

	if c.env.Save != nil {
		if err := c.env.Save.SaveVars(ev.Vars); err != nil {
			logger.WithError(log, err).Warn("scene: story variables not saved")
		}
	}

	switch ev.ReturnTo {
	case story.DestGame:
		c.StartEncounter(c.env.Config.ArenaName)
	case story.DestTitle:
		c.ShowTitle()
	case story.DestNone:
		// The story scene stays up; Escape leaves it.
	}
}

func (c *Controller) onEncounterEnded(ev EncounterEnded) {
	log := logger.WithSession(c.log, ev.SessionID)
	log.Info("scene: encounter ended", "boss", ev.BossID, "victory", ev.Victory)

	if !ev.Victory {
		c.StartStory(GameOverStory)
		return
	}
	if c.env.Save != nil {
		if err := c.env.Save.MarkCleared(ev.BossID); err != nil {
			logger.WithError(log, err).Warn("scene: clear not saved", "boss", ev.BossID)
		}
	}
	c.StartStory(ClearStory)
}
