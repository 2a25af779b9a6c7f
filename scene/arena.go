package scene

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ebitenui/ebitenui"
	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"

	"github.com/milk9111/volgkeep/arena"
	"github.com/milk9111/volgkeep/boss"
	"github.com/milk9111/volgkeep/ecs/component"
	"github.com/milk9111/volgkeep/ecs/entity"
	"github.com/milk9111/volgkeep/ecs/system"
	"github.com/milk9111/volgkeep/logger"
	"github.com/milk9111/volgkeep/prefabs"
	"github.com/milk9111/volgkeep/sound"
)

const arenaBGMFade = 800 * time.Millisecond

var ErrNoBoss = errors.New("scene: arena names no boss")

// ArenaScene runs one boss encounter on a donburi world built from an arena
// map and a boss config.
type ArenaScene struct {
	env     *Env
	log     *slog.Logger
	ecs     *ecs.ECS
	eng     *boss.Engine
	layout  *arena.Layout
	bossID  string
	session string
	volume  float64
	out     chan<- EncounterEnded
	sent    bool
	pause   *ebitenui.UI
}

// NewArenaScene loads arena name and its boss. The configured boss id wins
// over the map's boss property.
func NewArenaScene(env *Env, name string, out chan<- EncounterEnded) (*ArenaScene, error) {
	layout, err := arena.Load(env.Arenas, name)
	if err != nil {
		return nil, err
	}
	bossID := env.Config.BossID
	if bossID == "" {
		bossID = layout.BossID
	}
	if bossID == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoBoss, name)
	}
	cfg, err := prefabs.LoadBoss(context.Background(), env.Source, bossID)
	if err != nil {
		return nil, err
	}
	if env.Player == nil {
		return nil, errors.New("scene: no player spec")
	}

	session := uuid.NewString()
	log := env.Log
	if log == nil {
		log = logger.Discard()
	}
	log = logger.WithSession(log, session).With("boss", bossID, "arena", name)

	e := ecs.NewECS(donburi.NewWorld())
	entity.CreateStage(e, session, bossID, layout.Width, layout.Height)
	entity.CreateSpace(e, layout.Width, layout.Height)
	for _, w := range layout.Walls {
		entity.CreateWall(e, w)
	}
	entity.CreatePlayer(e, env.Player, layout.PlayerSpawn)

	stage := system.NewStage(e, env.Looks, env.Audio, env.Audio, log)
	opts := []boss.Option{boss.WithLogger(log), boss.WithBounds(layout.Inner())}
	if env.Config.Seed != 0 {
		opts = append(opts, boss.WithSeed(env.Config.Seed))
	}
	eng := boss.NewEngine(boss.New(cfg, layout.BossSpawn), stage.Collaborators(cfg.Cutin.Position == "right"), opts...)
	entity.CreateBoss(e, eng)
	system.Install(e, system.UpdateInput, env.Audio, log)

	s := &ArenaScene{
		env:     env,
		log:     log,
		ecs:     e,
		eng:     eng,
		layout:  layout,
		bossID:  bossID,
		session: session,
		volume:  env.Audio.Volume(),
		out:     out,
	}
	if layout.BGM != "" {
		env.Audio.PlayBGM(layout.BGM, sound.BGMOptions{Loop: true, Volume: sound.DefaultBGMVolume, Fade: arenaBGMFade})
		s.volume = sound.DefaultBGMVolume
	}
	eng.Start(0)
	log.Info("scene: encounter started", "hp", eng.Boss().HP)
	return s, nil
}

func (s *ArenaScene) SessionID() string { return s.session }

func (s *ArenaScene) Engine() *boss.Engine { return s.eng }

func (s *ArenaScene) World() *ecs.ECS { return s.ecs }

func (s *ArenaScene) Update() error {
	s.env.Audio.Update(system.Tick)
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyP) {
		s.SetPaused(!s.Paused())
	}
	if s.pause != nil {
		s.pause.Update()
	}
	s.ecs.Update()
	s.report()
	return nil
}

func (s *ArenaScene) Draw(screen *ebiten.Image) {
	s.ecs.Draw(screen)
	if s.pause != nil {
		s.pause.Draw(screen)
	}
}

func (s *ArenaScene) Paused() bool {
	entry, ok := component.ClockComponent.First(s.ecs.World)
	return ok && component.ClockComponent.Get(entry).Paused
}

// SetPaused freezes the encounter clock and shows the pause menu.
func (s *ArenaScene) SetPaused(paused bool) {
	entry, ok := component.ClockComponent.First(s.ecs.World)
	if !ok || s.sent {
		return
	}
	component.ClockComponent.Get(entry).Paused = paused
	if !paused {
		s.pause = nil
		return
	}
	s.pause = NewMenu("Paused", []MenuItem{
		{Label: "Resume", Action: func() { s.SetPaused(false) }},
		{Label: "Give up", Action: s.GiveUp},
	})
}

// GiveUp ends the encounter as a defeat.
func (s *ArenaScene) GiveUp() {
	if entry, ok := component.EncounterComponent.First(s.ecs.World); ok {
		component.EncounterComponent.Get(entry).Outcome = component.OutcomeDefeat
	}
	if entry, ok := component.ClockComponent.First(s.ecs.World); ok {
		component.ClockComponent.Get(entry).Paused = false
	}
	s.pause = nil
	s.log.Info("scene: encounter abandoned")
}

// Close puts the music level back in case an ultimate was cut short.
func (s *ArenaScene) Close() {
	s.env.Audio.SetVolume(s.volume)
}

// Reload applies an edited config for this scene's boss. Invalid edits
// are logged and the running config is kept.
func (s *ArenaScene) Reload(ch prefabs.Change) {
	if ch.Kind != prefabs.KindBoss || ch.ID != s.bossID {
		return
	}
	cfg, err := prefabs.LoadBoss(context.Background(), s.env.Source, s.bossID)
	if err != nil {
		logger.WithError(s.log, err).Warn("scene: reload rejected, keeping current config")
		return
	}
	s.eng.SetConfig(cfg)
	s.log.Info("scene: boss config reloaded", "path", ch.Path)
}

func (s *ArenaScene) report() {
	if s.sent {
		return
	}
	entry, ok := component.EncounterComponent.First(s.ecs.World)
	if !ok {
		return
	}
	enc := component.EncounterComponent.Get(entry)
	if enc.Outcome == component.OutcomePending {
		return
	}
	s.sent = true
	ev := EncounterEnded{SessionID: s.session, BossID: s.bossID, Victory: enc.Outcome == component.OutcomeVictory}
	select {
	case s.out <- ev:
	default:
		s.log.Warn("scene: encounter end dropped, controller queue full")
	}
}
