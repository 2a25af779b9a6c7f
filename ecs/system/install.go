package system

import (
	"log/slog"

	"github.com/yohamta/donburi/ecs"

	"github.com/milk9111/volgkeep/boss"
	"github.com/milk9111/volgkeep/ecs/component"
)

// Install adds the arena systems and renderers in update order. input runs
// right after the clock when not nil.
func Install(e *ecs.ECS, input ecs.System, sounds boss.Sounds, log *slog.Logger) {
	players := NewPlayerSystem(sounds)
	bosses := NewBossSystem(sounds, log)
	projectiles := NewProjectileSystem(sounds)

	e.AddSystem(UpdateClock)
	if input != nil {
		e.AddSystem(input)
	}
	e.AddSystem(WhileRunning(players.Update))
	e.AddSystem(WhileRunning(bosses.Update))
	e.AddSystem(WhileRunning(projectiles.Update))
	e.AddSystem(UpdateEffects)
	e.AddSystem(UpdateOutcome)

	e.AddRenderer(component.LayerWorld, DrawArena)
	e.AddRenderer(component.LayerWorld, DrawActors)
	e.AddRenderer(component.LayerWorld, DrawProjectiles)
	e.AddRenderer(component.LayerWorld, DrawSpeech)
	e.AddRenderer(component.LayerWorld, DrawHUD)
	e.AddRenderer(component.LayerOverlay, DrawOverlay)
}
