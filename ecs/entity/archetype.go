package entity

import (
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"

	"github.com/milk9111/volgkeep/ecs/component"
)

var (
	stageArchetype = newArchetype(
		component.ClockComponent,
		component.EncounterComponent,
		component.SpeechComponent,
		component.CutinComponent,
		component.CameraFXComponent,
	)
	spaceArchetype = newArchetype(
		component.SpaceComponent,
	)
	wallArchetype = newArchetype(
		component.WallTag,
		component.ObjectComponent,
	)
	playerArchetype = newArchetype(
		component.PlayerTag,
		component.PlayerComponent,
		component.HealthComponent,
		component.InputComponent,
		component.ObjectComponent,
	)
	bossArchetype = newArchetype(
		component.BossTag,
		component.BossComponent,
		component.ObjectComponent,
	)
	projectileArchetype = newArchetype(
		component.ProjectileTag,
		component.ProjectileComponent,
		component.ObjectComponent,
	)
)

type archetype struct {
	components []donburi.IComponentType
}

func newArchetype(cs ...donburi.IComponentType) *archetype {
	return &archetype{components: cs}
}

func (a *archetype) spawn(e *ecs.ECS) *donburi.Entry {
	return e.World.Entry(e.Create(component.LayerWorld, a.components...))
}
