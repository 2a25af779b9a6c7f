package entity

import (
	"time"

	"github.com/jakecoffman/cp"
	"github.com/solarlune/resolv"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"

	"github.com/milk9111/volgkeep/arena"
	"github.com/milk9111/volgkeep/boss"
	"github.com/milk9111/volgkeep/ecs/component"
	"github.com/milk9111/volgkeep/prefabs"
)

const (
	// Collision tags on resolv objects.
	TagWall       = arena.TagWall
	TagPlayer     = arena.TagPlayer
	TagBoss       = arena.TagBoss
	TagProjectile = "projectile"

	spaceCell = 16
	// bossSize is the unscaled side of the boss body.
	bossSize = 32
)

// CreateStage creates the singleton carrying the clock, the encounter
// result and the screen effects.
func CreateStage(e *ecs.ECS, sessionID, bossID string, width, height float64) *donburi.Entry {
	stage := stageArchetype.spawn(e)
	component.EncounterComponent.SetValue(stage, component.Encounter{
		SessionID: sessionID,
		BossID:    bossID,
		Width:     width,
		Height:    height,
	})
	return stage
}

func CreateSpace(e *ecs.ECS, width, height float64) *donburi.Entry {
	space := spaceArchetype.spawn(e)
	component.SpaceComponent.Set(space, resolv.NewSpace(int(width), int(height), spaceCell, spaceCell))
	return space
}

func addToSpace(e *ecs.ECS, obj *resolv.Object) {
	if spaceEntry, ok := component.SpaceComponent.First(e.World); ok {
		component.SpaceComponent.Get(spaceEntry).Add(obj)
	}
}

// Remove takes an entity's body out of the space and removes the
// entity.
func Remove(e *ecs.ECS, entry *donburi.Entry) {
	if !entry.Valid() {
		return
	}
	if entry.HasComponent(component.ObjectComponent) {
		obj := component.ObjectComponent.Get(entry)
		if obj.Object != nil {
			if spaceEntry, ok := component.SpaceComponent.First(e.World); ok {
				component.SpaceComponent.Get(spaceEntry).Remove(obj.Object)
			}
		}
	}
	e.World.Remove(entry.Entity())
}

func CreateWall(e *ecs.ECS, r arena.Rect) *donburi.Entry {
	wall := wallArchetype.spawn(e)
	obj := resolv.NewObject(r.X, r.Y, r.W, r.H, TagWall)
	obj.SetShape(resolv.NewRectangle(0, 0, r.W, r.H))
	obj.Data = wall
	component.ObjectComponent.SetValue(wall, component.Object{Object: obj})
	addToSpace(e, obj)
	return wall
}

// CreatePlayer places the player body centred on pos.
func CreatePlayer(e *ecs.ECS, spec *prefabs.PlayerSpec, pos cp.Vector) *donburi.Entry {
	player := playerArchetype.spawn(e)
	w, h := spec.Collider.Width, spec.Collider.Height
	obj := resolv.NewObject(pos.X-w/2, pos.Y-h/2, w, h, TagPlayer)
	obj.SetShape(resolv.NewRectangle(0, 0, w, h))
	obj.Data = player
	component.ObjectComponent.SetValue(player, component.Object{Object: obj})
	addToSpace(e, obj)

	component.PlayerComponent.SetValue(player, component.Player{Spec: spec, Facing: cp.Vector{X: 1}})
	component.HealthComponent.SetValue(player, component.Health{Current: spec.Health, Max: spec.Health})
	return player
}

// CreateBoss wraps a running engine. The body follows the boss position
// and scale each tick.
func CreateBoss(e *ecs.ECS, eng *boss.Engine) *donburi.Entry {
	entry := bossArchetype.spawn(e)
	b := eng.Boss()
	side := bossSize * b.Scale
	obj := resolv.NewObject(b.Position.X-side/2, b.Position.Y-side/2, side, side, TagBoss)
	obj.SetShape(resolv.NewRectangle(0, 0, side, side))
	obj.Data = entry
	component.ObjectComponent.SetValue(entry, component.Object{Object: obj})
	addToSpace(e, obj)
	component.BossComponent.SetValue(entry, component.Boss{Engine: eng, Size: bossSize})
	return entry
}

// SyncBossBody moves and resizes the boss body to match the engine.
func SyncBossBody(entry *donburi.Entry) {
	bc := component.BossComponent.Get(entry)
	b := bc.Engine.Boss()
	obj := component.ObjectComponent.Get(entry).Object
	side := bc.Size * b.Scale
	obj.W, obj.H = side, side
	obj.X, obj.Y = b.Position.X-side/2, b.Position.Y-side/2
	obj.Update()
}

// CreateProjectile spawns a projectile whose square body has side 2*p.Radius.
func CreateProjectile(e *ecs.ECS, now time.Duration, p component.Projectile, lifetime time.Duration) *donburi.Entry {
	entry := projectileArchetype.spawn(e)
	d := p.Radius * 2
	obj := resolv.NewObject(p.Position.X-p.Radius, p.Position.Y-p.Radius, d, d, TagProjectile)
	obj.SetShape(resolv.NewRectangle(0, 0, d, d))
	obj.Data = entry
	component.ObjectComponent.SetValue(entry, component.Object{Object: obj})
	addToSpace(e, obj)

	p.Expires = now + lifetime
	component.ProjectileComponent.SetValue(entry, p)
	return entry
}
