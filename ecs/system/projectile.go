package system

import (
	"github.com/jakecoffman/cp"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"

	"github.com/milk9111/volgkeep/boss"
	"github.com/milk9111/volgkeep/common"
	"github.com/milk9111/volgkeep/ecs/component"
	"github.com/milk9111/volgkeep/ecs/entity"
)

type ProjectileSystem struct {
	sounds boss.Sounds
}

func NewProjectileSystem(sounds boss.Sounds) *ProjectileSystem {
	if sounds == nil {
		sounds = boss.NopSounds{}
	}
	return &ProjectileSystem{sounds: sounds}
}

func (s *ProjectileSystem) Update(e *ecs.ECS) {
	clock := component.ClockComponent.Get(component.ClockComponent.MustFirst(e.World))
	dt := clock.Delta.Seconds()

	var target cp.Vector
	playerEntry, havePlayer := component.PlayerTag.First(e.World)
	if havePlayer {
		target = center(component.ObjectComponent.Get(playerEntry))
	}

	var spent []*donburi.Entry
	component.ProjectileTag.Each(e.World, func(entry *donburi.Entry) {
		p := component.ProjectileComponent.Get(entry)
		if clock.Now >= p.Expires {
			spent = append(spent, entry)
			return
		}
		if p.Homing != nil && havePlayer && p.Owner == component.OwnerBoss {
			p.Velocity = steer(p.Velocity, target.Sub(p.Position), p.Homing.TurnRate*dt)
		}
		p.Position = p.Position.Add(p.Velocity.Mult(dt))

		obj := component.ObjectComponent.Get(entry)
		obj.X, obj.Y = p.Position.X-p.Radius, p.Position.Y-p.Radius
		obj.Update()

		if s.collide(e, clock, p, obj) {
			spent = append(spent, entry)
		}
	})

	for _, entry := range spent {
		entity.Remove(e, entry)
	}
}

// collide reports whether the projectile hit something and is spent.
func (s *ProjectileSystem) collide(e *ecs.ECS, clock *component.Clock, p *component.Projectile, obj *component.Object) bool {
	victim := entity.TagPlayer
	if p.Owner == component.OwnerPlayer {
		victim = entity.TagBoss
	}
	c := obj.Check(0, 0, entity.TagWall, victim)
	if c == nil {
		return false
	}
	for _, o := range c.ObjectsByTags(victim) {
		entry, ok := o.Data.(*donburi.Entry)
		if !ok || !entry.Valid() {
			continue
		}
		if p.Owner == component.OwnerPlayer {
			eng := component.BossComponent.Get(entry).Engine
			if eng.Boss().Defeated() {
				continue
			}
			eng.ApplyDamage(clock.Now, p.Damage)
		} else {
			hurtPlayer(entry, clock.Now, p.Damage, s.sounds)
		}
		return true
	}
	return len(c.ObjectsByTags(entity.TagWall)) > 0
}

// steer turns v toward want by at most maxTurn radians, keeping its speed.
func steer(v, want cp.Vector, maxTurn float64) cp.Vector {
	if want.LengthSq() == 0 || v.LengthSq() == 0 {
		return v
	}
	diff := common.WrapAngle(want.ToAngle() - v.ToAngle())
	turn := common.Clamp(diff, -maxTurn, maxTurn)
	return v.Rotate(cp.ForAngle(turn))
}
