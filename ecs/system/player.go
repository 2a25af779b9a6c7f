package system

import (
	"time"

	"github.com/jakecoffman/cp"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"

	"github.com/milk9111/volgkeep/boss"
	"github.com/milk9111/volgkeep/ecs/component"
	"github.com/milk9111/volgkeep/ecs/entity"
)

const (
	sePlayerHit   = "se_player_hit"
	volumePlayer  = 0.8
	defaultShotR  = 4
	defaultShotTT = 1500 * time.Millisecond
)

type PlayerSystem struct {
	sounds boss.Sounds
}

func NewPlayerSystem(sounds boss.Sounds) *PlayerSystem {
	if sounds == nil {
		sounds = boss.NopSounds{}
	}
	return &PlayerSystem{sounds: sounds}
}

func (s *PlayerSystem) Update(e *ecs.ECS) {
	entry, ok := component.PlayerTag.First(e.World)
	if !ok {
		return
	}
	clock := component.ClockComponent.Get(component.ClockComponent.MustFirst(e.World))
	player := component.PlayerComponent.Get(entry)
	in := component.InputComponent.Get(entry)
	obj := component.ObjectComponent.Get(entry)

	if in.Move.LengthSq() > 0 {
		dir := in.Move.Normalize()
		player.Facing = dir
		step := dir.Mult(player.Spec.MoveSpeed * clock.Delta.Seconds())
		move(obj, step)
	}

	if in.Fire && clock.Now >= player.NextShot {
		s.fire(e, clock.Now, player, center(obj))
	}
}

// move slides obj along each axis until it would touch a wall.
func move(obj *component.Object, step cp.Vector) {
	if step.X != 0 {
		if c := obj.Check(step.X, 0, entity.TagWall); c != nil {
			if walls := c.ObjectsByTags(entity.TagWall); len(walls) > 0 {
				step.X = c.ContactWithObject(walls[0]).X()
			}
		}
		obj.X += step.X
	}
	if step.Y != 0 {
		if c := obj.Check(0, step.Y, entity.TagWall); c != nil {
			if walls := c.ObjectsByTags(entity.TagWall); len(walls) > 0 {
				step.Y = c.ContactWithObject(walls[0]).Y()
			}
		}
		obj.Y += step.Y
	}
	obj.Update()
}

func (s *PlayerSystem) fire(e *ecs.ECS, now time.Duration, player *component.Player, from cp.Vector) {
	shot := player.Spec.Shot
	dir := player.Facing
	if b, ok := component.BossTag.First(e.World); ok {
		if to := center(component.ObjectComponent.Get(b)).Sub(from); to.LengthSq() > 0 {
			dir = to.Normalize()
		}
	}
	radius := shot.Radius
	if radius <= 0 {
		radius = defaultShotR
	}
	lifetime := shot.Lifetime.Std()
	if lifetime <= 0 {
		lifetime = defaultShotTT
	}
	entity.CreateProjectile(e, now, component.Projectile{
		Owner:    component.OwnerPlayer,
		Position: from,
		Velocity: dir.Mult(shot.Speed),
		Radius:   radius,
		Damage:   shot.Damage,
		Color:    shot.Color,
	}, lifetime)
	player.NextShot = now + shot.Cooldown.Std()
	if shot.Sound != "" {
		s.sounds.PlaySE(shot.Sound, volumePlayer)
	}
}

// hurtPlayer applies damage unless the player is still invulnerable from
// the last hit. It reports whether damage was taken.
func hurtPlayer(entry *donburi.Entry, now time.Duration, amount int, sounds boss.Sounds) bool {
	if amount <= 0 {
		return false
	}
	player := component.PlayerComponent.Get(entry)
	if now < player.InvulnUntil {
		return false
	}
	hp := component.HealthComponent.Get(entry)
	if hp.Current <= 0 {
		return false
	}
	hp.Current = max(0, hp.Current-amount)
	player.InvulnUntil = now + player.Spec.Invuln.Std()
	sounds.PlaySE(sePlayerHit, volumePlayer)
	return true
}
