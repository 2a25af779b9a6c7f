package system

import (
	"log/slog"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"

	"github.com/milk9111/volgkeep/boss"
	"github.com/milk9111/volgkeep/ecs/component"
	"github.com/milk9111/volgkeep/ecs/entity"
)

// BossSystem ticks the encounter engine and keeps the boss body in sync.
type BossSystem struct {
	sounds boss.Sounds
	log    *slog.Logger
}

func NewBossSystem(sounds boss.Sounds, log *slog.Logger) *BossSystem {
	if sounds == nil {
		sounds = boss.NopSounds{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &BossSystem{sounds: sounds, log: log}
}

func (s *BossSystem) Update(e *ecs.ECS) {
	clock := component.ClockComponent.Get(component.ClockComponent.MustFirst(e.World))

	var removed []*donburi.Entry
	component.BossTag.Each(e.World, func(entry *donburi.Entry) {
		eng := component.BossComponent.Get(entry).Engine
		eng.Update(clock.Now, clock.Delta)
		entity.SyncBossBody(entry)

		if eng.Boss().Removed() {
			removed = append(removed, entry)
		}
		if dmg := eng.Boss().DashDamage(); dmg > 0 {
			s.dashContact(e, entry, clock, dmg)
		}
	})

	for _, entry := range removed {
		s.log.Debug("ecs: boss removed after defeat")
		entity.Remove(e, entry)
		finish(e, component.OutcomeVictory)
	}
}

// dashContact hurts the player when the dashing boss body overlaps it.
func (s *BossSystem) dashContact(e *ecs.ECS, entry *donburi.Entry, clock *component.Clock, dmg int) {
	obj := component.ObjectComponent.Get(entry)
	c := obj.Check(0, 0, entity.TagPlayer)
	if c == nil {
		return
	}
	for _, o := range c.ObjectsByTags(entity.TagPlayer) {
		if p, ok := o.Data.(*donburi.Entry); ok && p.Valid() {
			hurtPlayer(p, clock.Now, dmg, s.sounds)
		}
	}
}

// finish records the first outcome of the encounter.
func finish(e *ecs.ECS, outcome component.Outcome) {
	entry, ok := component.EncounterComponent.First(e.World)
	if !ok {
		return
	}
	enc := component.EncounterComponent.Get(entry)
	if enc.Outcome == component.OutcomePending {
		enc.Outcome = outcome
	}
}

// UpdateOutcome ends the encounter in defeat once the player has no HP.
func UpdateOutcome(e *ecs.ECS) {
	entry, ok := component.PlayerTag.First(e.World)
	if !ok {
		return
	}
	if component.HealthComponent.Get(entry).Current <= 0 {
		finish(e, component.OutcomeDefeat)
	}
}
