package system

import (
	"time"

	"github.com/yohamta/donburi/ecs"

	"github.com/milk9111/volgkeep/ecs/component"
)

// Tick is one ebiten update at the default 60 TPS.
const Tick = time.Second / 60

// UpdateClock advances the encounter clock by one tick unless paused.
func UpdateClock(e *ecs.ECS) {
	entry, ok := component.ClockComponent.First(e.World)
	if !ok {
		return
	}
	c := component.ClockComponent.Get(entry)
	if c.Paused {
		c.Delta = 0
		return
	}
	c.Delta = Tick
	c.Now += Tick
}

// WhileRunning skips a system while the clock is paused or the encounter
// has an outcome.
func WhileRunning(sys ecs.System) ecs.System {
	return func(e *ecs.ECS) {
		if entry, ok := component.ClockComponent.First(e.World); ok && component.ClockComponent.Get(entry).Paused {
			return
		}
		if entry, ok := component.EncounterComponent.First(e.World); ok &&
			component.EncounterComponent.Get(entry).Outcome != component.OutcomePending {
			return
		}
		sys(e)
	}
}
