package component

import (
	"time"

	"github.com/jakecoffman/cp"
	"github.com/yohamta/donburi"

	"github.com/milk9111/volgkeep/prefabs"
)

type Player struct {
	Spec *prefabs.PlayerSpec

	// Facing is the unit direction of the last movement; shots go this way
	// when there is no boss to aim at.
	Facing      cp.Vector
	NextShot    time.Duration
	InvulnUntil time.Duration
}

var PlayerComponent = donburi.NewComponentType[Player]()

type Health struct {
	Current int
	Max     int
}

var HealthComponent = donburi.NewComponentType[Health]()

// Input is the per-tick intent of the player, filled by the input system.
type Input struct {
	Move cp.Vector
	Fire bool
}

var InputComponent = donburi.NewComponentType[Input]()
