package component

import (
	"time"

	"github.com/solarlune/resolv"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

const (
	LayerWorld ecs.LayerID = iota
	LayerOverlay
)

var (
	PlayerTag     = donburi.NewTag().SetName("Player")
	BossTag       = donburi.NewTag().SetName("Boss")
	WallTag       = donburi.NewTag().SetName("Wall")
	ProjectileTag = donburi.NewTag().SetName("Projectile")
)

// Clock is the encounter clock. One entity carries it.
type Clock struct {
	Now    time.Duration
	Delta  time.Duration
	Paused bool
}

var ClockComponent = donburi.NewComponentType[Clock]()

// Object is an entity's collision body. Its Data points back at the entry.
type Object struct {
	*resolv.Object
}

var ObjectComponent = donburi.NewComponentType[Object]()

var SpaceComponent = donburi.NewComponentType[resolv.Space]()
