package component

import (
	"time"

	"github.com/jakecoffman/cp"
	"github.com/yohamta/donburi"

	"github.com/milk9111/volgkeep/boss"
	"github.com/milk9111/volgkeep/common"
)

type Owner int

const (
	OwnerBoss Owner = iota
	OwnerPlayer
)

type Projectile struct {
	Owner    Owner
	Type     boss.ProjectileType
	Position cp.Vector
	Velocity cp.Vector
	Radius   float64
	Damage   int
	Expires  time.Duration
	Color    common.Color
	// Tint overrides Color until cleared.
	Tint   *common.Color
	Homing *boss.Homing
}

var ProjectileComponent = donburi.NewComponentType[Projectile]()
