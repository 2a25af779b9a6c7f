package component

import (
	"github.com/yohamta/donburi"

	"github.com/milk9111/volgkeep/boss"
)

type Boss struct {
	Engine *boss.Engine
	// Size is the unscaled sprite side in pixels.
	Size float64
}

var BossComponent = donburi.NewComponentType[Boss]()
