package component

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween"
	"github.com/yohamta/donburi"

	"github.com/milk9111/volgkeep/common"
)

// Speech is the bubble over the boss. Empty Text hides it.
type Speech struct {
	Text  string
	Color *common.Color
	Start time.Duration
	Until time.Duration
}

var SpeechComponent = donburi.NewComponentType[Speech]()

// Cutin is the full-screen portrait shown before an ultimate.
type Cutin struct {
	Image *ebiten.Image
	Label string
	Right bool
	Start time.Duration
	Until time.Duration
}

var CutinComponent = donburi.NewComponentType[Cutin]()

// CameraFX holds screen overlays: a darkening cover and a colour flash.
type CameraFX struct {
	Darken      float64
	DarkenDelay time.Duration
	DarkenTween *gween.Tween

	Flash      common.Color
	FlashAlpha float64
	FlashTween *gween.Tween
}

var CameraFXComponent = donburi.NewComponentType[CameraFX]()
