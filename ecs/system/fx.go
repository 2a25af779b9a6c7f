package system

import (
	"time"

	"github.com/yohamta/donburi/ecs"

	"github.com/milk9111/volgkeep/boss"
	"github.com/milk9111/volgkeep/common"
	"github.com/milk9111/volgkeep/ecs/component"
)

// UpdateEffects expires the speech bubble and cut-in and advances the
// camera overlays.
func UpdateEffects(e *ecs.ECS) {
	entry, ok := component.EncounterComponent.First(e.World)
	if !ok {
		return
	}
	clock := component.ClockComponent.Get(entry)
	dt := float32(clock.Delta.Seconds())

	speech := component.SpeechComponent.Get(entry)
	if speech.Text != "" && clock.Now >= speech.Until+boss.SpeechFadeOut {
		*speech = component.Speech{}
	}

	cutin := component.CutinComponent.Get(entry)
	if cutin.Image != nil && clock.Now >= cutin.Until {
		*cutin = component.Cutin{}
	}

	fx := component.CameraFXComponent.Get(entry)
	if fx.DarkenTween != nil && clock.Now >= fx.DarkenDelay {
		v, done := fx.DarkenTween.Update(dt)
		fx.Darken = float64(v)
		if done {
			fx.DarkenTween = nil
		}
	}
	if fx.FlashTween != nil {
		v, done := fx.FlashTween.Update(dt)
		fx.FlashAlpha = float64(v)
		if done {
			fx.FlashTween = nil
		}
	}
}

// SpeechAlpha is the bubble opacity. It fades out after Until.
func SpeechAlpha(s *component.Speech, now time.Duration) float64 {
	if s.Text == "" {
		return 0
	}
	if now <= s.Until {
		return 1
	}
	return common.Clamp(1-float64(now-s.Until)/float64(boss.SpeechFadeOut), 0, 1)
}
