package system

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"

	"github.com/milk9111/volgkeep/assets"
	"github.com/milk9111/volgkeep/ecs/component"
)

const (
	hudMargin    = 12
	hudBarHeight = 12
	playerBarW   = 160
	bossBarW     = 480
	cutinScale   = 1.5
	cutinShade   = 0.55
	invulnBlink  = 6
)

var (
	arenaFloor  = color.NRGBA{0x16, 0x14, 0x22, 0xff}
	wallColor   = color.NRGBA{0x3a, 0x36, 0x50, 0xff}
	barBack     = color.NRGBA{0x28, 0x28, 0x28, 0xff}
	playerBar   = color.NRGBA{0x28, 0xdc, 0x28, 0xff}
	bossBar     = color.NRGBA{0xdc, 0x32, 0x32, 0xff}
	bubbleBack  = color.NRGBA{0xf4, 0xf0, 0xe6, 0xff}
	bubbleText  = color.NRGBA{0x20, 0x1c, 0x18, 0xff}
	defaultBoss = color.NRGBA{0xb0, 0x90, 0xf0, 0xff}
)

func withAlpha(c color.NRGBA, a float64) color.NRGBA {
	c.A = uint8(float64(c.A) * max(0, min(1, a)))
	return c
}

// view is the offset that centres the arena on the screen.
func view(e *ecs.ECS, screen *ebiten.Image) cp.Vector {
	entry, ok := component.EncounterComponent.First(e.World)
	if !ok {
		return cp.Vector{}
	}
	enc := component.EncounterComponent.Get(entry)
	b := screen.Bounds()
	return cp.Vector{X: (float64(b.Dx()) - enc.Width) / 2, Y: (float64(b.Dy()) - enc.Height) / 2}
}

func fillRect(dst *ebiten.Image, off cp.Vector, x, y, w, h float64, c color.Color) {
	vector.DrawFilledRect(dst, float32(x+off.X), float32(y+off.Y), float32(w), float32(h), c, false)
}

func DrawArena(e *ecs.ECS, screen *ebiten.Image) {
	screen.Fill(color.Black)
	off := view(e, screen)
	if entry, ok := component.EncounterComponent.First(e.World); ok {
		enc := component.EncounterComponent.Get(entry)
		fillRect(screen, off, 0, 0, enc.Width, enc.Height, arenaFloor)
	}
	component.WallTag.Each(e.World, func(entry *donburi.Entry) {
		obj := component.ObjectComponent.Get(entry)
		fillRect(screen, off, obj.X, obj.Y, obj.W, obj.H, wallColor)
	})
}

func DrawActors(e *ecs.ECS, screen *ebiten.Image) {
	off := view(e, screen)
	clock := component.ClockComponent.Get(component.ClockComponent.MustFirst(e.World))

	component.BossTag.Each(e.World, func(entry *donburi.Entry) {
		b := component.BossComponent.Get(entry).Engine.Boss()
		obj := component.ObjectComponent.Get(entry)
		base := defaultBoss
		if t := b.Config.Sprite.Tint; t != nil {
			base = t.NRGBA
		}
		fillRect(screen, off, obj.X, obj.Y, obj.W, obj.H, withAlpha(base, b.Alpha))
		if b.Blink != nil {
			fillRect(screen, off, obj.X, obj.Y, obj.W, obj.H, withAlpha(b.Blink.Color.NRGBA, 0.5))
		}
	})

	component.PlayerTag.Each(e.World, func(entry *donburi.Entry) {
		p := component.PlayerComponent.Get(entry)
		if clock.Now < p.InvulnUntil && (clock.Now/Tick/invulnBlink)%2 == 0 {
			return
		}
		obj := component.ObjectComponent.Get(entry)
		fillRect(screen, off, obj.X, obj.Y, obj.W, obj.H, p.Spec.Sprite.Color.NRGBA)
	})
}

func DrawProjectiles(e *ecs.ECS, screen *ebiten.Image) {
	off := view(e, screen)
	component.ProjectileTag.Each(e.World, func(entry *donburi.Entry) {
		p := component.ProjectileComponent.Get(entry)
		c := p.Color.NRGBA
		if p.Tint != nil {
			c = p.Tint.NRGBA
		}
		vector.DrawFilledCircle(screen, float32(p.Position.X+off.X), float32(p.Position.Y+off.Y), float32(p.Radius), c, true)
	})
}

func DrawHUD(e *ecs.ECS, screen *ebiten.Image) {
	face := assets.Face()

	if entry, ok := component.PlayerTag.First(e.World); ok {
		hp := component.HealthComponent.Get(entry)
		drawBar(screen, hudMargin, hudMargin, playerBarW, float64(hp.Current)/float64(max(1, hp.Max)), playerBar)
	}

	if entry, ok := component.BossTag.First(e.World); ok {
		b := component.BossComponent.Get(entry).Engine.Boss()
		x := (float64(screen.Bounds().Dx()) - bossBarW) / 2
		drawBar(screen, x, hudMargin, bossBarW, float64(b.HP)/float64(max(1, b.MaxHP)), bossBar)

		op := &text.DrawOptions{}
		op.GeoM.Translate(x, hudMargin+hudBarHeight+4)
		op.ColorScale.ScaleWithColor(color.White)
		text.Draw(screen, fmt.Sprintf("%s  %d/%d", b.Config.Name, b.HP, b.MaxHP), face, op)
	}
}

func drawBar(dst *ebiten.Image, x, y, w, ratio float64, c color.Color) {
	vector.DrawFilledRect(dst, float32(x), float32(y), float32(w), hudBarHeight, barBack, false)
	vector.DrawFilledRect(dst, float32(x), float32(y), float32(w*max(0, min(1, ratio))), hudBarHeight, c, false)
}

// DrawSpeech draws the bubble above the boss.
func DrawSpeech(e *ecs.ECS, screen *ebiten.Image) {
	stageEntry, ok := component.EncounterComponent.First(e.World)
	if !ok {
		return
	}
	bossEntry, ok := component.BossTag.First(e.World)
	if !ok {
		return
	}
	clock := component.ClockComponent.Get(stageEntry)
	speech := component.SpeechComponent.Get(stageEntry)
	alpha := SpeechAlpha(speech, clock.Now)
	if alpha <= 0 {
		return
	}

	face := assets.Face()
	off := view(e, screen)
	obj := component.ObjectComponent.Get(bossEntry)
	w, h := text.Measure(speech.Text, face, 0)
	const pad = 8
	x := obj.X + obj.W/2 - w/2 - pad
	y := obj.Y - h - 3*pad

	fg := bubbleText
	if speech.Color != nil {
		fg = speech.Color.NRGBA
	}
	fillRect(screen, off, x, y, w+2*pad, h+2*pad, withAlpha(bubbleBack, alpha))
	op := &text.DrawOptions{}
	op.GeoM.Translate(x+pad+off.X, y+pad+off.Y)
	op.ColorScale.ScaleWithColor(withAlpha(fg, alpha))
	text.Draw(screen, speech.Text, face, op)
}

// DrawOverlay draws the cut-in and the camera darken and flash covers.
func DrawOverlay(e *ecs.ECS, screen *ebiten.Image) {
	entry, ok := component.EncounterComponent.First(e.World)
	if !ok {
		return
	}
	sw, sh := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())

	fx := component.CameraFXComponent.Get(entry)
	if fx.Darken > 0 {
		vector.DrawFilledRect(screen, 0, 0, float32(sw), float32(sh), withAlpha(color.NRGBA{A: 0xff}, fx.Darken), false)
	}

	if cutin := component.CutinComponent.Get(entry); cutin.Image != nil {
		vector.DrawFilledRect(screen, 0, 0, float32(sw), float32(sh), withAlpha(color.NRGBA{A: 0xff}, cutinShade), false)
		iw, ih := float64(cutin.Image.Bounds().Dx())*cutinScale, float64(cutin.Image.Bounds().Dy())*cutinScale
		x := sw*0.25 - iw/2
		if cutin.Right {
			x = sw*0.75 - iw/2
		}
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(cutinScale, cutinScale)
		op.GeoM.Translate(x, sh/2-ih/2)
		screen.DrawImage(cutin.Image, op)

		if cutin.Label != "" {
			face := assets.Face()
			w, _ := text.Measure(cutin.Label, face, 0)
			top := &text.DrawOptions{}
			top.GeoM.Translate(x+iw/2-w/2, sh/2+ih/2+16)
			top.ColorScale.ScaleWithColor(color.White)
			text.Draw(screen, cutin.Label, face, top)
		}
	}

	if fx.FlashAlpha > 0 {
		vector.DrawFilledRect(screen, 0, 0, float32(sw), float32(sh), withAlpha(fx.Flash.NRGBA, fx.FlashAlpha), false)
	}
}
