package scene

import (
	"image/color"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"github.com/milk9111/volgkeep/assets"
	"github.com/milk9111/volgkeep/common"
	"github.com/milk9111/volgkeep/ecs/system"
	"github.com/milk9111/volgkeep/sound"
)

const (
	titleBGM  = "bgm_title.ogg"
	gameTitle = "VOLGKEEP"
)

var titleFg = color.NRGBA{0xf4, 0xf0, 0xe6, 0xff}

type TitleScene struct {
	env     *Env
	begin   func()
	menu    *ebitenui.UI
	cleared bool
	quit    bool
	started bool
}

// NewTitleScene shows the title menu. begin is called when a run starts;
// cleared adds a note that the encounter was won before.
func NewTitleScene(env *Env, cleared bool, begin func()) *TitleScene {
	return &TitleScene{env: env, begin: begin, cleared: cleared}
}

func (t *TitleScene) Update() error {
	if !t.started {
		t.started = true
		if t.env.Audio != nil {
			t.env.Audio.PlayBGM(titleBGM, sound.BGMOptions{Loop: true, Volume: sound.DefaultBGMVolume})
		}
	}
	if t.env.Audio != nil {
		t.env.Audio.Update(system.Tick)
	}

	if t.menu == nil {
		t.menu = NewMenu("", []MenuItem{
			{Label: "Start", Action: t.Start},
			{Label: "Quit", Action: func() { t.quit = true }},
		})
	}
	t.menu.Update()
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		t.Start()
	}
	if t.quit {
		return ErrQuit
	}
	return nil
}

// Start hands over to the controller once.
func (t *TitleScene) Start() {
	if t.begin == nil {
		return
	}
	begin := t.begin
	t.begin = nil
	begin()
}

func (t *TitleScene) Draw(screen *ebiten.Image) {
	bg, _ := assets.Background("", common.BaseWidth, common.BaseHeight)
	screen.DrawImage(bg, nil)

	face := assets.Face()
	sw := float64(screen.Bounds().Dx())
	op := &text.DrawOptions{}
	op.GeoM.Scale(4, 4)
	w, _ := text.Measure(gameTitle, face, 0)
	op.GeoM.Translate(sw/2-w*2, 120)
	op.ColorScale.ScaleWithColor(titleFg)
	text.Draw(screen, gameTitle, face, op)

	if t.cleared {
		note := "The keep has been retaken."
		nw, _ := text.Measure(note, face, 0)
		nop := &text.DrawOptions{}
		nop.GeoM.Translate(sw/2-nw/2, 200)
		nop.ColorScale.ScaleWithColor(titleFg)
		text.Draw(screen, note, face, nop)
	}
	if t.menu != nil {
		t.menu.Draw(screen)
	}
}
