package scene

import (
	"fmt"
	"image/color"
	"log/slog"
	"time"

	"github.com/ebitenui/ebitenui"
	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/muesli/reflow/wordwrap"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/milk9111/volgkeep/assets"
	"github.com/milk9111/volgkeep/common"
	"github.com/milk9111/volgkeep/ecs/system"
	"github.com/milk9111/volgkeep/logger"
	"github.com/milk9111/volgkeep/sound"
	"github.com/milk9111/volgkeep/story"
)

const (
	// EndFade is how long the music takes to stop after an end op.
	EndFade = 500 * time.Millisecond

	seVolume   = 1.0
	boxMargin  = 40
	boxHeight  = 170
	boxPadding = 20
	wrapWidth  = 150
	lineHeight = 18
)

var (
	storyBack = color.NRGBA{0x10, 0x0e, 0x18, 0xff}
	boxBack   = color.NRGBA{0x00, 0x00, 0x00, 0xc8}
	speakerFg = color.NRGBA{0xff, 0xd8, 0x70, 0xff}
	lineFg    = color.NRGBA{0xf4, 0xf0, 0xe6, 0xff}
)

// backdrop is the background image fading in behind the dialogue.
type backdrop struct {
	op    story.Background
	alpha float32
	fade  *gween.Tween
}

func newBackdrop(op story.Background) *backdrop {
	b := &backdrop{op: op, alpha: 1}
	if d := op.Fade.Std(); d > 0 {
		b.alpha = 0
		b.fade = gween.New(0, 1, float32(d.Seconds()), ease.Linear)
	}
	return b
}

func (b *backdrop) advance(delta time.Duration) {
	if b.fade == nil {
		return
	}
	alpha, done := b.fade.Update(float32(delta.Seconds()))
	b.alpha = alpha
	if done {
		b.fade = nil
	}
}

// StoryScene hosts one story run: it draws backgrounds, portraits and the
// dialogue box, and plays the script's music through the sound bus.
type StoryScene struct {
	env     *Env
	id      string
	session string
	log     *slog.Logger
	runner  *story.Runner
	out     chan<- StoryEnded

	started bool
	pager   pager
	bg      *backdrop
	choice  *story.Choice
	menu    *ebitenui.UI
	picked  int
	sent    bool
	dest    story.Destination
}

func NewStoryScene(env *Env, prog *story.Program, out chan<- StoryEnded) *StoryScene {
	session := uuid.NewString()
	log := env.Log
	if log == nil {
		log = logger.Discard()
	}
	log = logger.WithSession(log, session).With("story", prog.ID)

	s := &StoryScene{
		env:     env,
		id:      prog.ID,
		session: session,
		log:     log,
		runner:  story.NewRunner(story.WithLogger(log)),
		out:     out,
		picked:  -1,
	}
	s.runner.Load(prog)
	if env.Save != nil {
		s.runner.Restore(env.Save.LoadVars())
	}
	s.runner.Hooks(story.Hooks{
		Say: s.pager.open,
		Background: func(op story.Background) {
			s.bg = newBackdrop(op)
		},
		PlayBGM: func(op story.BGMPlay) {
			env.Audio.PlayBGM(op.Track, sound.BGMOptions{Loop: op.Loop, Volume: op.Volume, Fade: op.Fade.Std()})
		},
		StopBGM: func(op story.BGMStop) {
			env.Audio.StopBGM(op.Fade.Std())
		},
		CrossBGM: func(op story.BGMCross) {
			env.Audio.CrossBGM(op.From, op.To, op.Time.Std(), op.Loop)
		},
		SE: func(op story.SE) {
			env.Audio.PlaySE(op.Sound, seVolume)
		},
		Choice: func(op story.Choice) {
			s.choice = &op
			s.menu = nil
		},
		End: func(dest story.Destination) {
			env.Audio.StopBGM(EndFade)
			s.finish(dest)
		},
	})
	log.Info("scene: story started")
	return s
}

func (s *StoryScene) SessionID() string { return s.session }

func (s *StoryScene) Update() error {
	s.env.Audio.Update(system.Tick)
	if s.bg != nil {
		s.bg.advance(system.Tick)
	}

	if !s.started {
		s.Start()
		return nil
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		s.env.Audio.StopBGM(EndFade)
		s.finish(story.DestTitle)
		return nil
	}

	if s.choice != nil {
		s.updateChoice()
		return nil
	}
	if advancePressed() {
		s.Advance()
	}
	return nil
}

// Start runs the script up to its first suspend point.
func (s *StoryScene) Start() {
	if s.started {
		return
	}
	s.started = true
	s.step()
}

// Advance acknowledges the line on screen. After the last line of a say
// the script resumes.
func (s *StoryScene) Advance() {
	if s.sent || s.choice != nil {
		return
	}
	if s.pager.next() {
		return
	}
	s.step()
}

// Choose picks option i of the pending choice.
func (s *StoryScene) Choose(i int) {
	if s.choice == nil {
		return
	}
	pending := s.choice
	s.choice, s.menu = nil, nil
	st, err := s.runner.Choose(i)
	if err != nil {
		s.choice = pending
		logger.WithError(s.log, err).Warn("scene: choice rejected", "option", i)
		return
	}
	s.settle(st)
}

func (s *StoryScene) step() {
	s.pager.close()
	s.settle(s.runner.Step())
}

// settle handles a script that ran off its end without an end op.
func (s *StoryScene) settle(st story.Status) {
	if st == story.StatusFinished && !s.sent {
		s.log.Info("scene: story has no end op, returning to the game")
		s.finish(story.DestGame)
	}
}

// finish reports the end of the run once. A run that ended with nowhere
// to go may still be left for the title.
func (s *StoryScene) finish(dest story.Destination) {
	if s.sent && !(s.dest == story.DestNone && dest == story.DestTitle) {
		return
	}
	s.sent = true
	s.dest = dest
	s.pager.close()
	s.choice, s.menu = nil, nil

	ev := StoryEnded{SessionID: s.session, ScriptID: s.id, ReturnTo: dest, Vars: s.runner.Vars()}
	select {
	case s.out <- ev:
	default:
		s.log.Warn("scene: story end dropped, controller queue full")
	}
}

func (s *StoryScene) updateChoice() {
	if s.menu == nil {
		s.menu = s.buildMenu(*s.choice)
	}
	s.menu.Update()
	for i := range s.choice.Options {
		if i < 9 && inpututil.IsKeyJustPressed(ebiten.Key1+ebiten.Key(i)) {
			s.picked = i
		}
	}
	if s.picked >= 0 {
		i := s.picked
		s.picked = -1
		s.Choose(i)
	}
}

func (s *StoryScene) buildMenu(c story.Choice) *ebitenui.UI {
	items := make([]MenuItem, len(c.Options))
	for i, opt := range c.Options {
		items[i] = MenuItem{
			Label:  fmt.Sprintf("%d. %s", i+1, opt.Text),
			Action: func() { s.picked = i },
		}
	}
	return NewMenu(c.Prompt, items)
}

func advancePressed() bool {
	return inpututil.IsKeyJustPressed(ebiten.KeyEnter) ||
		inpututil.IsKeyJustPressed(ebiten.KeySpace) ||
		inpututil.IsKeyJustPressed(ebiten.KeyZ) ||
		inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
}

func (s *StoryScene) Draw(screen *ebiten.Image) {
	screen.Fill(storyBack)
	s.drawBackground(screen)

	if s.pager.active {
		s.drawPortrait(screen)
		s.drawDialogue(screen)
	}
	if s.menu != nil {
		s.menu.Draw(screen)
	}
}

func (s *StoryScene) drawBackground(screen *ebiten.Image) {
	if s.bg == nil || s.bg.op.Image == "" {
		return
	}
	img, _ := assets.Background(s.bg.op.Image, common.BaseWidth, common.BaseHeight)
	op := &ebiten.DrawImageOptions{}
	sx, sy := s.bg.op.ScaleX, s.bg.op.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	op.GeoM.Scale(sx, sy)
	op.GeoM.Translate(s.bg.op.X, s.bg.op.Y)
	op.ColorScale.ScaleAlpha(s.bg.alpha)
	screen.DrawImage(img, op)
}

func (s *StoryScene) drawPortrait(screen *ebiten.Image) {
	name, at, scale := s.pager.portrait()
	if name == "" {
		return
	}
	img, _ := assets.Portrait(name)
	w, h := float64(img.Bounds().Dx()), float64(img.Bounds().Dy())
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-w/2, -h/2)
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(at.X, at.Y)
	screen.DrawImage(img, op)
}

func (s *StoryScene) drawDialogue(screen *ebiten.Image) {
	speaker, line := s.pager.current()
	sw, sh := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())
	x, y := float64(boxMargin), sh-boxHeight-boxMargin
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(sw-2*boxMargin), boxHeight, boxBack, false)

	face := assets.Face()
	if speaker != "" {
		op := &text.DrawOptions{}
		op.GeoM.Translate(x+boxPadding, y+boxPadding)
		op.ColorScale.ScaleWithColor(speakerFg)
		text.Draw(screen, speaker, face, op)
	}

	op := &text.DrawOptions{}
	op.GeoM.Translate(x+boxPadding, y+boxPadding+2*lineHeight)
	op.ColorScale.ScaleWithColor(lineFg)
	op.LineSpacing = lineHeight
	text.Draw(screen, wordwrap.String(line, wrapWidth), face, op)
}
