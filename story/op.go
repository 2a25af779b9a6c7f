package story

import (
	"github.com/milk9111/volgkeep/common"
)

// Op is one authored instruction. The set of ops is closed; anything the
// decoder does not recognise becomes Unknown.
type Op interface {
	Name() string
	op()
}

// Say shows one dialogue box and suspends the runner.
type Say struct {
	Speaker  string   `yaml:"name"`
	Lines    []string `yaml:"lines"`
	Portrait string   `yaml:"portrait"`
	// Portrait placement, centred on screen unless set.
	PortraitX     *float64 `yaml:"portrait_x"`
	PortraitY     *float64 `yaml:"portrait_y"`
	PortraitScale *float64 `yaml:"portrait_scale"`
}

type Background struct {
	Image  string          `yaml:"name"`
	X      float64         `yaml:"x"`
	Y      float64         `yaml:"y"`
	ScaleX float64         `yaml:"scale_x"`
	ScaleY float64         `yaml:"scale_y"`
	Fade   common.Duration `yaml:"fade"`
}

type BGMPlay struct {
	Track  string          `yaml:"name"`
	Loop   bool            `yaml:"loop"`
	Volume float64         `yaml:"volume"`
	Fade   common.Duration `yaml:"fade"`
}

type BGMStop struct {
	Fade common.Duration `yaml:"fade"`
}

// BGMCross fades From out and To in over Time.
type BGMCross struct {
	From string          `yaml:"from"`
	To   string          `yaml:"to"`
	Time common.Duration `yaml:"time"`
	Loop bool            `yaml:"loop"`
}

type SE struct {
	Sound string `yaml:"name"`
}

type End struct {
	ReturnTo Destination `yaml:"return_to"`
}

type Label struct {
	Label string `yaml:"name"`
}

type Goto struct {
	Label string `yaml:"name"`
}

type Set struct {
	Var   string `yaml:"name"`
	Value any    `yaml:"value"`
}

// If runs Then when Cond holds and Else otherwise, in line with the
// surrounding ops.
type If struct {
	Cond string
	Then []Op
	Else []Op
}

// Choice suspends the runner until one option is picked, then jumps to
// that option's label.
type Choice struct {
	Prompt  string         `yaml:"prompt"`
	Options []ChoiceOption `yaml:"options"`
}

type ChoiceOption struct {
	Text  string `yaml:"text"`
	Label string `yaml:"goto"`
}

// Unknown keeps ops from newer tools so the runner can skip them.
type Unknown struct {
	Op   string
	Line int
}

func (Say) Name() string        { return "say" }
func (Background) Name() string { return "bg" }
func (BGMPlay) Name() string    { return "bgm.play" }
func (BGMStop) Name() string    { return "bgm.stop" }
func (BGMCross) Name() string   { return "bgm.cross" }
func (SE) Name() string         { return "se" }
func (End) Name() string        { return "end" }
func (Label) Name() string      { return "label" }
func (Goto) Name() string       { return "goto" }
func (Set) Name() string        { return "set" }
func (If) Name() string         { return "if" }
func (Choice) Name() string     { return "choice" }
func (u Unknown) Name() string  { return u.Op }

func (Say) op()        {}
func (Background) op() {}
func (BGMPlay) op()    {}
func (BGMStop) op()    {}
func (BGMCross) op()   {}
func (SE) op()         {}
func (End) op()        {}
func (Label) op()      {}
func (Goto) op()       {}
func (Set) op()        {}
func (If) op()         {}
func (Choice) op()     {}
func (Unknown) op()    {}

// Destination is where the host goes after an end op.
type Destination string

const (
	DestGame  Destination = "game"
	DestTitle Destination = "title"
	DestNone  Destination = "none"
)

// ParseDestination accepts the scene names older scripts used as aliases.
// Empty means game.
func ParseDestination(s string) (Destination, bool) {
	switch s {
	case "", "game", "MainScene":
		return DestGame, true
	case "title", "TitleScene":
		return DestTitle, true
	case "none":
		return DestNone, true
	}
	return "", false
}
