package boss

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/volgkeep/common"
)

// Config is the authored description of one boss encounter. It is shared
// read-only by every Boss built from it.
type Config struct {
	ID       string     `yaml:"id"`
	Name     string     `yaml:"name"`
	Stats    Stats      `yaml:"stats"`
	Sprite   Sprite     `yaml:"sprite"`
	Cutin    CutinImage `yaml:"cutin"`
	Phases   []Phase    `yaml:"phases"`
	Attacks  []Attack   `yaml:"-"`
	Speeches Speeches   `yaml:"speeches"`
	SE       SoundKeys  `yaml:"se"`
}

type Stats struct {
	HP     int     `yaml:"hp"`
	Speed  float64 `yaml:"speed"`
	Scale  float64 `yaml:"scale"`
	Damage int     `yaml:"damage"`
}

type Sprite struct {
	Key  string        `yaml:"key"`
	Tint *common.Color `yaml:"tint"`
}

type CutinImage struct {
	Image    string `yaml:"image"`
	Position string `yaml:"position"`
}

type Phase struct {
	Phase   int     `yaml:"phase"`
	HPRange HPRange `yaml:"hp_range"`
	// AttackCooldown divides the base attack period; 2.0 attacks twice as often.
	AttackCooldown float64  `yaml:"attack_cooldown"`
	Patterns       []string `yaml:"patterns"`
}

// HPRange is an inclusive [Min, Max] hit point range, authored as a two
// element list.
type HPRange struct {
	Min int
	Max int
}

func (r HPRange) Contains(hp int) bool {
	return hp >= r.Min && hp <= r.Max
}

func (r *HPRange) UnmarshalYAML(value *yaml.Node) error {
	var pair []int
	if err := value.Decode(&pair); err != nil {
		return fmt.Errorf("line %d: hp_range must be [min, max]: %w", value.Line, err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("line %d: hp_range must have exactly 2 values, got %d", value.Line, len(pair))
	}
	r.Min, r.Max = pair[0], pair[1]
	return nil
}

type Speeches struct {
	Intro  string `yaml:"intro"`
	Phase2 string `yaml:"phase2"`
	LowHP  string `yaml:"low_hp"`
	Defeat string `yaml:"defeat"`
}

type SoundKeys struct {
	Damage string `yaml:"damage"`
	Defeat string `yaml:"defeat"`
}

// Attack looks up an attack by id.
func (c *Config) Attack(id string) (*Attack, bool) {
	for i := range c.Attacks {
		if c.Attacks[i].ID == id {
			return &c.Attacks[i], true
		}
	}
	return nil, false
}

// PhaseFor returns the phase whose HP range contains hp.
func (c *Config) PhaseFor(hp int) (*Phase, bool) {
	for i := range c.Phases {
		if c.Phases[i].HPRange.Contains(hp) {
			return &c.Phases[i], true
		}
	}
	return nil, false
}

func (c *Config) phaseByNumber(n int) (*Phase, bool) {
	for i := range c.Phases {
		if c.Phases[i].Phase == n {
			return &c.Phases[i], true
		}
	}
	return nil, false
}
