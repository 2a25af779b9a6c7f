package boss

import (
	"time"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/volgkeep/common"
)

type State string

const (
	StateIdle      State = "idle"
	StateWindup    State = "windup" // never entered; radial windups run inside StateAttacking
	StateAttacking State = "attacking"
	StateCooldown  State = "cooldown"
	StateCutin     State = "cutin"
	StateDefeated  State = "defeated"
)

// Boss is the runtime state of one encounter. Times are on the encounter
// clock passed to Engine.Update.
type Boss struct {
	Config *Config

	HP    int
	MaxHP int
	Phase int
	State State

	// CurrentAttack is empty unless State is StateAttacking.
	CurrentAttack string
	AttackStart   time.Duration
	LastAttack    time.Duration
	Cooldown      time.Duration

	Position cp.Vector
	Velocity cp.Vector
	Alpha    float64
	Scale    float64
	Blink    *Blink

	dashDamage        int
	phase2SpeechShown bool
	lowHPSpeechShown  bool
	removed           bool
}

// Blink is the windup tell drawn over the boss sprite.
type Blink struct {
	Color common.Color
	Start time.Duration
	Until time.Duration
}

// New creates a boss at full HP in the phase containing that HP.
func New(cfg *Config, pos cp.Vector) *Boss {
	scale := cfg.Stats.Scale
	if scale <= 0 {
		scale = 1
	}
	b := &Boss{
		Config:   cfg,
		HP:       cfg.Stats.HP,
		MaxHP:    cfg.Stats.HP,
		Phase:    1,
		State:    StateIdle,
		Position: pos,
		Alpha:    1,
		Scale:    scale,
		Cooldown: BasePeriod,
	}
	if p, ok := cfg.PhaseFor(b.HP); ok {
		b.Phase = p.Phase
		b.Cooldown = cooldownFor(p)
	}
	return b
}

// DashDamage is the contact damage dealt while the boss is dashing, zero
// otherwise.
func (b *Boss) DashDamage() int { return b.dashDamage }

func (b *Boss) Defeated() bool { return b.State == StateDefeated }

// Removed reports that the defeat fade finished and the entity can go.
func (b *Boss) Removed() bool { return b.removed }

func (b *Boss) Phase2SpeechShown() bool { return b.phase2SpeechShown }

func (b *Boss) LowHPSpeechShown() bool { return b.lowHPSpeechShown }

func cooldownFor(p *Phase) time.Duration {
	if p.AttackCooldown <= 0 {
		return BasePeriod
	}
	return time.Duration(float64(BasePeriod) / p.AttackCooldown)
}
