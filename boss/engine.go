package boss

import (
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/milk9111/volgkeep/common"
)

const (
	BasePeriod     = 3000 * time.Millisecond
	LowHPThreshold = 5

	speechDuration       = 1500 * time.Millisecond
	SpeechFadeOut        = 300 * time.Millisecond
	defeatSpeechDuration = 2000 * time.Millisecond
	defeatFadeDuration   = 1500 * time.Millisecond
	defeatScale          = 6
	ultimateRecovery     = 2000 * time.Millisecond
	darkenDelay          = 200 * time.Millisecond
	blinkPeriod          = 400 * time.Millisecond

	arrowLifetime = 2500 * time.Millisecond
	orbLifetime   = 3000 * time.Millisecond
)

const (
	volumeFire     = 0.6
	volumeWindup   = 0.5
	volumeSetup    = 0.5
	volumeTeleport = 0.5
	volumeDash     = 0.7
	volumeUltimate = 0.9
	volumeDamage   = 0.7
	volumeDefeat   = 0.8
)

var (
	blinkRed    = common.RGB(0xff, 0x33, 0x33)
	blinkYellow = common.RGB(0xff, 0xff, 0x33)
)

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.base = l
		}
	}
}

// WithRand replaces the attack selection and teleport RNG.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) {
		if r != nil {
			e.rng = r
		}
	}
}

func WithSeed(seed uint64) Option {
	return WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// WithBounds keeps the boss inside the arena while dashing and teleporting.
func WithBounds(bb cp.BB) Option {
	return func(e *Engine) {
		e.bounds = &bb
	}
}

// Engine advances one Boss through phases and attacks. It is driven by a
// single goroutine: Update and ApplyDamage must be called from the same
// tick loop.
type Engine struct {
	boss   *Boss
	fx     Collaborators
	base   *slog.Logger
	log    *slog.Logger
	rng    *rand.Rand
	bounds *cp.BB

	current attackRun
	seqs    []sequence
	fade    *defeatFade
}

func NewEngine(b *Boss, fx Collaborators, opts ...Option) *Engine {
	e := &Engine{
		boss: b,
		fx:   fx.withDefaults(),
		base: slog.Default(),
		rng:  rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.base.With("boss", b.Config.ID)
	return e
}

func (e *Engine) Boss() *Boss { return e.boss }

// Start marks the beginning of the encounter and shows the intro line.
func (e *Engine) Start(now time.Duration) {
	b := e.boss
	b.LastAttack = now
	if line := b.Config.Speeches.Intro; line != "" {
		e.fx.Speech.Show(SpeechRequest{Text: line, Duration: speechDuration})
	}
	e.log.Debug("boss: encounter started", "hp", b.HP, "phase", b.Phase, "cooldown", b.Cooldown)
}

// SetConfig swaps the config of a live boss, for hot reload. HP and
// one-shot flags are kept; phase is re-evaluated on the next tick.
func (e *Engine) SetConfig(cfg *Config) {
	b := e.boss
	b.Config = cfg
	if cfg.Stats.HP > 0 {
		b.MaxHP = cfg.Stats.HP
		if b.HP > b.MaxHP {
			b.HP = b.MaxHP
		}
	}
	b.Phase = 0
	e.log = e.base.With("boss", cfg.ID, "reloaded", true)
}

// Ready reports whether the boss would pick a new attack at now.
func (e *Engine) Ready(now time.Duration) bool {
	b := e.boss
	if b.State != StateIdle && b.State != StateCooldown {
		return false
	}
	return now-b.LastAttack >= b.Cooldown
}

// Update advances the boss by one tick. now is the encounter clock and delta
// the time since the previous tick.
func (e *Engine) Update(now, delta time.Duration) {
	b := e.boss
	if b.State == StateDefeated {
		e.advanceDefeat(delta)
		return
	}
	if b.HP <= 0 {
		e.Defeat(now)
		return
	}

	e.move(delta)
	e.updatePhase()
	e.advanceSequences(now, delta)
	e.updateBlink(now)

	if e.Ready(now) {
		e.selectAttack(now)
	}
	if b.State == StateAttacking && b.CurrentAttack != "" {
		e.executeAttack(now)
	}
}

// ApplyDamage lowers HP, clamped at zero, and defeats the boss when it
// reaches zero.
func (e *Engine) ApplyDamage(now time.Duration, amount int) {
	b := e.boss
	if b.State == StateDefeated || amount <= 0 {
		return
	}
	b.HP -= amount
	if b.HP < 0 {
		b.HP = 0
	}
	e.playSE(b.Config.SE.Damage, volumeDamage)
	if b.HP == 0 {
		e.Defeat(now)
	}
}

// Defeat ends the encounter. Only the first call has any effect.
func (e *Engine) Defeat(now time.Duration) {
	b := e.boss
	if b.State == StateDefeated {
		return
	}
	b.State = StateDefeated
	b.HP = 0
	b.CurrentAttack = ""
	b.Velocity = cp.Vector{}
	b.dashDamage = 0
	b.Blink = nil
	e.current = nil
	e.cancelSequences()

	e.playSE(b.Config.SE.Defeat, volumeDefeat)
	if line := b.Config.Speeches.Defeat; line != "" {
		e.fx.Speech.Show(SpeechRequest{Text: line, Duration: defeatSpeechDuration})
	}
	e.fade = newDefeatFade(b)
	e.log.Info("boss: defeated", "at", now)
}

func (e *Engine) move(delta time.Duration) {
	b := e.boss
	if b.Velocity == (cp.Vector{}) {
		return
	}
	b.Position = e.clamp(b.Position.Add(b.Velocity.Mult(delta.Seconds())))
}

func (e *Engine) clamp(v cp.Vector) cp.Vector {
	if e.bounds == nil {
		return v
	}
	return cp.Vector{
		X: common.Clamp(v.X, e.bounds.L, e.bounds.R),
		Y: common.Clamp(v.Y, e.bounds.B, e.bounds.T),
	}
}

func (e *Engine) updatePhase() {
	b := e.boss
	cfg := b.Config

	if p, ok := cfg.PhaseFor(b.HP); ok && p.Phase != b.Phase {
		prev := b.Phase
		b.Phase = p.Phase
		b.Cooldown = cooldownFor(p)
		e.log.Debug("boss: phase changed", "from", prev, "to", p.Phase, "cooldown", b.Cooldown)

		if p.Phase == 2 && !b.phase2SpeechShown && cfg.Speeches.Phase2 != "" {
			e.fx.Speech.Show(SpeechRequest{Text: cfg.Speeches.Phase2, Duration: speechDuration})
			b.phase2SpeechShown = true
		}
	}

	if b.HP < LowHPThreshold && !b.lowHPSpeechShown && cfg.Speeches.LowHP != "" {
		e.fx.Speech.Show(SpeechRequest{Text: cfg.Speeches.LowHP, Duration: speechDuration})
		b.lowHPSpeechShown = true
	}
}

func (e *Engine) selectAttack(now time.Duration) {
	b := e.boss
	phase, ok := b.Config.phaseByNumber(b.Phase)
	if !ok || len(phase.Patterns) == 0 {
		return
	}

	b.CurrentAttack = phase.Patterns[e.rng.IntN(len(phase.Patterns))]
	b.State = StateAttacking
	b.AttackStart = now
	e.current = nil
	e.log.Debug("boss: selected attack", "attack", b.CurrentAttack, "phase", b.Phase)
}

func (e *Engine) executeAttack(now time.Duration) {
	b := e.boss
	if e.current == nil {
		atk, ok := b.Config.Attack(b.CurrentAttack)
		if !ok {
			e.log.Error("boss: skipping attack", "error", ErrUnknownAttack, "attack", b.CurrentAttack)
			e.finishAttack(now)
			return
		}
		e.current = newAttackRun(atk)
		if e.current == nil {
			e.log.Error("boss: attack has no pattern", "attack", atk.ID)
			e.finishAttack(now)
			return
		}
	}
	if e.current.step(e, now) {
		e.current = nil
	}
}

// finishAttack returns to cooldown with the cycle counted from completeAt.
func (e *Engine) finishAttack(completeAt time.Duration) {
	b := e.boss
	b.State = StateCooldown
	b.LastAttack = completeAt
	b.CurrentAttack = ""
}

func (e *Engine) schedule(s sequence) {
	e.seqs = append(e.seqs, s)
}

func (e *Engine) advanceSequences(now, delta time.Duration) {
	// Sequences scheduled while advancing run in the same tick.
	var kept []sequence
	for len(e.seqs) > 0 {
		batch := e.seqs
		e.seqs = nil
		for _, s := range batch {
			if !s.advance(e, now, delta) {
				kept = append(kept, s)
			}
		}
	}
	e.seqs = kept
}

// cancelSequences drops pending timelines. Music ducking is undone at once
// so a defeat mid-ultimate does not leave the music quiet.
func (e *Engine) cancelSequences() {
	for _, s := range e.seqs {
		if r, ok := s.(*volumeRestore); ok {
			e.fx.Music.SetVolume(r.volume)
		}
	}
	e.seqs = nil
}

// Pending is the number of timelines still running.
func (e *Engine) Pending() int { return len(e.seqs) }

func (e *Engine) updateBlink(now time.Duration) {
	b := e.boss
	if b.Blink == nil {
		return
	}
	if now >= b.Blink.Until {
		b.Blink = nil
		b.Alpha = 1
		return
	}
	// Alpha pulses 1 -> 0.5 -> 1 once per blinkPeriod.
	t := float64((now-b.Blink.Start)%blinkPeriod) / float64(blinkPeriod)
	b.Alpha = 1 - 0.5*(1-math.Abs(2*t-1))
}

func (e *Engine) playSE(key string, volume float64) {
	if key == "" {
		return
	}
	e.fx.Sounds.PlaySE(key, volume)
}

func (e *Engine) aimAt(from cp.Vector, speed float64) cp.Vector {
	return e.fx.Target.Position().Sub(from).Normalize().Mult(speed)
}

type defeatFade struct {
	alpha *gween.Tween
	scale *gween.Tween
}

func newDefeatFade(b *Boss) *defeatFade {
	secs := float32(defeatFadeDuration.Seconds())
	return &defeatFade{
		alpha: gween.New(float32(b.Alpha), 0, secs, ease.Linear),
		scale: gween.New(float32(b.Scale), defeatScale, secs, ease.Linear),
	}
}

func (e *Engine) advanceDefeat(delta time.Duration) {
	b := e.boss
	if e.fade == nil || b.removed {
		return
	}
	dt := float32(delta.Seconds())
	alpha, done := e.fade.alpha.Update(dt)
	scale, _ := e.fade.scale.Update(dt)
	b.Alpha = float64(alpha)
	b.Scale = float64(scale)
	if done {
		b.Alpha = 0
		b.Scale = defeatScale
		b.removed = true
		e.fade = nil
	}
}
