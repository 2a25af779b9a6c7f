package boss

import (
	"math"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/milk9111/volgkeep/common"
)

// attackRun drives the StateAttacking part of one attack. step returns true
// once the engine has left StateAttacking.
type attackRun interface {
	step(e *Engine, now time.Duration) bool
}

func newAttackRun(a *Attack) attackRun {
	switch p := a.Pattern.(type) {
	case *RadialPattern:
		return &radialRun{atk: a, p: p}
	case *CirclePattern:
		return &circleRun{atk: a, p: p}
	case *TeleportDashPattern:
		return &dashRun{atk: a, p: p}
	case *UltimatePattern:
		return &ultimateRun{atk: a, p: p}
	}
	return nil
}

func lifetimeFor(t ProjectileType) time.Duration {
	if t == ProjectileArrow {
		return arrowLifetime
	}
	return orbLifetime
}

type radialRun struct {
	atk   *Attack
	p     *RadialPattern
	wound bool
}

func (r *radialRun) step(e *Engine, now time.Duration) bool {
	b := e.boss
	windup := r.p.WindupDuration.Std()
	if now-b.AttackStart < windup {
		if !r.wound {
			r.wound = true
			e.playSE(r.atk.SE.Windup, volumeWindup)
			switch r.p.WindupEffect {
			case WindupBlinkRed:
				b.Blink = &Blink{Color: blinkRed, Start: now, Until: b.AttackStart + windup}
			case WindupBlinkYellow:
				b.Blink = &Blink{Color: blinkYellow, Start: now, Until: b.AttackStart + windup}
			}
		}
		return false
	}

	b.Blink = nil
	b.Alpha = 1
	e.playSE(r.atk.SE.Fire, volumeFire)
	step := 360.0 / float64(r.p.ProjectileCount)
	for i := 0; i < r.p.ProjectileCount; i++ {
		angle := common.Deg2Rad(float64(i)*step + r.p.AngleOffset)
		e.fx.Spawner.Spawn(ProjectileSpec{
			Type:     r.p.ProjectileType,
			Origin:   b.Position,
			Velocity: cp.ForAngle(angle).Mult(r.p.ProjectileSpeed),
			Damage:   r.p.Damage,
			Lifetime: lifetimeFor(r.p.ProjectileType),
		})
	}
	e.finishAttack(now)
	return true
}

type circleRun struct {
	atk *Attack
	p   *CirclePattern
}

func (r *circleRun) step(e *Engine, now time.Duration) bool {
	b := e.boss
	wait := r.p.WaitDuration.Std()
	e.playSE(r.atk.SE.Setup, volumeSetup)

	orbs := make([]Projectile, 0, r.p.ProjectileCount)
	step := 360.0 / float64(r.p.ProjectileCount)
	for i := 0; i < r.p.ProjectileCount; i++ {
		angle := common.Deg2Rad(float64(i) * step)
		orbs = append(orbs, e.fx.Spawner.Spawn(ProjectileSpec{
			Type:     r.p.ProjectileType,
			Origin:   b.Position.Add(cp.ForAngle(angle).Mult(r.p.Radius)),
			Damage:   r.p.Damage,
			Lifetime: wait + lifetimeFor(r.p.ProjectileType),
			Tint:     r.p.Tint,
		}))
	}
	e.schedule(&circleRedirect{
		at:    now + wait,
		orbs:  orbs,
		speed: r.p.ProjectileSpeed,
		se:    r.atk.SE.Fire,
	})
	e.finishAttack(now + wait)
	return true
}

type dashRun struct {
	atk *Attack
	p   *TeleportDashPattern
}

func (r *dashRun) step(e *Engine, now time.Duration) bool {
	e.playSE(r.atk.SE.Teleport, volumeTeleport)
	e.schedule(newDashSequence(e.boss, r.atk, r.p, now))
	e.finishAttack(now + r.p.Total().Std())
	return true
}

type ultimateRun struct {
	atk *Attack
	p   *UltimatePattern
}

func (r *ultimateRun) step(e *Engine, now time.Duration) bool {
	b := e.boss
	b.State = StateCutin
	b.CurrentAttack = ""

	var cutin time.Duration
	if r.p.Cutin.Enabled {
		cutin = r.p.Cutin.Duration.Std()
		e.fx.Cutin.Show(b.Config.Cutin.Image, r.p.Cutin.SkillName, cutin)
	}
	var speech time.Duration
	if r.atk.Speech != nil {
		speech = r.atk.Speech.Duration.Std()
	}
	b.LastAttack = now + cutin + speech + ultimateRecovery

	e.schedule(&ultimateSequence{atk: r.atk, p: r.p, deadline: now + cutin})
	return true
}

// sequence is a timed sub-state machine that outlives the attacking state.
// advance returns true when it has nothing left to do.
type sequence interface {
	advance(e *Engine, now, delta time.Duration) bool
}

type circleRedirect struct {
	at    time.Duration
	orbs  []Projectile
	speed float64
	se    string
}

func (c *circleRedirect) advance(e *Engine, now, _ time.Duration) bool {
	if now < c.at {
		return false
	}
	e.playSE(c.se, volumeFire)
	target := e.fx.Target.Position()
	for _, orb := range c.orbs {
		if !orb.Active() {
			continue
		}
		orb.ClearTint()
		orb.SetVelocity(target.Sub(orb.Position()).Normalize().Mult(c.speed))
	}
	return true
}

type dashStage int

const (
	dashFadeOut dashStage = iota
	dashFadeIn
	dashWindup
	dashCharge
	dashDone
)

type dashSequence struct {
	atk      *Attack
	p        *TeleportDashPattern
	stage    dashStage
	deadline time.Duration
	fade     *fader
}

func newDashSequence(b *Boss, atk *Attack, p *TeleportDashPattern, now time.Duration) *dashSequence {
	return &dashSequence{
		atk:      atk,
		p:        p,
		stage:    dashFadeOut,
		deadline: now + p.FadeOutDuration.Std(),
		fade:     newFader(b.Alpha, 0, p.FadeOutDuration.Std()),
	}
}

func (d *dashSequence) advance(e *Engine, now, delta time.Duration) bool {
	b := e.boss
	if d.fade != nil {
		b.Alpha = d.fade.update(delta)
	}
	for d.stage != dashDone && now >= d.deadline {
		switch d.stage {
		case dashFadeOut:
			b.Alpha = 0
			angle := e.rng.Float64() * 2 * math.Pi
			b.Position = e.clamp(e.fx.Target.Position().Add(cp.ForAngle(angle).Mult(d.p.TeleportDistance)))
			d.stage = dashFadeIn
			d.deadline += d.p.FadeInDuration.Std()
			d.fade = newFader(0, 1, d.p.FadeInDuration.Std())
		case dashFadeIn:
			b.Alpha = 1
			d.fade = nil
			d.stage = dashWindup
			d.deadline += d.p.WindupDuration.Std()
		case dashWindup:
			e.playSE(d.atk.SE.Dash, volumeDash)
			b.Velocity = e.aimAt(b.Position, d.p.DashSpeed)
			b.dashDamage = d.p.Damage
			d.stage = dashCharge
			d.deadline += d.p.DashDuration.Std()
		case dashCharge:
			b.Velocity = cp.Vector{}
			b.dashDamage = 0
			d.stage = dashDone
		}
	}
	return d.stage == dashDone
}

type ultimateStage int

const (
	ultimateCutin ultimateStage = iota
	ultimateSpeech
	ultimateDone
)

type ultimateSequence struct {
	atk      *Attack
	p        *UltimatePattern
	stage    ultimateStage
	deadline time.Duration
}

func (u *ultimateSequence) advance(e *Engine, now, _ time.Duration) bool {
	for u.stage != ultimateDone && now >= u.deadline {
		switch u.stage {
		case ultimateCutin:
			if s := u.atk.Speech; s != nil {
				e.fx.Speech.Show(SpeechRequest{Text: s.Text, Duration: s.Duration.Std(), Color: s.Color})
				u.deadline += s.Duration.Std() + SpeechFadeOut
				u.stage = ultimateSpeech
				continue
			}
			u.fire(e)
		case ultimateSpeech:
			u.fire(e)
		}
	}
	return u.stage == ultimateDone
}

func (u *ultimateSequence) fire(e *Engine) {
	b := e.boss
	at := u.deadline

	if d := u.p.Camera.Darken; d != nil && d.Enabled {
		e.fx.Camera.Darken(d.Alpha, darkenDelay, d.Duration.Std())
	}
	if f := u.p.Camera.Flash; f != nil && f.Enabled {
		e.fx.Camera.Flash(f.Duration.Std(), f.RGB())
	}
	if bgm := u.p.BGM; bgm != nil {
		original := e.fx.Music.Volume()
		e.fx.Music.SetVolume(bgm.VolumeDown)
		e.schedule(&volumeRestore{at: at + bgm.Duration.Std(), volume: original})
	}
	e.playSE(u.atk.SE.Ultimate, volumeUltimate)
	e.schedule(&spiralSequence{p: u.p, start: at})

	if b.State == StateCutin {
		b.State = StateCooldown
	}
	u.stage = ultimateDone
}

// spiralSequence spawns projectile i at start + i*SpawnInterval.
type spiralSequence struct {
	p     *UltimatePattern
	start time.Duration
	next  int
}

func (s *spiralSequence) advance(e *Engine, now, _ time.Duration) bool {
	b := e.boss
	interval := s.p.SpawnInterval.Std()
	for s.next < s.p.ProjectileCount && now >= s.start+time.Duration(s.next)*interval {
		i := float64(s.next)
		angle := common.Deg2Rad(i * s.p.SpiralAngleStep)
		radius := s.p.SpiralRadiusStart + i*s.p.SpiralRadiusStep
		origin := b.Position.Add(cp.ForAngle(angle).Mult(radius))

		spec := ProjectileSpec{
			Type:     s.p.ProjectileType,
			Origin:   origin,
			Velocity: e.aimAt(origin, s.p.ProjectileSpeed),
			Damage:   s.p.Damage,
			Lifetime: lifetimeFor(s.p.ProjectileType),
			Tint:     s.p.Tint,
		}
		if s.p.TurnRate > 0 {
			spec.Homing = &Homing{TurnRate: s.p.TurnRate}
		}
		e.fx.Spawner.Spawn(spec)
		s.next++
	}
	return s.next >= s.p.ProjectileCount
}

type volumeRestore struct {
	at     time.Duration
	volume float64
}

func (v *volumeRestore) advance(e *Engine, now, _ time.Duration) bool {
	if now < v.at {
		return false
	}
	e.fx.Music.SetVolume(v.volume)
	return true
}

// fader wraps a linear gween tween over a time.Duration.
type fader struct {
	tween *gween.Tween
	to    float64
}

func newFader(from, to float64, d time.Duration) *fader {
	if d <= 0 {
		return nil
	}
	return &fader{tween: gween.New(float32(from), float32(to), float32(d.Seconds()), ease.Linear), to: to}
}

func (f *fader) update(delta time.Duration) float64 {
	v, done := f.tween.Update(float32(delta.Seconds()))
	if done {
		return f.to
	}
	return float64(v)
}
