package boss

import (
	"testing"
	"time"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/volgkeep/common"
	"github.com/milk9111/volgkeep/logger"
)

type fakeTarget struct{ pos cp.Vector }

func (t *fakeTarget) Position() cp.Vector { return t.pos }

type fakeProjectile struct {
	spec   ProjectileSpec
	pos    cp.Vector
	vel    cp.Vector
	active bool
	tinted bool
}

func (p *fakeProjectile) Active() bool            { return p.active }
func (p *fakeProjectile) Position() cp.Vector     { return p.pos }
func (p *fakeProjectile) SetVelocity(v cp.Vector) { p.vel = v }
func (p *fakeProjectile) ClearTint()              { p.tinted = false }

type fakeSpawner struct{ spawned []*fakeProjectile }

func (s *fakeSpawner) Spawn(spec ProjectileSpec) Projectile {
	p := &fakeProjectile{spec: spec, pos: spec.Origin, vel: spec.Velocity, active: true, tinted: spec.Tint != nil}
	s.spawned = append(s.spawned, p)
	return p
}

type soundCall struct {
	key    string
	volume float64
}

type fakeSounds struct{ calls []soundCall }

func (s *fakeSounds) PlaySE(key string, volume float64) {
	s.calls = append(s.calls, soundCall{key: key, volume: volume})
}

func (s *fakeSounds) count(key string) int {
	n := 0
	for _, c := range s.calls {
		if c.key == key {
			n++
		}
	}
	return n
}

type fakeMusic struct {
	level   float64
	history []float64
}

func (m *fakeMusic) Volume() float64 { return m.level }
func (m *fakeMusic) SetVolume(v float64) {
	m.level = v
	m.history = append(m.history, v)
}

type fakeSpeech struct{ shown []SpeechRequest }

func (s *fakeSpeech) Show(req SpeechRequest) { s.shown = append(s.shown, req) }

func (s *fakeSpeech) texts() []string {
	out := make([]string, 0, len(s.shown))
	for _, r := range s.shown {
		out = append(out, r.Text)
	}
	return out
}

type cutinCall struct {
	image, label string
	d            time.Duration
}

type fakeCutin struct{ calls []cutinCall }

func (c *fakeCutin) Show(image, label string, d time.Duration) {
	c.calls = append(c.calls, cutinCall{image: image, label: label, d: d})
}

type fakeCamera struct {
	darkens []float64
	flashes []common.Color
}

func (c *fakeCamera) Darken(alpha float64, _, _ time.Duration) { c.darkens = append(c.darkens, alpha) }
func (c *fakeCamera) Flash(_ time.Duration, col common.Color)  { c.flashes = append(c.flashes, col) }

type harness struct {
	engine  *Engine
	boss    *Boss
	target  *fakeTarget
	spawner *fakeSpawner
	sounds  *fakeSounds
	music   *fakeMusic
	speech  *fakeSpeech
	cutin   *fakeCutin
	camera  *fakeCamera
	now     time.Duration
}

func newHarness(t *testing.T, cfg *Config, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		target:  &fakeTarget{pos: cp.Vector{X: 400, Y: 300}},
		spawner: &fakeSpawner{},
		sounds:  &fakeSounds{},
		music:   &fakeMusic{level: 0.8},
		speech:  &fakeSpeech{},
		cutin:   &fakeCutin{},
		camera:  &fakeCamera{},
	}
	h.boss = New(cfg, cp.Vector{X: 100, Y: 100})
	opts = append([]Option{WithLogger(logger.Discard()), WithSeed(1)}, opts...)
	h.engine = NewEngine(h.boss, Collaborators{
		Target:  h.target,
		Spawner: h.spawner,
		Sounds:  h.sounds,
		Music:   h.music,
		Speech:  h.speech,
		Cutin:   h.cutin,
		Camera:  h.camera,
	}, opts...)
	h.engine.Start(0)
	return h
}

// tickTo advances the clock in 10ms steps up to and including to.
func (h *harness) tickTo(to time.Duration) {
	const step = 10 * time.Millisecond
	for h.now+step <= to {
		h.now += step
		h.engine.Update(h.now, step)
	}
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// singleAttackConfig builds a one-phase boss that only ever picks a.
func singleAttackConfig(a Attack) *Config {
	return &Config{
		ID:    "test_boss",
		Stats: Stats{HP: 100, Scale: 1},
		Cutin: CutinImage{Image: "cutin.png"},
		Phases: []Phase{
			{Phase: 1, HPRange: HPRange{Min: 0, Max: 100}, AttackCooldown: 1, Patterns: []string{a.ID}},
		},
		Attacks: []Attack{a},
	}
}
