package boss

import (
	"time"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/volgkeep/common"
)

// Target is whatever the boss is fighting; usually the player entity.
type Target interface {
	Position() cp.Vector
}

// Homing makes a projectile steer toward the Target at up to TurnRate
// radians per second.
type Homing struct {
	TurnRate float64
}

type ProjectileSpec struct {
	Type     ProjectileType
	Origin   cp.Vector
	Velocity cp.Vector
	Damage   int
	Lifetime time.Duration
	Tint     *common.Color
	Homing   *Homing
}

// Projectile is a handle to a spawned projectile. The engine keeps handles
// only for attacks that redirect their projectiles later.
type Projectile interface {
	Active() bool
	Position() cp.Vector
	SetVelocity(v cp.Vector)
	ClearTint()
}

type Spawner interface {
	Spawn(spec ProjectileSpec) Projectile
}

type Sounds interface {
	PlaySE(key string, volume float64)
}

// Music exposes the background music volume for temporary overrides.
type Music interface {
	Volume() float64
	SetVolume(v float64)
}

type SpeechRequest struct {
	Text     string
	Duration time.Duration
	Color    *common.Color
}

type Speech interface {
	Show(req SpeechRequest)
}

type Cutin interface {
	Show(image, label string, d time.Duration)
}

type Camera interface {
	// Darken covers the screen at alpha, then fades the cover out over d
	// after waiting delay.
	Darken(alpha float64, delay, d time.Duration)
	Flash(d time.Duration, c common.Color)
}

// Collaborators are the presentation and world services the engine drives.
// Nil members are replaced with no-ops.
type Collaborators struct {
	Target  Target
	Spawner Spawner
	Sounds  Sounds
	Music   Music
	Speech  Speech
	Cutin   Cutin
	Camera  Camera
}

func (c Collaborators) withDefaults() Collaborators {
	if c.Target == nil {
		c.Target = NopTarget{}
	}
	if c.Spawner == nil {
		c.Spawner = NopSpawner{}
	}
	if c.Sounds == nil {
		c.Sounds = NopSounds{}
	}
	if c.Music == nil {
		c.Music = &NopMusic{Level: 1}
	}
	if c.Speech == nil {
		c.Speech = NopSpeech{}
	}
	if c.Cutin == nil {
		c.Cutin = NopCutin{}
	}
	if c.Camera == nil {
		c.Camera = NopCamera{}
	}
	return c
}

type NopTarget struct{}

func (NopTarget) Position() cp.Vector { return cp.Vector{} }

type NopSpawner struct{}

func (NopSpawner) Spawn(spec ProjectileSpec) Projectile { return deadProjectile{pos: spec.Origin} }

type deadProjectile struct{ pos cp.Vector }

func (deadProjectile) Active() bool          { return false }
func (p deadProjectile) Position() cp.Vector { return p.pos }
func (deadProjectile) SetVelocity(cp.Vector) {}
func (deadProjectile) ClearTint()            {}

type NopSounds struct{}

func (NopSounds) PlaySE(string, float64) {}

type NopMusic struct{ Level float64 }

func (m *NopMusic) Volume() float64     { return m.Level }
func (m *NopMusic) SetVolume(v float64) { m.Level = v }

type NopSpeech struct{}

func (NopSpeech) Show(SpeechRequest) {}

type NopCutin struct{}

func (NopCutin) Show(string, string, time.Duration) {}

type NopCamera struct{}

func (NopCamera) Darken(float64, time.Duration, time.Duration) {}
func (NopCamera) Flash(time.Duration, common.Color)            {}
