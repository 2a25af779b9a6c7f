package system

import (
	"log/slog"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"

	"github.com/milk9111/volgkeep/assets"
	"github.com/milk9111/volgkeep/boss"
	"github.com/milk9111/volgkeep/common"
	"github.com/milk9111/volgkeep/ecs/component"
	"github.com/milk9111/volgkeep/ecs/entity"
	"github.com/milk9111/volgkeep/prefabs"
)

const defaultProjectileRadius = 6

// Stage implements the boss engine's collaborators on top of the arena
// world. Sounds and Music are passed through untouched.
type Stage struct {
	ecs    *ecs.ECS
	looks  prefabs.ProjectilesSpec
	sounds boss.Sounds
	music  boss.Music
	log    *slog.Logger
}

func NewStage(e *ecs.ECS, looks prefabs.ProjectilesSpec, sounds boss.Sounds, music boss.Music, log *slog.Logger) *Stage {
	if log == nil {
		log = slog.Default()
	}
	return &Stage{ecs: e, looks: looks, sounds: sounds, music: music, log: log}
}

// Collaborators wires the engine to this stage. cutinRight places the
// portrait on the right edge.
func (s *Stage) Collaborators(cutinRight bool) boss.Collaborators {
	return boss.Collaborators{
		Target:  playerTarget{s.ecs},
		Spawner: s,
		Sounds:  s.sounds,
		Music:   s.music,
		Speech:  speechHost{s.ecs},
		Cutin:   cutinHost{ecs: s.ecs, right: cutinRight, log: s.log},
		Camera:  cameraHost{s.ecs},
	}
}

func now(e *ecs.ECS) time.Duration {
	if entry, ok := component.ClockComponent.First(e.World); ok {
		return component.ClockComponent.Get(entry).Now
	}
	return 0
}

func stage(e *ecs.ECS) (*donburi.Entry, bool) {
	return component.EncounterComponent.First(e.World)
}

// Spawn creates a boss projectile entity and returns a handle to it.
func (s *Stage) Spawn(spec boss.ProjectileSpec) boss.Projectile {
	look, ok := s.looks[string(spec.Type)]
	if !ok {
		s.log.Warn("stage: no look for projectile type", "type", spec.Type)
		look = prefabs.ProjectileLook{Radius: defaultProjectileRadius, Color: common.RGB(0xff, 0xff, 0xff)}
	}
	if look.Radius <= 0 {
		look.Radius = defaultProjectileRadius
	}
	p := component.Projectile{
		Owner:    component.OwnerBoss,
		Type:     spec.Type,
		Position: spec.Origin,
		Velocity: spec.Velocity,
		Radius:   look.Radius,
		Damage:   spec.Damage,
		Color:    look.Color,
		Tint:     spec.Tint,
		Homing:   spec.Homing,
	}
	return projectileHandle{entity.CreateProjectile(s.ecs, now(s.ecs), p, spec.Lifetime)}
}

type projectileHandle struct {
	entry *donburi.Entry
}

func (h projectileHandle) Active() bool { return h.entry.Valid() }

func (h projectileHandle) Position() cp.Vector {
	if !h.entry.Valid() {
		return cp.Vector{}
	}
	return component.ProjectileComponent.Get(h.entry).Position
}

func (h projectileHandle) SetVelocity(v cp.Vector) {
	if h.entry.Valid() {
		component.ProjectileComponent.Get(h.entry).Velocity = v
	}
}

func (h projectileHandle) ClearTint() {
	if h.entry.Valid() {
		component.ProjectileComponent.Get(h.entry).Tint = nil
	}
}

type playerTarget struct{ ecs *ecs.ECS }

func (t playerTarget) Position() cp.Vector {
	entry, ok := component.PlayerTag.First(t.ecs.World)
	if !ok {
		return cp.Vector{}
	}
	return center(component.ObjectComponent.Get(entry))
}

func center(obj *component.Object) cp.Vector {
	return cp.Vector{X: obj.X + obj.W/2, Y: obj.Y + obj.H/2}
}

type speechHost struct{ ecs *ecs.ECS }

func (h speechHost) Show(req boss.SpeechRequest) {
	entry, ok := stage(h.ecs)
	if !ok {
		return
	}
	t := now(h.ecs)
	component.SpeechComponent.SetValue(entry, component.Speech{
		Text:  req.Text,
		Color: req.Color,
		Start: t,
		Until: t + req.Duration,
	})
}

type cutinHost struct {
	ecs   *ecs.ECS
	right bool
	log   *slog.Logger
}

func (h cutinHost) Show(image, label string, d time.Duration) {
	entry, ok := stage(h.ecs)
	if !ok {
		return
	}
	img, found := assets.Portrait(image)
	if !found {
		h.log.Warn("stage: cut-in image missing, using placeholder", "image", image)
	}
	t := now(h.ecs)
	component.CutinComponent.SetValue(entry, component.Cutin{
		Image: img,
		Label: label,
		Right: h.right,
		Start: t,
		Until: t + d,
	})
}

type cameraHost struct{ ecs *ecs.ECS }

func (h cameraHost) Darken(alpha float64, delay, d time.Duration) {
	entry, ok := stage(h.ecs)
	if !ok {
		return
	}
	fx := component.CameraFXComponent.Get(entry)
	fx.Darken = alpha
	fx.DarkenDelay = now(h.ecs) + delay
	fx.DarkenTween = gween.New(float32(alpha), 0, float32(d.Seconds()), ease.Linear)
}

func (h cameraHost) Flash(d time.Duration, c common.Color) {
	entry, ok := stage(h.ecs)
	if !ok {
		return
	}
	fx := component.CameraFXComponent.Get(entry)
	fx.Flash = c
	fx.FlashAlpha = 1
	fx.FlashTween = gween.New(1, 0, float32(d.Seconds()), ease.QuadOut)
}
