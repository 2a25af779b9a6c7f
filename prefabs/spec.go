package prefabs

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/volgkeep/common"
)

// LoadSpec reads a loose spec document from the prefab root.
func LoadSpec[T any](ctx context.Context, src Source, name string) (T, error) {
	var zero T
	data, err := src.Read(ctx, KindSpec, name)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", name, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", name, err)
	}

	return spec, nil
}

type PlayerSpec struct {
	Name      string          `yaml:"name"`
	MoveSpeed float64         `yaml:"move_speed"`
	Health    int             `yaml:"health"`
	Invuln    common.Duration `yaml:"invulnerable"`
	Collider  ColliderSpec    `yaml:"collider"`
	Sprite    SpriteSpec      `yaml:"sprite"`
	Shot      ShotSpec        `yaml:"shot"`
}

// ShotSpec is the player's own projectile.
type ShotSpec struct {
	Damage   int             `yaml:"damage"`
	Speed    float64         `yaml:"speed"`
	Cooldown common.Duration `yaml:"cooldown"`
	Radius   float64         `yaml:"radius"`
	Lifetime common.Duration `yaml:"lifetime"`
	Color    common.Color    `yaml:"color"`
	Sound    string          `yaml:"sound"`
}

func LoadPlayerSpec(ctx context.Context, src Source) (*PlayerSpec, error) {
	spec, err := LoadSpec[PlayerSpec](ctx, src, "player")
	if err != nil {
		return nil, err
	}
	if spec.Health <= 0 {
		return nil, fmt.Errorf("prefabs: player.yaml: health must be positive")
	}
	return &spec, nil
}

// ProjectileLook is how one boss projectile type is drawn and collided.
type ProjectileLook struct {
	Radius float64      `yaml:"radius"`
	Color  common.Color `yaml:"color"`
}

type ProjectilesSpec map[string]ProjectileLook

func LoadProjectilesSpec(ctx context.Context, src Source) (ProjectilesSpec, error) {
	return LoadSpec[ProjectilesSpec](ctx, src, "projectiles")
}

type ColliderSpec struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type SpriteSpec struct {
	Image string       `yaml:"image"`
	Color common.Color `yaml:"color"`
}

type AudioSpec struct {
	Name   string  `yaml:"name"`
	File   string  `yaml:"file"`
	Volume float64 `yaml:"volume"`
}

// SoundBank maps sound keys used by boss and story documents to files.
type SoundBank struct {
	BGM []AudioSpec `yaml:"bgm"`
	SE  []AudioSpec `yaml:"se"`
}

func LoadSoundBank(ctx context.Context, src Source) (*SoundBank, error) {
	bank, err := LoadSpec[SoundBank](ctx, src, "sounds")
	if err != nil {
		return nil, err
	}
	return &bank, nil
}
