package boss

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

type rawConfig struct {
	Config  `yaml:",inline"`
	Attacks []rawAttack `yaml:"attacks"`
}

type rawAttack struct {
	ID            string         `yaml:"id"`
	Name          string         `yaml:"name"`
	Type          Kind           `yaml:"type"`
	SE            AttackSounds   `yaml:"se"`
	Speech        *SpeechLine    `yaml:"speech"`
	Config        yaml.Node      `yaml:"config"`
	Cutin         *CutinSpec     `yaml:"cutin"`
	CameraEffects *CameraEffects `yaml:"camera_effects"`
	BGMControl    *BGMControl    `yaml:"bgm_control"`
}

var requiredKeys = map[Kind][]string{
	KindRadial: {
		"windup_duration", "projectile_count", "projectile_speed", "damage",
	},
	KindCircle: {
		"projectile_count", "radius", "wait_duration", "projectile_speed", "damage",
	},
	KindTeleportDash: {
		"fade_out_duration", "fade_in_duration", "teleport_distance",
		"windup_duration", "dash_speed", "dash_duration", "damage",
	},
	KindUltimate: {
		"projectile_count", "spiral_angle_step", "spiral_radius_step",
		"spiral_radius_start", "spawn_interval", "projectile_speed", "damage",
	},
}

// Parse decodes and validates a boss document. Every problem found is
// reported; errors.As(err, *ConfigError) yields the first.
func Parse(data []byte) (*Config, error) {
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("boss: unmarshal: %w", err)
	}

	cfg := raw.Config
	var errs []error
	for i := range raw.Attacks {
		a, err := raw.Attacks[i].build(fmt.Sprintf("attacks[%d]", i))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		cfg.Attacks = append(cfg.Attacks, a)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *rawAttack) build(field string) (Attack, error) {
	a := Attack{
		ID:     r.ID,
		Name:   r.Name,
		SE:     r.SE,
		Speech: r.Speech,
	}

	keys, err := mappingKeys(&r.Config)
	if err != nil {
		return a, fieldErr(field+".config", "%v", err)
	}

	required, ok := requiredKeys[r.Type]
	if !ok {
		if r.Type == "" {
			return a, fieldErr(field+".type", "is required")
		}
		return a, fieldErr(field+".type", "unknown attack type %q", r.Type)
	}

	var errs []error
	for _, k := range required {
		if !keys[k] {
			errs = append(errs, fieldErr(field+".config."+k, "is required for %s", r.Type))
		}
	}
	if r.Type == KindUltimate && r.Cutin == nil {
		errs = append(errs, fieldErr(field+".cutin", "is required for %s", r.Type))
	}
	if err := errors.Join(errs...); err != nil {
		return a, err
	}

	switch r.Type {
	case KindRadial:
		p := &RadialPattern{WindupEffect: WindupNone, ProjectileType: ProjectileArrow}
		err = r.Config.Decode(p)
		a.Pattern = p
	case KindCircle:
		p := &CirclePattern{ProjectileType: ProjectileOrb}
		err = r.Config.Decode(p)
		a.Pattern = p
	case KindTeleportDash:
		p := &TeleportDashPattern{}
		err = r.Config.Decode(p)
		a.Pattern = p
	case KindUltimate:
		p := &UltimatePattern{ProjectileType: ProjectileOrb, Cutin: *r.Cutin, BGM: r.BGMControl}
		if r.CameraEffects != nil {
			p.Camera = *r.CameraEffects
		}
		err = r.Config.Decode(p)
		a.Pattern = p
	}
	if err != nil {
		return a, fieldErr(field+".config", "%v", err)
	}
	return a, nil
}

func mappingKeys(n *yaml.Node) (map[string]bool, error) {
	keys := map[string]bool{}
	if n.Kind == 0 {
		return keys, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: must be a mapping", n.Line)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		keys[n.Content[i].Value] = true
	}
	return keys, nil
}
