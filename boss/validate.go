package boss

import (
	"errors"
	"fmt"
	"sort"
)

// Validate checks the cross-field invariants of a decoded config: phase
// ranges partition [0, hp], referenced attacks exist, ids are unique.
func (c *Config) Validate() error {
	var errs []error
	add := func(err error) { errs = append(errs, err) }

	if c.ID == "" {
		add(fieldErr("id", "is required"))
	}
	if c.Stats.HP <= 0 {
		add(fieldErr("stats.hp", "must be positive, got %d", c.Stats.HP))
	}

	attackIDs := map[string]bool{}
	for i := range c.Attacks {
		a := &c.Attacks[i]
		field := fmt.Sprintf("attacks[%d]", i)
		if a.ID == "" {
			add(fieldErr(field+".id", "is required"))
		} else if attackIDs[a.ID] {
			add(fieldErr(field+".id", "duplicate attack id %q", a.ID))
		}
		attackIDs[a.ID] = true
		errs = append(errs, validatePattern(field, a.Pattern)...)
	}

	if len(c.Phases) == 0 {
		add(fieldErr("phases", "at least one phase is required"))
	}
	seen := map[int]bool{}
	var ranges []phaseRange
	for i := range c.Phases {
		p := &c.Phases[i]
		field := fmt.Sprintf("phases[%d]", i)
		if p.Phase <= 0 {
			add(fieldErr(field+".phase", "must be positive, got %d", p.Phase))
		} else if seen[p.Phase] {
			add(fieldErr(field+".phase", "duplicate phase %d", p.Phase))
		}
		seen[p.Phase] = true

		if p.HPRange.Min > p.HPRange.Max {
			add(fieldErr(field+".hp_range", "min %d > max %d", p.HPRange.Min, p.HPRange.Max))
		} else {
			ranges = append(ranges, phaseRange{field: field, r: p.HPRange})
		}
		if p.AttackCooldown <= 0 {
			add(fieldErr(field+".attack_cooldown", "must be positive, got %g", p.AttackCooldown))
		}
		if len(p.Patterns) == 0 {
			add(fieldErr(field+".patterns", "at least one attack is required"))
		}
		for j, id := range p.Patterns {
			if !attackIDs[id] {
				add(fieldErr(fmt.Sprintf("%s.patterns[%d]", field, j), "unknown attack %q", id))
			}
		}
	}

	if len(ranges) > 0 && c.Stats.HP > 0 {
		errs = append(errs, validateCoverage(ranges, c.Stats.HP)...)
	}

	return errors.Join(errs...)
}

type phaseRange struct {
	field string
	r     HPRange
}

func validateCoverage(ranges []phaseRange, hp int) []error {
	sort.SliceStable(ranges, func(i, j int) bool { return ranges[i].r.Min < ranges[j].r.Min })

	var errs []error
	if first := ranges[0]; first.r.Min > 0 {
		errs = append(errs, fieldErr(first.field+".hp_range", "gap: hp [0, %d] has no phase", first.r.Min-1))
	}
	for i := 1; i < len(ranges); i++ {
		prev, cur := ranges[i-1], ranges[i]
		switch {
		case cur.r.Min <= prev.r.Max:
			errs = append(errs, fieldErr(cur.field+".hp_range", "overlaps %s.hp_range at hp %d", prev.field, cur.r.Min))
		case cur.r.Min > prev.r.Max+1:
			errs = append(errs, fieldErr(cur.field+".hp_range", "gap: hp [%d, %d] has no phase", prev.r.Max+1, cur.r.Min-1))
		}
	}
	if last := ranges[len(ranges)-1]; last.r.Max < hp {
		errs = append(errs, fieldErr(last.field+".hp_range", "gap: hp [%d, %d] has no phase", last.r.Max+1, hp))
	}
	return errs
}

func validatePattern(field string, p Pattern) []error {
	var errs []error
	positive := func(name string, v int) {
		if v <= 0 {
			errs = append(errs, fieldErr(field+".config."+name, "must be positive, got %d", v))
		}
	}
	projectileType := func(t ProjectileType) {
		if t != ProjectileArrow && t != ProjectileOrb {
			errs = append(errs, fieldErr(field+".config.projectile_type", "unknown projectile type %q", t))
		}
	}

	switch p := p.(type) {
	case *RadialPattern:
		positive("projectile_count", p.ProjectileCount)
		projectileType(p.ProjectileType)
		switch p.WindupEffect {
		case WindupNone, WindupBlinkRed, WindupBlinkYellow, "":
		default:
			errs = append(errs, fieldErr(field+".config.windup_effect", "unknown windup effect %q", p.WindupEffect))
		}
	case *CirclePattern:
		positive("projectile_count", p.ProjectileCount)
		projectileType(p.ProjectileType)
	case *TeleportDashPattern:
		if p.DashSpeed <= 0 {
			errs = append(errs, fieldErr(field+".config.dash_speed", "must be positive, got %g", p.DashSpeed))
		}
	case *UltimatePattern:
		positive("projectile_count", p.ProjectileCount)
		projectileType(p.ProjectileType)
		if f := p.Camera.Flash; f != nil && f.Enabled {
			if len(f.Color) != 3 {
				errs = append(errs, fieldErr(field+".camera_effects.flash.color", "must be [r, g, b]"))
			}
			for _, v := range f.Color {
				if v < 0 || v > 255 {
					errs = append(errs, fieldErr(field+".camera_effects.flash.color", "channel %d out of range", v))
					break
				}
			}
		}
		if p.BGM != nil && (p.BGM.VolumeDown < 0 || p.BGM.VolumeDown > 1) {
			errs = append(errs, fieldErr(field+".bgm_control.volume_down", "must be in [0, 1], got %g", p.BGM.VolumeDown))
		}
	case nil:
		errs = append(errs, fieldErr(field+".config", "missing attack pattern"))
	}
	return errs
}
