package boss

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestConfig(t *testing.T) *Config {
	t.Helper()
	data, err := os.ReadFile("testdata/volg_boss.yaml")
	require.NoError(t, err)
	cfg, err := Parse(data)
	require.NoError(t, err)
	return cfg
}

func TestParseVolgBoss(t *testing.T) {
	cfg := loadTestConfig(t)

	assert.Equal(t, "volg_boss", cfg.ID)
	assert.Equal(t, 100, cfg.Stats.HP)
	require.NotNil(t, cfg.Sprite.Tint)
	assert.Equal(t, "#c0a0ff", cfg.Sprite.Tint.String())
	require.Len(t, cfg.Phases, 2)
	assert.Equal(t, HPRange{Min: 0, Max: 49}, cfg.Phases[1].HPRange)

	kinds := map[string]Kind{}
	for i := range cfg.Attacks {
		kinds[cfg.Attacks[i].ID] = cfg.Attacks[i].Kind()
	}
	assert.Equal(t, map[string]Kind{
		"radial_burst": KindRadial,
		"orb_ring":     KindCircle,
		"shadow_dash":  KindTeleportDash,
		"eclipse":      KindUltimate,
	}, kinds)

	radial, ok := cfg.Attack("radial_burst")
	require.True(t, ok)
	rp := radial.Pattern.(*RadialPattern)
	assert.Equal(t, 600*time.Millisecond, rp.WindupDuration.Std())
	assert.Equal(t, WindupBlinkRed, rp.WindupEffect)
	assert.Equal(t, 8, rp.ProjectileCount)

	dash, _ := cfg.Attack("shadow_dash")
	assert.Equal(t, 1500*time.Millisecond, dash.Pattern.(*TeleportDashPattern).Total().Std())

	ult, _ := cfg.Attack("eclipse")
	up := ult.Pattern.(*UltimatePattern)
	assert.True(t, up.Cutin.Enabled)
	assert.Equal(t, "Eclipse Spiral", up.Cutin.SkillName)
	require.NotNil(t, up.Camera.Darken)
	assert.InDelta(t, 0.6, up.Camera.Darken.Alpha, 1e-9)
	require.NotNil(t, up.BGM)
	assert.InDelta(t, 0.3, up.BGM.VolumeDown, 1e-9)
	assert.Equal(t, ProjectileOrb, up.ProjectileType)
	require.NotNil(t, ult.Speech)
	assert.Equal(t, "#ff4444", ult.Speech.Color.String())
}

func TestParseDefaultsOptionalFields(t *testing.T) {
	doc := `
id: b
stats: {hp: 10}
phases:
  - {phase: 1, hp_range: [0, 10], attack_cooldown: 1, patterns: [r]}
attacks:
  - id: r
    type: projectile_radial
    config: {windup_duration: 100, projectile_count: 4, projectile_speed: 100, damage: 1}
`
	cfg, err := Parse([]byte(doc))
	require.NoError(t, err)
	p := cfg.Attacks[0].Pattern.(*RadialPattern)
	assert.Equal(t, WindupNone, p.WindupEffect)
	assert.Equal(t, ProjectileArrow, p.ProjectileType)
	assert.Zero(t, p.AngleOffset)
}

func TestParseConfigErrors(t *testing.T) {
	const attacks = `
attacks:
  - id: r
    type: projectile_radial
    config: {windup_duration: 100, projectile_count: 4, projectile_speed: 100, damage: 1}
`
	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{
			name: "missing referenced attack",
			doc: `
id: b
stats: {hp: 10}
phases:
  - {phase: 1, hp_range: [0, 10], attack_cooldown: 1, patterns: [r, ghost]}
` + attacks,
			field: "phases[0].patterns[1]",
		},
		{
			name: "min greater than max",
			doc: `
id: b
stats: {hp: 10}
phases:
  - {phase: 1, hp_range: [10, 0], attack_cooldown: 1, patterns: [r]}
` + attacks,
			field: "phases[0].hp_range",
		},
		{
			name: "gap between phases",
			doc: `
id: b
stats: {hp: 100}
phases:
  - {phase: 1, hp_range: [60, 100], attack_cooldown: 1, patterns: [r]}
  - {phase: 2, hp_range: [0, 49], attack_cooldown: 1, patterns: [r]}
` + attacks,
			field: "phases[0].hp_range",
		},
		{
			name: "overlapping phases",
			doc: `
id: b
stats: {hp: 100}
phases:
  - {phase: 1, hp_range: [50, 100], attack_cooldown: 1, patterns: [r]}
  - {phase: 2, hp_range: [0, 50], attack_cooldown: 1, patterns: [r]}
` + attacks,
			field: "phases[0].hp_range",
		},
		{
			name: "range does not reach max hp",
			doc: `
id: b
stats: {hp: 100}
phases:
  - {phase: 1, hp_range: [0, 90], attack_cooldown: 1, patterns: [r]}
` + attacks,
			field: "phases[0].hp_range",
		},
		{
			name: "non-positive cooldown multiplier",
			doc: `
id: b
stats: {hp: 10}
phases:
  - {phase: 1, hp_range: [0, 10], attack_cooldown: 0, patterns: [r]}
` + attacks,
			field: "phases[0].attack_cooldown",
		},
		{
			name: "missing required variant field",
			doc: `
id: b
stats: {hp: 10}
phases:
  - {phase: 1, hp_range: [0, 10], attack_cooldown: 1, patterns: [d]}
attacks:
  - id: d
    type: teleport_dash
    config: {fade_out_duration: 1, fade_in_duration: 1, teleport_distance: 1, windup_duration: 1, dash_speed: 1, dash_duration: 1}
`,
			field: "attacks[0].config.damage",
		},
		{
			name: "unknown attack type",
			doc: `
id: b
stats: {hp: 10}
phases:
  - {phase: 1, hp_range: [0, 10], attack_cooldown: 1, patterns: [x]}
attacks:
  - {id: x, type: laser, config: {}}
`,
			field: "attacks[0].type",
		},
		{
			name: "ultimate without cutin",
			doc: `
id: b
stats: {hp: 10}
phases:
  - {phase: 1, hp_range: [0, 10], attack_cooldown: 1, patterns: [u]}
attacks:
  - id: u
    type: ultimate
    config: {projectile_count: 1, spiral_angle_step: 1, spiral_radius_step: 1, spiral_radius_start: 1, spawn_interval: 1, projectile_speed: 1, damage: 1}
`,
			field: "attacks[0].cutin",
		},
		{
			name: "duplicate attack id",
			doc: `
id: b
stats: {hp: 10}
phases:
  - {phase: 1, hp_range: [0, 10], attack_cooldown: 1, patterns: [r]}
` + attacks + `
  - id: r
    type: projectile_radial
    config: {windup_duration: 100, projectile_count: 4, projectile_speed: 100, damage: 1}
`,
			field: "attacks[1].id",
		},
		{
			name:  "missing id",
			doc:   "stats: {hp: 10}\nphases:\n  - {phase: 1, hp_range: [0, 10], attack_cooldown: 1, patterns: [r]}\n" + attacks,
			field: "id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.Nil(t, cfg)

			var cerr *ConfigError
			require.True(t, errors.As(err, &cerr), "want ConfigError, got %v", err)
			assert.Contains(t, err.Error(), tt.field+":")
		})
	}
}

func TestParseReportsEveryProblem(t *testing.T) {
	doc := `
stats: {hp: 0}
phases:
  - {phase: 1, hp_range: [5, 1], attack_cooldown: -1, patterns: [nope]}
`
	_, err := Parse([]byte(doc))
	require.Error(t, err)
	msg := err.Error()
	for _, field := range []string{"id:", "stats.hp:", "phases[0].hp_range:", "phases[0].attack_cooldown:", "phases[0].patterns[0]:"} {
		assert.True(t, strings.Contains(msg, field), "missing %s in %s", field, msg)
	}
}

func TestParseMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("id: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boss: unmarshal")
}

func TestPhaseForCoversEveryHP(t *testing.T) {
	cfg := loadTestConfig(t)
	for hp := 0; hp <= cfg.Stats.HP; hp++ {
		matches := 0
		for i := range cfg.Phases {
			if cfg.Phases[i].HPRange.Contains(hp) {
				matches++
			}
		}
		assert.Equal(t, 1, matches, "hp %d", hp)

		p, ok := cfg.PhaseFor(hp)
		require.True(t, ok, "hp %d", hp)
		assert.True(t, p.HPRange.Contains(hp))
	}
}

func TestHPRangeRejectsWrongArity(t *testing.T) {
	doc := `
id: b
stats: {hp: 10}
phases:
  - {phase: 1, hp_range: [0, 5, 10], attack_cooldown: 1, patterns: []}
`
	_, err := Parse([]byte(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly 2 values")
}
