package boss

import (
	"github.com/milk9111/volgkeep/common"
)

type Kind string

const (
	KindRadial       Kind = "projectile_radial"
	KindCircle       Kind = "projectile_circle"
	KindTeleportDash Kind = "teleport_dash"
	KindUltimate     Kind = "ultimate"
)

type ProjectileType string

const (
	ProjectileArrow ProjectileType = "arrow"
	ProjectileOrb   ProjectileType = "orb"
)

type WindupEffect string

const (
	WindupNone        WindupEffect = "none"
	WindupBlinkRed    WindupEffect = "blink_red"
	WindupBlinkYellow WindupEffect = "blink_yellow"
)

// Attack is one named, fully parameterized behavior. Pattern holds exactly
// one of the variant types below.
type Attack struct {
	ID      string
	Name    string
	SE      AttackSounds
	Speech  *SpeechLine
	Pattern Pattern
}

func (a *Attack) Kind() Kind {
	if a == nil || a.Pattern == nil {
		return ""
	}
	return a.Pattern.Kind()
}

// Pattern is implemented only by the variant types in this package.
type Pattern interface {
	Kind() Kind
	sealed()
}

type AttackSounds struct {
	Windup   string `yaml:"windup"`
	Fire     string `yaml:"fire"`
	Setup    string `yaml:"setup"`
	Teleport string `yaml:"teleport"`
	Dash     string `yaml:"dash"`
	Ultimate string `yaml:"ultimate"`
}

type SpeechLine struct {
	Text     string          `yaml:"text"`
	Duration common.Duration `yaml:"duration"`
	Color    *common.Color   `yaml:"color"`
}

type RadialPattern struct {
	WindupDuration  common.Duration `yaml:"windup_duration"`
	WindupEffect    WindupEffect    `yaml:"windup_effect"`
	ProjectileCount int             `yaml:"projectile_count"`
	ProjectileType  ProjectileType  `yaml:"projectile_type"`
	ProjectileSpeed float64         `yaml:"projectile_speed"`
	Damage          int             `yaml:"damage"`
	// AngleOffset rotates the whole burst, in degrees.
	AngleOffset float64 `yaml:"angle_offset"`
}

type CirclePattern struct {
	ProjectileCount int             `yaml:"projectile_count"`
	ProjectileType  ProjectileType  `yaml:"projectile_type"`
	Radius          float64         `yaml:"radius"`
	WaitDuration    common.Duration `yaml:"wait_duration"`
	ProjectileSpeed float64         `yaml:"projectile_speed"`
	Damage          int             `yaml:"damage"`
	Tint            *common.Color   `yaml:"tint"`
}

type TeleportDashPattern struct {
	FadeOutDuration  common.Duration `yaml:"fade_out_duration"`
	FadeInDuration   common.Duration `yaml:"fade_in_duration"`
	TeleportDistance float64         `yaml:"teleport_distance"`
	WindupDuration   common.Duration `yaml:"windup_duration"`
	DashSpeed        float64         `yaml:"dash_speed"`
	DashDuration     common.Duration `yaml:"dash_duration"`
	Damage           int             `yaml:"damage"`
}

// Total is the time the whole fade, teleport, windup and dash occupies.
func (p *TeleportDashPattern) Total() common.Duration {
	return p.FadeOutDuration + p.FadeInDuration + p.WindupDuration + p.DashDuration
}

type UltimatePattern struct {
	ProjectileCount   int             `yaml:"projectile_count"`
	ProjectileType    ProjectileType  `yaml:"projectile_type"`
	SpiralAngleStep   float64         `yaml:"spiral_angle_step"`
	SpiralRadiusStep  float64         `yaml:"spiral_radius_step"`
	SpiralRadiusStart float64         `yaml:"spiral_radius_start"`
	SpawnInterval     common.Duration `yaml:"spawn_interval"`
	ProjectileSpeed   float64         `yaml:"projectile_speed"`
	Damage            int             `yaml:"damage"`
	Tint              *common.Color   `yaml:"tint"`
	// TurnRate in radians per second. Zero fires straight.
	TurnRate float64 `yaml:"turn_rate"`

	Cutin  CutinSpec     `yaml:"-"`
	Camera CameraEffects `yaml:"-"`
	BGM    *BGMControl   `yaml:"-"`
}

type CutinSpec struct {
	Enabled   bool            `yaml:"enabled"`
	SkillName string          `yaml:"skill_name"`
	Duration  common.Duration `yaml:"duration"`
}

type CameraEffects struct {
	Darken *DarkenEffect `yaml:"darken"`
	Flash  *FlashEffect  `yaml:"flash"`
}

type DarkenEffect struct {
	Enabled  bool            `yaml:"enabled"`
	Alpha    float64         `yaml:"alpha"`
	Duration common.Duration `yaml:"duration"`
}

type FlashEffect struct {
	Enabled  bool            `yaml:"enabled"`
	Duration common.Duration `yaml:"duration"`
	// Color is [r, g, b] in 0..255.
	Color []int `yaml:"color"`
}

func (f *FlashEffect) RGB() common.Color {
	if len(f.Color) != 3 {
		return common.RGB(0xff, 0xff, 0xff)
	}
	return common.RGB(uint8(f.Color[0]), uint8(f.Color[1]), uint8(f.Color[2]))
}

type BGMControl struct {
	VolumeDown float64         `yaml:"volume_down"`
	Duration   common.Duration `yaml:"duration"`
}

func (*RadialPattern) Kind() Kind       { return KindRadial }
func (*CirclePattern) Kind() Kind       { return KindCircle }
func (*TeleportDashPattern) Kind() Kind { return KindTeleportDash }
func (*UltimatePattern) Kind() Kind     { return KindUltimate }

func (*RadialPattern) sealed()       {}
func (*CirclePattern) sealed()       {}
func (*TeleportDashPattern) sealed() {}
func (*UltimatePattern) sealed()     {}
