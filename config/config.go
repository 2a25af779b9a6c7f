package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string
	LogLevel    slog.Level

	// PrefabDir overrides embedded boss/story/arena documents when present.
	PrefabDir string
	// RedisURL enables the Redis document source. Empty disables it.
	RedisURL string
	// Watch reloads boss configs when files under PrefabDir change.
	Watch bool
	// Seed fixes the boss RNG. Zero picks a random seed.
	Seed uint64

	AppName    string
	StartStory string
	// BossID overrides the arena map's boss property when set.
	BossID    string
	ArenaName string
}

func Load() *Config {
	return &Config{
		Environment: getEnv("VOLG_ENV", "development"),
		LogLevel:    parseLogLevel(getEnv("VOLG_LOG_LEVEL", "info")),
		PrefabDir:   getEnv("VOLG_PREFAB_DIR", "prefabs"),
		RedisURL:    getEnv("VOLG_REDIS_URL", ""),
		Watch:       parseBool(getEnv("VOLG_WATCH", "false")),
		Seed:        parseUint(getEnv("VOLG_SEED", "0")),
		AppName:     "volgkeep",
		StartStory:  getEnv("VOLG_STORY", "intro"),
		BossID:      getEnv("VOLG_BOSS", ""),
		ArenaName:   getEnv("VOLG_ARENA", "keep"),
	}
}

// fileOverlay mirrors the optional YAML config file. Pointer fields leave
// the env-derived value alone when absent.
type fileOverlay struct {
	Environment *string `yaml:"environment"`
	LogLevel    *string `yaml:"log_level"`
	PrefabDir   *string `yaml:"prefab_dir"`
	RedisURL    *string `yaml:"redis_url"`
	Watch       *bool   `yaml:"watch"`
	Seed        *uint64 `yaml:"seed"`
	StartStory  *string `yaml:"start_story"`
	BossID      *string `yaml:"boss"`
	ArenaName   *string `yaml:"arena"`
}

// ApplyFile overlays values from a YAML file. A missing file is not an error.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	return c.ApplyYAML(data)
}

func (c *Config) ApplyYAML(data []byte) error {
	var o fileOverlay
	if err := yaml.Unmarshal(data, &o); err != nil {
		return fmt.Errorf("config: unmarshal: %w", err)
	}
	if o.Environment != nil {
		c.Environment = *o.Environment
	}
	if o.LogLevel != nil {
		c.LogLevel = parseLogLevel(*o.LogLevel)
	}
	if o.PrefabDir != nil {
		c.PrefabDir = *o.PrefabDir
	}
	if o.RedisURL != nil {
		c.RedisURL = *o.RedisURL
	}
	if o.Watch != nil {
		c.Watch = *o.Watch
	}
	if o.Seed != nil {
		c.Seed = *o.Seed
	}
	if o.StartStory != nil {
		c.StartStory = *o.StartStory
	}
	if o.BossID != nil {
		c.BossID = *o.BossID
	}
	if o.ArenaName != nil {
		c.ArenaName = *o.ArenaName
	}
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}

func parseUint(s string) uint64 {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
