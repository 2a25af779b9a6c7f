package scene

import (
	"errors"
	"io/fs"
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/volgkeep/config"
	"github.com/milk9111/volgkeep/prefabs"
	"github.com/milk9111/volgkeep/save"
	"github.com/milk9111/volgkeep/sound"
	"github.com/milk9111/volgkeep/story"
)

// Stories the controller plays after an encounter.
const (
	ClearStory    = "clear"
	GameOverStory = "gameover"
)

// ErrQuit asks the game loop to stop.
var ErrQuit = errors.New("scene: quit")

type Scene interface {
	Update() error
	Draw(screen *ebiten.Image)
}

// Closer is implemented by scenes holding state that must be released
// when the controller switches away from them.
type Closer interface {
	Close()
}

// Reloader is implemented by scenes that pick up edited prefabs.
type Reloader interface {
	Reload(ch prefabs.Change)
}

// Audio is the part of the sound bus scenes drive. *sound.Bus satisfies it.
type Audio interface {
	PlayBGM(name string, opts sound.BGMOptions)
	StopBGM(fade time.Duration)
	CrossBGM(from, to string, d time.Duration, loop bool)
	PlaySE(name string, volume float64)
	Volume() float64
	SetVolume(v float64)
	Update(delta time.Duration)
}

// Env is everything a scene needs from the outside world. Save and
// Changes may be nil.
type Env struct {
	Config  *config.Config
	Log     *slog.Logger
	Source  prefabs.Source
	Arenas  fs.FS
	Audio   Audio
	Save    *save.Store
	Player  *prefabs.PlayerSpec
	Looks   prefabs.ProjectilesSpec
	Changes <-chan prefabs.Change
}

// StoryEnded is sent once when a story scene reaches an end op.
type StoryEnded struct {
	SessionID string
	ScriptID  string
	ReturnTo  story.Destination
	Vars      map[string]any
}

// EncounterEnded is sent once when the boss is removed or the player dies.
type EncounterEnded struct {
	SessionID string
	BossID    string
	Victory   bool
}
