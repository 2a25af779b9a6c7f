package scene

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/volgkeep/config"
	"github.com/milk9111/volgkeep/logger"
	"github.com/milk9111/volgkeep/prefabs"
	"github.com/milk9111/volgkeep/save"
	"github.com/milk9111/volgkeep/sound"
	"github.com/milk9111/volgkeep/story"
)

type fakeAudio struct {
	calls  []string
	volume float64
}

func (a *fakeAudio) PlayBGM(name string, opts sound.BGMOptions) {
	a.calls = append(a.calls, fmt.Sprintf("play %s loop=%t vol=%.1f fade=%s", name, opts.Loop, opts.Volume, opts.Fade))
}

func (a *fakeAudio) StopBGM(fade time.Duration) {
	a.calls = append(a.calls, fmt.Sprintf("stop %s", fade))
}

func (a *fakeAudio) CrossBGM(from, to string, d time.Duration, loop bool) {
	a.calls = append(a.calls, fmt.Sprintf("cross %s>%s %s loop=%t", from, to, d, loop))
}

func (a *fakeAudio) PlaySE(name string, _ float64) {
	a.calls = append(a.calls, "se "+name)
}

func (a *fakeAudio) Volume() float64        { return a.volume }
func (a *fakeAudio) SetVolume(v float64)    { a.volume = v }
func (a *fakeAudio) Update(_ time.Duration) {}

type memBackend struct{ items map[string][]byte }

func (m *memBackend) LoadItem(key string) ([]byte, error) { return m.items[key], nil }

func (m *memBackend) SaveItem(key string, data []byte) error {
	m.items[key] = data
	return nil
}

// overrideSource serves docs from memory before the embedded prefabs.
type overrideSource map[string]string

func (o overrideSource) Read(ctx context.Context, kind prefabs.Kind, id string) ([]byte, error) {
	if doc, ok := o[string(kind)+"/"+id]; ok {
		return []byte(doc), nil
	}
	return prefabs.Embedded().Read(ctx, kind, id)
}

func testEnv(t *testing.T) (*Env, *fakeAudio) {
	t.Helper()
	audio := &fakeAudio{volume: sound.DefaultBGMVolume}
	cfg := &config.Config{AppName: "volgkeep-test", StartStory: "intro", ArenaName: "keep"}
	return &Env{
		Config: cfg,
		Log:    logger.Discard(),
		Source: prefabs.Embedded(),
		Arenas: prefabs.FS,
		Audio:  audio,
		Save:   save.NewStore(&memBackend{items: map[string][]byte{}}, logger.Discard()),
	}, audio
}

func newStory(t *testing.T, env *Env, id string) (*StoryScene, chan StoryEnded) {
	t.Helper()
	prog, err := prefabs.LoadStory(context.Background(), env.Source, id)
	require.NoError(t, err)
	out := make(chan StoryEnded, 4)
	return NewStoryScene(env, prog, out), out
}

func line(s *StoryScene) string {
	_, l := s.pager.current()
	return l
}

func TestPagerOneLinePerAdvance(t *testing.T) {
	var p pager
	p.open(story.Say{Speaker: "Guard", Lines: []string{"one", "two"}})

	speaker, l := p.current()
	assert.Equal(t, "Guard", speaker)
	assert.Equal(t, "one", l)

	assert.True(t, p.next())
	_, l = p.current()
	assert.Equal(t, "two", l)

	assert.False(t, p.next())
	assert.False(t, p.active)
	assert.False(t, p.next())
}

func TestPagerEmptySayIsInactive(t *testing.T) {
	var p pager
	p.open(story.Say{Speaker: "Nobody"})
	assert.False(t, p.active)
	speaker, l := p.current()
	assert.Empty(t, speaker)
	assert.Empty(t, l)
}

func TestPagerPortraitPlacement(t *testing.T) {
	var p pager
	p.open(story.Say{Lines: []string{"x"}, Portrait: "guard.png"})
	name, at, scale := p.portrait()
	assert.Equal(t, "guard.png", name)
	assert.Equal(t, 960.0, at.X)
	assert.Equal(t, 540.0, at.Y)
	assert.Equal(t, 1.0, scale)

	x, y, sc := 100.0, 200.0, 0.5
	p.open(story.Say{Lines: []string{"x"}, PortraitX: &x, PortraitY: &y, PortraitScale: &sc})
	_, at, scale = p.portrait()
	assert.Equal(t, 100.0, at.X)
	assert.Equal(t, 200.0, at.Y)
	assert.Equal(t, 0.5, scale)
}

func TestStoryIntroEntersTheKeep(t *testing.T) {
	env, audio := testEnv(t)
	s, out := newStory(t, env, "intro")

	s.Start()
	assert.Equal(t, []string{"play bgm_keep.ogg loop=true vol=0.7 fade=500ms"}, audio.calls)
	require.NotNil(t, s.bg)
	assert.Equal(t, "keep_gate.png", s.bg.op.Image)
	assert.Zero(t, s.bg.alpha)
	assert.Equal(t, "Halt. The keep is sealed.", line(s))

	s.Advance()
	assert.Equal(t, "Volg has taken the upper hall.", line(s))
	s.Advance()
	assert.Equal(t, "I have not seen you before.", line(s))
	s.Advance()
	require.NotNil(t, s.choice)
	assert.Equal(t, "Enter the keep?", s.choice.Prompt)
	assert.False(t, s.pager.active)

	// Advancing does nothing while a choice is up.
	s.Advance()
	require.NotNil(t, s.choice)

	s.Choose(0)
	assert.Nil(t, s.choice)
	assert.Equal(t, []string{
		"play bgm_keep.ogg loop=true vol=0.7 fade=500ms",
		"se se_door.wav",
		"cross bgm_keep.ogg>bgm_boss.ogg 600ms loop=true",
		"stop 500ms",
	}, audio.calls)

	require.Len(t, out, 1)
	ev := <-out
	assert.Equal(t, "intro", ev.ScriptID)
	assert.Equal(t, story.DestGame, ev.ReturnTo)
	assert.Equal(t, s.SessionID(), ev.SessionID)
	assert.Equal(t, true, ev.Vars["metNpc"])
}

func TestStoryIntroLeave(t *testing.T) {
	env, audio := testEnv(t)
	s, out := newStory(t, env, "intro")

	s.Start()
	for s.choice == nil {
		s.Advance()
	}
	s.Choose(5)
	require.NotNil(t, s.choice)
	assert.Empty(t, out)

	s.Choose(1)

	require.Len(t, out, 1)
	assert.Equal(t, story.DestTitle, (<-out).ReturnTo)
	assert.Contains(t, audio.calls, "stop 500ms")
}

func TestStoryRestoresSavedVars(t *testing.T) {
	env, _ := testEnv(t)
	require.NoError(t, env.Save.SaveVars(map[string]any{"metNpc": true}))
	s, _ := newStory(t, env, "intro")

	s.Start()
	s.Advance()
	s.Advance()
	assert.Equal(t, "You again. Go on, then.", line(s))
}

func TestStoryBackgroundFadesIn(t *testing.T) {
	b := newBackdrop(story.Background{Image: "x.png", Fade: 0})
	assert.Equal(t, float32(1), b.alpha)

	env, _ := testEnv(t)
	s, _ := newStory(t, env, "intro")
	s.Start()
	for range 40 {
		s.bg.advance(time.Second / 60)
	}
	assert.Equal(t, float32(1), s.bg.alpha)
	assert.Nil(t, s.bg.fade)
}

func TestStoryWithoutEndReturnsToGame(t *testing.T) {
	env, _ := testEnv(t)
	prog, err := story.Load([]byte(`
id: short
script:
  - op: say
    name: A
    lines: ["only line"]
`))
	require.NoError(t, err)
	out := make(chan StoryEnded, 1)
	s := NewStoryScene(env, prog, out)

	s.Start()
	assert.Equal(t, "only line", line(s))
	s.Advance()

	require.Len(t, out, 1)
	assert.Equal(t, story.DestGame, (<-out).ReturnTo)

	// Further input is ignored once the run is over.
	s.Advance()
	assert.Empty(t, out)
}

func TestStoryEndNoneCanStillLeave(t *testing.T) {
	env, _ := testEnv(t)
	prog, err := story.Load([]byte(`
id: stay
script:
  - op: end
    return_to: none
`))
	require.NoError(t, err)
	out := make(chan StoryEnded, 2)
	s := NewStoryScene(env, prog, out)

	s.Start()
	require.Len(t, out, 1)
	assert.Equal(t, story.DestNone, (<-out).ReturnTo)

	s.finish(story.DestTitle)
	require.Len(t, out, 1)
	assert.Equal(t, story.DestTitle, (<-out).ReturnTo)

	s.finish(story.DestTitle)
	assert.Empty(t, out)
}

// stubScene records what the controller does to it.
type stubScene struct {
	name     string
	closed   bool
	reloaded []prefabs.Change
}

func (s *stubScene) Update() error            { return nil }
func (s *stubScene) Draw(*ebiten.Image)       {}
func (s *stubScene) Close()                   { s.closed = true }
func (s *stubScene) Reload(ch prefabs.Change) { s.reloaded = append(s.reloaded, ch) }

type stubbed struct {
	c       *Controller
	started []string
}

func newStubbedController(t *testing.T) (*stubbed, *Env) {
	t.Helper()
	env, _ := testEnv(t)
	c := NewController(env)
	st := &stubbed{c: c}
	c.newStory = func(id string) (Scene, error) {
		if id == "missing" {
			return nil, errors.New("no such story")
		}
		st.started = append(st.started, "story:"+id)
		return &stubScene{name: "story:" + id}, nil
	}
	c.newArena = func(name string) (Scene, error) {
		st.started = append(st.started, "arena:"+name)
		return &stubScene{name: "arena:" + name}, nil
	}
	c.newTitle = func() Scene {
		st.started = append(st.started, "title")
		return &stubScene{name: "title"}
	}
	return st, env
}

func currentName(c *Controller) string {
	return c.Current().(*stubScene).name
}

func TestControllerStoryToGame(t *testing.T) {
	st, env := newStubbedController(t)
	st.c.StartStory("intro")
	first := st.c.Current().(*stubScene)

	st.c.storyEnded <- StoryEnded{SessionID: "s1", ScriptID: "intro", ReturnTo: story.DestGame, Vars: map[string]any{"metNpc": true}}
	require.NoError(t, st.c.Update())

	assert.Equal(t, "arena:keep", currentName(st.c))
	assert.True(t, first.closed)
	assert.Equal(t, true, env.Save.LoadVars()["metNpc"])
}

func TestControllerStoryDestinations(t *testing.T) {
	st, _ := newStubbedController(t)
	st.c.StartStory("clear")

	st.c.storyEnded <- StoryEnded{ScriptID: "clear", ReturnTo: story.DestNone}
	require.NoError(t, st.c.Update())
	assert.Equal(t, "story:clear", currentName(st.c))

	st.c.storyEnded <- StoryEnded{ScriptID: "clear", ReturnTo: story.DestTitle}
	require.NoError(t, st.c.Update())
	assert.Equal(t, "title", currentName(st.c))
}

func TestControllerEncounterOutcome(t *testing.T) {
	st, env := newStubbedController(t)

	st.c.encounterEnded <- EncounterEnded{SessionID: "e1", BossID: "volg_boss", Victory: false}
	require.NoError(t, st.c.Update())
	assert.Equal(t, "story:"+GameOverStory, currentName(st.c))
	assert.False(t, env.Save.Cleared("volg_boss"))

	st.c.encounterEnded <- EncounterEnded{SessionID: "e2", BossID: "volg_boss", Victory: true}
	require.NoError(t, st.c.Update())
	assert.Equal(t, "story:"+ClearStory, currentName(st.c))
	assert.True(t, env.Save.Cleared("volg_boss"))
}

func TestControllerFallsBackToTitle(t *testing.T) {
	st, _ := newStubbedController(t)
	st.c.StartStory("missing")
	assert.Equal(t, "title", currentName(st.c))
}

func TestControllerBegin(t *testing.T) {
	st, env := newStubbedController(t)
	st.c.Begin()
	assert.Equal(t, []string{"story:intro"}, st.started)

	// Without a configured story the arena map's intro property is used.
	env.Config.StartStory = ""
	st.started = nil
	st.c.Begin()
	assert.Equal(t, []string{"story:intro"}, st.started)
}

func TestControllerForwardsChanges(t *testing.T) {
	st, env := newStubbedController(t)
	changes := make(chan prefabs.Change, 2)
	env.Changes = changes
	st.c.StartEncounter("keep")

	changes <- prefabs.Change{Kind: prefabs.KindBoss, ID: "volg_boss"}
	require.NoError(t, st.c.Update())
	assert.Len(t, st.c.Current().(*stubScene).reloaded, 1)

	close(changes)
	require.NoError(t, st.c.Update())
	assert.Nil(t, env.Changes)
}

func arenaEnv(t *testing.T) (*Env, *fakeAudio) {
	t.Helper()
	env, audio := testEnv(t)
	player, err := prefabs.LoadPlayerSpec(context.Background(), env.Source)
	require.NoError(t, err)
	looks, err := prefabs.LoadProjectilesSpec(context.Background(), env.Source)
	require.NoError(t, err)
	env.Player = player
	env.Looks = looks
	env.Config.Seed = 7
	return env, audio
}

func TestArenaSceneBuildsEncounter(t *testing.T) {
	env, audio := arenaEnv(t)
	out := make(chan EncounterEnded, 1)

	s, err := NewArenaScene(env, "keep", out)
	require.NoError(t, err)
	assert.Equal(t, "volg_boss", s.bossID)
	assert.Equal(t, 100, s.Engine().Boss().HP)
	assert.Equal(t, []string{"play bgm_boss.ogg loop=true vol=0.7 fade=800ms"}, audio.calls)
	assert.NotEmpty(t, s.SessionID())
	assert.Empty(t, out)
}

func TestArenaSceneGiveUpReportsDefeatOnce(t *testing.T) {
	env, _ := arenaEnv(t)
	out := make(chan EncounterEnded, 2)
	s, err := NewArenaScene(env, "keep", out)
	require.NoError(t, err)

	s.GiveUp()
	s.report()
	s.report()

	require.Len(t, out, 1)
	ev := <-out
	assert.False(t, ev.Victory)
	assert.Equal(t, "volg_boss", ev.BossID)
	assert.Equal(t, s.SessionID(), ev.SessionID)
}

func TestArenaSceneReload(t *testing.T) {
	env, _ := arenaEnv(t)
	data, err := prefabs.FS.ReadFile("bosses/volg_boss.yaml")
	require.NoError(t, err)
	src := overrideSource{}
	env.Source = src

	s, err := NewArenaScene(env, "keep", make(chan EncounterEnded, 1))
	require.NoError(t, err)

	// Broken edits keep the running config.
	src["bosses/volg_boss"] = "id: volg_boss\nphases: ["
	s.Reload(prefabs.Change{Kind: prefabs.KindBoss, ID: "volg_boss"})
	assert.Equal(t, 100, s.Engine().Boss().MaxHP)

	src["bosses/volg_boss"] = strings.Replace(string(data), "hp: 100", "hp: 60", 1)
	s.Reload(prefabs.Change{Kind: prefabs.KindStory, ID: "volg_boss"})
	assert.Equal(t, 100, s.Engine().Boss().MaxHP)

	s.Reload(prefabs.Change{Kind: prefabs.KindBoss, ID: "volg_boss"})
	assert.Equal(t, 60, s.Engine().Boss().MaxHP)
	assert.Equal(t, 60, s.Engine().Boss().HP)
}

func TestArenaSceneConfiguredBossWins(t *testing.T) {
	env, _ := arenaEnv(t)
	env.Config.BossID = "nobody"
	_, err := NewArenaScene(env, "keep", make(chan EncounterEnded, 1))
	require.Error(t, err)
}

func TestArenaSceneCloseRestoresVolume(t *testing.T) {
	env, audio := arenaEnv(t)
	s, err := NewArenaScene(env, "keep", make(chan EncounterEnded, 1))
	require.NoError(t, err)

	audio.SetVolume(0.2)
	s.Close()
	assert.Equal(t, sound.DefaultBGMVolume, audio.volume)
}
