package sound

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/volgkeep/logger"
)

type fakeClip struct {
	name    string
	loop    bool
	volume  float64
	playing bool
	closed  bool
}

func (c *fakeClip) Play()               { c.playing = true }
func (c *fakeClip) Pause()              { c.playing = false }
func (c *fakeClip) IsPlaying() bool     { return c.playing }
func (c *fakeClip) SetVolume(v float64) { c.volume = v }
func (c *fakeClip) Volume() float64     { return c.volume }
func (c *fakeClip) Close() error        { c.closed = true; return nil }

type fakeLoader struct {
	known  map[string]bool
	loaded []*fakeClip
	calls  int
}

func newFakeLoader(names ...string) *fakeLoader {
	l := &fakeLoader{known: map[string]bool{}}
	for _, n := range names {
		l.known[n] = true
	}
	return l
}

func (l *fakeLoader) Load(name string, loop bool) (Clip, error) {
	l.calls++
	if !l.known[name] {
		return nil, ErrMissing
	}
	c := &fakeClip{name: name, loop: loop}
	l.loaded = append(l.loaded, c)
	return c, nil
}

func (l *fakeLoader) last() *fakeClip { return l.loaded[len(l.loaded)-1] }

func tick(b *Bus, total, step time.Duration) {
	for t := time.Duration(0); t < total; t += step {
		b.Update(step)
	}
}

func TestPlayBGMWithoutFade(t *testing.T) {
	l := newFakeLoader("keep")
	b := NewBus(l, logger.Discard())

	b.PlayBGM("keep", BGMOptions{Loop: true, Volume: DefaultBGMVolume})

	c := l.last()
	assert.True(t, c.playing)
	assert.True(t, c.loop)
	assert.InDelta(t, 0.7, c.volume, 1e-9)
	assert.Equal(t, "keep", b.Current())
}

func TestPlayBGMFadesIn(t *testing.T) {
	l := newFakeLoader("keep")
	b := NewBus(l, logger.Discard())

	b.PlayBGM("keep", BGMOptions{Volume: 0.8, Fade: time.Second})
	c := l.last()
	assert.Zero(t, c.volume)

	tick(b, 500*time.Millisecond, 10*time.Millisecond)
	assert.InDelta(t, 0.4, c.volume, 0.02)

	tick(b, 600*time.Millisecond, 10*time.Millisecond)
	assert.InDelta(t, 0.8, c.volume, 1e-6)
}

func TestPlayBGMReplacesAfterFadeOut(t *testing.T) {
	l := newFakeLoader("keep", "boss")
	b := NewBus(l, logger.Discard())

	b.PlayBGM("keep", BGMOptions{Volume: 1})
	old := l.last()

	b.PlayBGM("boss", BGMOptions{Volume: 1, Fade: 200 * time.Millisecond})
	require.Len(t, l.loaded, 1, "new track waits for the old one to fade")
	assert.Equal(t, "boss", b.Current())

	tick(b, 250*time.Millisecond, 10*time.Millisecond)
	assert.True(t, old.closed)
	require.Len(t, l.loaded, 2)
	assert.True(t, l.last().playing)
}

func TestPlayBGMWithoutFadeStopsOldAtOnce(t *testing.T) {
	l := newFakeLoader("keep", "boss")
	b := NewBus(l, logger.Discard())

	b.PlayBGM("keep", BGMOptions{Volume: 1})
	old := l.last()
	b.PlayBGM("boss", BGMOptions{Volume: 1})

	assert.True(t, old.closed)
	assert.False(t, old.playing)
	assert.Equal(t, "boss", l.last().name)
}

func TestCrossBGMFadesBothTogether(t *testing.T) {
	l := newFakeLoader("keep", "boss")
	b := NewBus(l, logger.Discard())

	b.PlayBGM("keep", BGMOptions{Volume: 1})
	old := l.last()
	b.CrossBGM("keep", "boss", 600*time.Millisecond, true)
	next := l.last()
	require.NotSame(t, old, next)

	tick(b, 300*time.Millisecond, 10*time.Millisecond)
	assert.InDelta(t, 0.5, old.volume, 0.03)
	assert.InDelta(t, 0.35, next.volume, 0.03)

	tick(b, 400*time.Millisecond, 10*time.Millisecond)
	assert.True(t, old.closed)
	assert.InDelta(t, DefaultBGMVolume, next.volume, 1e-6)
	assert.True(t, next.loop)
}

func TestCrossBGMFromOtherTrackStillPlays(t *testing.T) {
	l := newFakeLoader("boss")
	b := NewBus(l, logger.Discard())

	b.CrossBGM("keep", "boss", 0, false)
	assert.Equal(t, "boss", b.Current())
	assert.True(t, l.last().playing)
}

func TestStopBGM(t *testing.T) {
	l := newFakeLoader("keep")
	b := NewBus(l, logger.Discard())

	b.PlayBGM("keep", BGMOptions{Volume: 1})
	c := l.last()
	b.StopBGM(100 * time.Millisecond)
	assert.Empty(t, b.Current())
	assert.Zero(t, b.Volume())
	assert.False(t, c.closed)

	tick(b, 150*time.Millisecond, 10*time.Millisecond)
	assert.True(t, c.closed)
}

func TestSetVolumeCancelsFadeIn(t *testing.T) {
	l := newFakeLoader("keep")
	b := NewBus(l, logger.Discard())

	b.PlayBGM("keep", BGMOptions{Volume: 1, Fade: time.Second})
	b.SetVolume(0.1)
	tick(b, 500*time.Millisecond, 10*time.Millisecond)
	assert.InDelta(t, 0.1, b.Volume(), 1e-9)
}

func TestMissingClipsAreSkippedAndLoggedOnce(t *testing.T) {
	l := newFakeLoader()
	b := NewBus(l, logger.Discard())

	b.PlaySE("se_none", 1)
	b.PlaySE("se_none", 1)
	b.PlayBGM("none", BGMOptions{Volume: 1})

	assert.Empty(t, l.loaded)
	assert.Len(t, b.missing, 2)
	assert.Empty(t, b.Current())
}

func TestFinishedEffectsAreReleased(t *testing.T) {
	l := newFakeLoader("se_dash")
	b := NewBus(l, logger.Discard())

	b.PlaySE("se_dash", 0.7)
	c := l.last()
	assert.InDelta(t, 0.7, c.volume, 1e-9)

	b.Update(time.Millisecond)
	assert.False(t, c.closed)

	c.playing = false
	b.Update(time.Millisecond)
	assert.True(t, c.closed)
	assert.Empty(t, b.se)
}

func TestCloseStopsEverything(t *testing.T) {
	l := newFakeLoader("keep", "se_dash")
	b := NewBus(l, logger.Discard())

	b.PlayBGM("keep", BGMOptions{Volume: 1})
	b.PlaySE("se_dash", 1)
	b.Close()

	for _, c := range l.loaded {
		assert.True(t, c.closed, c.name)
	}
}
