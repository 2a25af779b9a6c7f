package sound

import (
	"errors"
	"log/slog"
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const DefaultBGMVolume = 0.7

// ErrMissing is returned by a Loader that has no clip for a name.
var ErrMissing = errors.New("sound: clip not found")

// Clip is one playing sound. *audio.Player satisfies it.
type Clip interface {
	Play()
	Pause()
	IsPlaying() bool
	SetVolume(v float64)
	Volume() float64
	Close() error
}

type Loader interface {
	Load(name string, loop bool) (Clip, error)
}

type BGMOptions struct {
	Loop   bool
	Volume float64
	Fade   time.Duration
}

// track is a music clip with an optional volume tween.
type track struct {
	name  string
	clip  Clip
	tween *gween.Tween
	// stop closes the clip once the tween finishes.
	stop bool
}

func (t *track) fadeTo(volume float64, d time.Duration) {
	if d <= 0 {
		t.tween = nil
		t.clip.SetVolume(volume)
		return
	}
	t.tween = gween.New(float32(t.clip.Volume()), float32(volume), float32(d.Seconds()), ease.Linear)
}

// advance returns true when the track should be dropped.
func (t *track) advance(dt float32) bool {
	if t.tween == nil {
		return false
	}
	v, done := t.tween.Update(dt)
	t.clip.SetVolume(float64(v))
	if !done {
		return false
	}
	t.tween = nil
	if t.stop {
		t.clip.Pause()
		_ = t.clip.Close()
		return true
	}
	return false
}

type pendingBGM struct {
	name string
	opts BGMOptions
}

// Bus owns background music and sound effects for one scene. It is driven
// from the game loop and is not safe for concurrent use.
type Bus struct {
	loader Loader
	log    *slog.Logger

	bgm     *track
	leaving []*track
	next    *pendingBGM
	se      []Clip
	missing map[string]bool
}

func NewBus(loader Loader, log *slog.Logger) *Bus {
	if log == nil {
		log = slog.Default()
	}
	return &Bus{loader: loader, log: log, missing: map[string]bool{}}
}

// Current is the name of the music track playing or fading in.
func (b *Bus) Current() string {
	if b.next != nil {
		return b.next.name
	}
	if b.bgm == nil {
		return ""
	}
	return b.bgm.name
}

// PlayBGM replaces the current music. With a fade the old track fades out
// first and the new one fades in over the same time.
func (b *Bus) PlayBGM(name string, opts BGMOptions) {
	if b.bgm != nil && b.bgm.clip.IsPlaying() && opts.Fade > 0 {
		b.retire(opts.Fade)
		b.next = &pendingBGM{name: name, opts: opts}
		return
	}
	b.retire(0)
	b.next = nil
	b.start(name, opts)
}

func (b *Bus) start(name string, opts BGMOptions) {
	clip, ok := b.load(name, opts.Loop)
	if !ok {
		return
	}
	t := &track{name: name, clip: clip}
	if opts.Fade > 0 {
		clip.SetVolume(0)
		t.fadeTo(opts.Volume, opts.Fade)
	} else {
		clip.SetVolume(opts.Volume)
	}
	clip.Play()
	b.bgm = t
	b.log.Debug("sound: bgm started", "track", name, "volume", opts.Volume, "fade", opts.Fade)
}

// retire fades the current track out over d and forgets it.
func (b *Bus) retire(d time.Duration) {
	if b.bgm == nil {
		return
	}
	t := b.bgm
	b.bgm = nil
	if d <= 0 {
		t.clip.Pause()
		_ = t.clip.Close()
		return
	}
	t.stop = true
	t.fadeTo(0, d)
	b.leaving = append(b.leaving, t)
}

func (b *Bus) StopBGM(fade time.Duration) {
	b.next = nil
	b.retire(fade)
}

// CrossBGM fades from out and to in at the same time. A from that is not
// the current track is logged; the cross still happens.
func (b *Bus) CrossBGM(from, to string, d time.Duration, loop bool) {
	if cur := b.Current(); cur != from {
		b.log.Warn("sound: cross from a track that is not playing", "current", cur, "from", from)
	}
	b.next = nil
	b.retire(d)
	b.start(to, BGMOptions{Loop: loop, Volume: DefaultBGMVolume, Fade: d})
}

// PlaySE plays a one-shot effect. Missing clips are skipped.
func (b *Bus) PlaySE(name string, volume float64) {
	clip, ok := b.load(name, false)
	if !ok {
		return
	}
	clip.SetVolume(volume)
	clip.Play()
	b.se = append(b.se, clip)
}

// Volume is the music volume, zero when nothing plays.
func (b *Bus) Volume() float64 {
	if b.bgm == nil {
		return 0
	}
	return b.bgm.clip.Volume()
}

// SetVolume overrides the music volume at once, cancelling any fade in.
func (b *Bus) SetVolume(v float64) {
	if b.bgm == nil {
		return
	}
	b.bgm.tween = nil
	b.bgm.clip.SetVolume(v)
}

// Update advances fades and releases finished effects.
func (b *Bus) Update(delta time.Duration) {
	dt := float32(delta.Seconds())

	if b.bgm != nil {
		b.bgm.advance(dt)
	}
	kept := b.leaving[:0]
	for _, t := range b.leaving {
		if !t.advance(dt) {
			kept = append(kept, t)
		}
	}
	b.leaving = kept

	if b.next != nil && len(b.leaving) == 0 {
		next := b.next
		b.next = nil
		b.start(next.name, next.opts)
	}

	playing := b.se[:0]
	for _, c := range b.se {
		if c.IsPlaying() {
			playing = append(playing, c)
			continue
		}
		_ = c.Close()
	}
	b.se = playing
}

// Close stops everything.
func (b *Bus) Close() {
	b.next = nil
	b.retire(0)
	for _, t := range b.leaving {
		t.clip.Pause()
		_ = t.clip.Close()
	}
	b.leaving = nil
	for _, c := range b.se {
		c.Pause()
		_ = c.Close()
	}
	b.se = nil
}

func (b *Bus) load(name string, loop bool) (Clip, bool) {
	if name == "" || b.loader == nil {
		return nil, false
	}
	clip, err := b.loader.Load(name, loop)
	if err != nil {
		if !b.missing[name] {
			b.missing[name] = true
			b.log.Warn("sound: skipping clip", "name", name, "error", err)
		}
		return nil, false
	}
	return clip, true
}
