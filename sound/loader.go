package sound

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"

	"github.com/milk9111/volgkeep/prefabs"
)

const SampleRate = 44100

type entry struct {
	file   string
	volume float64
}

// BankLoader decodes clips named by a sound bank from fsys. Decoded PCM is
// cached so effects can overlap without decoding again.
type BankLoader struct {
	ctx     *audio.Context
	fsys    fs.FS
	entries map[string]entry
	pcm     map[string][]byte
}

func NewBankLoader(ctx *audio.Context, fsys fs.FS, bank *prefabs.SoundBank) *BankLoader {
	l := &BankLoader{
		ctx:     ctx,
		fsys:    fsys,
		entries: map[string]entry{},
		pcm:     map[string][]byte{},
	}
	if bank != nil {
		for _, list := range [][]prefabs.AudioSpec{bank.BGM, bank.SE} {
			for _, a := range list {
				l.entries[a.Name] = entry{file: a.File, volume: a.Volume}
			}
		}
	}
	return l
}

// Load returns a player for name. Names that are not in the bank are tried
// as file paths so scripts may reference files directly.
func (l *BankLoader) Load(name string, loop bool) (Clip, error) {
	e, ok := l.entries[name]
	if !ok {
		e = entry{file: name}
	}
	pcm, err := l.decode(e.file)
	if err != nil {
		return nil, err
	}

	var p *audio.Player
	if loop {
		p, err = l.ctx.NewPlayer(audio.NewInfiniteLoop(bytes.NewReader(pcm), int64(len(pcm))))
		if err != nil {
			return nil, fmt.Errorf("sound: player %s: %w", name, err)
		}
	} else {
		p = l.ctx.NewPlayerFromBytes(pcm)
	}
	if e.volume > 0 && e.volume != 1 {
		return &scaled{Player: p, scale: e.volume}, nil
	}
	return p, nil
}

func (l *BankLoader) decode(file string) ([]byte, error) {
	if pcm, ok := l.pcm[file]; ok {
		return pcm, nil
	}
	raw, err := fs.ReadFile(l.fsys, file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMissing, file, err)
	}

	var stream io.Reader
	switch strings.ToLower(path.Ext(file)) {
	case ".wav":
		stream, err = wav.DecodeWithSampleRate(SampleRate, bytes.NewReader(raw))
	case ".ogg":
		stream, err = vorbis.DecodeWithSampleRate(SampleRate, bytes.NewReader(raw))
	default:
		// Already PCM in ebiten's native format.
		stream = bytes.NewReader(raw)
	}
	if err != nil {
		return nil, fmt.Errorf("sound: decode %s: %w", file, err)
	}
	pcm, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("sound: read %s: %w", file, err)
	}
	l.pcm[file] = pcm
	return pcm, nil
}

// scaled applies a per-clip bank volume under the volume the bus asks for.
type scaled struct {
	*audio.Player
	scale float64
}

func (s *scaled) SetVolume(v float64) { s.Player.SetVolume(v * s.scale) }
func (s *scaled) Volume() float64     { return s.Player.Volume() / s.scale }
