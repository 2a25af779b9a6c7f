package assets

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"
)

//go:embed *
var FS embed.FS

// ErrMissing is returned when no embedded asset matches a path.
var ErrMissing = errors.New("assets: not found")

// PortraitSize is the side of the placeholder drawn for a missing portrait.
const PortraitSize = 256

// PlaceholderRed fills portraits and cut-ins whose image is missing.
var PlaceholderRed = color.RGBA{R: 0xff, G: 0x33, B: 0x33, A: 0xff}

var (
	mu     sync.Mutex
	images = map[string]*ebiten.Image{}
	face   text.Face
)

// Face is the font used for dialogue, speech bubbles and menus.
func Face() text.Face {
	mu.Lock()
	defer mu.Unlock()
	if face == nil {
		face = text.NewGoXFace(basicfont.Face7x13)
	}
	return face
}

// LoadImage loads an embedded image by assets-relative path. Images are
// cached by cleaned path.
func LoadImage(path string) (*ebiten.Image, error) {
	clean := cleanAssetPath(path)
	mu.Lock()
	defer mu.Unlock()
	if img, ok := images[clean]; ok {
		return img, nil
	}
	img, err := decodeImage(FS, clean)
	if err != nil {
		return nil, err
	}
	eimg := ebiten.NewImageFromImage(img)
	images[clean] = eimg
	return eimg, nil
}

// Portrait returns the named image, or a red square when it cannot be
// loaded. The second result reports whether the real image was found.
func Portrait(path string) (*ebiten.Image, bool) {
	if path != "" {
		if img, err := LoadImage(path); err == nil {
			return img, true
		}
	}
	return Solid(PortraitSize, PortraitSize, PlaceholderRed), false
}

// Background returns the named image or a vertical gradient of the base
// resolution.
func Background(path string, w, h int) (*ebiten.Image, bool) {
	if path != "" {
		if img, err := LoadImage(path); err == nil {
			return img, true
		}
	}
	key := fmt.Sprintf("#gradient/%dx%d", w, h)
	mu.Lock()
	defer mu.Unlock()
	if img, ok := images[key]; ok {
		return img, false
	}
	img := ebiten.NewImageFromImage(Gradient(w, h, color.RGBA{0x1c, 0x1a, 0x2e, 0xff}, color.RGBA{0x05, 0x04, 0x0a, 0xff}))
	images[key] = img
	return img, false
}

// Solid returns a cached w x h image filled with c.
func Solid(w, h int, c color.RGBA) *ebiten.Image {
	key := fmt.Sprintf("#solid/%dx%d/%02x%02x%02x%02x", w, h, c.R, c.G, c.B, c.A)
	mu.Lock()
	defer mu.Unlock()
	if img, ok := images[key]; ok {
		return img
	}
	img := ebiten.NewImage(w, h)
	img.Fill(c)
	images[key] = img
	return img
}

// Gradient builds a top to bottom gradient between two colours.
func Gradient(w, h int, top, bottom color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		t := 0.0
		if h > 1 {
			t = float64(y) / float64(h-1)
		}
		c := color.RGBA{
			R: lerp8(top.R, bottom.R, t),
			G: lerp8(top.G, bottom.G, t),
			B: lerp8(top.B, bottom.B, t),
			A: lerp8(top.A, bottom.A, t),
		}
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func lerp8(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
}

func decodeImage(fsys fs.FS, clean string) (image.Image, error) {
	b, err := fs.ReadFile(fsys, clean)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMissing, clean)
	}
	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("assets: decode %s: %w", clean, err)
	}
	return img, nil
}

func cleanAssetPath(path string) string {
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		s := filepath.ToSlash(path)
		if idx := strings.LastIndex(s, "/assets/"); idx >= 0 {
			return s[idx+len("/assets/"):]
		}
		return filepath.Base(path)
	}
	s := filepath.ToSlash(path)
	if strings.HasPrefix(s, "assets/") {
		return strings.TrimPrefix(s, "assets/")
	}
	return s
}
