// Package arena loads encounter arenas authored in Tiled.
package arena

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/jakecoffman/cp"
	"github.com/lafriks/go-tiled"
	"github.com/solarlune/resolv"

	"github.com/milk9111/volgkeep/prefabs"
)

const (
	wallsGroup  = "walls"
	spawnsGroup = "spawns"

	TagWall   = "wall"
	TagPlayer = "player"
	TagBoss   = "boss"

	cellSize = 16
)

var ErrNoSpawn = errors.New("arena: missing spawn")

type Rect struct {
	Name       string
	X, Y, W, H float64
}

// Layout is the static part of an arena: its bounds, walls and where the
// player and boss start.
type Layout struct {
	Name          string
	Width, Height float64
	Walls         []Rect
	PlayerSpawn   cp.Vector
	BossSpawn     cp.Vector

	// Map properties.
	BGM    string
	BossID string
	Intro  string
}

// Load parses arenas/<name>.tmx from fsys.
func Load(fsys fs.FS, name string) (*Layout, error) {
	path := prefabs.Path(prefabs.KindArena, name)
	m, err := tiled.LoadFile(path, tiled.WithFileSystem(fsys))
	if err != nil {
		return nil, fmt.Errorf("arena: load %s: %w", path, err)
	}

	l := &Layout{
		Name:   name,
		Width:  float64(m.Width * m.TileWidth),
		Height: float64(m.Height * m.TileHeight),
	}
	if m.Properties != nil {
		l.BGM = m.Properties.GetString("bgm")
		l.BossID = m.Properties.GetString("boss")
		l.Intro = m.Properties.GetString("intro")
	}

	var havePlayer, haveBoss bool
	for _, og := range m.ObjectGroups {
		switch og.Name {
		case wallsGroup:
			for _, o := range og.Objects {
				l.Walls = append(l.Walls, Rect{Name: o.Name, X: o.X, Y: o.Y, W: o.Width, H: o.Height})
			}
		case spawnsGroup:
			for _, o := range og.Objects {
				switch o.Name {
				case TagPlayer:
					l.PlayerSpawn, havePlayer = cp.Vector{X: o.X, Y: o.Y}, true
				case TagBoss:
					l.BossSpawn, haveBoss = cp.Vector{X: o.X, Y: o.Y}, true
				}
			}
		}
	}

	var errs []error
	if !havePlayer {
		errs = append(errs, fmt.Errorf("%w: %s", ErrNoSpawn, TagPlayer))
	}
	if !haveBoss {
		errs = append(errs, fmt.Errorf("%w: %s", ErrNoSpawn, TagBoss))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("arena: %s: %w", name, err)
	}
	return l, nil
}

// Inner is the walkable area: the map bounds minus the border walls that
// touch the map edges.
func (l *Layout) Inner() cp.BB {
	bb := cp.BB{L: 0, B: 0, R: l.Width, T: l.Height}
	for _, w := range l.Walls {
		switch {
		case w.X <= 0 && w.Y <= 0 && w.W >= l.Width:
			bb.B = max(bb.B, w.Y+w.H)
		case w.Y+w.H >= l.Height && w.W >= l.Width:
			bb.T = min(bb.T, w.Y)
		case w.X <= 0 && w.H < l.Height:
			bb.L = max(bb.L, w.X+w.W)
		case w.X+w.W >= l.Width:
			bb.R = min(bb.R, w.X)
		}
	}
	return bb
}

// Space builds a resolv space holding one object per wall.
func (l *Layout) Space() *resolv.Space {
	space := resolv.NewSpace(int(l.Width), int(l.Height), cellSize, cellSize)
	for _, w := range l.Walls {
		obj := resolv.NewObject(w.X, w.Y, w.W, w.H, TagWall)
		obj.SetShape(resolv.NewRectangle(0, 0, w.W, w.H))
		space.Add(obj)
	}
	return space
}

// ErrSpawnBlocked is returned by CheckSpawns for a spawn inside a wall.
var ErrSpawnBlocked = errors.New("arena: spawn inside a wall")

// CheckSpawns probes both spawn points against the walls.
func (l *Layout) CheckSpawns() error {
	const probe = 8
	space := l.Space()
	var errs []error
	for _, sp := range []struct {
		name string
		at   cp.Vector
		tag  string
	}{{"player", l.PlayerSpawn, TagPlayer}, {"boss", l.BossSpawn, TagBoss}} {
		obj := resolv.NewObject(sp.at.X-probe/2, sp.at.Y-probe/2, probe, probe, sp.tag)
		space.Add(obj)
		if obj.Check(0, 0, TagWall) != nil {
			errs = append(errs, fmt.Errorf("%w: %s at (%.0f, %.0f)", ErrSpawnBlocked, sp.name, sp.at.X, sp.at.Y))
		}
		space.Remove(obj)
	}
	return errors.Join(errs...)
}
