package arena

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/jakecoffman/cp"
	"github.com/solarlune/resolv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/volgkeep/prefabs"
)

func TestLoadEmbeddedKeep(t *testing.T) {
	l, err := Load(prefabs.FS, "keep")
	require.NoError(t, err)

	assert.Equal(t, 1280.0, l.Width)
	assert.Equal(t, 736.0, l.Height)
	assert.Len(t, l.Walls, 6)
	assert.Equal(t, cp.Vector{X: 240, Y: 368}, l.PlayerSpawn)
	assert.Equal(t, cp.Vector{X: 1000, Y: 368}, l.BossSpawn)
	assert.Equal(t, "volg_boss", l.BossID)
	assert.Equal(t, "intro", l.Intro)
	assert.Equal(t, "bgm_boss.ogg", l.BGM)
}

func TestInnerExcludesBorderWalls(t *testing.T) {
	l, err := Load(prefabs.FS, "keep")
	require.NoError(t, err)

	bb := l.Inner()
	assert.Equal(t, cp.BB{L: 32, B: 32, R: 1248, T: 704}, bb)
}

func TestSpaceHoldsWalls(t *testing.T) {
	l, err := Load(prefabs.FS, "keep")
	require.NoError(t, err)
	space := l.Space()

	probe := resolv.NewObject(410, 330, 8, 8, TagPlayer)
	space.Add(probe)
	require.NotNil(t, probe.Check(0, 0, TagWall), "probe inside the left pillar")

	probe.X, probe.Y = 600, 360
	probe.Update()
	assert.Nil(t, probe.Check(0, 0, TagWall))
}

const noSpawns = `<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" orientation="orthogonal" renderorder="right-down" width="4" height="4" tilewidth="32" tileheight="32" infinite="0">
 <objectgroup id="1" name="walls">
  <object id="1" x="0" y="0" width="128" height="32"/>
 </objectgroup>
</map>
`

func TestLoadRequiresSpawns(t *testing.T) {
	fsys := fstest.MapFS{"arenas/empty.tmx": {Data: []byte(noSpawns)}}
	_, err := Load(fsys, "empty")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoSpawn))
	assert.Contains(t, err.Error(), "player")
	assert.Contains(t, err.Error(), "boss")
}

func TestLoadMissingMap(t *testing.T) {
	_, err := Load(prefabs.FS, "nowhere")
	require.Error(t, err)
}

const blockedSpawn = `<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" orientation="orthogonal" renderorder="right-down" width="4" height="4" tilewidth="32" tileheight="32" infinite="0">
 <objectgroup id="1" name="walls">
  <object id="1" x="0" y="0" width="128" height="32"/>
 </objectgroup>
 <objectgroup id="2" name="spawns">
  <object id="2" name="player" x="64" y="16"/>
  <object id="3" name="boss" x="64" y="96"/>
 </objectgroup>
</map>
`

func TestCheckSpawns(t *testing.T) {
	keep, err := Load(prefabs.FS, "keep")
	require.NoError(t, err)
	assert.NoError(t, keep.CheckSpawns())

	fsys := fstest.MapFS{"arenas/blocked.tmx": {Data: []byte(blockedSpawn)}}
	l, err := Load(fsys, "blocked")
	require.NoError(t, err)
	err = l.CheckSpawns()
	require.ErrorIs(t, err, ErrSpawnBlocked)
	assert.Contains(t, err.Error(), "player")
	assert.NotContains(t, err.Error(), "boss")
}
