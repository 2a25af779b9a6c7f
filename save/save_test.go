package save

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/volgkeep/logger"
	"github.com/milk9111/volgkeep/story"
)

type memBackend struct {
	items   map[string][]byte
	loadErr error
	saveErr error
}

func newMem() *memBackend { return &memBackend{items: map[string][]byte{}} }

func (m *memBackend) LoadItem(key string) ([]byte, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.items[key], nil
}

func (m *memBackend) SaveItem(key string, data []byte) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.items[key] = data
	return nil
}

func TestVarsRoundTripThroughBackend(t *testing.T) {
	mem := newMem()
	s := NewStore(mem, logger.Discard())

	assert.Empty(t, s.LoadVars())

	require.NoError(t, s.SaveVars(map[string]any{"metNpc": true, "visits": 2, "ratio": 0.5, "name": "Aldo"}))
	vars := NewStore(mem, logger.Discard()).LoadVars()
	assert.Equal(t, true, vars["metNpc"])
	assert.Equal(t, 2, vars["visits"])
	assert.Equal(t, 0.5, vars["ratio"])
	assert.Equal(t, "Aldo", vars["name"])
}

func TestRestoredNumbersMatchConditions(t *testing.T) {
	mem := newMem()
	vars := map[string]any{"ratio": 2.0, "count": 1.0, "half": 0.5}
	conds := []string{"ratio == 2.0", "ratio == 2", "count == 1", "half == 0.5"}

	require.NoError(t, NewStore(mem, logger.Discard()).SaveVars(vars))
	restored := NewStore(mem, logger.Discard()).LoadVars()
	assert.Equal(t, 2, restored["ratio"])

	for _, expr := range conds {
		t.Run(expr, func(t *testing.T) {
			c, err := story.CompileCondition(expr)
			require.NoError(t, err)

			before, err := c.Eval(vars)
			require.NoError(t, err)
			after, err := c.Eval(restored)
			require.NoError(t, err)
			assert.True(t, before)
			assert.True(t, after)
		})
	}
}

func TestCorruptVarsLoadEmpty(t *testing.T) {
	mem := newMem()
	mem.items[varsKey] = []byte("{not json")
	assert.Empty(t, NewStore(mem, logger.Discard()).LoadVars())
}

func TestLoadErrorLoadsEmpty(t *testing.T) {
	mem := newMem()
	mem.loadErr = errors.New("disk gone")
	s := NewStore(mem, logger.Discard())
	assert.Empty(t, s.LoadVars())
	assert.False(t, s.Cleared("volg_boss"))
}

func TestMarkCleared(t *testing.T) {
	mem := newMem()
	s := NewStore(mem, logger.Discard())

	assert.False(t, s.Cleared("volg_boss"))
	require.NoError(t, s.MarkCleared("volg_boss"))
	require.NoError(t, s.MarkCleared("volg_boss"))
	require.NoError(t, s.MarkCleared("ash_knight"))
	assert.True(t, s.Cleared("volg_boss"))

	assert.JSONEq(t, `["ash_knight","volg_boss"]`, string(mem.items[clearedKey]))
	assert.True(t, NewStore(mem, logger.Discard()).Cleared("ash_knight"))
}

func TestSaveErrorsAreReturned(t *testing.T) {
	mem := newMem()
	mem.saveErr = errors.New("read-only")
	s := NewStore(mem, logger.Discard())

	assert.ErrorIs(t, s.SaveVars(map[string]any{"a": true}), mem.saveErr)
	assert.ErrorIs(t, s.MarkCleared("volg_boss"), mem.saveErr)
}
