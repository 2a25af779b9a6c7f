package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedPrefabsAreValid(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run(nil, &out, &errOut)
	assert.Equal(t, 0, code, out.String())
	assert.Contains(t, out.String(), "ok   bosses/volg_boss.yaml")
	assert.Contains(t, out.String(), "ok   stories/intro.yaml")
	assert.Contains(t, out.String(), "ok   arenas/keep.tmx")
	assert.Contains(t, out.String(), " 0 errors")
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func TestBrokenDocumentsFail(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bosses", "bad.yaml"), `
id: bad
name: Bad
stats: {hp: 10, speed: 0, scale: 1, damage: 1}
phases:
  - phase: 1
    hp_range: [0, 10]
    attack_cooldown: 1
    patterns: [missing_attack]
attacks: []
`)
	writeFile(t, filepath.Join(dir, "stories", "loose.yaml"), `
id: loose
script:
  - op: goto
    name: nowhere
  - op: end
`)

	var out, errOut bytes.Buffer
	code := run([]string{"-dir", dir}, &out, &errOut)
	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "FAIL bosses/bad.yaml")
	assert.Contains(t, out.String(), "missing_attack")
	assert.Contains(t, out.String(), `WARN stories/loose.yaml: goto "nowhere"`)
	assert.Contains(t, out.String(), "ok   stories/loose.yaml")
}

func TestBadFlag(t *testing.T) {
	var out, errOut bytes.Buffer
	assert.Equal(t, 2, run([]string{"-nope"}, &out, &errOut))
}
