package prefabs

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed bosses/*.yaml stories/*.yaml arenas/*.tmx *.yaml
var FS embed.FS

// Kind is a prefab directory.
type Kind string

const (
	KindBoss  Kind = "bosses"
	KindStory Kind = "stories"
	KindArena Kind = "arenas"
	// KindSpec holds loose entity specs at the prefab root.
	KindSpec Kind = ""
)

func (k Kind) ext() string {
	if k == KindArena {
		return ".tmx"
	}
	return ".yaml"
}

// Path is the slash separated location of id inside a prefab tree.
func Path(kind Kind, id string) string {
	return path.Join(string(kind), cleanID(id)+kind.ext())
}

// IDs lists the documents of kind in fsys, sorted.
func IDs(fsys fs.FS, kind Kind) ([]string, error) {
	pattern := Path(kind, "*")
	matches, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("prefabs: glob %s: %w", pattern, err)
	}
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, strings.TrimSuffix(path.Base(m), kind.ext()))
	}
	sort.Strings(ids)
	return ids, nil
}

// cleanID accepts bare ids as well as paths like "prefabs/bosses/x.yaml".
func cleanID(id string) string {
	s := filepath.ToSlash(id)
	s = path.Base(s)
	for _, ext := range []string{".yaml", ".yml", ".tmx"} {
		if after, ok := strings.CutSuffix(s, ext); ok {
			return after
		}
	}
	return s
}
