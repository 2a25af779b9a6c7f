// Package save persists story variables and cleared encounters between
// sessions.
package save

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/quasilyte/gdata"
)

const (
	varsKey    = "story_vars"
	clearedKey = "cleared"
)

// Backend is the item storage behind a Store. *gdata.Manager satisfies it.
type Backend interface {
	LoadItem(key string) ([]byte, error)
	SaveItem(key string, data []byte) error
}

type Store struct {
	backend Backend
	log     *slog.Logger
	cleared map[string]bool
}

// Open uses the per-user data directory for appName.
func Open(appName string, logger *slog.Logger) (*Store, error) {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("save: open %s: %w", appName, err)
	}
	return NewStore(m, logger), nil
}

func NewStore(b Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{backend: b, log: logger}
}

// LoadVars returns the saved story variables, or an empty map when nothing
// was saved yet. Unreadable data is logged and treated as empty.
func (s *Store) LoadVars() map[string]any {
	vars := map[string]any{}
	data, err := s.backend.LoadItem(varsKey)
	if err != nil {
		s.log.Warn("save: could not load story vars", "error", err)
		return vars
	}
	if len(data) == 0 {
		return vars
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&vars); err != nil {
		s.log.Warn("save: could not parse story vars", "error", err)
		return map[string]any{}
	}
	for k, v := range vars {
		vars[k] = number(v)
	}
	return vars
}

// number turns decoded JSON numbers back into the int or float64 a story
// script would have produced, so conditions compare them alike.
func number(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return int(i)
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

func (s *Store) SaveVars(vars map[string]any) error {
	data, err := json.Marshal(vars)
	if err != nil {
		return fmt.Errorf("save: encode story vars: %w", err)
	}
	if err := s.backend.SaveItem(varsKey, data); err != nil {
		return fmt.Errorf("save: write story vars: %w", err)
	}
	return nil
}

func (s *Store) loadCleared() map[string]bool {
	if s.cleared != nil {
		return s.cleared
	}
	s.cleared = map[string]bool{}
	data, err := s.backend.LoadItem(clearedKey)
	if err != nil || len(data) == 0 {
		if err != nil {
			s.log.Warn("save: could not load cleared encounters", "error", err)
		}
		return s.cleared
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		s.log.Warn("save: could not parse cleared encounters", "error", err)
		return s.cleared
	}
	for _, id := range ids {
		s.cleared[id] = true
	}
	return s.cleared
}

// MarkCleared records a won encounter.
func (s *Store) MarkCleared(bossID string) error {
	cleared := s.loadCleared()
	if cleared[bossID] {
		return nil
	}
	cleared[bossID] = true
	data, err := json.Marshal(slices.Sorted(maps.Keys(cleared)))
	if err != nil {
		return fmt.Errorf("save: encode cleared: %w", err)
	}
	if err := s.backend.SaveItem(clearedKey, data); err != nil {
		return fmt.Errorf("save: write cleared: %w", err)
	}
	return nil
}

func (s *Store) Cleared(bossID string) bool {
	return s.loadCleared()[bossID]
}
