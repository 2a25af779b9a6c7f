package prefabs

import (
	"context"
	"fmt"

	"github.com/milk9111/volgkeep/boss"
	"github.com/milk9111/volgkeep/story"
)

// LoadBoss reads and validates boss id. The document's own id must match.
func LoadBoss(ctx context.Context, src Source, id string) (*boss.Config, error) {
	data, err := src.Read(ctx, KindBoss, id)
	if err != nil {
		return nil, fmt.Errorf("prefabs: load boss %s: %w", id, err)
	}
	cfg, err := boss.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("prefabs: boss %s: %w", id, err)
	}
	if cfg.ID != cleanID(id) {
		return nil, fmt.Errorf("prefabs: boss %s: document declares id %q", id, cfg.ID)
	}
	return cfg, nil
}

// LoadStory reads and compiles story id.
func LoadStory(ctx context.Context, src Source, id string) (*story.Program, error) {
	data, err := src.Read(ctx, KindStory, id)
	if err != nil {
		return nil, fmt.Errorf("prefabs: load story %s: %w", id, err)
	}
	prog, err := story.Load(data)
	if err != nil {
		return nil, fmt.Errorf("prefabs: story %s: %w", id, err)
	}
	if prog.ID != cleanID(id) {
		return nil, fmt.Errorf("prefabs: story %s: document declares id %q", id, prog.ID)
	}
	return prog, nil
}
