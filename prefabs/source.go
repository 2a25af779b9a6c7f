package prefabs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("prefabs: not found")

// Source reads raw prefab documents.
type Source interface {
	Read(ctx context.Context, kind Kind, id string) ([]byte, error)
}

// FSSource reads documents laid out as <kind>/<id>.<ext>.
type FSSource struct {
	fsys fs.FS
}

func NewFSSource(fsys fs.FS) *FSSource {
	return &FSSource{fsys: fsys}
}

// Embedded serves the prefabs compiled into the binary.
func Embedded() *FSSource { return NewFSSource(FS) }

// Dir serves prefabs from disk, for editing without a rebuild.
func Dir(dir string) *FSSource { return NewFSSource(os.DirFS(dir)) }

func (s *FSSource) FS() fs.FS { return s.fsys }

func (s *FSSource) Read(_ context.Context, kind Kind, id string) ([]byte, error) {
	p := Path(kind, id)
	data, err := fs.ReadFile(s.fsys, p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	if err != nil {
		return nil, fmt.Errorf("prefabs: read %s: %w", p, err)
	}
	return data, nil
}

// RedisSource serves documents pushed to Redis under volgkeep:<kind>:<id>,
// so a running game can be fed live edits.
type RedisSource struct {
	rdb    *redis.Client
	logger *slog.Logger
}

// NewRedisSource connects to redisURL and checks the connection.
func NewRedisSource(ctx context.Context, redisURL string, logger *slog.Logger) (*RedisSource, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("prefabs: parse redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("prefabs: connect to redis: %w", err)
	}
	logger.Info("Connected to Redis for prefab overrides", "url", redisURL)
	return &RedisSource{rdb: rdb, logger: logger}, nil
}

func Key(kind Kind, id string) string {
	k := string(kind)
	if kind == KindSpec {
		k = "spec"
	}
	return fmt.Sprintf("volgkeep:%s:%s", k, cleanID(id))
}

func (s *RedisSource) Read(ctx context.Context, kind Kind, id string) ([]byte, error) {
	key := Key(kind, id)
	data, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		s.logger.Warn("Redis GET failed", "key", key, "error", err)
		return nil, fmt.Errorf("prefabs: redis get %s: %w", key, err)
	}
	s.logger.Debug("Redis prefab override", "key", key, "bytes", len(data))
	return data, nil
}

// Put stores a document override.
func (s *RedisSource) Put(ctx context.Context, kind Kind, id string, data []byte) error {
	key := Key(kind, id)
	if err := s.rdb.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("prefabs: redis set %s: %w", key, err)
	}
	return nil
}

// Delete drops an override so the next source in a Chain wins again.
func (s *RedisSource) Delete(ctx context.Context, kind Kind, id string) error {
	key := Key(kind, id)
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("prefabs: redis del %s: %w", key, err)
	}
	return nil
}

func (s *RedisSource) Close() error {
	return s.rdb.Close()
}

// Chain tries each source in order and returns the first document found.
type Chain []Source

func (c Chain) Read(ctx context.Context, kind Kind, id string) ([]byte, error) {
	var errs []error
	for _, src := range c {
		if src == nil {
			continue
		}
		data, err := src.Read(ctx, kind, id)
		if err == nil {
			return data, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, Path(kind, id))
	}
	return nil, errors.Join(errs...)
}

// Layers is a read-only fs.FS that opens each name from the first layer
// holding it. Arena maps are read through it so an on-disk map shadows
// the embedded one.
type Layers []fs.FS

func (l Layers) Open(name string) (fs.File, error) {
	var first error
	for _, fsys := range l {
		if fsys == nil {
			continue
		}
		f, err := fsys.Open(name)
		if err == nil {
			return f, nil
		}
		if first == nil {
			first = err
		}
	}
	if first == nil {
		first = &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return nil, first
}
