package prefabs

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Change is a prefab document edited on disk.
type Change struct {
	Kind Kind
	ID   string
	Path string
}

type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan Change
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once
}

// NewWatcher watches root and its kind subdirectories that exist.
func NewWatcher(root string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := w.Add(root); err != nil {
		_ = w.Close()
		return nil, err
	}
	for _, kind := range []Kind{KindBoss, KindStory, KindArena} {
		// Missing kind directories are fine; the embedded copy is used.
		_ = w.Add(filepath.Join(root, string(kind)))
	}

	watcher := &Watcher{
		watcher: w,
		Events:  make(chan Change, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.Events)
	defer close(w.Errors)

	last := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			change, ok := classify(event.Name)
			if !ok {
				continue
			}
			now := time.Now()
			if t, ok := last[event.Name]; ok && now.Sub(t) < 100*time.Millisecond {
				continue
			}
			last[event.Name] = now
			select {
			case w.Events <- change:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

func classify(path string) (Change, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	dir := filepath.Base(filepath.Dir(path))
	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	switch {
	case dir == string(KindArena) && ext == ".tmx":
		return Change{Kind: KindArena, ID: id, Path: path}, true
	case ext != ".yaml" && ext != ".yml":
		return Change{}, false
	case dir == string(KindBoss):
		return Change{Kind: KindBoss, ID: id, Path: path}, true
	case dir == string(KindStory):
		return Change{Kind: KindStory, ID: id, Path: path}, true
	}
	return Change{Kind: KindSpec, ID: id, Path: path}, true
}
