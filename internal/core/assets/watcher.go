package assets

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/scenewire/scenewire/internal/core/observability/log"
)

// Watcher keeps the index in step with the vault. Filesystem events are
// debounced per path so an editor's write bursts collapse into one reindex
// of each touched file.
type Watcher struct {
	index    *Index
	debounce time.Duration
	logger   log.Log
}

func NewWatcher(index *Index, debounce time.Duration, logger log.Log) *Watcher {
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	return &Watcher{index: index, debounce: debounce, logger: logger}
}

// Run watches the vault tree until ctx is canceled. Directories created
// while running are added to the watch and their contents indexed.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting vault watcher: %w", err)
	}
	defer fsw.Close()

	root := w.index.lib.Root()
	if err := watchTree(fsw, root); err != nil {
		return err
	}
	w.logger.Info("vault watcher running", log.String("root", root))

	pending := make(map[string]fsnotify.Op)
	var timer *time.Timer
	var timerC <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(w.debounce)
			timerC = timer.C
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(w.debounce)
		timerC = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					// A directory moved in can carry definitions that never
					// produce their own events.
					_ = watchTree(fsw, ev.Name)
					w.enqueueDir(pending, ev.Name)
					schedule()
					continue
				}
			}
			if !isDefinition(ev.Name) {
				continue
			}
			rel, err := filepath.Rel(root, ev.Name)
			if err != nil {
				continue
			}
			pending[filepath.ToSlash(rel)] |= ev.Op
			schedule()

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("vault watcher error", log.Error(err))

		case <-timerC:
			timerC = nil
			w.flush(ctx, pending)
			pending = make(map[string]fsnotify.Op)
		}
	}
}

func (w *Watcher) flush(ctx context.Context, pending map[string]fsnotify.Op) {
	for rel, op := range pending {
		var err error
		if op&(fsnotify.Remove|fsnotify.Rename) != 0 && !exists(w.index.lib.Root(), rel) {
			err = w.index.Remove(ctx, rel)
		} else {
			err = w.index.Upsert(ctx, rel)
		}
		if err != nil {
			w.logger.Warn("vault reindex failed", log.String("path", rel), log.Error(err))
			continue
		}
		w.logger.Debug("vault reindexed", log.String("path", rel))
	}
}

func (w *Watcher) enqueueDir(pending map[string]fsnotify.Op, dir string) {
	root := w.index.lib.Root()
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !isDefinition(p) {
			return nil
		}
		if rel, err := filepath.Rel(root, p); err == nil {
			pending[filepath.ToSlash(rel)] |= fsnotify.Create
		}
		return nil
	})
}

func watchTree(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := fsw.Add(p); err != nil {
				return fmt.Errorf("watching %s: %w", p, err)
			}
		}
		return nil
	})
}

func isDefinition(p string) bool {
	ext := filepath.Ext(p)
	return ext == ".yaml" || ext == ".yml"
}

func exists(root, rel string) bool {
	_, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
	return err == nil
}
