package jsonl

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mesh-intelligence/pantry/internal/logger"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

// debounce collapses the burst of events a single atomic save produces.
const debounce = 50 * time.Millisecond

// Watch blocks until ctx is done, calling fn once after each settled change
// to the collection file. The data directory is watched rather than the file
// itself because saves replace the file by rename.
func (b *Backend) Watch(ctx context.Context, collection string, fn func()) error {
	b.mu.RLock()
	attached, dir := b.attached, b.dataDir
	b.mu.RUnlock()

	if !attached {
		return types.ErrDetached
	}
	if _, err := types.Lookup(collection); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	target := collection + FileExt
	logger.Debug("watching collection", "collection", collection, "dir", dir)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			fn()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "collection", collection, "err", err)
		}
	}
}
