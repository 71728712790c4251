package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events an editor emits on save.
const DefaultDebounce = 150 * time.Millisecond

// Watch reruns the pipeline over path every time the file changes, calling
// fn with each result or error. The parent directory is watched so that
// editors which save by rename are still seen. Watch returns when ctx is done.
func (r *Runner) Watch(ctx context.Context, path string, debounce time.Duration, fn func(*Result, error)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	const trigger = fsnotify.Create | fsnotify.Write | fsnotify.Rename

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs || event.Op&trigger == 0 {
				continue
			}
			r.Logger.Debug("resource file changed", "path", event.Name, "op", event.Op)
			timer.Reset(debounce)

		case <-timer.C:
			fn(r.RunFile(ctx, abs))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.Logger.Error("watcher error", "path", abs, "err", err)
		}
	}
}
