package logs

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// followFallback re-reads the file even without events, covering
// filesystems that do not report writes.
const followFallback = 2 * time.Second

// Follow streams complete lines appended to path after offset until ctx is
// cancelled. The parent directory is watched so a file created after Follow
// starts is picked up. emit receives each non-empty batch in order.
func Follow(ctx context.Context, path string, offset int64, match func(string) bool, emit func([]string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create log watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch log directory: %w", err)
	}

	target, err := filepath.Abs(path)
	if err != nil {
		target = path
	}
	ticker := time.NewTicker(followFallback)
	defer ticker.Stop()

	drain := func() error {
		result, err := Tail(ctx, path, TailOptions{Offset: offset, Match: match})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		offset = result.Offset
		if len(result.Lines) > 0 {
			emit(result.Lines)
		}
		return nil
	}

	if err := drain(); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || name != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if err := drain(); err != nil {
					return err
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch log file: %w", err)
		case <-ticker.C:
			if err := drain(); err != nil {
				return err
			}
		}
	}
}
