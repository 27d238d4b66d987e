package retriever

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const reloadDebounce = 200 * time.Millisecond

// Watch reloads the build whenever the current symlink in the index root is
// replaced. It blocks until ctx is done.
func (s *Service) Watch(ctx context.Context) error {
	current := s.loader.CurrentPath()
	root := filepath.Dir(current)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create index root: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	if err := w.Add(root); err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}
	s.logger.Info("Watching index root", zap.String("dir", root))

	var timer *time.Timer
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
			if filepath.Clean(ev.Name) != filepath.Clean(current) || !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(reloadDebounce, func() {
				if err := s.Reload(ctx); err != nil {
					s.logger.Error("Index reload failed, keeping previous build", zap.Error(err))
				}
			})

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("Index watcher error", zap.Error(err))
		}
	}
}
