package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 250 * time.Millisecond

// ConfigWatcher reports edits to the configuration file. Bursts of events,
// as written by editors that save through a temporary file, are collapsed
// into one notification.
type ConfigWatcher struct {
	watcher  *fsnotify.Watcher
	target   string
	debounce time.Duration
	changes  chan struct{}
	logger   *slog.Logger
}

// WatchConfig watches path and its directory, so replacing the file by
// rename is noticed too.
func WatchConfig(path string, logger *slog.Logger) (*ConfigWatcher, error) {
	full, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	full = filepath.Clean(full)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch config: %w", err)
	}
	if err := w.Add(filepath.Dir(full)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch config dir: %w", err)
	}
	if err := w.Add(full); err != nil {
		logger.Debug("unable to watch config file directly", "path", full, "error", err)
	}
	return &ConfigWatcher{
		watcher:  w,
		target:   full,
		debounce: defaultDebounce,
		changes:  make(chan struct{}, 1),
		logger:   logger,
	}, nil
}

// Changes delivers one value per settled burst of edits.
func (w *ConfigWatcher) Changes() <-chan struct{} {
	return w.changes
}

// Run forwards debounced edits until ctx is done or the watcher is closed.
func (w *ConfigWatcher) Run(ctx context.Context) {
	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerCh = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case <-timerCh:
			timer = nil
			timerCh = nil
			select {
			case w.changes <- struct{}{}:
			default:
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)
		}
	}
}

func (w *ConfigWatcher) Close() error {
	return w.watcher.Close()
}
