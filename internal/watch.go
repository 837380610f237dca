package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/gnolang/tdce/internal/irtext"
	tt "github.com/gnolang/tdce/internal/types"
)

// settle is how long a write event waits so that bursts of writes from
// one save are handled once.
const settle = 100 * time.Millisecond

// Watch re-runs the engine on every input file written below dirs and
// hands each report to onReport. It returns once the watcher is set up;
// the loop stops when ctx is done or StopWatching is called.
func (e *Engine) Watch(ctx context.Context, dirs []string, onReport func(tt.FileReport)) error {
	e.watchMu.Lock()
	defer e.watchMu.Unlock()

	if e.isWatching {
		return fmt.Errorf("already watching")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating watcher: %w", err)
	}
	e.watcher = watcher
	e.watchDirs = dirs
	e.EnableCache()

	for _, dir := range e.watchDirs {
		err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return e.watcher.Add(path)
			}
			return nil
		})
		if err != nil {
			_ = e.watcher.Close()
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}

	e.isWatching = true
	go e.watchLoop(ctx, e.watcher, onReport)
	return nil
}

// StopWatching closes the watcher and forgets the reports cached while
// watching. It is safe to call more than once.
func (e *Engine) StopWatching() error {
	stopped, err := e.stopWatching(nil)
	if !stopped {
		e.logger.Warn("not watching")
	}
	return err
}

// stopWatching stops the current watcher, or only w when w is not nil.
func (e *Engine) stopWatching(w *fsnotify.Watcher) (bool, error) {
	e.watchMu.Lock()
	defer e.watchMu.Unlock()

	if !e.isWatching || (w != nil && w != e.watcher) {
		return false, nil
	}
	e.isWatching = false
	if e.cache != nil {
		e.cache.InvalidateAll()
	}
	return true, e.watcher.Close()
}

func (e *Engine) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, onReport func(tt.FileReport)) {
	for {
		select {
		case <-ctx.Done():
			if _, err := e.stopWatching(watcher); err != nil {
				e.logger.Error("Error closing watcher", zap.Error(err))
			}
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			e.handleFileEvent(ctx, event, onReport)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			e.logger.Error("Watcher error", zap.Error(err))
		}
	}
}

func (e *Engine) handleFileEvent(ctx context.Context, event fsnotify.Event, onReport func(tt.FileReport)) {
	if !event.Has(fsnotify.Write) || !irtext.IsInput(event.Name) {
		return
	}

	time.Sleep(settle)
	report, err := e.Run(ctx, event.Name)
	if err != nil {
		e.logger.Error("Error processing file", zap.String("file", event.Name), zap.Error(err))
		return
	}
	if onReport != nil {
		onReport(report)
	}
}
