package server

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const DefaultDebounce = 500 * time.Millisecond

type Reloader interface {
	Reload(dir string) error
}

// TemplateWatcher reloads fragment templates when *.html files in dir change.
type TemplateWatcher struct {
	logger   *zap.SugaredLogger
	reloader Reloader
	dir      string
	debounce time.Duration
	watcher  *fsnotify.Watcher
}

func NewTemplateWatcher(logger *zap.SugaredLogger, reloader Reloader, dir string) (*TemplateWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	return &TemplateWatcher{
		logger:   logger,
		reloader: reloader,
		dir:      dir,
		debounce: DefaultDebounce,
		watcher:  w,
	}, nil
}

// stopTimer stops timer and empties its channel so it can be Reset.
func stopTimer(timer *time.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}

func relevant(ev fsnotify.Event) bool {
	if filepath.Ext(ev.Name) != ".html" {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}

// Run blocks until ctx is cancelled. Bursts of changes cause one reload.
func (tw *TemplateWatcher) Run(ctx context.Context) {
	defer tw.watcher.Close()

	timer := time.NewTimer(tw.debounce)
	stopTimer(timer)

	for {
		select {
		case ev, ok := <-tw.watcher.Events:
			if !ok {
				return
			}
			if !relevant(ev) {
				continue
			}

			tw.logger.Debugw("Template change detected", "file", ev.Name, "op", ev.Op.String())
			stopTimer(timer)
			timer.Reset(tw.debounce)
		case <-timer.C:
			if err := tw.reloader.Reload(tw.dir); err != nil {
				tw.logger.Errorw("Template reload failed, keeping previous templates", "dir", tw.dir, "error", err)
				continue
			}
			tw.logger.Infow("Templates reloaded", "dir", tw.dir)
		case err, ok := <-tw.watcher.Errors:
			if !ok {
				return
			}
			tw.logger.Warnw("Template watcher error", "error", err)
		case <-ctx.Done():
			stopTimer(timer)
			return
		}
	}
}
