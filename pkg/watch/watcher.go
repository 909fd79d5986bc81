// Package watch reloads the container template while developing.
package watch

import (
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/material-motion/motion-site/pkg/event"
	"github.com/material-motion/motion-site/pkg/metrics"
)

// Reloader is the part of the renderer the watcher drives.
type Reloader interface {
	Path() string
	Reload() error
}

// TemplateWatcher re-parses the template when its file changes and emits a
// reload event so open pages can refresh.
type TemplateWatcher struct {
	watcher  *fsnotify.Watcher
	target   Reloader
	emitter  *event.Emitter
	logger   *slog.Logger
	metrics  *metrics.Metrics
	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

// NewTemplateWatcher starts watching the directory of target's template.
// Editors often replace files instead of writing them in place, so the
// directory is watched rather than the file. m may be nil.
func NewTemplateWatcher(target Reloader, emitter *event.Emitter, logger *slog.Logger, m *metrics.Metrics) (*TemplateWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(target.Path())); err != nil {
		_ = w.Close()
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	tw := &TemplateWatcher{
		watcher: w,
		target:  target,
		emitter: emitter,
		logger:  logger,
		metrics: m,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go tw.watchLoop()
	return tw, nil
}

func (tw *TemplateWatcher) watchLoop() {
	defer close(tw.stopped)
	name := filepath.Clean(tw.target.Path())
	for {
		select {
		case <-tw.done:
			return
		case ev, ok := <-tw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != name {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				tw.reload()
			}
		case err, ok := <-tw.watcher.Errors:
			if !ok {
				return
			}
			tw.logger.Warn("template watcher error", "error", err)
		}
	}
}

func (tw *TemplateWatcher) reload() {
	path := tw.target.Path()
	if err := tw.target.Reload(); err != nil {
		tw.count("error")
		tw.logger.Warn("template reload failed, keeping previous version", "path", path, "error", err)
		tw.emitter.Emit(event.TemplateReloadFailedEvent{Path: path, Error: err.Error()})
		return
	}
	tw.count("ok")
	tw.logger.Info("template reloaded", "path", path)
	tw.emitter.Emit(event.TemplateReloadedEvent{Path: path})
}

func (tw *TemplateWatcher) count(result string) {
	if tw.metrics != nil {
		tw.metrics.TemplateReloads.WithLabelValues(result).Inc()
	}
}

// Close stops the watcher and waits for the loop to exit.
func (tw *TemplateWatcher) Close() error {
	var err error
	tw.stopOnce.Do(func() {
		close(tw.done)
		err = tw.watcher.Close()
		<-tw.stopped
	})
	return err
}
