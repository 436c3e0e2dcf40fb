package logtail

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher rereads a log file whenever it changes on disk and hands the tail
// to a callback. It watches the parent directory so rotation and late
// creation of the file are picked up.
type Watcher struct {
	path     string
	maxLines int
	debounce time.Duration
	onChange func(lines []string, err error)
	logger   *zap.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	stop    chan struct{}
	done    chan struct{}
}

// WatchOption customises a Watcher.
type WatchOption func(*Watcher)

// WithDebounce sets how long to wait after the last event before rereading.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithWatchLogger sets the logger for watcher errors.
func WithWatchLogger(l *zap.Logger) WatchOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

const defaultDebounce = 250 * time.Millisecond

// NewWatcher prepares a watcher for path. Nothing is watched until Start.
func NewWatcher(path string, maxLines int, onChange func([]string, error), opts ...WatchOption) *Watcher {
	w := &Watcher{
		path:     filepath.Clean(path),
		maxLines: maxLines,
		debounce: defaultDebounce,
		onChange: onChange,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Path returns the watched file.
func (w *Watcher) Path() string { return w.path }

// Start reads the file once and then rereads it after every burst of
// filesystem events. Starting a running watcher does nothing.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.runningLocked() {
		return nil
	}
	if w.watcher != nil {
		// The loop exited with its context; release the old watcher.
		if err := w.watcher.Close(); err != nil {
			w.logger.Warn("close log watcher", zap.Error(err))
		}
		w.watcher, w.stop, w.done = nil, nil, nil
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		_ = fw.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}

	w.watcher = fw
	w.stop = make(chan struct{})
	w.done = make(chan struct{})

	w.emit()
	go w.run(ctx, fw, w.stop, w.done)
	return nil
}

// Stop ends watching and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	fw, stop, done := w.watcher, w.stop, w.done
	w.watcher, w.stop, w.done = nil, nil, nil
	w.mu.Unlock()

	if fw == nil {
		return
	}
	select {
	case <-done:
	default:
		close(stop)
		<-done
	}
	if err := fw.Close(); err != nil {
		w.logger.Warn("close log watcher", zap.Error(err))
	}
}

// Running reports whether the watcher is active.
func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.runningLocked()
}

func (w *Watcher) runningLocked() bool {
	if w.watcher == nil {
		return false
	}
	select {
	case <-w.done:
		return false
	default:
		return true
	}
}

func (w *Watcher) run(ctx context.Context, fw *fsnotify.Watcher, stop, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("log watcher error", zap.String("path", w.path), zap.Error(err))
		case <-timer.C:
			w.emit()
		}
	}
}

func (w *Watcher) emit() {
	lines, err := Read(w.path, w.maxLines)
	if w.onChange != nil {
		w.onChange(lines, err)
	}
}
