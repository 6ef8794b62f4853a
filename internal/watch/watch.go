// Package watch reloads a scene file when it changes on disk.
package watch

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the file must stay quiet before a reload
const DefaultDebounce = 300 * time.Millisecond

// Handler is called with the watched path after each quiet period
type Handler func(path string)

// Options configures a Watcher
type Options struct {
	Debounce time.Duration
	Logger   *slog.Logger
}

// Watcher watches one file. The parent directory is what gets registered, so
// editors that save by rename-and-replace are still seen.
type Watcher struct {
	path     string
	handler  Handler
	debounce time.Duration
	logger   *slog.Logger

	watcher  *fsnotify.Watcher
	changes  chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	mu       sync.Mutex
	watching bool
}

// New creates a watcher for path. Call Start to begin delivering events.
func New(path string, handler Handler, opts Options) (*Watcher, error) {
	if handler == nil {
		return nil, errors.New("watch: handler is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		path:     abs,
		handler:  handler,
		debounce: opts.Debounce,
		logger:   opts.Logger,
		watcher:  fw,
		changes:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}, nil
}

// Path returns the absolute path being watched
func (w *Watcher) Path() string {
	return w.path
}

// Start registers the directory and runs the event and debounce loops until
// ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.watching {
		w.mu.Unlock()
		return nil
	}
	w.watching = true
	w.mu.Unlock()

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	go w.processEvents(ctx)
	go w.debounceLoop(ctx)
	return nil
}

// Stop closes the underlying watcher; pending changes are dropped
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()

		w.mu.Lock()
		w.watching = false
		w.mu.Unlock()
	})
}

func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug("scene file changed", "path", w.path, "op", event.Op.String())
			select {
			case w.changes <- struct{}{}:
			default:
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", "path", w.path, "error", err)
		}
	}
}

// debounceLoop fires the handler once the file has been quiet for the
// debounce window; every new change restarts the window.
func (w *Watcher) debounceLoop(ctx context.Context) {
	var timer *time.Timer
	var timerC <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case <-w.changes:
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C
		case <-timerC:
			timerC = nil
			w.handler(w.path)
		}
	}
}
