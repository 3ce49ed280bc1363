// Package watch re-runs an action whenever a file changes on disk.
//
// Bursts of write events are coalesced with a debounce window, and a file
// that is removed or renamed (as editors and rotation tools do) is followed
// once it reappears at the same path.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	DefaultDebounce        = 500 * time.Millisecond
	DefaultReappearTimeout = 10 * time.Second
	pollInterval           = 100 * time.Millisecond
)

// ErrVanished is returned when a watched file does not reappear in time.
var ErrVanished = errors.New("watched file did not reappear")

// Options configures a Watcher.
type Options struct {
	Path            string                          // File to watch
	Debounce        time.Duration                   // Quiet period before OnChange runs
	ReappearTimeout time.Duration                   // How long to wait for a removed file
	OnChange        func(ctx context.Context) error // Called after each settled change
	Logger          *slog.Logger
}

// Watcher follows a single file.
type Watcher struct {
	opts    Options
	logger  *slog.Logger
	watcher *fsnotify.Watcher
	timer   *time.Timer
}

// New creates a Watcher, filling in defaults for unset options.
func New(opts Options) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.ReappearTimeout <= 0 {
		opts.ReappearTimeout = DefaultReappearTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Watcher{opts: opts, logger: logger.With("path", opts.Path)}
}

// Run blocks until ctx is cancelled, OnChange fails, or the file vanishes
// for longer than the reappear timeout. Cancellation is not an error.
func (w *Watcher) Run(ctx context.Context) error {
	if w.opts.OnChange == nil {
		return errors.New("watch: OnChange is required")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	w.watcher = fw
	defer fw.Close()

	if err := fw.Add(w.opts.Path); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.opts.Path, err)
	}
	w.logger.Debug("watching for changes", "debounce", w.opts.Debounce)

	defer w.stopTimer()
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return fmt.Errorf("watcher closed unexpectedly")
			}
			if err := w.handleEvent(ctx, event); err != nil {
				return err
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			return fmt.Errorf("watcher error: %w", err)

		case <-w.fired():
			w.timer = nil
			w.logger.Debug("change settled")
			if err := w.opts.OnChange(ctx); err != nil {
				return err
			}
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) error {
	switch {
	case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
		w.schedule()

	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.stopTimer()
		w.logger.Debug("file moved away, waiting for it to reappear")
		if err := w.awaitReappear(ctx); err != nil {
			return err
		}
		if ctx.Err() == nil {
			w.schedule()
		}
	}
	// Chmod is ignored.
	return nil
}

// schedule (re)starts the debounce window.
func (w *Watcher) schedule() {
	if w.timer == nil {
		w.timer = time.NewTimer(w.opts.Debounce)
		return
	}
	w.timer.Reset(w.opts.Debounce)
}

func (w *Watcher) stopTimer() {
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// fired returns the pending timer channel, or nil when nothing is pending.
func (w *Watcher) fired() <-chan time.Time {
	if w.timer == nil {
		return nil
	}
	return w.timer.C
}

func (w *Watcher) awaitReappear(ctx context.Context) error {
	timeout := time.After(w.opts.ReappearTimeout)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timeout:
			return fmt.Errorf("%w: %s", ErrVanished, w.opts.Path)
		case <-ticker.C:
			if _, err := os.Stat(w.opts.Path); err != nil {
				continue
			}
			// The old watch went away with the file.
			_ = w.watcher.Remove(w.opts.Path)
			if err := w.watcher.Add(w.opts.Path); err != nil {
				return fmt.Errorf("failed to watch replaced file: %w", err)
			}
			w.logger.Info("file replaced, following new file")
			return nil
		}
	}
}
