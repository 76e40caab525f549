// Package watcher reloads the solution when its file changes on disk.
package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	ferrors "git.home.luguber.info/inful/solvent/internal/foundation/errors"
	"git.home.luguber.info/inful/solvent/internal/logfields"
	"git.home.luguber.info/inful/solvent/internal/retry"
	"git.home.luguber.info/inful/solvent/internal/solution"
)

const defaultDebounce = 500 * time.Millisecond

// Reloader re-reads the solution. *workspace.Workspace satisfies it.
type Reloader interface {
	Path() string
	Reload() (*solution.Solution, error)
}

// SolutionWatcher watches the solution's directory and reloads after a
// quiet period once the solution file was written, created or renamed.
type SolutionWatcher struct {
	target   Reloader
	path     string
	debounce time.Duration
	policy   retry.Policy
	logger   *slog.Logger

	watcher  *fsnotify.Watcher
	trigger  chan struct{}
	stopOnce sync.Once
	stopCh   chan struct{}
	done     sync.WaitGroup
}

// Option configures a SolutionWatcher.
type Option func(*SolutionWatcher)

// WithDebounce sets the quiet period before a reload.
func WithDebounce(d time.Duration) Option {
	return func(w *SolutionWatcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithRetry sets how failed reloads are retried.
func WithRetry(p retry.Policy) Option {
	return func(w *SolutionWatcher) {
		if p.Validate() == nil {
			w.policy = p
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *SolutionWatcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New creates a watcher for target's solution file.
func New(target Reloader, opts ...Option) (*SolutionWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to create file watcher").Build()
	}
	path, err := filepath.Abs(target.Path())
	if err != nil {
		_ = fw.Close()
		return nil, ferrors.WrapError(err, ferrors.CategoryIO, "failed to resolve solution path").
			WithContext("path", target.Path()).Build()
	}
	w := &SolutionWatcher{
		target:   target,
		path:     path,
		debounce: defaultDebounce,
		policy:   retry.DefaultPolicy(),
		logger:   slog.Default(),
		watcher:  fw,
		trigger:  make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins watching. The directory is watched rather than the file so
// editors that replace the file atomically are still seen.
func (w *SolutionWatcher) Start(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryIO, "failed to watch solution directory").
			WithContext("path", dir).Build()
	}
	w.logger.Info("Watching solution for changes", logfields.Solution(w.path))

	w.done.Add(2)
	go w.watchLoop(ctx)
	go w.reloadLoop(ctx)
	return nil
}

// Stop ends watching and waits for the loops to exit. It is safe to call
// more than once.
func (w *SolutionWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		if err := w.watcher.Close(); err != nil {
			w.logger.Error("Error closing file watcher", logfields.Error(err))
		}
	})
	w.done.Wait()
}

func (w *SolutionWatcher) watchLoop(ctx context.Context) {
	defer w.done.Done()
	name := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case evt, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(evt.Name) != name {
				continue
			}
			switch {
			case evt.Has(fsnotify.Write), evt.Has(fsnotify.Create), evt.Has(fsnotify.Rename):
				w.logger.Debug("Solution file change detected", logfields.Path(evt.Name), slog.String("op", evt.Op.String()))
				w.signal()
			case evt.Has(fsnotify.Remove):
				w.logger.Warn("Solution file removed", logfields.Path(evt.Name))
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Solution watcher error", logfields.Error(err))
		}
	}
}

func (w *SolutionWatcher) reloadLoop(ctx context.Context) {
	defer w.done.Done()
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	// attempt counts retries of the current change; a new change resets it.
	attempt := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-w.trigger:
			attempt = 0
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)
		case <-timer.C:
			_, err := w.target.Reload()
			if err == nil {
				attempt = 0
				continue
			}
			if attempt < w.policy.MaxRetries {
				attempt++
				delay := w.policy.Delay(attempt)
				w.logger.Warn("Solution reload failed, retrying",
					logfields.Solution(w.path), logfields.Error(err),
					slog.Int("attempt", attempt), slog.Duration("delay", delay))
				timer.Reset(delay)
				continue
			}
			w.logger.Error("Failed to reload solution", logfields.Solution(w.path), logfields.Error(err),
				slog.Int("retries", attempt))
			attempt = 0
		}
	}
}

func (w *SolutionWatcher) signal() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}
