package workspace

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"git.home.luguber.info/inful/solvent/internal/build"
	"git.home.luguber.info/inful/solvent/internal/events"
	ferrors "git.home.luguber.info/inful/solvent/internal/foundation/errors"
	"git.home.luguber.info/inful/solvent/internal/logfields"
	"git.home.luguber.info/inful/solvent/internal/metrics"
	"git.home.luguber.info/inful/solvent/internal/solution"
)

const publishTimeout = 2 * time.Second

// Selection is an initial configuration/platform choice. Empty fields keep
// the solution's first value.
type Selection struct {
	Configuration string
	Platform      string
}

// Workspace is the context shared by every front end: the loaded solution,
// the build orchestrator, the notification bus and the metrics recorder.
type Workspace struct {
	path      string
	logger    *slog.Logger
	recorder  metrics.Recorder
	bus       *events.Bus
	selection Selection
	buildCfg  build.Config

	current      atomic.Pointer[solution.Solution]
	reloadMu     sync.Mutex
	orchestrator *build.Orchestrator
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Workspace) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithRecorder injects a metrics recorder shared with the orchestrator.
func WithRecorder(r metrics.Recorder) Option {
	return func(w *Workspace) {
		if r != nil {
			w.recorder = r
		}
	}
}

// WithBus sets the notification bus. A bus is created when none is given.
func WithBus(b *events.Bus) Option {
	return func(w *Workspace) { w.bus = b }
}

// WithSelection sets the selection applied to the first loaded solution.
func WithSelection(sel Selection) Option {
	return func(w *Workspace) { w.selection = sel }
}

// WithBuildConfig configures the orchestrator.
func WithBuildConfig(cfg build.Config) Option {
	return func(w *Workspace) { w.buildCfg = cfg }
}

// New creates a workspace for the solution at path. Nothing is loaded until
// Reload is called.
func New(path string, opts ...Option) *Workspace {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	w := &Workspace{
		path:     path,
		logger:   slog.Default(),
		recorder: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.bus == nil {
		w.bus = events.NewBus()
	}
	w.orchestrator = build.NewOrchestrator(w, w.buildCfg,
		build.WithLogger(w.logger),
		build.WithRecorder(w.recorder),
		build.WithBus(w.bus))
	return w
}

// Open loads the solution for the first time.
func Open(path string, opts ...Option) (*Workspace, error) {
	w := New(path, opts...)
	if _, err := w.Reload(); err != nil {
		return nil, err
	}
	return w, nil
}

// Path returns the absolute solution path.
func (w *Workspace) Path() string { return w.path }

// Current returns the loaded solution, or nil before the first successful
// Reload.
func (w *Workspace) Current() *solution.Solution { return w.current.Load() }

// Orchestrator returns the build orchestrator bound to this workspace.
func (w *Workspace) Orchestrator() *build.Orchestrator { return w.orchestrator }

// Bus returns the notification bus.
func (w *Workspace) Bus() *events.Bus { return w.bus }

// Recorder returns the metrics recorder.
func (w *Workspace) Recorder() metrics.Recorder { return w.recorder }

// Reload re-parses the solution file and swaps it in. The previous
// selection carries over when its values still exist. On error the
// previously loaded solution stays current. A running build keeps the
// arguments it was started with.
func (w *Workspace) Reload() (*solution.Solution, error) {
	w.reloadMu.Lock()
	defer w.reloadMu.Unlock()

	start := time.Now()
	sln, err := solution.Load(w.path, solution.WithLogger(w.logger))
	if err != nil {
		w.logger.Error("Solution load failed", logfields.Solution(w.path), logfields.Error(err))
		return nil, err
	}
	elapsed := time.Since(start)

	prev := w.current.Load()
	if prev != nil {
		cfg, plat := prev.Matrix.Selection()
		w.applySelection(sln, Selection{Configuration: cfg, Platform: plat})
	} else {
		w.applySelection(sln, w.selection)
	}
	w.current.Store(sln)

	w.recorder.ObserveSolutionLoad(elapsed, len(sln.Projects), len(sln.Diagnostics))
	for _, d := range sln.Diagnostics {
		w.logger.Warn("Solution diagnostic",
			slog.String("category", string(d.Category())),
			logfields.Error(d))
	}
	w.logger.Info("Solution loaded",
		logfields.Solution(sln.FileName()),
		logfields.Count(len(sln.Projects)),
		slog.Int("diagnostics", len(sln.Diagnostics)),
		logfields.DurationMS(float64(elapsed.Milliseconds())))

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := w.bus.Publish(ctx, events.SolutionReloaded{
		Path:        sln.Path,
		Projects:    len(sln.Projects),
		Diagnostics: len(sln.Diagnostics),
		At:          time.Now(),
	}); err != nil {
		w.logger.Debug("Reload notification not delivered", logfields.Error(err))
	}
	return sln, nil
}

func (w *Workspace) applySelection(sln *solution.Solution, sel Selection) {
	pick := func(axis solution.Axis, value string) {
		if value == "" {
			return
		}
		if err := sln.Matrix.Select(axis, value); err != nil {
			w.logger.Warn("Ignoring unknown selection",
				slog.String("axis", string(axis)), slog.String("value", value))
		}
	}
	pick(solution.AxisConfiguration, sel.Configuration)
	pick(solution.AxisPlatform, sel.Platform)
}

// Select changes the selection of the current solution.
func (w *Workspace) Select(axis solution.Axis, value string) error {
	sln := w.Current()
	if sln == nil {
		return ferrors.ValidationError("no solution loaded").Build()
	}
	return sln.Matrix.Select(axis, value)
}

// Close stops any running build and shuts the bus down.
func (w *Workspace) Close() {
	w.orchestrator.Stop()
	w.bus.Close()
}
