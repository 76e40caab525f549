package build

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/solvent/internal/buildevent"
	"git.home.luguber.info/inful/solvent/internal/events"
	ferrors "git.home.luguber.info/inful/solvent/internal/foundation/errors"
	"git.home.luguber.info/inful/solvent/internal/logfields"
	"git.home.luguber.info/inful/solvent/internal/metrics"
	"git.home.luguber.info/inful/solvent/internal/solution"
)

const publishTimeout = 2 * time.Second

// SolutionProvider hands out the currently loaded solution.
type SolutionProvider interface {
	Current() *solution.Solution
}

// Config configures an Orchestrator.
type Config struct {
	Tool ToolConfig
	// StopGrace bounds how long output pipes may stay open after the tool
	// exited or was asked to stop.
	StopGrace time.Duration
	// ReadBuffer is the per stream line buffer size in bytes.
	ReadBuffer int
}

// Orchestrator owns the build tool process and the event stream of the
// current session. All methods are safe for concurrent use.
type Orchestrator struct {
	solutions SolutionProvider
	cfg       Config
	logger    *slog.Logger
	recorder  metrics.Recorder
	bus       *events.Bus

	mu      sync.Mutex
	state   State
	session *Session
	notify  chan struct{}
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRecorder injects a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithBus publishes state changes and queue notifications on b.
func WithBus(b *events.Bus) Option {
	return func(o *Orchestrator) { o.bus = b }
}

// NewOrchestrator creates an idle orchestrator.
func NewOrchestrator(solutions SolutionProvider, cfg Config, opts ...Option) *Orchestrator {
	if cfg.Tool.Path == "" {
		cfg.Tool.Path = "msbuild"
	}
	if cfg.StopGrace <= 0 {
		cfg.StopGrace = 5 * time.Second
	}
	o := &Orchestrator{
		solutions: solutions,
		cfg:       cfg,
		logger:    slog.Default(),
		recorder:  metrics.NoopRecorder{},
		state:     StateIdle,
		notify:    make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Build runs the build target.
func (o *Orchestrator) Build() error { return o.Execute(TargetBuild) }

// Clean runs the clean target.
func (o *Orchestrator) Clean() error { return o.Execute(TargetClean) }

// Execute starts a new session for target, stopping any running one. The
// argument vector is captured now; later selection changes do not affect the
// session. A spawn failure leaves the orchestrator Failed and is returned.
func (o *Orchestrator) Execute(target string) error {
	if target == "" {
		return ferrors.ValidationError("build target is required").Build()
	}
	sln := o.solutions.Current()
	if sln == nil {
		return ferrors.ValidationError("no solution loaded").Build()
	}

	configuration, platform := sln.Matrix.Selection()
	req := Request{Solution: sln.Path, Target: target, Configuration: configuration, Platform: platform}
	s := newSession(uuid.NewString(), req, o.cfg.Tool.Arguments(req))
	logger := o.logger.With(logfields.SessionID(s.ID), logfields.Target(target))

	o.mu.Lock()
	var transitions []events.BuildStateChanged
	if prev := o.session; prev != nil && o.state == StateRunning {
		prev.stopRequested = true
		prev.cancel()
		logger.Info("Stopping previous build session", slog.String("previous", prev.ID))
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	cmd := exec.CommandContext(ctx, o.cfg.Tool.Path, s.Args...) // #nosec G204 -- tool path comes from local configuration
	cmd.Dir = sln.Dir
	cmd.WaitDelay = o.cfg.StopGrace
	configureProcess(cmd)

	stdoutR, stdoutW := io.Pipe()
	stderrR, stderrW := io.Pipe()
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW
	s.cmd = cmd

	from := o.state
	o.session = s
	s.startedAt = time.Now()

	if err := cmd.Start(); err != nil {
		cancel()
		_ = stdoutW.Close()
		_ = stderrW.Close()
		s.err = ferrors.WrapError(err, ferrors.CategorySpawn, "build tool could not be started").
			WithContext("tool", o.cfg.Tool.Path).
			Build()
		s.endedAt = s.startedAt
		s.exitCode = -1
		s.state = StateFailed
		o.state = StateFailed
		close(s.done)
		transitions = append(transitions, o.transition(s, from, StateFailed))
		o.mu.Unlock()

		o.recorder.IncSpawnFailure()
		o.recorder.IncBuildOutcome(metrics.OutcomeFailed)
		logger.Error("Build tool could not be started", slog.String("tool", o.cfg.Tool.Path), logfields.Error(err))
		o.publish(transitions)
		return s.err
	}

	s.state = StateRunning
	o.state = StateRunning
	transitions = append(transitions, o.transition(s, from, StateRunning))
	o.mu.Unlock()

	o.recorder.SetBuildRunning(true)
	logger.Info("Build started",
		logfields.Configuration(configuration), logfields.Platform(platform),
		slog.Int("pid", cmd.Process.Pid))
	o.publish(transitions)

	var readers sync.WaitGroup
	readers.Add(2)
	go o.drain(&readers, s, buildevent.StreamStdout, stdoutR, logger)
	go o.drain(&readers, s, buildevent.StreamStderr, stderrR, logger)
	go o.monitor(s, &readers, stdoutW, stderrW, logger)
	return nil
}

// drain runs one reassembler until its stream ends.
func (o *Orchestrator) drain(wg *sync.WaitGroup, s *Session, stream buildevent.Stream, r *io.PipeReader, logger *slog.Logger) {
	defer wg.Done()
	sink := func(e buildevent.Event) {
		s.events.Push(e)
		o.recorder.IncEvent(e.Type().String(), stream.String())
		o.signal()
	}
	ra := buildevent.NewReassembler(stream, sink,
		buildevent.WithLogger(logger),
		buildevent.WithReadBufferSize(o.cfg.ReadBuffer),
		buildevent.WithDecodeErrorHook(func(error) { o.recorder.IncDecodeFallback(stream.String()) }))
	if err := ra.Run(r); err != nil {
		logger.Warn("Build output stream ended with error", logfields.Stream(stream.String()), logfields.Error(err))
	}
	_ = r.Close()
}

// monitor waits for the exit status and both streams, then settles the
// session's final state.
func (o *Orchestrator) monitor(s *Session, readers *sync.WaitGroup, stdoutW, stderrW *io.PipeWriter, logger *slog.Logger) {
	waitErr := s.cmd.Wait()
	_ = stdoutW.Close()
	_ = stderrW.Close()
	readers.Wait()
	s.cancel()

	o.mu.Lock()
	s.endedAt = time.Now()
	final, exitCode, err := classifyExit(s, waitErr)
	s.state, s.exitCode, s.err = final, exitCode, err
	close(s.done)

	var transitions []events.BuildStateChanged
	current := o.session == s
	if current {
		from := o.state
		o.state = final
		transitions = append(transitions, o.transition(s, from, final))
	}
	o.mu.Unlock()

	duration := s.endedAt.Sub(s.startedAt)
	o.recorder.ObserveBuildDuration(s.Request.Target, duration)
	o.recorder.IncBuildOutcome(outcomeFor(final))
	if current {
		o.recorder.SetBuildRunning(false)
	}

	attrs := []any{
		logfields.State(string(final)),
		logfields.ExitCode(exitCode),
		logfields.DurationMS(float64(duration.Milliseconds())),
		logfields.Count(int(s.events.Pushed())),
	}
	switch final {
	case StateFailed:
		logger.Warn("Build failed", append(attrs, logfields.Error(err))...)
	default:
		logger.Info("Build finished", attrs...)
	}

	o.signal()
	o.publish(transitions)
}

func classifyExit(s *Session, waitErr error) (State, int, error) {
	if stderrors.Is(waitErr, exec.ErrWaitDelay) {
		waitErr = nil
	}
	if s.stopRequested {
		code := 0
		if s.cmd.ProcessState != nil {
			code = s.cmd.ProcessState.ExitCode()
		}
		return StateStopped, code, nil
	}
	if waitErr == nil {
		return StateCompleted, 0, nil
	}
	code := -1
	var exitErr *exec.ExitError
	if stderrors.As(waitErr, &exitErr) {
		code = exitErr.ExitCode()
	}
	return StateFailed, code, ferrors.WrapError(waitErr, ferrors.CategoryProcess, "build tool exited unsuccessfully").
		WithContext("exit_code", code).
		WithContext("target", s.Request.Target).
		Build()
}

func outcomeFor(s State) metrics.OutcomeLabel {
	switch s {
	case StateCompleted:
		return metrics.OutcomeCompleted
	case StateStopped:
		return metrics.OutcomeStopped
	default:
		return metrics.OutcomeFailed
	}
}

// Stop asks the running build tool to terminate. It does nothing unless a
// session is running and does not wait for the process to exit.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateRunning || o.session == nil {
		return
	}
	o.session.stopRequested = true
	o.session.cancel()
	o.logger.Info("Build stop requested", logfields.SessionID(o.session.ID))
}

// PollEvents drains every event queued for the current session without
// waiting. It returns an empty slice when nothing is queued.
func (o *Orchestrator) PollEvents() []buildevent.Event {
	_, evts := o.PollBatch()
	return evts
}

// PollBatch is PollEvents that also reports which session the drained events
// belong to. The id is empty before the first build.
func (o *Orchestrator) PollBatch() (string, []buildevent.Event) {
	o.mu.Lock()
	s := o.session
	o.mu.Unlock()
	if s == nil {
		return "", []buildevent.Event{}
	}
	return s.ID, s.events.Drain()
}

// Acknowledge returns a finished orchestrator to Idle. It reports whether a
// transition happened.
func (o *Orchestrator) Acknowledge() bool {
	o.mu.Lock()
	if !o.state.IsTerminal() {
		o.mu.Unlock()
		return false
	}
	transition := o.transition(o.session, o.state, StateIdle)
	o.state = StateIdle
	o.mu.Unlock()

	o.publish([]events.BuildStateChanged{transition})
	return true
}

// State returns the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Status returns a snapshot of the orchestrator and its current session.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	st := Status{State: o.state}
	s := o.session
	if s == nil {
		return st
	}
	st.SessionID = s.ID
	st.Target = s.Request.Target
	st.Configuration = s.Request.Configuration
	st.Platform = s.Request.Platform
	st.Args = append([]string(nil), s.Args...)
	st.StartedAt = s.startedAt
	st.EndedAt = s.endedAt
	st.ExitCode = s.exitCode
	st.err = s.err
	if s.err != nil {
		st.Error = s.err.Error()
	}
	st.Pending = s.events.Len()
	st.Emitted = s.events.Pushed()
	return st
}

// Notify ticks when events are queued or a session finishes. Ticks coalesce;
// consumers should PollEvents after each one.
func (o *Orchestrator) Notify() <-chan struct{} {
	return o.notify
}

// Wait blocks until the current session has finished or ctx is done.
func (o *Orchestrator) Wait(ctx context.Context) (Status, error) {
	o.mu.Lock()
	s := o.session
	o.mu.Unlock()
	if s == nil {
		return o.Status(), nil
	}
	select {
	case <-s.done:
		return o.Status(), nil
	case <-ctx.Done():
		return o.Status(), ferrors.WrapError(ctx.Err(), ferrors.CategoryRuntime, "wait for build canceled").Build()
	}
}

func (o *Orchestrator) signal() {
	select {
	case o.notify <- struct{}{}:
	default:
	}
}

// transition builds the notification for a state change. Callers hold o.mu.
func (o *Orchestrator) transition(s *Session, from, to State) events.BuildStateChanged {
	evt := events.BuildStateChanged{From: string(from), To: string(to), At: time.Now()}
	if s != nil {
		evt.SessionID = s.ID
		evt.Target = s.Request.Target
		evt.ExitCode = s.exitCode
		if s.err != nil {
			evt.Error = s.err.Error()
		}
	}
	return evt
}

func (o *Orchestrator) publish(transitions []events.BuildStateChanged) {
	if o.bus == nil {
		return
	}
	for _, evt := range transitions {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		if err := o.bus.Publish(ctx, evt); err != nil {
			o.logger.Debug("State change not delivered", logfields.State(evt.To), logfields.Error(err))
		}
		cancel()
	}
}
