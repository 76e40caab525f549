// Package schedule triggers builds periodically in serve mode.
package schedule

import (
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"

	"git.home.luguber.info/inful/solvent/internal/build"
	ferrors "git.home.luguber.info/inful/solvent/internal/foundation/errors"
	"git.home.luguber.info/inful/solvent/internal/logfields"
)

// Runner starts builds. *build.Orchestrator satisfies it.
type Runner interface {
	Execute(target string) error
	State() build.State
}

// Scheduler wraps a gocron scheduler.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
}

type options struct {
	logger *slog.Logger
	clock  clockwork.Clock
}

// Option configures a Scheduler.
type Option func(*options)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c clockwork.Clock) Option {
	return func(o *options) { o.clock = c }
}

// New creates a stopped scheduler.
func New(opts ...Option) (*Scheduler, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	var gopts []gocron.SchedulerOption
	if o.clock != nil {
		gopts = append(gopts, gocron.WithClock(o.clock))
	}
	s, err := gocron.NewScheduler(gopts...)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryInternal, "failed to create gocron scheduler").Build()
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return &Scheduler{scheduler: s, logger: o.logger}, nil
}

// Start begins running scheduled jobs.
func (s *Scheduler) Start() {
	s.logger.Info("Starting scheduler", logfields.Count(len(s.scheduler.Jobs())))
	s.scheduler.Start()
}

// Stop shuts the scheduler down and waits for running jobs.
func (s *Scheduler) Stop() error {
	s.logger.Info("Stopping scheduler")
	return s.scheduler.Shutdown()
}

// ScheduleEvery runs fn every interval. A run still in progress when the
// next one is due is not overlapped.
func (s *Scheduler) ScheduleEvery(name string, interval time.Duration, fn func()) (string, error) {
	if interval <= 0 {
		return "", ferrors.ValidationError("schedule interval must be positive").
			WithContext("interval", interval.String()).Build()
	}
	return s.add(name, gocron.DurationJob(interval), fn)
}

// ScheduleCron runs fn on a five field cron expression.
func (s *Scheduler) ScheduleCron(name, expr string, fn func()) (string, error) {
	return s.add(name, gocron.CronJob(expr, false), fn)
}

func (s *Scheduler) add(name string, def gocron.JobDefinition, fn func()) (string, error) {
	job, err := s.scheduler.NewJob(def,
		gocron.NewTask(fn),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryValidation, "failed to schedule job").
			WithContext("name", name).Build()
	}
	s.logger.Info("Job scheduled", logfields.ScheduleName(name), logfields.ScheduleID(job.ID().String()))
	return job.ID().String(), nil
}

// Job describes one scheduled job.
type Job struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	NextRun time.Time `json:"next_run,omitzero"`
}

// Jobs lists scheduled jobs.
func (s *Scheduler) Jobs() []Job {
	jobs := s.scheduler.Jobs()
	out := make([]Job, 0, len(jobs))
	for _, j := range jobs {
		next, _ := j.NextRun()
		out = append(out, Job{ID: j.ID().String(), Name: j.Name(), NextRun: next})
	}
	return out
}

// BuildTask returns a job body that starts target unless a build is
// already running.
func (s *Scheduler) BuildTask(r Runner, target string) func() {
	return func() {
		if r.State() == build.StateRunning {
			s.logger.Info("Scheduled build skipped, build already running", logfields.Target(target))
			return
		}
		s.logger.Info("Executing scheduled build", logfields.Target(target))
		if err := r.Execute(target); err != nil {
			s.logger.Error("Scheduled build failed to start", logfields.Target(target), logfields.Error(err))
		}
	}
}
