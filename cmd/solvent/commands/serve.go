package commands

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/solvent/internal/config"
	"git.home.luguber.info/inful/solvent/internal/forward"
	"git.home.luguber.info/inful/solvent/internal/logfields"
	"git.home.luguber.info/inful/solvent/internal/metrics"
	"git.home.luguber.info/inful/solvent/internal/retry"
	"git.home.luguber.info/inful/solvent/internal/schedule"
	"git.home.luguber.info/inful/solvent/internal/server/httpserver"
	"git.home.luguber.info/inful/solvent/internal/watcher"
	"git.home.luguber.info/inful/solvent/internal/workspace"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	SolutionFlags
	Addr    string `help:"Listen address (overrides server.addr)"`
	NoWatch bool   `name:"no-watch" help:"Do not reload the solution when it changes"`
}

func (s *ServeCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if s.Addr != "" {
		cfg.Server.Addr = s.Addr
	}
	if s.NoWatch {
		cfg.Watch.Enabled = false
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return RunServe(ctx, cfg, s.SolutionFlags)
}

// RunServe starts every serve mode component and blocks until ctx is done.
func RunServe(ctx context.Context, cfg *config.Config, flags SolutionFlags) error {
	var recorder metrics.Recorder = metrics.NoopRecorder{}
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		reg := prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(reg)
		metricsHandler = metrics.HTTPHandler(reg)
	}

	ws, err := openWorkspace(cfg, flags, recorder)
	if err != nil {
		return err
	}
	defer ws.Close()
	orch := ws.Orchestrator()

	backlog := forward.NewBacklog(0)
	sinks := []forward.EventSink{backlog}
	fwd, err := connectForwarder(cfg.Forward)
	if err != nil {
		return err
	}
	if fwd != nil {
		defer fwd.Close()
		sinks = append(sinks, fwd)
		go fwd.Run(ctx, ws.Bus())
	}
	pumpDone := make(chan struct{})
	go func() {
		forward.NewPump(orch, slog.Default(), sinks...).Run(ctx)
		close(pumpDone)
	}()

	if cfg.Watch.Enabled {
		w, werr := watcher.New(ws,
			watcher.WithDebounce(cfg.Watch.DebounceDuration()),
			watcher.WithRetry(retry.FromConfig(cfg.Watch.Retry)),
			watcher.WithLogger(slog.Default()))
		if werr != nil {
			return werr
		}
		if werr := w.Start(ctx); werr != nil {
			return werr
		}
		defer w.Stop()
	}

	sched, err := startSchedule(cfg.Schedule, ws)
	if err != nil {
		return err
	}
	if sched != nil {
		defer func() {
			if serr := sched.Stop(); serr != nil {
				slog.Warn("Scheduler shutdown failed", logfields.Error(serr))
			}
		}()
	}

	srv := httpserver.New(httpserver.Options{
		Addr:         cfg.Server.Addr,
		Orchestrator: orch,
		Workspace:    ws,
		Events:       backlog,
		Metrics:      metricsHandler,
		Logger:       slog.Default(),
	})
	if err := srv.Start(ctx); err != nil {
		return err
	}
	slog.Info("Serving solution", logfields.Solution(ws.Path()), slog.String("addr", srv.Addr()))

	<-ctx.Done()
	slog.Info("Shutdown signal received, stopping")

	orch.Stop()
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	if _, err := orch.Wait(stopCtx); err != nil {
		slog.Warn("Build did not stop in time", logfields.Error(err))
	}
	<-pumpDone
	return srv.Stop(stopCtx)
}

func startSchedule(sc config.ScheduleConfig, ws *workspace.Workspace) (*schedule.Scheduler, error) {
	if sc.Every == "" && sc.Cron == "" {
		return nil, nil
	}
	s, err := schedule.New(schedule.WithLogger(slog.Default()))
	if err != nil {
		return nil, err
	}
	task := s.BuildTask(ws.Orchestrator(), sc.Target)
	if d := sc.EveryDuration(); d > 0 {
		if _, err := s.ScheduleEvery(fmt.Sprintf("every-%s-%s", sc.Every, sc.Target), d, task); err != nil {
			return nil, err
		}
	}
	if sc.Cron != "" {
		if _, err := s.ScheduleCron("cron-"+sc.Target, sc.Cron, task); err != nil {
			return nil, err
		}
	}
	s.Start()
	return s, nil
}
