package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/solvent/internal/build"
	"git.home.luguber.info/inful/solvent/internal/buildevent"
	"git.home.luguber.info/inful/solvent/internal/config"
	"git.home.luguber.info/inful/solvent/internal/forward"
	ferrors "git.home.luguber.info/inful/solvent/internal/foundation/errors"
	"git.home.luguber.info/inful/solvent/internal/logfields"
	"git.home.luguber.info/inful/solvent/internal/metrics"
)

// OutputFlags control which events are printed.
type OutputFlags struct {
	NoErrors   bool   `name:"no-errors" help:"Hide error events"`
	NoWarnings bool   `name:"no-warnings" help:"Hide warning events"`
	NoMessages bool   `name:"no-messages" help:"Hide message events"`
	Importance string `help:"Minimum importance of messages to show (low, medium, high)" default:"high"`
}

func (o OutputFlags) filter() buildevent.Filter {
	return buildevent.Filter{
		ShowErrors:    !o.NoErrors,
		ShowWarnings:  !o.NoWarnings,
		ShowMessages:  !o.NoMessages,
		MinImportance: buildevent.ParseImportance(o.Importance),
	}
}

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	SolutionFlags
	OutputFlags
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	return runTarget(g, root, build.TargetBuild, b.SolutionFlags, b.OutputFlags)
}

// CleanCmd implements the 'clean' command.
type CleanCmd struct {
	SolutionFlags
	OutputFlags
}

func (c *CleanCmd) Run(g *Global, root *CLI) error {
	return runTarget(g, root, build.TargetClean, c.SolutionFlags, c.OutputFlags)
}

// consoleSink prints filtered events.
type consoleSink struct {
	w      io.Writer
	filter buildevent.Filter
}

func (c consoleSink) ForwardEvents(_ string, evts []buildevent.Event) error {
	for _, e := range c.filter.Apply(evts) {
		if _, err := fmt.Fprintln(c.w, e.Render()); err != nil {
			return err
		}
	}
	return nil
}

// runTarget runs one build session in the foreground. Interrupting stops the
// build tool; the exit status reflects the final state.
func runTarget(g *Global, root *CLI, target string, flags SolutionFlags, out OutputFlags) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	ws, err := openWorkspace(cfg, flags, metrics.NoopRecorder{})
	if err != nil {
		return err
	}
	defer ws.Close()

	sinks := []forward.EventSink{consoleSink{w: g.out(), filter: out.filter()}}
	if fwd, ferr := connectForwarder(cfg.Forward); ferr != nil {
		slog.Warn("Event forwarding disabled", logfields.Error(ferr))
	} else if fwd != nil {
		defer fwd.Close()
		sinks = append(sinks, fwd)
		fwdCtx, cancelFwd := context.WithCancel(context.Background())
		defer cancelFwd()
		go fwd.Run(fwdCtx, ws.Bus())
	}

	orch := ws.Orchestrator()
	pump := forward.NewPump(orch, slog.Default(), sinks...)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sln := ws.Current()
	_, _ = fmt.Fprintln(g.out(), sln.DisplayName())
	if err := orch.Execute(target); err != nil {
		return err
	}

	pumpCtx, stopPump := context.WithCancel(context.Background())
	pumpDone := make(chan struct{})
	go func() {
		pump.Run(pumpCtx)
		close(pumpDone)
	}()

	st, waitErr := orch.Wait(ctx)
	if waitErr != nil {
		slog.Info("Interrupted, stopping build", logfields.SessionID(st.SessionID))
		orch.Stop()
		st, _ = orch.Wait(context.Background())
	}
	stopPump()
	<-pumpDone

	_, _ = fmt.Fprintf(g.out(), "%s %s (exit code %d)\n", target, st.State, st.ExitCode)
	switch st.State {
	case build.StateCompleted:
		return nil
	case build.StateStopped:
		return ferrors.RuntimeError("build stopped").WithContext("target", target).Build()
	default:
		if err := st.Err(); err != nil {
			return err
		}
		return ferrors.ProcessError("build failed").WithContext("target", target).Build()
	}
}

// connectForwarder returns nil without error when forwarding is off.
func connectForwarder(fc config.ForwardConfig) (*forward.NATSForwarder, error) {
	if !fc.Enabled() {
		return nil, nil
	}
	return forward.Connect(fc.NATSURL, fc.Subject, forward.WithLogger(slog.Default()))
}
