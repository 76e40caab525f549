package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/solvent/internal/build"
	"git.home.luguber.info/inful/solvent/internal/config"
	"git.home.luguber.info/inful/solvent/internal/metrics"
	"git.home.luguber.info/inful/solvent/internal/workspace"
)

// Global is passed to every command's Run.
type Global struct {
	Logger *slog.Logger
	// Out receives user-facing output; stdout when nil.
	Out io.Writer
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (default solvent.yaml when present)" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Tree  TreeCmd  `cmd:"" help:"Print the project forest of a solution"`
	Files FilesCmd `cmd:"" help:"List every file of every project"`
	Build BuildCmd `cmd:"" help:"Build the solution and stream build events"`
	Clean CleanCmd `cmd:"" help:"Clean the solution and stream build events"`
	Serve ServeCmd `cmd:"" help:"Run the control server with optional watching, scheduling and forwarding"`
	Init  InitCmd  `cmd:"" help:"Write an example configuration file"`
}

// AfterApply runs after flag parsing; set up logging once. The handler is
// replaced once the configuration has been read.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// loadConfig reads the configuration and applies its logging settings.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(newLogger(cfg.Log, c.Verbose))
	return cfg, nil
}

func newLogger(lc config.LogConfig, verbose bool) *slog.Logger {
	level := lc.Level.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if lc.Format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// SolutionFlags select the solution and its initial variant.
type SolutionFlags struct {
	Solution      string `arg:"" help:"Path to the .sln file" type:"path"`
	Configuration string `short:"C" help:"Solution configuration to select (overrides config)"`
	Platform      string `short:"P" help:"Solution platform to select (overrides config)"`
}

// openWorkspace loads the solution with the configured build settings.
func openWorkspace(cfg *config.Config, flags SolutionFlags, recorder metrics.Recorder) (*workspace.Workspace, error) {
	sel := workspace.Selection{Configuration: cfg.Solution.Configuration, Platform: cfg.Solution.Platform}
	if flags.Configuration != "" {
		sel.Configuration = flags.Configuration
	}
	if flags.Platform != "" {
		sel.Platform = flags.Platform
	}
	return workspace.Open(flags.Solution,
		workspace.WithLogger(slog.Default()),
		workspace.WithRecorder(recorder),
		workspace.WithSelection(sel),
		workspace.WithBuildConfig(buildConfig(cfg)))
}

func buildConfig(cfg *config.Config) build.Config {
	return build.Config{
		Tool: build.ToolConfig{
			Path:      cfg.Build.Tool,
			Logger:    cfg.Build.Logger,
			ExtraArgs: cfg.Build.ExtraArgs,
		},
		StopGrace:  cfg.Build.StopGraceDuration(),
		ReadBuffer: cfg.Build.ReadBuffer,
	}
}
