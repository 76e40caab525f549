package commands

import (
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/solvent/internal/metrics"
)

// TreeCmd implements the 'tree' command.
type TreeCmd struct {
	SolutionFlags
}

func (t *TreeCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	ws, err := openWorkspace(cfg, t.SolutionFlags, metrics.NoopRecorder{})
	if err != nil {
		return err
	}
	defer ws.Close()

	sln := ws.Current()
	if err := sln.RenderTree(g.out()); err != nil {
		return err
	}
	for _, d := range sln.Diagnostics {
		slog.Warn(d.Message(), slog.Any("details", map[string]any(d.Context())))
	}
	return nil
}

// FilesCmd implements the 'files' command.
type FilesCmd struct {
	SolutionFlags
	Open string `help:"Print the absolute path of one file id (project:file) and exit" placeholder:"P:F"`
}

func (f *FilesCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	ws, err := openWorkspace(cfg, f.SolutionFlags, metrics.NoopRecorder{})
	if err != nil {
		return err
	}
	defer ws.Close()
	sln := ws.Current()

	if f.Open != "" {
		var pi, fi int
		if _, err := fmt.Sscanf(f.Open, "%d:%d", &pi, &fi); err != nil {
			return invalidFileID(f.Open)
		}
		path, ok := sln.LookupFile(pi, fi)
		if !ok {
			return invalidFileID(f.Open)
		}
		_, _ = fmt.Fprintln(g.out(), path)
		return nil
	}

	for _, ref := range sln.FileIndex() {
		_, _ = fmt.Fprintf(g.out(), "%d:%d\t%s\t%s\n", ref.ProjectIndex, ref.FileIndex, ref.Project, ref.Path)
	}
	return nil
}
