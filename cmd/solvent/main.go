package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/solvent/cmd/solvent/commands"
	ferrors "git.home.luguber.info/inful/solvent/internal/foundation/errors"
	"git.home.luguber.info/inful/solvent/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("solvent"),
		kong.Description("Explore Visual Studio solutions and drive their builds."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)
	err := parser.Run(&commands.Global{Logger: slog.Default()}, cli)
	if err != nil {
		ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
