package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ertis-research/opentwins-docsite/cmd/docsite/commands"
	derrors "github.com/ertis-research/opentwins-docsite/internal/foundation/errors"
	"github.com/ertis-research/opentwins-docsite/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Must(cli,
		kong.Name("docsite"),
		kong.Description("Typed site configuration and structural checks for the OpenTwins documentation site."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	global := &commands.Global{Logger: slog.Default()}
	if err := ctx.Run(global, cli); err != nil {
		derrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
