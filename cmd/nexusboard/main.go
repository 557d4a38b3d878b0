package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kong"
)

var (
	stdout io.Writer = os.Stdout
	now              = time.Now
)

type cli struct {
	Serve   serveCmd   `cmd:"" help:"Run the dashboard HTTP server."`
	Format  formatCmd  `cmd:"" help:"Format amounts and dates for the Indian locale."`
	Dataset datasetCmd `cmd:"" help:"Work with dashboard datasets."`
	Widgets widgetsCmd `cmd:"" help:"List the built-in widget definitions."`
}

func main() {
	ctx := kong.Parse(&cli{},
		kong.Name("nexusboard"),
		kong.Description("NexusBoard analytics dashboard and Indian-locale formatting tools."),
		kong.UsageOnError(),
	)
	err := ctx.Run(context.Background())
	ctx.FatalIfErrorf(err)
}
