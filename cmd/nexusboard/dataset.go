package main

import (
	"context"
	"fmt"
	"io"
	"os"

	dashboard "github.com/nexusboard/nexusboard/components/dashboard"
)

type datasetCmd struct {
	Export   datasetExportCmd   `cmd:"" help:"Write a dataset as YAML (the built-in sample unless --from is set)."`
	Validate datasetValidateCmd `cmd:"" help:"Check a dataset file."`
}

type datasetExportCmd struct {
	Out  string `type:"path" help:"Output file (defaults to stdout)."`
	From string `type:"path" help:"Dataset file to re-encode instead of the sample."`
}

func (c *datasetExportCmd) Run(context.Context) error {
	data := dashboard.DefaultDataset()
	if c.From != "" {
		loaded, err := dashboard.ReadDataset(c.From)
		if err != nil {
			return err
		}
		data = loaded
	}
	var out io.Writer = stdout
	if c.Out != "" {
		f, err := os.Create(c.Out)
		if err != nil {
			return fmt.Errorf("nexusboard: create %s: %w", c.Out, err)
		}
		defer f.Close()
		out = f
	}
	return dashboard.EncodeDataset(out, data)
}

type datasetValidateCmd struct {
	Path string `arg:"" type:"path" help:"Dataset file."`
}

func (c *datasetValidateCmd) Run(context.Context) error {
	data, err := dashboard.ReadDataset(c.Path)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "%s: ok (%d notifications, %d transactions, %d products)\n",
		c.Path, len(data.Notifications), len(data.Transactions), len(data.Products))
	return err
}
