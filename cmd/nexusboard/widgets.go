package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	dashboard "github.com/nexusboard/nexusboard/components/dashboard"
)

type widgetsCmd struct {
	YAML bool `name:"yaml" help:"Print full definitions, schemas included, as YAML."`
}

func (c *widgetsCmd) Run(context.Context) error {
	defs := dashboard.NewRegistry().Definitions()
	if c.YAML {
		encoder := yaml.NewEncoder(stdout)
		encoder.SetIndent(2)
		if err := encoder.Encode(defs); err != nil {
			return err
		}
		return encoder.Close()
	}
	w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tNAME\tBINDINGS")
	for _, def := range defs {
		fmt.Fprintf(w, "%s\t%s\t%s\n", def.Code, def.Name, strings.Join(def.Bindings, ","))
	}
	return w.Flush()
}
