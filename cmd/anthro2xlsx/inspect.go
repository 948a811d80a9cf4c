package main

import (
	"github.com/spf13/cobra"

	"github.com/sco1/anthro-tables/fixfmt"
)

func (a *app) inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file|->",
		Short: "Print the header, layout and column positions of a data file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.openOne(args[0])
			if err != nil {
				return err
			}
			return fixfmt.Dump(a.stdout, doc)
		},
	}
}
