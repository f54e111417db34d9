package main

import (
	"github.com/spf13/cobra"

	"hdrgen/internal/config"
	"hdrgen/internal/driver"
	"hdrgen/internal/graphfile"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [flags] <graph>",
	Short: "Show which types get declared and in what order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := readOptionFlags(cmd.Flags(), config.Default())
		if err != nil {
			return err
		}
		eopts, err := opts.Emit()
		if err != nil {
			return err
		}
		doc, _, err := graphfile.ReadFile(args[0])
		if err != nil {
			return err
		}
		in, syms, err := graphfile.Build(doc)
		if err != nil {
			return err
		}
		ins, err := driver.Inspect(in, syms, eopts)
		if err != nil {
			return err
		}
		_, err = ins.WriteTo(cmd.OutOrStdout())
		return err
	},
}

func init() {
	addOptionFlags(inspectCmd.Flags())
}
