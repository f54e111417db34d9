package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hdrgen/internal/graphfile"
)

var convertCmd = &cobra.Command{
	Use:   "convert <in> <out>",
	Short: "Convert a graph file between JSON and MessagePack",
	Long:  "Convert a graph file between JSON and MessagePack. Formats are chosen by extension (.json, .msgpack, .mpk).",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, _, err := graphfile.ReadFile(args[0])
		if err != nil {
			return err
		}
		// Building validates references before anything is written.
		if _, _, err := graphfile.Build(doc); err != nil {
			return err
		}
		if err := graphfile.WriteFile(args[1], doc); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s -> %s (%d nodes)\n", okLabel.Sprint("converted"), args[0], args[1], len(doc.Types))
		return nil
	},
}
