package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"hdrgen/internal/config"
	"hdrgen/internal/driver"
)

var generateCmd = &cobra.Command{
	Use:   "generate [flags] <graph>",
	Short: "Generate one C header from a graph file",
	Long:  "Generate one C header from a .json or .msgpack graph file. The header goes to stdout unless -o is given.",
	Args:  cobra.ExactArgs(1),
	RunE:  generateExecution,
}

func init() {
	generateCmd.Flags().StringP("output", "o", "", "write the header to this file instead of stdout")
	addOptionFlags(generateCmd.Flags())
}

// addOptionFlags registers the per-header settings shared by commands.
func addOptionFlags(fs *pflag.FlagSet) {
	def := config.Default()
	fs.String("platform", def.Platform, "target platform (portable|windows|posix)")
	fs.String("style", def.Style, "whitespace style (compact|aligned)")
	fs.String("prefix", def.NamePrefix, "emit #define <prefix><name> <name> alias macros")
	fs.String("guard", def.Guard, "include guard macro, or pragma for #pragma once")
	fs.Bool("size-asserts", def.SizeAsserts, "append _Static_assert size checks to records")
	fs.Int("pointer-width", def.PointerWidth, "pointer width in bits for size checks (32|64)")
}

// readOptionFlags applies the flags the user actually set on top of base.
func readOptionFlags(fs *pflag.FlagSet, base config.Options) (config.Options, error) {
	var ov config.Overrides
	for name, dst := range map[string]**string{
		"platform": &ov.Platform,
		"style":    &ov.Style,
		"prefix":   &ov.NamePrefix,
		"guard":    &ov.Guard,
	} {
		if !fs.Changed(name) {
			continue
		}
		v, err := fs.GetString(name)
		if err != nil {
			return base, err
		}
		*dst = &v
	}
	if fs.Changed("size-asserts") {
		v, err := fs.GetBool("size-asserts")
		if err != nil {
			return base, err
		}
		ov.SizeAsserts = &v
	}
	if fs.Changed("pointer-width") {
		v, err := fs.GetInt("pointer-width")
		if err != nil {
			return base, err
		}
		ov.PointerWidth = &v
	}
	return base.Apply(ov), nil
}

func generateExecution(cmd *cobra.Command, args []string) error {
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}
	opts, err := readOptionFlags(cmd.Flags(), config.Default())
	if err != nil {
		return err
	}

	res, err := driver.GenerateFile(cmd.Context(), args[0], opts, nil)
	if err != nil {
		return err
	}
	if output == "" {
		if _, err := cmd.OutOrStdout().Write([]byte(res.Header)); err != nil {
			return err
		}
	} else if _, err := driver.WriteAtomic(output, []byte(res.Header)); err != nil {
		return err
	}
	if timings {
		printTimings(os.Stderr, "timings:", res.Timing)
	}
	return nil
}
