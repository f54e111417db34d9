// Package main implements the hdrgen CLI.
package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"hdrgen/internal/logger"
	"hdrgen/internal/prof"
	"hdrgen/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "hdrgen",
	Short:         "C header generator for reflected type graphs",
	Long:          `hdrgen turns a serialized type graph and its exported symbols into a self-contained C header.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
		if err != nil {
			return err
		}
		useColor, err := colorMode(colorFlag, os.Stderr)
		if err != nil {
			return err
		}
		color.NoColor = !useColor

		jsonLogs, err := cmd.Root().PersistentFlags().GetBool("log-json")
		if err != nil {
			return err
		}
		verbosity, err := cmd.Root().PersistentFlags().GetCount("verbose")
		if err != nil {
			return err
		}
		logger.Initialize(jsonLogs, verbosity)

		flags := cmd.Root().PersistentFlags()
		cpuPath, _ := flags.GetString("cpu-profile")
		memPath, _ := flags.GetString("mem-profile")
		tracePath, _ := flags.GetString("trace")
		profiling, err = prof.Start(cpuPath, memPath, tracePath)
		return err
	},
}

// profiling is the active profile session, stopped by main.
var profiling *prof.Session

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("log-json", false, "emit logs as JSON")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().CountP("verbose", "v", "increase log verbosity (-v, -vv)")
	rootCmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to this file")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a heap profile to this file on exit")
	rootCmd.PersistentFlags().String("trace", "", "write a runtime trace to this file")
}

// main executes the root command. Errors are rendered once here and exit
// with status 1.
func main() {
	err := rootCmd.Execute()
	if stopErr := profiling.Stop(); err == nil {
		err = stopErr
	}
	logger.Sync()
	if err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
