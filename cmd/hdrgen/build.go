package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"hdrgen/internal/config"
	"hdrgen/internal/driver"
)

const noManifestMessage = "no hdrgen.toml found"

var buildCmd = &cobra.Command{
	Use:   "build [flags] [manifest]",
	Short: "Generate every header listed in hdrgen.toml",
	Long:  "Generate every [[header]] of an hdrgen.toml manifest in parallel. Without an argument the manifest is searched upwards from the current directory.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  buildExecution,
}

func init() {
	buildCmd.Flags().IntP("jobs", "j", 0, "parallel runs (default: [defaults].jobs or one per CPU)")
	buildCmd.Flags().Bool("no-cache", false, "always regenerate, ignoring the header cache")
	buildCmd.Flags().Bool("clear-cache", false, "drop the header cache before building")
}

func buildExecution(cmd *cobra.Command, args []string) error {
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return err
	}
	clearCache, err := cmd.Flags().GetBool("clear-cache")
	if err != nil {
		return err
	}
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}

	path, err := manifestPath(args)
	if err != nil {
		return err
	}
	m, err := config.LoadManifest(path)
	if err != nil {
		return err
	}

	var cache *driver.HeaderCache
	if !noCache {
		if cache, err = driver.OpenHeaderCache("hdrgen"); err != nil {
			return err
		}
		if clearCache {
			if err := cache.DropAll(); err != nil {
				return err
			}
		}
	}

	outcomes, err := driver.BuildAll(cmd.Context(), m, driver.BatchOptions{Jobs: jobs, Cache: cache})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, o := range outcomes {
		rel, relErr := filepath.Rel(m.Root, o.Header.Output)
		if relErr != nil {
			rel = o.Header.Output
		}
		status := "generated"
		switch {
		case o.Cached:
			status = "cached"
		case !o.Written:
			status = "unchanged"
		}
		fmt.Fprintf(out, "%s %s (%d declarations, %d forward)\n",
			okLabel.Sprintf("%-9s", status), rel, o.Result.Declarations, o.Result.Forwards)
		if timings {
			printTimings(os.Stderr, rel, o.Result.Timing)
		}
	}
	return nil
}

func manifestPath(args []string) (string, error) {
	if len(args) == 1 {
		info, err := os.Stat(args[0])
		if err != nil {
			return "", errors.Wrap(err, "manifest")
		}
		if !info.IsDir() {
			return args[0], nil
		}
		path := filepath.Join(args[0], config.ManifestName)
		if _, err := os.Stat(path); err != nil {
			return "", errors.WithHint(errors.Newf("%s in %s", noManifestMessage, args[0]),
				"pass the manifest path explicitly")
		}
		return path, nil
	}
	path, ok, err := config.FindManifest(".")
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errors.WithHint(errors.New(noManifestMessage),
			"create one with a [[header]] table, e.g.\n  [[header]]\n  input = \"graph.json\"\n  output = \"include/api.h\"")
	}
	return path, nil
}
