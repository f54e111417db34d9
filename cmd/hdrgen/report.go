package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"

	"hdrgen/internal/diag"
	"hdrgen/internal/observ"
)

var (
	errorLabel = color.New(color.FgRed, color.Bold)
	hintLabel  = color.New(color.FgCyan)
	noteLabel  = color.New(color.FgYellow)
	okLabel    = color.New(color.FgGreen)
)

func colorMode(flag string, f *os.File) (bool, error) {
	switch strings.ToLower(flag) {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto", "":
		return isTerminal(f), nil
	default:
		return false, errors.Newf("invalid --color value %q (must be auto, on or off)", flag)
	}
}

// printError renders err with its diagnostic code and any hints.
func printError(w io.Writer, err error) {
	var de *diag.Error
	if errors.As(err, &de) {
		fmt.Fprintf(w, "%s %s\n", errorLabel.Sprintf("error[%s]:", de.Code.ID()), err.Error())
		fmt.Fprintf(w, "  %s %s\n", noteLabel.Sprint("note:"), de.Code.Title())
	} else {
		fmt.Fprintf(w, "%s %s\n", errorLabel.Sprint("error:"), err.Error())
	}
	for _, hint := range errors.GetAllHints(err) {
		fmt.Fprintf(w, "  %s %s\n", hintLabel.Sprint("hint:"), hint)
	}
}

func printTimings(w io.Writer, label string, report observ.Report) {
	if len(report.Phases) == 0 {
		return
	}
	fmt.Fprintf(w, "%s %.2f ms\n", noteLabel.Sprint(label), report.TotalMS)
	for _, p := range report.Phases {
		fmt.Fprintf(w, "  %-8s %7.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			fmt.Fprintf(w, "  // %s", p.Note)
		}
		fmt.Fprintln(w)
	}
}
