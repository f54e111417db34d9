package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
	// GitCommit and BuildDate are optional
	_ = GitCommit
	_ = BuildDate
}

func TestPretty(t *testing.T) {
	origVersion, origNoColor := Version, color.NoColor
	defer func() { Version, color.NoColor = origVersion, origNoColor }()
	color.NoColor = true

	cases := map[string]string{
		"0.1.0-dev":   "0.1.0-dev",
		"1.2.3":       "1.2.3",
		"2.0.0-rc.1":  "2.0.0-rc.1",
		"nightly":     "nightly",
		"  ":          "dev",
		"1.2":         "1.2",
		"1.2.3-a-b":   "1.2.3-a-b",
	}
	for in, want := range cases {
		Version = in
		if got := Pretty(); got != want {
			t.Errorf("Pretty() with %q = %q, want %q", in, got, want)
		}
	}
}

func TestPrettyColorsComponents(t *testing.T) {
	origVersion, origNoColor := Version, color.NoColor
	defer func() { Version, color.NoColor = origVersion, origNoColor }()
	color.NoColor = false
	Version = "1.2.3"

	if got := Pretty(); got == "1.2.3" {
		t.Fatalf("expected escape sequences, got %q", got)
	}
}
