package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hdrgen/internal/emit"
	"hdrgen/internal/symbols"
)

func writeManifest(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestDefaultOptions(t *testing.T) {
	got, err := Default().Emit()
	if err != nil {
		t.Fatalf("emit options: %v", err)
	}
	want := emit.Options{Platform: symbols.PlatformAny, Style: emit.StyleCompact}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestOptionValidation(t *testing.T) {
	cases := []struct {
		name string
		opts Options
	}{
		{"platform", Options{Platform: "beos"}},
		{"style", Options{Style: "fancy"}},
		{"guard", Options{Guard: "1BAD"}},
		{"guard punctuation", Options{Guard: "MY-H"}},
		{"pointer width", Options{PointerWidth: 16}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.opts.Emit(); err == nil {
				t.Fatalf("expected %+v to be rejected", tc.opts)
			}
		})
	}
}

func TestLoadManifestMergesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
[defaults]
style = "aligned"
name_prefix = "foo_"
jobs = 2

[[header]]
input = "graphs/foo.json"
output = "include/foo.h"

[[header]]
input = "graphs/foo.json"
output = "include/foo_win.h"
platform = "windows"
name_prefix = ""
guard = "FOO_WIN_H"
`)
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if m.Jobs != 2 || len(m.Headers) != 2 {
		t.Fatalf("manifest = %+v", m)
	}
	first, second := m.Headers[0], m.Headers[1]
	if first.Input != filepath.Join(m.Root, "graphs", "foo.json") {
		t.Fatalf("input = %q", first.Input)
	}
	if first.Options.Style != "aligned" || first.Options.NamePrefix != "foo_" || first.Options.Platform != "portable" {
		t.Fatalf("first options = %+v", first.Options)
	}
	if second.Options.Platform != "windows" || second.Options.NamePrefix != "" || second.Options.Guard != "FOO_WIN_H" {
		t.Fatalf("second options = %+v", second.Options)
	}
	if second.Options.Style != "aligned" {
		t.Fatalf("second should inherit style, got %q", second.Options.Style)
	}
}

func TestLoadManifestErrors(t *testing.T) {
	cases := map[string]string{
		"no headers":    "[defaults]\nstyle = \"compact\"\n",
		"missing input": "[[header]]\noutput = \"a.h\"\n",
		"bad style":     "[[header]]\ninput = \"a.json\"\noutput = \"a.h\"\nstyle = \"wide\"\n",
		"unknown key":   "[[header]]\ninput = \"a.json\"\noutput = \"a.h\"\ncolour = \"red\"\n",
		"duplicate":     "[[header]]\ninput = \"a.json\"\noutput = \"a.h\"\n[[header]]\ninput = \"b.json\"\noutput = \"./a.h\"\n",
		"bad toml":      "[[header]\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeManifest(t, t.TempDir(), body)
			if _, err := LoadManifest(path); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}

func TestUnknownKeysAreNamed(t *testing.T) {
	path := writeManifest(t, t.TempDir(), "[[header]]\ninput = \"a.json\"\noutput = \"a.h\"\ncolour = \"red\"\n")
	_, err := LoadManifest(path)
	if err == nil || !strings.Contains(err.Error(), "colour") {
		t.Fatalf("error should name the key, got %v", err)
	}
}

func TestFindManifestWalksUp(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[[header]]\ninput = \"a.json\"\noutput = \"a.h\"\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path, ok, err := FindManifest(nested)
	if err != nil || !ok {
		t.Fatalf("find: ok=%v err=%v", ok, err)
	}
	if filepath.Dir(path) != root {
		t.Fatalf("found %q", path)
	}
}
