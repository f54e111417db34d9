package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"hdrgen/internal/config"
	"hdrgen/internal/diag"
)

const graph = `{
  "types": [
    {"kind": "primitive", "name": "u8", "class": "uint", "width": 8},
    {"kind": "pointer", "elem": 1}
  ],
  "symbols": {
    "functions": [{"name": "fill", "params": [{"name": "buf", "type": 2}, {"name": "n", "type": 1}]}]
  }
}`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--color", "off"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestReadOptionFlagsOnlyAppliesChangedFlags(t *testing.T) {
	fs := pflag.NewFlagSet("t", pflag.ContinueOnError)
	addOptionFlags(fs)
	if err := fs.Parse([]string{"--style", "aligned", "--size-asserts"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	base := config.Default()
	base.NamePrefix = "keep_"
	got, err := readOptionFlags(fs, base)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Style != "aligned" || !got.SizeAsserts || got.NamePrefix != "keep_" || got.Platform != "portable" {
		t.Fatalf("options = %+v", got)
	}
}

func TestColorMode(t *testing.T) {
	if on, err := colorMode("on", os.Stderr); err != nil || !on {
		t.Fatalf("on: %v %v", on, err)
	}
	if on, err := colorMode("off", os.Stderr); err != nil || on {
		t.Fatalf("off: %v %v", on, err)
	}
	if _, err := colorMode("sometimes", os.Stderr); err == nil {
		t.Fatalf("expected invalid mode error")
	}
}

func TestPrintErrorShowsCodeAndHints(t *testing.T) {
	defer func(v bool) { color.NoColor = v }(color.NoColor)
	color.NoColor = true

	var buf bytes.Buffer
	err := errors.WithHint(errors.Wrap(diag.Cycle("root", []string{"a", "b", "a"}), "geo.h"), "break the cycle with a pointer")
	printError(&buf, err)
	got := buf.String()
	for _, want := range []string{"error[HDR1001]:", "a -> b -> a", "note:", "hint: break the cycle with a pointer"} {
		if !strings.Contains(got, want) {
			t.Fatalf("output lacks %q:\n%s", want, got)
		}
	}
}

func TestGenerateCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "g.json")
	if err := os.WriteFile(in, []byte(graph), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := execute(t, "generate", "--prefix", "io_", in)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for _, want := range []string{
		"extern void fill(uint8_t*const buf, const uint8_t n);",
		"#define io_fill fill",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("header lacks %q:\n%s", want, out)
		}
	}
}

func TestConvertCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "g.json")
	mid := filepath.Join(dir, "g.msgpack")
	back := filepath.Join(dir, "back.json")
	if err := os.WriteFile(in, []byte(graph), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := execute(t, "convert", in, mid); err != nil {
		t.Fatalf("to msgpack: %v", err)
	}
	if _, err := execute(t, "convert", mid, back); err != nil {
		t.Fatalf("to json: %v", err)
	}
	data, err := os.ReadFile(back)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if types, _ := doc["types"].([]any); len(types) != 2 {
		t.Fatalf("types = %v", doc["types"])
	}
}

func TestVersionJSON(t *testing.T) {
	out, err := execute(t, "version", "--format", "json", "--full")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	var payload versionPayload
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("bad json %q: %v", out, err)
	}
	if payload.Tool != "hdrgen" || payload.GitCommit == "" {
		t.Fatalf("payload = %+v", payload)
	}
}
