package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
)

// ManifestName is the file FindManifest looks for.
const ManifestName = "hdrgen.toml"

// Manifest describes a batch of headers to generate.
type Manifest struct {
	Path string
	Root string
	// Jobs bounds parallel runs; 0 means one per CPU.
	Jobs    int
	Headers []Header
}

// Header is one resolved manifest entry. Paths are absolute.
type Header struct {
	Input   string
	Output  string
	Options Options
}

type manifestFile struct {
	Defaults defaultsSection `toml:"defaults"`
	Header   []headerSection `toml:"header"`
}

type defaultsSection struct {
	Options
	Jobs int `toml:"jobs"`
}

type headerSection struct {
	Input  string `toml:"input"`
	Output string `toml:"output"`
	Overrides
}

// FindManifest walks up from startDir looking for hdrgen.toml.
func FindManifest(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, errors.Wrap(err, "resolve start directory")
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, errors.Wrapf(err, "stat %q", candidate)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// LoadManifest decodes and validates the manifest at path. Per-header
// settings override [defaults], which override Default().
func LoadManifest(path string) (*Manifest, error) {
	var file manifestFile
	file.Defaults.Options = Default()
	meta, err := toml.DecodeFile(path, &file)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: failed to parse TOML", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.Newf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if !meta.IsDefined("header") || len(file.Header) == 0 {
		return nil, errors.WithHint(errors.Newf("%s: missing [[header]]", path),
			"add a [[header]] table with input and output")
	}
	if file.Defaults.Jobs < 0 {
		return nil, errors.Newf("%s: [defaults].jobs must not be negative", path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(err, "resolve manifest path")
	}
	m := &Manifest{Path: abs, Root: filepath.Dir(abs), Jobs: file.Defaults.Jobs}
	outputs := make(map[string]int, len(file.Header))
	for i, h := range file.Header {
		if strings.TrimSpace(h.Input) == "" {
			return nil, errors.Newf("%s: header %d: missing input", path, i+1)
		}
		if strings.TrimSpace(h.Output) == "" {
			return nil, errors.Newf("%s: header %d: missing output", path, i+1)
		}
		opts := file.Defaults.Options.Apply(h.Overrides)
		if _, err := opts.Emit(); err != nil {
			return nil, errors.Wrapf(err, "%s: header %d", path, i+1)
		}
		out := m.resolve(h.Output)
		if prev, dup := outputs[out]; dup {
			return nil, errors.Newf("%s: headers %d and %d both write %s", path, prev, i+1, h.Output)
		}
		outputs[out] = i + 1
		m.Headers = append(m.Headers, Header{Input: m.resolve(h.Input), Output: out, Options: opts})
	}
	return m, nil
}

func (m *Manifest) resolve(p string) string {
	p = filepath.FromSlash(strings.TrimSpace(p))
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(m.Root, p)
}
