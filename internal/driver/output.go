package driver

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

// WriteAtomic replaces path with data through a temp file in the same
// directory, so readers never see a partial header. It reports false and
// leaves the file untouched when the content is already identical.
func WriteAtomic(path string, data []byte) (bool, error) {
	if cur, err := os.ReadFile(path); err == nil && bytes.Equal(cur, data) {
		return false, nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, errors.Wrapf(err, "create %s", dir)
	}
	f, err := os.CreateTemp(dir, ".hdrgen-*")
	if err != nil {
		return false, errors.Wrap(err, "create temp file")
	}
	tmp := f.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmp)
		}
	}()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return false, errors.Wrapf(err, "write %s", tmp)
	}
	if err := f.Chmod(0o644); err != nil {
		_ = f.Close()
		return false, errors.Wrapf(err, "chmod %s", tmp)
	}
	if err := f.Close(); err != nil {
		return false, errors.Wrapf(err, "close %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		return false, errors.Wrapf(err, "rename to %s", path)
	}
	committed = true
	return true, nil
}
