// Package fsys is the idempotent write boundary: emitted files are only
// touched when their content actually changed, so re-running generation on
// unchanged input leaves byte-identical files with unchanged mtimes.
package fsys

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/gleamtools/codecgen/errors"
)

// WriteFileIfChanged writes content to path unless the file already holds
// exactly those bytes. Returns whether a write happened. Parent
// directories are created as needed.
func WriteFileIfChanged(path string, content []byte) (bool, error) {
	existing, err := os.ReadFile(path)
	if err == nil && bytes.Equal(existing, content) {
		return false, nil
	}
	if err != nil && !os.IsNotExist(err) {
		return false, errors.Wrapf(err, "reading %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, errors.Wrapf(err, "creating directory for %s", path)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return false, errors.Wrapf(err, "writing %s", path)
	}
	return true, nil
}
