// Package atomicfile writes files atomically: content goes to a temporary
// file in the target directory, which is fsynced and renamed over the
// destination. A reader either sees the previous content or the new content,
// never a partial write.
package atomicfile

import (
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
)

// WriteFile writes data to path atomically with the given permissions.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	tmpName := tmp.Name()

	// On any failure below the temp file is removed; the destination is
	// only touched by the final rename.
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return errors.Wrap(err, "write temp file")
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return errors.Wrap(err, "sync temp file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "close temp file")
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "chmod temp file")
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "rename temp file")
	}

	return nil
}
