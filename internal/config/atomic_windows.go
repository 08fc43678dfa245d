//go:build windows

package config

import (
	"os"
	"path/filepath"
)

// writeFileAtomic writes a temp file next to filename and renames it over the
// target. renameio does not build on Windows; os.Rename maps to MoveFileEx
// with MOVEFILE_REPLACE_EXISTING, which never leaves a half-written file but
// is not guaranteed durable across a crash.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(filename), filepath.Base(filename)+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}
	return os.Rename(tmpName, filename)
}
