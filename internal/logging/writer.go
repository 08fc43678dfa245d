package logging

import (
	"fmt"
	"os"
	"path/filepath"
)

// openLogFile opens path for appending. Each procon run is short, so size is
// only checked at open: a file already at maxBytes is shifted to path.1 and
// the numbered backups move up, path.<keep> being the oldest kept.
func openLogFile(path string, maxBytes int64, keep int) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	if info, err := os.Stat(path); err == nil && info.Size() >= maxBytes {
		shiftBackups(path, keep)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// shiftBackups renames path.(i-1) to path.i from the oldest down. A failed
// rename only means fewer old logs survive.
func shiftBackups(path string, keep int) {
	for i := keep; i >= 1; i-- {
		from := path
		if i > 1 {
			from = fmt.Sprintf("%s.%d", path, i-1)
		}
		_ = os.Rename(from, fmt.Sprintf("%s.%d", path, i))
	}
}
