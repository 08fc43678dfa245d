//go:build !windows

package config

import (
	"os"

	"github.com/google/renameio/v2"
)

// writeFileAtomic writes through a temp file and rename, so readers never
// observe a truncated config.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	return renameio.WriteFile(filename, data, perm)
}
