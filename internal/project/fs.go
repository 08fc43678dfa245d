package project

import (
	"io/fs"
	"os"
)

// FileWriter performs the mutating filesystem calls of a materialization.
// Tests substitute it to simulate failing writes.
type FileWriter interface {
	MkdirAll(path string, perm fs.FileMode) error
	WriteFile(name string, data []byte, perm fs.FileMode) error
}

// OSFileWriter writes to the real filesystem.
type OSFileWriter struct{}

// MkdirAll implements FileWriter.
func (OSFileWriter) MkdirAll(path string, perm fs.FileMode) error {
	return os.MkdirAll(path, perm)
}

// WriteFile implements FileWriter.
func (OSFileWriter) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(name, data, perm)
}
