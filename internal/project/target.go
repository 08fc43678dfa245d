// Package project materializes templates into project directories.
//
// Materialization runs in two phases. Planning inspects the destination and
// fails on DirectoryNotEmpty, FileConflict or SymlinkEscape before anything
// is written. Writing then attempts every file; failures are collected into a
// PartialFailure report instead of stopping early, and nothing is rolled back.
package project

import (
	"fmt"
	"path/filepath"
	"strings"

	perrors "github.com/procon-dev/procon/internal/errors"
)

// Target is the destination of one materialization.
type Target struct {
	// Dir is the absolute project directory.
	Dir string

	// Name is substituted for the project name placeholder.
	Name string
}

// NewTarget builds a Target for dir. The project name defaults to the last
// path segment of dir when name is empty.
func NewTarget(dir, name string) (Target, error) {
	if dir == "" {
		return Target{}, perrors.InvalidInput("project directory is empty")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Target{}, perrors.InternalError("failed to resolve project directory", err)
	}
	if name == "" {
		name = filepath.Base(abs)
	}
	if err := ValidateName(name); err != nil {
		return Target{}, err
	}
	return Target{Dir: abs, Name: name}, nil
}

// ValidateName rejects project names that are not a single path segment.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return perrors.InvalidInput("project name is empty")
	case name == ".", name == "..":
		return perrors.InvalidInput(fmt.Sprintf("invalid project name %q", name))
	case strings.ContainsAny(name, `/\`), name == string(filepath.Separator):
		return perrors.InvalidInput(fmt.Sprintf("project name %q must not contain path separators", name)).
			WithSuggestion("use --path to choose the parent directory")
	}
	return nil
}
