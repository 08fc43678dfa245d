package template

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	perrors "github.com/procon-dev/procon/internal/errors"
)

// BundledPrefix marks bundled locations in messages and listings.
const BundledPrefix = "bundled:"

// Resolver finds templates by name.
type Resolver struct {
	userDir string
	bundled fs.FS
}

// NewResolver creates a Resolver searching userDir first, then bundled.
// Either may be empty/nil.
func NewResolver(userDir string, bundled fs.FS) *Resolver {
	return &Resolver{userDir: userDir, bundled: bundled}
}

// UserDir returns the user templates directory.
func (r *Resolver) UserDir() string {
	return r.userDir
}

// Resolve locates the named template, enumerates its files and validates it.
// Resolving the same name twice without filesystem changes yields identical
// file sets.
func (r *Resolver) Resolve(name string) (*Template, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	var searched []string

	if r.userDir != "" {
		dir := filepath.Join(r.userDir, name)
		searched = append(searched, dir)
		if isDir(dir) {
			slog.Debug("resolving user template", slog.String("name", name), slog.String("dir", dir))
			files, err := enumerate(os.DirFS(dir), dir)
			if err != nil {
				return nil, err
			}
			return r.finish(&Template{Name: name, Origin: OriginUser, Location: dir, Files: files})
		}
	}

	if r.bundled != nil {
		searched = append(searched, BundledPrefix+name)
		if info, err := fs.Stat(r.bundled, name); err == nil && info.IsDir() {
			sub, err := fs.Sub(r.bundled, name)
			if err != nil {
				return nil, perrors.InternalError("failed to open bundled template", err)
			}
			slog.Debug("resolving bundled template", slog.String("name", name))
			files, err := enumerate(sub, "")
			if err != nil {
				return nil, err
			}
			return r.finish(&Template{Name: name, Origin: OriginBundled, Location: BundledPrefix + name, Files: files})
		}
	}

	return nil, perrors.TemplateNotFound(name, searched)
}

func (r *Resolver) finish(t *Template) (*Template, error) {
	if err := Validate(t); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks that every required file is part of the template.
func Validate(t *Template) error {
	for _, req := range RequiredFiles() {
		if _, ok := t.File(req); !ok {
			return perrors.MissingRequiredFile(t.Name, req)
		}
	}
	return nil
}

// ValidateName rejects names that are not a single plain path segment.
func ValidateName(name string) error {
	switch {
	case name == "":
		return perrors.InvalidInput("template name is empty")
	case strings.ContainsAny(name, `/\`), name == ".", name == "..", strings.HasPrefix(name, "."):
		return perrors.InvalidInput(fmt.Sprintf("invalid template name %q", name))
	}
	return nil
}

// Entry describes an available template.
type Entry struct {
	Name     string
	Origin   Origin
	Location string
	// Shadows is set when a user template hides a bundled one.
	Shadows bool
}

// List returns the available templates sorted by name. Templates are not
// validated; broken ones still show up so they can be fixed.
func (r *Resolver) List() ([]Entry, error) {
	byName := make(map[string]Entry)

	if r.bundled != nil {
		entries, err := fs.ReadDir(r.bundled, ".")
		if err != nil {
			return nil, perrors.InternalError("failed to list bundled templates", err)
		}
		for _, e := range entries {
			if !e.IsDir() || ValidateName(e.Name()) != nil {
				continue
			}
			byName[e.Name()] = Entry{Name: e.Name(), Origin: OriginBundled, Location: BundledPrefix + e.Name()}
		}
	}

	if r.userDir != "" {
		entries, err := os.ReadDir(r.userDir)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to list user templates: %w", err)
		}
		for _, e := range entries {
			dir := filepath.Join(r.userDir, e.Name())
			if ValidateName(e.Name()) != nil || !isDir(dir) {
				continue
			}
			_, shadows := byName[e.Name()]
			byName[e.Name()] = Entry{Name: e.Name(), Origin: OriginUser, Location: dir, Shadows: shadows}
		}
	}

	out := make([]Entry, 0, len(byName))
	for _, e := range byName {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// isDir follows symlinks, so a linked template directory counts.
func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
