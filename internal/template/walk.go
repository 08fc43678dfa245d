package template

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	perrors "github.com/procon-dev/procon/internal/errors"
	"github.com/procon-dev/procon/internal/pathutil"
)

// DefaultExcludes are matched against every path segment. Version control
// metadata and hidden files never reach a project.
var DefaultExcludes = []string{
	".*",
	"CVS",
	"_darcs",
	"*~",
	"*.swp",
}

// matcher decides which template paths are skipped.
type matcher struct {
	segment []string
	path    []string
}

func newMatcher(extra []string) *matcher {
	m := &matcher{segment: DefaultExcludes}
	for _, p := range extra {
		p = strings.TrimSuffix(strings.TrimPrefix(p, "/"), "/")
		if p == "" || !doublestar.ValidatePattern(p) {
			slog.Warn("ignoring invalid template exclude pattern", slog.String("pattern", p))
			continue
		}
		if strings.Contains(p, "/") {
			m.path = append(m.path, p)
		} else {
			m.segment = append(m.segment, p)
		}
	}
	return m
}

// excluded reports whether rel (slash-separated, relative to the template
// root) is skipped.
func (m *matcher) excluded(rel string) bool {
	name := path.Base(rel)
	for _, p := range m.segment {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	for _, p := range m.path {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// readIgnoreFile returns the patterns of the template's IgnoreFileName.
// Blank lines and lines starting with # are skipped.
func readIgnoreFile(fsys fs.FS) ([]string, error) {
	data, err := fs.ReadFile(fsys, IgnoreFileName)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var patterns []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns, sc.Err()
}

// enumerate reads every non-excluded file of the template rooted at fsys.
// root is the template's real directory on disk, or empty for bundled
// templates. For on-disk templates, symbolic links must stay below root.
func enumerate(fsys fs.FS, root string) ([]File, error) {
	extra, err := readIgnoreFile(fsys)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", IgnoreFileName, err)
	}
	m := newMatcher(extra)

	var realRoot string
	if root != "" {
		if realRoot, err = filepath.EvalSymlinks(root); err != nil {
			return nil, fmt.Errorf("failed to resolve template root: %w", err)
		}
	}

	var files []File
	dests := make(map[string]string)

	err = fs.WalkDir(fsys, ".", func(rel string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if m.excluded(rel) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		var mode fs.FileMode
		switch {
		case d.Type()&fs.ModeSymlink != 0:
			if root == "" {
				return nil
			}
			onDisk := filepath.Join(root, filepath.FromSlash(rel))
			target, err := filepath.EvalSymlinks(onDisk)
			if err != nil {
				return fmt.Errorf("failed to resolve symlink %s: %w", rel, err)
			}
			if !pathutil.Within(realRoot, target) {
				return perrors.SymlinkEscape(onDisk, root)
			}
			info, err := os.Stat(target)
			if err != nil {
				return err
			}
			if !info.Mode().IsRegular() {
				// Directory links are not followed; their content is
				// reachable through the real path anyway.
				slog.Debug("skipping non-regular symlink target", slog.String("path", rel))
				return nil
			}
			mode = info.Mode().Perm()
		case d.IsDir():
			return nil
		case !d.Type().IsRegular():
			return nil
		default:
			info, err := d.Info()
			if err != nil {
				return err
			}
			mode = info.Mode().Perm()
		}

		content, err := fs.ReadFile(fsys, rel)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", rel, err)
		}
		dest, templated := destFor(rel)
		if other, dup := dests[dest]; dup {
			return perrors.InvalidInput(fmt.Sprintf("%s and %s both produce %s", other, rel, dest))
		}
		dests[dest] = rel

		// Bundled files carry no meaningful permission bits
		if mode == 0 || root == "" {
			mode = 0o644
		}
		files = append(files, File{
			Path:      rel,
			Dest:      dest,
			Mode:      mode,
			Content:   content,
			Templated: templated,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
