// Package pathutil holds the path containment checks shared by template
// enumeration and project materialization.
package pathutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Within reports whether path is root or lies below it. Both must be clean
// and absolute (or both relative to the same directory).
func Within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

// maxLinks bounds symlink expansion, matching the kernel's ELOOP limit.
const maxLinks = 40

// ResolveExisting returns where path would actually land on disk. Symlinks
// are followed component by component, dangling ones included, and the
// first missing component ends resolution; the rest is appended as is.
// Callers use it to check where a file that does not exist yet would be
// created.
func ResolveExisting(path string) (string, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	vol := filepath.VolumeName(path)
	resolved := vol + string(filepath.Separator)
	pending := splitPath(path[len(vol):])
	links := 0

	for len(pending) > 0 {
		name := pending[0]
		pending = pending[1:]
		switch name {
		case ".":
			continue
		case "..":
			resolved = filepath.Dir(resolved)
			continue
		}

		next := filepath.Join(resolved, name)
		info, err := os.Lstat(next)
		if errors.Is(err, fs.ErrNotExist) {
			return filepath.Join(append([]string{next}, pending...)...), nil
		}
		if err != nil {
			return "", err
		}
		if info.Mode()&fs.ModeSymlink == 0 {
			resolved = next
			continue
		}

		links++
		if links > maxLinks {
			return "", fmt.Errorf("too many symbolic links resolving %s", path)
		}
		dest, err := os.Readlink(next)
		if err != nil {
			return "", err
		}
		if filepath.IsAbs(dest) {
			v := filepath.VolumeName(dest)
			resolved = v + string(filepath.Separator)
			dest = dest[len(v):]
		}
		pending = append(splitPath(dest), pending...)
	}
	return resolved, nil
}

func splitPath(p string) []string {
	return strings.FieldsFunc(p, func(r rune) bool {
		return r == '/' || r == filepath.Separator
	})
}
