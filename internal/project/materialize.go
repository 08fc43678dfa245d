package project

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	perrors "github.com/procon-dev/procon/internal/errors"
	"github.com/procon-dev/procon/internal/pathutil"
	"github.com/procon-dev/procon/internal/template"
)

// DirPerm is used for every directory the materializer creates.
const DirPerm fs.FileMode = 0o755

// Options control one materialization.
type Options struct {
	// AllowNonEmpty permits an existing directory with other content (init).
	AllowNonEmpty bool

	// Overwrite replaces template-owned files that already exist.
	Overwrite bool

	// Vars are the placeholder values. An empty ProjectName is filled from
	// the target.
	Vars Vars
}

// Result describes a completed (or partially completed) materialization.
type Result struct {
	Dir      string
	Name     string
	Template string

	// CreatedDir is set when the project directory did not exist before.
	CreatedDir bool

	// Written lists destination paths relative to Dir, slash-separated, in
	// template order.
	Written []string

	// Overwritten is the subset of Written that replaced existing files.
	Overwritten []string
}

// Materializer copies templates into project directories.
type Materializer struct {
	writer FileWriter
	logger *slog.Logger
}

// NewMaterializer creates a Materializer writing through w. A nil w writes
// to the real filesystem.
func NewMaterializer(w FileWriter) *Materializer {
	if w == nil {
		w = OSFileWriter{}
	}
	return &Materializer{writer: w, logger: slog.Default()}
}

// plannedFile is one file write decided during planning.
type plannedFile struct {
	file   template.File
	abs    string
	exists bool
}

type writePlan struct {
	dirExists bool
	files     []plannedFile
}

// Materialize writes every file of t into target.Dir.
//
// On DirectoryNotEmpty, FileConflict and SymlinkEscape nothing has been
// written. On PartialFailure the returned Result lists what was written and
// the error carries the itemized report.
func (m *Materializer) Materialize(t *template.Template, target Target, opts Options) (*Result, error) {
	if t == nil {
		return nil, perrors.InvalidInput("no template given")
	}
	if err := template.Validate(t); err != nil {
		return nil, err
	}
	if opts.Vars.ProjectName == "" {
		opts.Vars.ProjectName = target.Name
	}

	p, err := m.plan(t, target, opts)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Dir:        target.Dir,
		Name:       target.Name,
		Template:   t.Name,
		CreatedDir: !p.dirExists,
	}

	if !p.dirExists {
		if err := m.writer.MkdirAll(target.Dir, DirPerm); err != nil {
			return nil, perrors.InternalError(fmt.Sprintf("failed to create directory %s", target.Dir), err)
		}
	}

	report := &perrors.WriteReport{}
	for _, pf := range p.files {
		if err := m.write(pf, opts.Vars); err != nil {
			m.logger.Debug("file write failed", slog.String("path", pf.file.Dest), slog.String("error", err.Error()))
			report.Failed = append(report.Failed, perrors.FileFailure{Path: pf.file.Dest, Err: err})
			continue
		}
		m.logger.Debug("file written", slog.String("path", pf.file.Dest), slog.Bool("overwrite", pf.exists))
		report.Written = append(report.Written, pf.file.Dest)
		res.Written = append(res.Written, pf.file.Dest)
		if pf.exists {
			res.Overwritten = append(res.Overwritten, pf.file.Dest)
		}
	}

	if len(report.Failed) > 0 {
		return res, perrors.PartialFailure(report).
			WithDetail("path", target.Dir)
	}
	return res, nil
}

func (m *Materializer) write(pf plannedFile, vars Vars) error {
	if err := m.writer.MkdirAll(filepath.Dir(pf.abs), DirPerm); err != nil {
		return err
	}
	content := pf.file.Content
	if pf.file.Templated {
		content = vars.Substitute(content)
	}
	return m.writer.WriteFile(pf.abs, content, pf.file.Mode)
}

// plan inspects the destination without modifying it.
func (m *Materializer) plan(t *template.Template, target Target, opts Options) (*writePlan, error) {
	p := &writePlan{}

	info, err := os.Lstat(target.Dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, perrors.InternalError(fmt.Sprintf("failed to inspect %s", target.Dir), err)
	default:
		if info.Mode()&fs.ModeSymlink != 0 {
			if info, err = os.Stat(target.Dir); err != nil {
				return nil, perrors.InternalError(fmt.Sprintf("failed to inspect %s", target.Dir), err)
			}
		}
		if !info.IsDir() {
			return nil, perrors.FileConflict(target.Dir).
				WithSuggestion("the project path exists and is not a directory")
		}
		p.dirExists = true
		entries, err := os.ReadDir(target.Dir)
		if err != nil {
			return nil, perrors.InternalError(fmt.Sprintf("failed to read %s", target.Dir), err)
		}
		if len(entries) > 0 && !opts.AllowNonEmpty {
			return nil, perrors.DirectoryNotEmpty(target.Dir)
		}
	}

	root, err := pathutil.ResolveExisting(target.Dir)
	if err != nil {
		return nil, perrors.InternalError(fmt.Sprintf("failed to resolve %s", target.Dir), err)
	}

	var conflicts []string
	for _, f := range t.Files {
		abs := filepath.Join(target.Dir, filepath.FromSlash(f.Dest))

		blocked, err := blockingParent(target.Dir, f.Dest)
		if err != nil {
			return nil, err
		}
		if blocked != "" {
			conflicts = append(conflicts, blocked)
			continue
		}

		resolved, err := pathutil.ResolveExisting(abs)
		if err != nil {
			return nil, perrors.InternalError(fmt.Sprintf("failed to resolve %s", abs), err)
		}
		if !pathutil.Within(root, resolved) {
			return nil, perrors.SymlinkEscape(abs, target.Dir)
		}

		// Lstat so a link at the destination counts as present even when
		// it dangles; writing would otherwise create its target.
		exists := false
		st, err := os.Lstat(abs)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, perrors.InternalError(fmt.Sprintf("failed to inspect %s", abs), err)
		default:
			if st.Mode()&fs.ModeSymlink != 0 {
				st, err = os.Stat(abs)
			}
			if err == nil && st.IsDir() {
				// A directory can never be overwritten by a file
				conflicts = append(conflicts, f.Dest)
				continue
			}
			exists = true
			if !opts.Overwrite {
				conflicts = append(conflicts, f.Dest)
			}
		}

		p.files = append(p.files, plannedFile{file: f, abs: abs, exists: exists})
	}

	if len(conflicts) > 0 {
		return nil, perrors.FileConflict(dedupe(conflicts)...).
			WithDetail("dir", target.Dir)
	}
	return p, nil
}

// blockingParent returns the first parent of dest (relative to dir) that
// exists but is not a directory.
func blockingParent(dir, dest string) (string, error) {
	parent := path.Dir(dest)
	if parent == "." {
		return "", nil
	}
	var prefix string
	for _, seg := range splitSlash(parent) {
		prefix = path.Join(prefix, seg)
		st, err := os.Stat(filepath.Join(dir, filepath.FromSlash(prefix)))
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		if err != nil {
			return "", perrors.InternalError(fmt.Sprintf("failed to inspect %s", prefix), err)
		}
		if !st.IsDir() {
			return prefix, nil
		}
	}
	return "", nil
}

func splitSlash(p string) []string {
	var out []string
	for p != "." && p != "/" && p != "" {
		out = append([]string{path.Base(p)}, out...)
		p = path.Dir(p)
	}
	return out
}

func dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := paths[:0]
	for _, p := range paths {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
