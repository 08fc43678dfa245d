// Package template locates project templates and enumerates their files.
//
// A template is a directory containing at least MainSource and BuildConfig.
// Templates come from two places, searched in order:
//  1. the user templates directory (<base>/templates/<name>/)
//  2. the templates bundled into the binary
//
// The first match wins, so a user template shadows a bundled one of the same
// name. Files are read once at resolve time; the materializer never walks the
// template again.
package template

import (
	"io/fs"
	"path"
	"strings"
)

const (
	// MainSource is the required main source file.
	MainSource = "main.cpp"

	// BuildConfig is the required build configuration file.
	BuildConfig = "CMakeLists.txt"

	// TemplatedSuffix marks any other file for placeholder substitution.
	// The suffix is stripped from the destination name.
	TemplatedSuffix = ".tmpl"

	// IgnoreFileName lists extra exclusion patterns, one per line.
	IgnoreFileName = ".proconignore"
)

// RequiredFiles returns the files every template must provide.
func RequiredFiles() []string {
	return []string{MainSource, BuildConfig}
}

// Origin tells where a template was found.
type Origin string

const (
	OriginUser    Origin = "user"
	OriginBundled Origin = "bundled"
)

// File is one file of a template.
type File struct {
	// Path is the slash-separated path relative to the template root.
	Path string

	// Dest is the slash-separated destination path relative to the project
	// directory. It differs from Path only for .tmpl files.
	Dest string

	// Mode holds the permission bits of the source file.
	Mode fs.FileMode

	// Content is the raw file content.
	Content []byte

	// Templated marks files that receive placeholder substitution.
	Templated bool
}

// Template is a resolved template with its enumerated files, sorted by Path.
type Template struct {
	Name     string
	Origin   Origin
	Location string
	Files    []File
}

// File returns the file with the given destination path.
func (t *Template) File(dest string) (File, bool) {
	for _, f := range t.Files {
		if f.Dest == dest {
			return f, true
		}
	}
	return File{}, false
}

// DestPaths returns the destination paths of all files, in order.
func (t *Template) DestPaths() []string {
	out := make([]string, len(t.Files))
	for i, f := range t.Files {
		out[i] = f.Dest
	}
	return out
}

// destFor maps a template-relative path to its destination path and reports
// whether the file is templated.
func destFor(rel string) (string, bool) {
	if strings.HasSuffix(rel, TemplatedSuffix) && len(path.Base(rel)) > len(TemplatedSuffix) {
		return strings.TrimSuffix(rel, TemplatedSuffix), true
	}
	return rel, rel == MainSource || rel == BuildConfig
}
