// Package templates provides the bundled project templates for procon.
//
// Templates are embedded at build time using //go:embed, so every binary
// (go install, release archives) ships them. Each top-level directory is one
// template:
//   - default: main.cpp and CMakeLists.txt only
//   - advanced: adds a header library, sanitizer build flags, a README and an input file
//
// User templates under <base>/templates/<name>/ shadow these by name
// (see internal/template).
package templates

import (
	"embed"
	"io/fs"
)

//go:embed default advanced
var bundled embed.FS

// FS returns the bundled templates, one directory per template name.
func FS() fs.FS {
	return bundled
}
