package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// EnvHome overrides the procon base directory.
const EnvHome = "PROCON_HOME"

// File and directory names inside the base directory.
const (
	ConfigFileName   = "config.yaml"
	TemplatesDirName = "templates"
	LogsDirName      = "logs"
)

// Paths locates everything procon keeps on disk for a user.
type Paths struct {
	Base         string
	ConfigFile   string
	LockFile     string
	TemplatesDir string
	LogDir       string
}

// NewPaths derives all locations from a base directory.
func NewPaths(base string) Paths {
	configFile := filepath.Join(base, ConfigFileName)
	return Paths{
		Base:         base,
		ConfigFile:   configFile,
		LockFile:     configFile + ".lock",
		TemplatesDir: filepath.Join(base, TemplatesDirName),
		LogDir:       filepath.Join(base, LogsDirName),
	}
}

// DefaultPaths returns the per-user locations:
//   - $PROCON_HOME (if set)
//   - $XDG_CONFIG_HOME/procon, or the platform config directory
func DefaultPaths() Paths {
	return NewPaths(BaseDir())
}

// BaseDir returns the procon base directory.
func BaseDir() string {
	if home := os.Getenv(EnvHome); home != "" {
		return home
	}
	return filepath.Join(xdg.ConfigHome, "procon")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) string {
	if p == "~" {
		return xdg.Home
	}
	if strings.HasPrefix(p, "~/") || strings.HasPrefix(p, `~\`) {
		return filepath.Join(xdg.Home, p[2:])
	}
	return p
}
