// Package config provides layered configuration for procon.
//
// Configuration precedence (lowest to highest):
//  1. Hardcoded defaults (Defaults)
//  2. User config file (<base>/config.yaml)
//  3. Environment variables (PROCON_*)
//  4. Command-line overrides supplied by the caller
//
// Each source is a Layer; a Config is the key-by-key merge of an ordered
// list of layers.
package config

import (
	"os"
	"slices"

	perrors "github.com/procon-dev/procon/internal/errors"
)

// Recognized configuration keys.
const (
	KeyDefaultTemplate     = "default_template"
	KeyDefaultPath         = "default_path"
	KeyCppStandard         = "cpp_standard"
	KeyCMakeMinimumVersion = "cmake_minimum_version"
)

// Layer names, in precedence order.
const (
	LayerDefaults = "defaults"
	LayerFile     = "file"
	LayerEnv      = "env"
	LayerFlags    = "flags"
)

var knownKeys = []string{
	KeyDefaultTemplate,
	KeyDefaultPath,
	KeyCppStandard,
	KeyCMakeMinimumVersion,
}

var envKeys = map[string]string{
	KeyDefaultTemplate:     "PROCON_DEFAULT_TEMPLATE",
	KeyDefaultPath:         "PROCON_DEFAULT_PATH",
	KeyCppStandard:         "PROCON_CPP_STANDARD",
	KeyCMakeMinimumVersion: "PROCON_CMAKE_MINIMUM_VERSION",
}

// Keys returns the recognized configuration keys in display order.
func Keys() []string {
	return slices.Clone(knownKeys)
}

// IsKnownKey reports whether key is in the recognized set.
func IsKnownKey(key string) bool {
	return slices.Contains(knownKeys, key)
}

// Layer is one named source of configuration values.
type Layer struct {
	Name   string
	Values map[string]string
}

// Defaults returns the built-in default layer.
func Defaults() Layer {
	return Layer{
		Name: LayerDefaults,
		Values: map[string]string{
			KeyDefaultTemplate:     "default",
			KeyDefaultPath:         ".",
			KeyCppStandard:         "17",
			KeyCMakeMinimumVersion: "3.16",
		},
	}
}

// EnvLayer reads PROCON_* overrides from the environment.
func EnvLayer() Layer {
	values := make(map[string]string)
	for key, env := range envKeys {
		if v := os.Getenv(env); v != "" {
			values[key] = v
		}
	}
	return Layer{Name: LayerEnv, Values: values}
}

// FlagLayer builds a layer from command-line overrides.
// Empty values are ignored during merge, so unset flags can be passed as is.
func FlagLayer(values map[string]string) Layer {
	return Layer{Name: LayerFlags, Values: values}
}

// Config is the merged view of all layers.
type Config struct {
	values  map[string]string
	sources map[string]string
}

// Merge combines layers in order; later layers win. Unknown keys and empty
// values never override.
func Merge(layers ...Layer) *Config {
	c := &Config{
		values:  make(map[string]string, len(knownKeys)),
		sources: make(map[string]string, len(knownKeys)),
	}
	for _, l := range layers {
		for k, v := range l.Values {
			if v == "" || !IsKnownKey(k) {
				continue
			}
			c.values[k] = v
			c.sources[k] = l.Name
		}
	}
	return c
}

// Get returns the value of a recognized key.
func (c *Config) Get(key string) (string, error) {
	if !IsKnownKey(key) {
		return "", perrors.UnknownKey(key, knownKeys)
	}
	return c.values[key], nil
}

// Source returns the name of the layer that supplied key.
func (c *Config) Source(key string) string {
	return c.sources[key]
}

// Values returns a copy of all merged values.
func (c *Config) Values() map[string]string {
	out := make(map[string]string, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// DefaultTemplate is the template used when none is given.
func (c *Config) DefaultTemplate() string { return c.values[KeyDefaultTemplate] }

// DefaultPath is the base directory for new projects.
func (c *Config) DefaultPath() string { return c.values[KeyDefaultPath] }

// CppStandard is substituted for {{CPP_STANDARD}}.
func (c *Config) CppStandard() string { return c.values[KeyCppStandard] }

// CMakeMinimumVersion is substituted for {{CMAKE_VERSION}}.
func (c *Config) CMakeMinimumVersion() string { return c.values[KeyCMakeMinimumVersion] }
