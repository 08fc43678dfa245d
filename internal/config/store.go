package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	perrors "github.com/procon-dev/procon/internal/errors"
)

// Store owns the persisted user configuration file.
type Store struct {
	paths Paths
}

// NewStore creates a Store for the given locations.
func NewStore(paths Paths) *Store {
	return &Store{paths: paths}
}

// Paths returns the locations the store works with.
func (s *Store) Paths() Paths {
	return s.paths
}

// Load merges defaults, the user file, the environment and overrides.
//
// If the file exists but cannot be parsed, Load still returns a usable Config
// built without the file layer, together with a ConfigCorrupt error. Callers
// treat that error as a warning.
func (s *Store) Load(overrides ...Layer) (*Config, error) {
	layers := []Layer{Defaults()}

	fileLayer, _, loadErr := s.readFile()
	if loadErr == nil {
		layers = append(layers, fileLayer)
	}
	layers = append(layers, EnvLayer())
	layers = append(layers, overrides...)

	cfg := Merge(layers...)
	if loadErr != nil {
		return cfg, loadErr
	}
	return cfg, nil
}

// Set validates key and value, then persists the full defaults+file config
// with key updated. The read-modify-write runs under an exclusive file lock,
// so concurrent Set calls never lose updates.
//
// It returns the value key had in the file before, if any. A corrupt file is
// backed up and replaced.
func (s *Store) Set(key, value string) (previous string, hadPrevious bool, err error) {
	if !IsKnownKey(key) {
		return "", false, perrors.UnknownKey(key, knownKeys)
	}
	if value == "" {
		return "", false, perrors.InvalidInput(fmt.Sprintf("value for %s must not be empty", key))
	}

	lock := NewFileLock(s.paths.LockFile)
	if err := lock.Lock(); err != nil {
		return "", false, err
	}
	defer func() { _ = lock.Unlock() }()

	fileLayer, _, readErr := s.readFile()
	if readErr != nil {
		if perrors.GetCode(readErr) != perrors.ErrCodeConfigCorrupt {
			return "", false, readErr
		}
		backup, err := BackupConfig(s.paths.ConfigFile)
		if err != nil {
			return "", false, perrors.ConfigCorrupt(s.paths.ConfigFile, err)
		}
		slog.Warn("Replacing corrupt config file",
			slog.String("path", s.paths.ConfigFile),
			slog.String("backup", backup))
		fileLayer = Layer{Name: LayerFile, Values: map[string]string{}}
	}

	previous, hadPrevious = fileLayer.Values[key]

	next := Merge(Defaults(), fileLayer).Values()
	next[key] = value

	if err := s.writeFile(next); err != nil {
		return "", false, err
	}

	slog.Debug("Config value set",
		slog.String("key", key),
		slog.String("path", s.paths.ConfigFile))

	return previous, hadPrevious, nil
}

// readFile parses the user config file. A missing file is an empty layer.
func (s *Store) readFile() (Layer, bool, error) {
	layer := Layer{Name: LayerFile, Values: map[string]string{}}

	data, err := os.ReadFile(s.paths.ConfigFile)
	if errors.Is(err, fs.ErrNotExist) {
		return layer, false, nil
	}
	if err != nil {
		return layer, true, fmt.Errorf("failed to read config file %s: %w", s.paths.ConfigFile, err)
	}

	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return layer, true, perrors.ConfigCorrupt(s.paths.ConfigFile, err)
	}

	for k, v := range raw {
		if !IsKnownKey(k) {
			slog.Warn("Ignoring unknown key in config file",
				slog.String("key", k),
				slog.String("path", s.paths.ConfigFile))
			continue
		}
		layer.Values[k] = v
	}
	return layer, true, nil
}

// writeFile persists values as a flat YAML mapping with sorted keys.
func (s *Store) writeFile(values map[string]string) error {
	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.paths.ConfigFile), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := writeFileAtomic(s.paths.ConfigFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
