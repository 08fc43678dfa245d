package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogFileName is the debug log file name inside the log directory.
const LogFileName = "procon.log"

// Config contains logging configuration.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string
	// FilePath is the path to the log file. Empty means no file logging.
	FilePath string
	// MaxSizeMB is the size in MB at which the next run rotates (default: 10).
	MaxSizeMB int
	// MaxFiles is the maximum number of rotated files to keep (default: 5).
	MaxFiles int
	// Stderr receives a copy of every record when non-nil.
	Stderr io.Writer
}

// DefaultConfig returns the quiet configuration used without --debug.
func DefaultConfig() Config {
	return Config{
		Level:     "warn",
		MaxSizeMB: 10,
		MaxFiles:  5,
		Stderr:    os.Stderr,
	}
}

// DebugConfig returns configuration for debug mode writing to filePath.
func DebugConfig(filePath string) Config {
	cfg := DefaultConfig()
	cfg.Level = "debug"
	cfg.FilePath = filePath
	return cfg
}

// Setup builds a logger from cfg and returns it with a cleanup function.
// Without a file path the logger writes text to Stderr only.
func Setup(cfg Config) (*slog.Logger, func(), error) {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	if cfg.FilePath == "" {
		out := cfg.Stderr
		if out == nil {
			out = io.Discard
		}
		return slog.New(slog.NewTextHandler(out, opts)), func() {}, nil
	}

	maxSizeMB, maxFiles := cfg.MaxSizeMB, cfg.MaxFiles
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	if maxFiles <= 0 {
		maxFiles = 1
	}
	file, err := openLogFile(cfg.FilePath, int64(maxSizeMB)<<20, maxFiles)
	if err != nil {
		return nil, nil, err
	}

	var output io.Writer = file
	if cfg.Stderr != nil {
		output = io.MultiWriter(file, cfg.Stderr)
	}

	logger := slog.New(slog.NewJSONHandler(output, opts))

	cleanup := func() {
		_ = file.Sync()
		_ = file.Close()
	}

	return logger, cleanup, nil
}

// parseLevel converts string level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
