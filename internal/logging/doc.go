// Package logging configures slog for procon.
//
// By default only warnings and errors reach stderr as text. With --debug,
// JSON logs at debug level are also written to a size-rotated file under the
// procon base directory (<base>/logs/procon.log).
package logging
