package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// FormatForCLI formats an error for CLI output.
// Uses a concise format suitable for terminal display.
func FormatForCLI(err error) string {
	if err == nil {
		return ""
	}

	var pe *ProconError
	if !stderrors.As(err, &pe) {
		pe = Wrap(ErrCodeInternal, err)
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Error: %s\n", pe.Message))

	// Itemized partial failures are what the user needs to clean up
	if report, ok := AsWriteReport(pe); ok {
		for _, p := range report.Written {
			sb.WriteString(fmt.Sprintf("  written: %s\n", p))
		}
		for _, f := range report.Failed {
			sb.WriteString(fmt.Sprintf("  failed:  %s (%v)\n", f.Path, f.Err))
		}
	}

	if pe.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("  Hint: %s\n", pe.Suggestion))
	}

	sb.WriteString(fmt.Sprintf("  Code: %s\n", pe.Code))

	return sb.String()
}

// FormatForLog formats an error for structured logging.
// Returns key-value pairs suitable for slog attributes.
func FormatForLog(err error) []any {
	if err == nil {
		return nil
	}

	var pe *ProconError
	if !stderrors.As(err, &pe) {
		return []any{"error", err.Error()}
	}

	attrs := []any{
		"error_code", pe.Code,
		"message", pe.Message,
		"category", string(pe.Category),
	}
	if pe.Cause != nil {
		attrs = append(attrs, "cause", pe.Cause.Error())
	}

	keys := make([]string, 0, len(pe.Details))
	for k := range pe.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, "detail_"+k, pe.Details[k])
	}

	return attrs
}
