package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ProconError is the structured error type for procon.
// Components return it unmodified; the command layer turns it into a message
// and an exit code.
type ProconError struct {
	// Code is the unique error code (e.g., "ERR_302_FILE_CONFLICT").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, Template, Materialize, ...).
	Category Category

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *ProconError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *ProconError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with ProconError.
func (e *ProconError) Is(target error) bool {
	if t, ok := target.(*ProconError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *ProconError) WithDetail(key, value string) *ProconError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *ProconError) WithSuggestion(suggestion string) *ProconError {
	e.Suggestion = suggestion
	return e
}

// New creates a new ProconError with the given code and message.
func New(code string, message string, cause error) *ProconError {
	return &ProconError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates a ProconError from an existing error.
// The error's message becomes the ProconError message.
func Wrap(code string, err error) *ProconError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// UnknownKey reports a configuration key outside the recognized set.
func UnknownKey(key string, known []string) *ProconError {
	return New(ErrCodeUnknownKey, fmt.Sprintf("unknown configuration key %q", key), nil).
		WithDetail("key", key).
		WithSuggestion("valid keys: " + strings.Join(known, ", "))
}

// ConfigCorrupt reports a config file that exists but cannot be parsed.
func ConfigCorrupt(path string, cause error) *ProconError {
	return New(ErrCodeConfigCorrupt, fmt.Sprintf("config file %s is corrupt", path), cause).
		WithDetail("path", path).
		WithSuggestion("fix or delete the file; built-in defaults are used meanwhile")
}

// TemplateNotFound reports a template name missing from every search location.
func TemplateNotFound(name string, searched []string) *ProconError {
	e := New(ErrCodeTemplateNotFound,
		fmt.Sprintf("template %q not found (searched: %s)", name, strings.Join(searched, ", ")), nil).
		WithDetail("template", name)
	for i, loc := range searched {
		e.WithDetail(fmt.Sprintf("searched_%d", i+1), loc)
	}
	return e.WithSuggestion("run 'procon templates' to see available templates")
}

// MissingRequiredFile reports a template lacking one of its required files.
func MissingRequiredFile(template, filename string) *ProconError {
	return New(ErrCodeMissingRequiredFile,
		fmt.Sprintf("template %q is missing required file %s", template, filename), nil).
		WithDetail("template", template).
		WithDetail("file", filename)
}

// DirectoryNotEmpty reports a target directory that already has content.
func DirectoryNotEmpty(dir string) *ProconError {
	return New(ErrCodeDirectoryNotEmpty, fmt.Sprintf("directory %s is not empty", dir), nil).
		WithDetail("path", dir).
		WithSuggestion("choose another name or run 'procon init' inside the directory")
}

// FileConflict reports destination files that already exist.
// The first path is used in the message; all are listed in the details.
func FileConflict(paths ...string) *ProconError {
	first := ""
	if len(paths) > 0 {
		first = paths[0]
	}
	msg := fmt.Sprintf("file %s already exists", first)
	if len(paths) > 1 {
		msg = fmt.Sprintf("file %s already exists (and %d more)", first, len(paths)-1)
	}
	return New(ErrCodeFileConflict, msg, nil).
		WithDetail("path", first).
		WithDetail("conflicts", strings.Join(paths, ", ")).
		WithSuggestion("pass --force to overwrite template files")
}

// SymlinkEscape reports a symbolic link that resolves outside its allowed root.
func SymlinkEscape(path, root string) *ProconError {
	return New(ErrCodeSymlinkEscape,
		fmt.Sprintf("%s resolves outside %s through a symbolic link", path, root), nil).
		WithDetail("path", path).
		WithDetail("root", root)
}

// InvalidInput reports bad user input.
func InvalidInput(message string) *ProconError {
	return New(ErrCodeInvalidInput, message, nil)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *ProconError {
	return New(ErrCodeInternal, message, cause)
}

// FileFailure is one file that could not be written.
type FileFailure struct {
	Path string
	Err  error
}

// WriteReport itemizes a batch write that did not fully succeed.
type WriteReport struct {
	Written []string
	Failed  []FileFailure
}

// Error implements the error interface.
func (r *WriteReport) Error() string {
	parts := make([]string, 0, len(r.Failed))
	for _, f := range r.Failed {
		parts = append(parts, fmt.Sprintf("%s: %v", f.Path, f.Err))
	}
	return fmt.Sprintf("%d written, %d failed: %s", len(r.Written), len(r.Failed), strings.Join(parts, "; "))
}

// PartialFailure reports a batch write where some files failed.
func PartialFailure(report *WriteReport) *ProconError {
	return New(ErrCodePartialFailure,
		fmt.Sprintf("%d of %d files could not be written",
			len(report.Failed), len(report.Written)+len(report.Failed)), report).
		WithSuggestion("fix the cause, remove the written files if needed, and retry")
}

// AsWriteReport extracts the itemized report from a PartialFailure error.
func AsWriteReport(err error) (*WriteReport, bool) {
	var r *WriteReport
	if stderrors.As(err, &r) {
		return r, true
	}
	return nil, false
}

// GetCode extracts the error code from a ProconError anywhere in the chain.
// Returns empty string if there is none.
func GetCode(err error) string {
	var pe *ProconError
	if stderrors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// GetCategory extracts the category from a ProconError anywhere in the chain.
func GetCategory(err error) Category {
	var pe *ProconError
	if stderrors.As(err, &pe) {
		return pe.Category
	}
	return ""
}

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if code, ok := exitCodes[GetCode(err)]; ok {
		return code
	}
	return ExitInternal
}
