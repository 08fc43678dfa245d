// Package errors provides structured error handling for procon.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Template errors
//   - 3XX: Materialization errors
//   - 4XX: Validation errors
//   - 5XX: Internal errors
//
// Every code maps to a stable process exit code (see ExitCode).
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryTemplate indicates template lookup and validation errors.
	CategoryTemplate Category = "TEMPLATE"
	// CategoryMaterialize indicates errors writing a project tree.
	CategoryMaterialize Category = "MATERIALIZE"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeUnknownKey    = "ERR_101_UNKNOWN_KEY"
	ErrCodeConfigCorrupt = "ERR_102_CONFIG_CORRUPT"

	// Template errors (200-299)
	ErrCodeTemplateNotFound    = "ERR_201_TEMPLATE_NOT_FOUND"
	ErrCodeMissingRequiredFile = "ERR_202_MISSING_REQUIRED_FILE"

	// Materialize errors (300-399)
	ErrCodeDirectoryNotEmpty = "ERR_301_DIRECTORY_NOT_EMPTY"
	ErrCodeFileConflict      = "ERR_302_FILE_CONFLICT"
	ErrCodePartialFailure    = "ERR_303_PARTIAL_FAILURE"
	ErrCodeSymlinkEscape     = "ERR_304_SYMLINK_ESCAPE"

	// Validation errors (400-499)
	ErrCodeInvalidInput = "ERR_401_INVALID_INPUT"

	// Internal errors (500-599)
	ErrCodeInternal = "ERR_501_INTERNAL"
)

// Process exit codes. These values are part of the CLI contract and must not change.
const (
	ExitOK                  = 0
	ExitInternal            = 1
	ExitUsage               = 2
	ExitUnknownKey          = 10
	ExitConfigCorrupt       = 11
	ExitTemplateNotFound    = 20
	ExitMissingRequiredFile = 21
	ExitDirectoryNotEmpty   = 30
	ExitFileConflict        = 31
	ExitPartialFailure      = 32
	ExitSymlinkEscape       = 33
)

var exitCodes = map[string]int{
	ErrCodeUnknownKey:          ExitUnknownKey,
	ErrCodeConfigCorrupt:       ExitConfigCorrupt,
	ErrCodeTemplateNotFound:    ExitTemplateNotFound,
	ErrCodeMissingRequiredFile: ExitMissingRequiredFile,
	ErrCodeDirectoryNotEmpty:   ExitDirectoryNotEmpty,
	ErrCodeFileConflict:        ExitFileConflict,
	ErrCodePartialFailure:      ExitPartialFailure,
	ErrCodeSymlinkEscape:       ExitSymlinkEscape,
	ErrCodeInvalidInput:        ExitUsage,
	ErrCodeInternal:            ExitInternal,
}

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Numeric portion, e.g. "101" from "ERR_101_UNKNOWN_KEY"
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryTemplate
	case '3':
		return CategoryMaterialize
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}
