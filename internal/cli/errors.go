package cli

import (
	"errors"
	"io/fs"

	"github.com/roach88/itemcat/internal/assets"
	"github.com/roach88/itemcat/internal/catalog"
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeScanError    = "E002" // Directory scan error
	ErrCodeNoFiles      = "E003" // No metadata files found
	ErrCodeLoadFailed   = "E004" // Catalog could not be parsed
	ErrCodeNotFound     = "E005" // Path not found
	ErrCodeInvalidInput = "E006" // Malformed operator input
	ErrCodeWriteFailed  = "E007" // File write error
	ErrCodeConfig       = "E008" // Invalid configuration
	ErrCodeExportFailed = "E009" // Database export error

	// Validation failure; the individual findings carry E2xx/W2xx codes.
	ErrCodeValidationFailed = "E200"

	// Manual entry rejections
	ErrCodeDuplicateID        = "E301"
	ErrCodeDuplicateShortname = "E302"
)

// commandError prints an error and returns it as a command error (exit 2).
func commandError(formatter *OutputFormatter, code, message string, details any) error {
	_ = formatter.Error(code, message, details)
	return &ExitError{Code: ExitCommandError, ErrCode: code, Message: message}
}

// checkFailure prints an error and returns it as a check failure (exit 1).
func checkFailure(formatter *OutputFormatter, code, message string, details any) error {
	_ = formatter.Error(code, message, details)
	return &ExitError{Code: ExitFailure, ErrCode: code, Message: message}
}

// readErrorCode picks the code for a failure to read a path.
func readErrorCode(err error) string {
	if errors.Is(err, fs.ErrNotExist) {
		return ErrCodeNotFound
	}
	return ErrCodeScanError
}

// installErrorCode maps an installation check failure to an error code.
func installErrorCode(err error) string {
	var installErr *assets.InstallError
	if !errors.As(err, &installErr) {
		return ErrCodeGeneric
	}
	switch {
	case assets.IsNotFound(err):
		return ErrCodeNotFound
	case installErr.Err == nil:
		return ErrCodeNoFiles
	default:
		return ErrCodeScanError
	}
}

// catalogErrorCode maps a catalog load or write failure to an error code.
func catalogErrorCode(err error) string {
	var writeErr *catalog.WriteError
	switch {
	case errors.As(err, &writeErr):
		return ErrCodeWriteFailed
	case errors.Is(err, fs.ErrNotExist):
		return ErrCodeNotFound
	default:
		return ErrCodeLoadFailed
	}
}
