package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Check failure (critical validation issues, duplicate item)
	ExitCommandError = 2 // Command error (bad path, malformed input, unwritable file)
)

// Response statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// ExitError is returned by commands that already reported their failure.
// Main exits with Code without printing anything further.
type ExitError struct {
	Code    int    // ExitFailure or ExitCommandError
	ErrCode string // "E001", "E200", ...
	Message string
	Err     error // underlying cause, if any
}

func (e *ExitError) Error() string {
	msg := e.Message
	if e.ErrCode != "" {
		msg = e.ErrCode + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// GetExitCode returns the process exit code for an error returned by a
// command. Errors that are not ExitErrors are command errors.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitCommandError
}

// OutputFormatter renders command results as text or as a JSON CLIResponse.
type OutputFormatter struct {
	Format  string
	Writer  io.Writer
	Diag    io.Writer // verbose diagnostics; defaults to Writer
	Verbose bool
}

// CLIResponse is the JSON envelope written to stdout with --format json.
type CLIResponse struct {
	Status string    `json:"status"`
	Data   any       `json:"data,omitempty"` // result, also set on failed checks
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError describes a failed command in a CLIResponse.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// IsJSON reports whether results are rendered as JSON.
func (f *OutputFormatter) IsJSON() bool {
	return f.Format == "json"
}

// Success writes a successful result.
func (f *OutputFormatter) Success(data any) error {
	if f.IsJSON() {
		return f.encode(CLIResponse{Status: StatusOK, Data: data})
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Failure writes a failed check together with its result. In text mode
// only the message is written; callers print the findings first.
func (f *OutputFormatter) Failure(code, message string, data any) error {
	if f.IsJSON() {
		return f.encode(CLIResponse{
			Status: StatusError,
			Data:   data,
			Error:  &CLIError{Code: code, Message: message},
		})
	}
	_, err := fmt.Fprintf(f.Writer, "✗ %s\n", message)
	return err
}

// Error writes a command error.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.IsJSON() {
		return f.encode(CLIResponse{
			Status: StatusError,
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Printf writes text output. It is a no-op in JSON mode.
func (f *OutputFormatter) Printf(format string, args ...any) {
	if f.IsJSON() {
		return
	}
	fmt.Fprintf(f.Writer, format, args...)
}

// Verbosef writes a diagnostic line when verbose output is enabled.
func (f *OutputFormatter) Verbosef(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.Diag
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

func (f *OutputFormatter) encode(resp CLIResponse) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(resp)
}
