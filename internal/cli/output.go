package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/nutrilog/internal/storage"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Storage or analysis failure (save failed, quota, service down)
	ExitCommandError = 2 // Command error (bad flags, unreadable file, invalid document)
)

// Error codes carried in CLIError.Code.
const (
	ErrCodeGeneric      = "E001"
	ErrCodeInvalidInput = "E002"
	ErrCodeStorage      = "E003"
	ErrCodeQuota        = "E004"
	ErrCodeAnalysis     = "E005"
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for warnings and verbose output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status   string       `json:"status"`             // "ok" or "error"
	Data     any          `json:"data,omitempty"`     // success payload
	Error    *CLIError    `json:"error,omitempty"`    // error details
	Warnings []CLIWarning `json:"warnings,omitempty"` // storage problems recovered from
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E002", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// CLIWarning is a storage problem reported through the error callback.
type CLIWarning struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Success outputs a successful result. In JSON mode data is wrapped in a
// CLIResponse; in text mode text renders it, or data is printed as is when
// text is nil.
func (f *OutputFormatter) Success(data any, warnings []CLIWarning, text func(w io.Writer)) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetEscapeHTML(false)
		return enc.Encode(CLIResponse{
			Status:   "ok",
			Data:     data,
			Warnings: warnings,
		})
	}

	if text != nil {
		text(f.Writer)
		return nil
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	// Human-readable error
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Warn prints a recovered storage problem to ErrWriter in text mode. JSON
// mode collects warnings into the response instead.
func (f *OutputFormatter) Warn(e *storage.Error) {
	if f.Format == "json" {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), "Warning [%s]: %s\n", e.Kind, e.Message())
	if f.Verbose {
		fmt.Fprintf(f.GetErrWriter(), "Details: %v\n", e)
	}
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// storageErrorCode maps a storage failure kind to a CLI error code.
func storageErrorCode(err error) string {
	switch storage.KindOf(err) {
	case storage.KindQuotaExceeded:
		return ErrCodeQuota
	case storage.KindSaveFailed, storage.KindDeleteFailed, storage.KindLoadFailed:
		return ErrCodeStorage
	default:
		return ErrCodeGeneric
	}
}

// failCommand reports an invalid invocation and returns exit code 2.
func failCommand(f *OutputFormatter, code, message string, err error) error {
	_ = f.Error(code, message, errDetails(err))
	return WrapExitError(ExitCommandError, message, err)
}

// failStorage reports a storage or service failure and returns exit code 1.
func failStorage(f *OutputFormatter, message string, err error) error {
	code := storageErrorCode(err)
	msg := message
	var se *storage.Error
	if errors.As(err, &se) {
		msg = se.Message()
	}
	_ = f.Error(code, msg, errDetails(err))
	return WrapExitError(ExitFailure, message, err)
}

func errDetails(err error) any {
	if err == nil {
		return nil
	}
	return err.Error()
}

var errLoadForEdit = errors.New("stored day could not be read; refusing to overwrite it")
