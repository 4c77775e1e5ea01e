package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/soilplot/internal/loader"
	"github.com/roach88/soilplot/internal/plot"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Input data failed to load or plot (malformed file, missing node, ...)
	ExitCommandError = 2 // Command error (bad flags, unreadable mapping file, ...)
)

// ErrCodeGeneric is the error code for failures outside the typed loader
// and plotter error kinds.
const ErrCodeGeneric = "GENERIC"

// ExitError carries a specific exit code out of a command.
type ExitError struct {
	Code    int
	Message string
	Err     error // underlying error, optional
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

// NewExitError creates an ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// GetExitCode extracts the exit code from an error. Errors that are not
// ExitErrors come from cobra before a command runs (bad flags, unknown
// subcommand), so they count as command errors.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitCommandError
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // verbose/diagnostic output, kept off Writer so JSON stays parseable
	Verbose   bool
	RunID     string // correlates the JSON envelope with saved artifacts
}

// CLIResponse is the standard JSON envelope for command output.
type CLIResponse struct {
	Status string      `json:"status"` // "ok" or "error"
	RunID  string      `json:"run_id,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  *CLIError   `json:"error,omitempty"`
}

// CLIError carries the error kind and its locating detail verbatim, as
// the loader or plotter reported it.
type CLIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Success outputs a successful result in the configured format. data is
// the JSON payload; text is the human-readable line(s).
func (f *OutputFormatter) Success(data interface{}, text string) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(CLIResponse{Status: "ok", RunID: f.RunID, Data: data})
	}
	fmt.Fprintln(f.Writer, text)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(CLIResponse{
			Status: "error",
			RunID:  f.RunID,
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled. Logs go
// to ErrWriter when set so they never corrupt JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// errorCode classifies an error into the code surfaced to the caller.
// The typed loader and plotter errors keep their own codes; everything
// else is generic.
func errorCode(err error) string {
	if code := loader.CodeOf(err); code != "" {
		return string(code)
	}
	var mn *plot.MissingNodeError
	if errors.As(err, &mn) {
		return mn.Code()
	}
	return ErrCodeGeneric
}

// outputDataError reports a failure caused by the input data (exit 1).
func outputDataError(f *OutputFormatter, err error) error {
	_ = f.Error(errorCode(err), err.Error(), nil)
	return NewExitError(ExitFailure, err.Error())
}

// outputCommandError reports a command-level failure (exit 2).
func outputCommandError(f *OutputFormatter, message string) error {
	_ = f.Error(ErrCodeGeneric, message, nil)
	return NewExitError(ExitCommandError, message)
}
