package cli

import "fmt"

// Process exit codes. A clean pass exits zero; findings and failures get
// distinct codes so CI pipelines can tell them apart.
const (
	// ExitOK means the run completed with no findings.
	ExitOK = 0

	// ExitConflicts means at least one package is incompatible with the
	// target.
	ExitConflicts = 1

	// ExitUndetermined means no conflicts were found but at least one
	// package could not be classified, and strict mode is on.
	ExitUndetermined = 2

	// ExitFatal means the run itself failed (bad manifest, dependency
	// cycle, invalid configuration).
	ExitFatal = 3
)

// ExitError carries a specific process exit code out of a command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError.
func NewExitError(code int, err error) *ExitError {
	return &ExitError{Code: code, Err: err}
}

// ConfigError represents an error in configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{Command: command, Err: err}
}
