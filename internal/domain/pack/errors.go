package pack

import (
	"fmt"
	"strings"
)

// ConfigError reports configuration that cannot produce a valid build
// layout. It is detected before any filesystem write.
type ConfigError struct {
	// Field is the configuration field that failed validation.
	Field string
	// Reason describes why the value was rejected.
	Reason string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration %s: %s", e.Field, e.Reason)
}

// IconFormatError reports a PNG icon candidate whose filename does not
// encode one of the recognized standard sizes.
type IconFormatError struct {
	// Path is the offending icon source path.
	Path string
}

// Error implements the error interface. The accepted size set is listed so
// the user can rename the file instead of guessing.
func (e *IconFormatError) Error() string {
	sizes := make([]string, 0, len(standardPNGSizes))
	for _, size := range standardPNGSizes {
		sizes = append(sizes, fmt.Sprintf("%d", size))
	}

	return fmt.Sprintf("icon %s: filename does not encode a standard size (accepted: %s)",
		e.Path, strings.Join(sizes, ", "))
}

// MacroError reports a template token that no macro in the table resolves.
type MacroError struct {
	// Token is the unrecognized macro name, without the ${} wrapper.
	Token string
	// Source names the template being expanded.
	Source string
}

// Error implements the error interface.
func (e *MacroError) Error() string {
	return fmt.Sprintf("%s: unrecognized macro ${%s}", e.Source, e.Token)
}

// StageError reports a filesystem failure while populating the staging tree.
// Partial staging is left in place for inspection.
type StageError struct {
	// Op is the staging operation that failed (write, copy, mkdir).
	Op string
	// Path is the path the operation targeted.
	Path string
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *StageError) Unwrap() error {
	return e.Err
}

// CommandError reports an external build command that exited non-zero.
// Remaining commands in the sequence are not run.
type CommandError struct {
	// Command is the shell command line that failed.
	Command string
	// ExitCode is the command's exit status, or -1 when it never ran.
	ExitCode int
	// Output is the command's combined stdout and stderr, verbatim.
	Output string
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	message := fmt.Sprintf("command %q exited with code %d", e.Command, e.ExitCode)
	if output := strings.TrimSpace(e.Output); output != "" {
		message += ": " + output
	}

	return message
}
