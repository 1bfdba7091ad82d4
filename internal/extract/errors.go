package extract

import (
	"fmt"
	"strings"
)

// FormatError is the panic value raised by Extract when the destination has
// no usable extension. It is never returned as an error.
type FormatError struct {
	Format Format
}

func (e *FormatError) Error() string {
	if e.Format.Kind == KindUnsupported {
		return fmt.Sprintf("unsupported extension %s", e.Format.Ext)
	}
	return "no or unknown extension"
}

// ToolError is returned when the external extractor could not be run or
// exited unsuccessfully.
type ToolError struct {
	Tool string
	Args []string
	// ExitCode is the tool's exit status, or -1 if it never ran to completion.
	ExitCode int
	Err      error
}

func (e *ToolError) Error() string {
	if e.ExitCode < 0 {
		return fmt.Sprintf("failed to run %s %s: %v", e.Tool, strings.Join(e.Args, " "), e.Err)
	}
	return fmt.Sprintf("%s exited with status %d: %v", e.Tool, e.ExitCode, e.Err)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}
