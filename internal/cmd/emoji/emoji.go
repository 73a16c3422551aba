// Package emoji provides symbol constants for CLI output.
// These symbols create a consistent visual language across all commands.
package emoji

// Symbol constants for CLI output.
const (
	// Success represents successful completion of an operation.
	// Used for: the generated answer file, embedded entries.
	Success = "✓"

	// Error represents failures.
	// Used for: fatal errors printed before exiting.
	Error = "✗"

	// Warning represents non-critical issues.
	// Used for: mapping rows whose source file is missing.
	Warning = "!"

	// Info represents informational messages.
	// Used for: dry-run summaries.
	Info = "i"
)
