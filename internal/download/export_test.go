package download

// Export internal identifiers for testing.
// This file is only compiled during tests (suffix _test.go).

// CommandRunner exports the commandRunner interface for testing.
type CommandRunner = commandRunner

// FileStatter exports the fileStatter interface for testing.
type FileStatter = fileStatter

// FirstNonEmptyLine exports firstNonEmptyLine for testing.
var FirstNonEmptyLine = firstNonEmptyLine

// FallbackTitle exports fallbackTitle for testing.
const FallbackTitle = fallbackTitle
