package cli

// Export internal functions for testing.
// This file is only compiled during tests (suffix _test.go).

// ReadLinks exports readLinks for testing.
var ReadLinks = readLinks

// DeriveOutputName exports deriveOutputName for testing.
var DeriveOutputName = deriveOutputName

// WriteTranscript exports writeTranscript for testing.
var WriteTranscript = writeTranscript

// SupportedFormatsList exports supportedFormatsList for testing.
var SupportedFormatsList = supportedFormatsList
