package ffmpeg

// Export internal identifiers for testing.
// This file is only compiled during tests (suffix _test.go).

// EnvProvider exports the envProvider interface for testing.
type EnvProvider = envProvider
