package transcribe

// Export internal functions for testing.
// This file is only compiled during tests (suffix _test.go).

// AudioTranscriber exports the audioTranscriber interface for testing.
type AudioTranscriber = audioTranscriber

// ClassifyError exports classifyError for testing.
var ClassifyError = classifyError

// IsRetryableError exports isRetryableError for testing.
var IsRetryableError = isRetryableError

// NewWhisperTranscriberWith builds a WhisperTranscriber around an
// arbitrary audioTranscriber so tests can inject fakes.
func NewWhisperTranscriberWith(client audioTranscriber, opts ...TranscriberOption) *WhisperTranscriber {
	t := NewWhisperTranscriber(nil, opts...)
	t.client = client
	return t
}
