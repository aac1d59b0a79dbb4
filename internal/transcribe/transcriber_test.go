package transcribe_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/RobertsBatars/yt-transcribe-ai/internal/transcribe"
)

// fakeClient implements the OpenAI transcription slice used by
// WhisperTranscriber.
type fakeClient struct {
	responses []fakeResponse
	calls     int
	paths     []string
}

type fakeResponse struct {
	text string
	err  error
}

func (c *fakeClient) CreateTranscription(_ context.Context, req openai.AudioRequest) (openai.AudioResponse, error) {
	i := c.calls
	c.calls++
	c.paths = append(c.paths, req.FilePath)
	if i >= len(c.responses) {
		return openai.AudioResponse{}, errors.New("unexpected call")
	}
	r := c.responses[i]
	return openai.AudioResponse{Text: r.text}, r.err
}

var _ transcribe.AudioTranscriber = (*fakeClient)(nil)

func apiError(status int, message string) *openai.APIError {
	return &openai.APIError{HTTPStatusCode: status, Message: message}
}

func fastTranscriber(client transcribe.AudioTranscriber, maxRetries int) *transcribe.WhisperTranscriber {
	return transcribe.NewWhisperTranscriberWith(client,
		transcribe.WithMaxRetries(maxRetries),
		transcribe.WithRetryDelays(time.Microsecond, time.Millisecond))
}

// ---------------------------------------------------------------------------
// WhisperTranscriber.Transcribe
// ---------------------------------------------------------------------------

func TestWhisperTranscriber_Transcribe(t *testing.T) {
	t.Parallel()

	t.Run("returns the transcript text", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{responses: []fakeResponse{{text: "hello world"}}}
		tr := fastTranscriber(client, 0)

		got, err := tr.Transcribe(context.Background(), "audio.mp3")
		if err != nil {
			t.Fatalf("Transcribe() error = %v", err)
		}
		if got != "hello world" {
			t.Errorf("Transcribe() = %q, want %q", got, "hello world")
		}
		if client.paths[0] != "audio.mp3" {
			t.Errorf("request FilePath = %q, want %q", client.paths[0], "audio.mp3")
		}
	})

	t.Run("retries rate limits until success", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{responses: []fakeResponse{
			{err: apiError(http.StatusTooManyRequests, "rate limit reached")},
			{err: apiError(http.StatusTooManyRequests, "rate limit reached")},
			{text: "recovered"},
		}}
		tr := fastTranscriber(client, 5)

		got, err := tr.Transcribe(context.Background(), "audio.mp3")
		if err != nil {
			t.Fatalf("Transcribe() error = %v", err)
		}
		if got != "recovered" || client.calls != 3 {
			t.Errorf("got %q after %d calls, want %q after 3", got, client.calls, "recovered")
		}
	})

	t.Run("quota exhaustion is not retried", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{responses: []fakeResponse{
			{err: apiError(http.StatusTooManyRequests, "you exceeded your current quota")},
		}}
		tr := fastTranscriber(client, 5)

		_, err := tr.Transcribe(context.Background(), "audio.mp3")
		if !errors.Is(err, transcribe.ErrQuotaExceeded) {
			t.Errorf("Transcribe() error = %v, want ErrQuotaExceeded", err)
		}
		if client.calls != 1 {
			t.Errorf("got %d calls, want 1", client.calls)
		}
	})

	t.Run("auth failure is not retried", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{responses: []fakeResponse{
			{err: apiError(http.StatusUnauthorized, "invalid api key")},
		}}
		tr := fastTranscriber(client, 5)

		_, err := tr.Transcribe(context.Background(), "audio.mp3")
		if !errors.Is(err, transcribe.ErrAuthFailed) {
			t.Errorf("Transcribe() error = %v, want ErrAuthFailed", err)
		}
		if client.calls != 1 {
			t.Errorf("got %d calls, want 1", client.calls)
		}
	})

	t.Run("exhausted retries surface the rate limit error", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{responses: []fakeResponse{
			{err: apiError(http.StatusTooManyRequests, "rate limit reached")},
			{err: apiError(http.StatusTooManyRequests, "rate limit reached")},
			{err: apiError(http.StatusTooManyRequests, "rate limit reached")},
		}}
		tr := fastTranscriber(client, 2)

		_, err := tr.Transcribe(context.Background(), "audio.mp3")
		if !errors.Is(err, transcribe.ErrRateLimit) {
			t.Errorf("Transcribe() error = %v, want ErrRateLimit", err)
		}
		if client.calls != 3 {
			t.Errorf("got %d calls, want 3", client.calls)
		}
	})
}

// ---------------------------------------------------------------------------
// classifyError / isRetryableError
// ---------------------------------------------------------------------------

func TestClassifyError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "plain rate limit", err: apiError(429, "rate limit reached"), want: transcribe.ErrRateLimit},
		{name: "quota message", err: apiError(429, "you exceeded your current quota"), want: transcribe.ErrQuotaExceeded},
		{name: "billing message", err: apiError(429, "billing hard limit reached"), want: transcribe.ErrQuotaExceeded},
		{name: "unauthorized", err: apiError(401, "invalid api key"), want: transcribe.ErrAuthFailed},
		{name: "request timeout", err: apiError(408, "timeout"), want: transcribe.ErrTimeout},
		{name: "gateway timeout", err: apiError(504, "timeout"), want: transcribe.ErrTimeout},
		{name: "bad request", err: apiError(400, "unsupported file"), want: transcribe.ErrBadRequest},
		{name: "forbidden", err: apiError(403, "forbidden"), want: transcribe.ErrBadRequest},
		{name: "not found", err: apiError(404, "model not found"), want: transcribe.ErrBadRequest},
		{name: "deadline exceeded", err: context.DeadlineExceeded, want: transcribe.ErrTimeout},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := transcribe.ClassifyError(tt.err); !errors.Is(got, tt.want) {
				t.Errorf("ClassifyError() = %v, want wrapped %v", got, tt.want)
			}
		})
	}

	t.Run("unknown errors pass through", func(t *testing.T) {
		t.Parallel()
		err := errors.New("connection refused")
		if got := transcribe.ClassifyError(err); !errors.Is(got, err) {
			t.Errorf("ClassifyError() = %v, want %v", got, err)
		}
	})
}

func TestIsRetryableError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "rate limit", err: transcribe.ErrRateLimit, want: true},
		{name: "timeout", err: transcribe.ErrTimeout, want: true},
		{name: "server error", err: apiError(500, "internal"), want: true},
		{name: "bad gateway", err: apiError(502, "bad gateway"), want: true},
		{name: "service unavailable", err: apiError(503, "overloaded"), want: true},
		{name: "quota exceeded", err: transcribe.ErrQuotaExceeded, want: false},
		{name: "auth failed", err: transcribe.ErrAuthFailed, want: false},
		{name: "bad request", err: transcribe.ErrBadRequest, want: false},
		{name: "unknown", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := transcribe.IsRetryableError(tt.err); got != tt.want {
				t.Errorf("IsRetryableError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
