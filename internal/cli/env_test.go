package cli_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/RobertsBatars/yt-transcribe-ai/internal/audio"
	"github.com/RobertsBatars/yt-transcribe-ai/internal/cli"
	"github.com/RobertsBatars/yt-transcribe-ai/internal/config"
	"github.com/RobertsBatars/yt-transcribe-ai/internal/download"
	"github.com/RobertsBatars/yt-transcribe-ai/internal/transcribe"
)

// Shared command-level fakes. Commands receive all their collaborators
// through Env, so these cover both the transcribe and batch tests.

type fakeConfigLoader struct {
	cfg config.Config
	err error
}

func (l *fakeConfigLoader) Load() (config.Config, error) { return l.cfg, l.err }

type fakeFFmpegResolver struct {
	path string
	err  error
}

func (r *fakeFFmpegResolver) Resolve() (string, error) { return r.path, r.err }

type fakeYTDLPResolver struct {
	path string
	err  error
}

func (r *fakeYTDLPResolver) Resolve(func(string) string) (string, error) { return r.path, r.err }

// stubSplitter fails loudly; command tests use assets small enough to
// stay on the direct path.
type stubSplitter struct{}

func (stubSplitter) Split(context.Context, audio.Asset, time.Duration) ([]audio.Chunk, error) {
	return nil, errors.New("splitting not expected in this test")
}

type fakeSplitterFactory struct{}

func (fakeSplitterFactory) NewSplitter(string, audio.Limits) (audio.Splitter, error) {
	return stubSplitter{}, nil
}

// stubTranscriber returns a fixed text and records the submitted paths.
type stubTranscriber struct {
	text  string
	err   error
	paths []string
}

func (s *stubTranscriber) Transcribe(_ context.Context, audioPath string) (string, error) {
	s.paths = append(s.paths, audioPath)
	return s.text, s.err
}

type fakeTranscriberFactory struct {
	tr     transcribe.Transcriber
	apiKey string
}

func (f *fakeTranscriberFactory) NewTranscriber(apiKey string) transcribe.Transcriber {
	f.apiKey = apiKey
	return f.tr
}

type fakeDownloaderFactory struct {
	dl  cli.Downloader
	err error
}

func (f *fakeDownloaderFactory) NewDownloader(string, int, string) (cli.Downloader, error) {
	return f.dl, f.err
}

// fakeFetcher maps URLs to canned download results.
type fakeFetcher struct {
	fetch func(ctx context.Context, url string) (download.Audio, error)
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (download.Audio, error) {
	return f.fetch(ctx, url)
}

// testEnv builds an Env where every external dependency is faked and
// the API key is set.
func testEnv(t *testing.T, tr transcribe.Transcriber, cfg config.Config, extra ...cli.EnvOption) (*cli.Env, *bytes.Buffer) {
	t.Helper()

	var stderr bytes.Buffer
	opts := []cli.EnvOption{
		cli.WithStderr(&stderr),
		cli.WithGetenv(func(key string) string {
			if key == cli.EnvOpenAIAPIKey {
				return "sk-test"
			}
			return ""
		}),
		cli.WithConfigLoader(&fakeConfigLoader{cfg: cfg}),
		cli.WithFFmpegResolver(&fakeFFmpegResolver{path: "/usr/bin/ffmpeg"}),
		cli.WithYTDLPResolver(&fakeYTDLPResolver{path: "/usr/bin/yt-dlp"}),
		cli.WithSplitterFactory(fakeSplitterFactory{}),
		cli.WithTranscriberFactory(&fakeTranscriberFactory{tr: tr}),
	}
	opts = append(opts, extra...)
	return cli.NewEnv(opts...), &stderr
}

// defaultTestConfig is a config with default limits and no output dir.
func defaultTestConfig() config.Config {
	return config.Config{Limits: audio.DefaultLimits()}
}
