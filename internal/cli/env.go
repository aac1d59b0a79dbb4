package cli

import (
	"context"
	"io"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"github.com/RobertsBatars/yt-transcribe-ai/internal/audio"
	"github.com/RobertsBatars/yt-transcribe-ai/internal/config"
	"github.com/RobertsBatars/yt-transcribe-ai/internal/download"
	"github.com/RobertsBatars/yt-transcribe-ai/internal/ffmpeg"
	"github.com/RobertsBatars/yt-transcribe-ai/internal/transcribe"
)

// EnvOpenAIAPIKey holds the OpenAI API key.
const EnvOpenAIAPIKey = "OPENAI_API_KEY"

// Env holds injectable dependencies for CLI commands. This is the
// central injection point for testing commands in isolation; all
// fields have production defaults via DefaultEnv.
type Env struct {
	// I/O and environment
	Stderr io.Writer
	Getenv func(string) string

	// Factories for domain objects
	ConfigLoader       ConfigLoader
	FFmpegResolver     FFmpegResolver
	YTDLPResolver      YTDLPResolver
	SplitterFactory    SplitterFactory
	TranscriberFactory TranscriberFactory
	DownloaderFactory  DownloaderFactory
}

// ConfigLoader loads user configuration.
type ConfigLoader interface {
	Load() (config.Config, error)
}

// FFmpegResolver resolves the path to the FFmpeg binary.
type FFmpegResolver interface {
	Resolve() (string, error)
}

// YTDLPResolver resolves the path to the yt-dlp binary.
type YTDLPResolver interface {
	Resolve(getenv func(string) string) (string, error)
}

// SplitterFactory creates audio splitters.
type SplitterFactory interface {
	NewSplitter(ffmpegPath string, limits audio.Limits) (audio.Splitter, error)
}

// TranscriberFactory creates transcribers for audio-to-text conversion.
type TranscriberFactory interface {
	NewTranscriber(apiKey string) transcribe.Transcriber
}

// Downloader fetches a URL's audio track.
type Downloader interface {
	Fetch(ctx context.Context, url string) (download.Audio, error)
}

// DownloaderFactory creates downloaders.
type DownloaderFactory interface {
	NewDownloader(ytdlpPath string, bitrateKbps int, workDir string) (Downloader, error)
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) { e.Stderr = w }
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) { e.Getenv = fn }
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) { e.ConfigLoader = l }
}

// WithFFmpegResolver sets the FFmpeg resolver.
func WithFFmpegResolver(r FFmpegResolver) EnvOption {
	return func(e *Env) { e.FFmpegResolver = r }
}

// WithYTDLPResolver sets the yt-dlp resolver.
func WithYTDLPResolver(r YTDLPResolver) EnvOption {
	return func(e *Env) { e.YTDLPResolver = r }
}

// WithSplitterFactory sets the splitter factory.
func WithSplitterFactory(f SplitterFactory) EnvOption {
	return func(e *Env) { e.SplitterFactory = f }
}

// WithTranscriberFactory sets the transcriber factory.
func WithTranscriberFactory(f TranscriberFactory) EnvOption {
	return func(e *Env) { e.TranscriberFactory = f }
}

// WithDownloaderFactory sets the downloader factory.
func WithDownloaderFactory(f DownloaderFactory) EnvOption {
	return func(e *Env) { e.DownloaderFactory = f }
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stderr:             os.Stderr,
		Getenv:             os.Getenv,
		ConfigLoader:       &defaultConfigLoader{},
		FFmpegResolver:     &defaultFFmpegResolver{},
		YTDLPResolver:      &defaultYTDLPResolver{},
		SplitterFactory:    &defaultSplitterFactory{},
		TranscriberFactory: &defaultTranscriberFactory{},
		DownloaderFactory:  &defaultDownloaderFactory{},
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

// defaultConfigLoader implements ConfigLoader using the config package.
type defaultConfigLoader struct{}

func (defaultConfigLoader) Load() (config.Config, error) {
	return config.Load()
}

// defaultFFmpegResolver implements FFmpegResolver using the ffmpeg package.
type defaultFFmpegResolver struct{}

func (defaultFFmpegResolver) Resolve() (string, error) {
	return ffmpeg.Resolve()
}

// defaultYTDLPResolver implements YTDLPResolver using the download package.
type defaultYTDLPResolver struct{}

func (defaultYTDLPResolver) Resolve(getenv func(string) string) (string, error) {
	return download.Resolve(getenv)
}

// defaultSplitterFactory implements SplitterFactory using the audio package.
type defaultSplitterFactory struct{}

func (defaultSplitterFactory) NewSplitter(ffmpegPath string, limits audio.Limits) (audio.Splitter, error) {
	return audio.NewFFmpegSplitter(ffmpegPath, limits)
}

// defaultTranscriberFactory implements TranscriberFactory using OpenAI.
type defaultTranscriberFactory struct{}

func (defaultTranscriberFactory) NewTranscriber(apiKey string) transcribe.Transcriber {
	client := openai.NewClient(apiKey)
	return transcribe.NewWhisperTranscriber(client)
}

// defaultDownloaderFactory implements DownloaderFactory using yt-dlp.
type defaultDownloaderFactory struct{}

func (defaultDownloaderFactory) NewDownloader(ytdlpPath string, bitrateKbps int, workDir string) (Downloader, error) {
	return download.NewDownloader(ytdlpPath, bitrateKbps, workDir)
}

// Compile-time interface verification.
var (
	_ ConfigLoader       = (*defaultConfigLoader)(nil)
	_ FFmpegResolver     = (*defaultFFmpegResolver)(nil)
	_ YTDLPResolver      = (*defaultYTDLPResolver)(nil)
	_ SplitterFactory    = (*defaultSplitterFactory)(nil)
	_ TranscriberFactory = (*defaultTranscriberFactory)(nil)
	_ DownloaderFactory  = (*defaultDownloaderFactory)(nil)
)
