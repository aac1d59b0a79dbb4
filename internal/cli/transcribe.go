package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RobertsBatars/yt-transcribe-ai/internal/audio"
	"github.com/RobertsBatars/yt-transcribe-ai/internal/config"
	"github.com/RobertsBatars/yt-transcribe-ai/internal/format"
	"github.com/RobertsBatars/yt-transcribe-ai/internal/transcribe"
)

// supportedFormats lists audio formats accepted by OpenAI's transcription API.
// Source: https://platform.openai.com/docs/guides/speech-to-text
var supportedFormats = map[string]bool{
	".mp3":  true,
	".mp4":  true,
	".mpeg": true,
	".mpga": true,
	".m4a":  true,
	".wav":  true,
	".webm": true,
	".ogg":  true,
	".flac": true,
}

// supportedFormatsList returns a sorted, comma-separated list for error messages.
func supportedFormatsList() string {
	formats := make([]string, 0, len(supportedFormats))
	for ext := range supportedFormats {
		formats = append(formats, strings.TrimPrefix(ext, "."))
	}
	slices.Sort(formats)
	return strings.Join(formats, ", ")
}

// TranscribeCmd creates the transcribe command.
// The env parameter provides injectable dependencies for testing.
func TranscribeCmd(env *Env) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Transcribe a local audio file",
		Long: `Transcribe a local audio file using OpenAI's Whisper API.

Files near the API's 25 MB payload limit are split into bounded-duration
MP3 chunks, transcribed one at a time, and joined back in order. Either
the whole file transcribes or the run fails; partial transcripts are
never written.

Supported formats: flac, m4a, mp3, mp4, mpeg, mpga, ogg, wav, webm`,
		Example: `  yttranscribe transcribe lecture.mp3
  yttranscribe transcribe podcast.mp3 -o podcast-notes.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranscribe(cmd, env, args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (default: <input>.txt)")

	return cmd
}

// runTranscribe executes the single-file transcription pipeline.
func runTranscribe(cmd *cobra.Command, env *Env, inputPath, output string) error {
	ctx := cmd.Context()

	// === VALIDATION (fail-fast) ===

	if _, err := os.Stat(inputPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, inputPath)
		}
		return fmt.Errorf("cannot access input file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(inputPath))
	if !supportedFormats[ext] {
		return fmt.Errorf("unsupported format %q (supported: %s): %w",
			ext, supportedFormatsList(), ErrUnsupportedFormat)
	}

	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		return err
	}

	output = config.ResolveOutputPath(output, cfg.OutputDir, deriveOutputName(inputPath))

	apiKey := env.Getenv(EnvOpenAIAPIKey)
	if apiKey == "" {
		return fmt.Errorf("%w (set it with: export %s=sk-...)", ErrAPIKeyMissing, EnvOpenAIAPIKey)
	}

	// === SETUP ===

	ffmpegPath, err := env.FFmpegResolver.Resolve()
	if err != nil {
		return err
	}

	orch, err := newOrchestrator(env, ffmpegPath, cfg.Limits, apiKey)
	if err != nil {
		return err
	}

	// === TRANSCRIPTION ===

	asset, err := audio.StatAsset(inputPath, cfg.Limits.BitrateKbps)
	if err != nil {
		return err
	}

	fmt.Fprintf(env.Stderr, "Transcribing %s (%s)...\n", filepath.Base(inputPath), format.Size(asset.Size))

	text, err := orch.Transcribe(ctx, asset)
	if err != nil {
		return err
	}

	// === WRITE OUTPUT ===

	if err := writeTranscript(output, text); err != nil {
		return err
	}

	fmt.Fprintf(env.Stderr, "Done: %s\n", output)
	return nil
}

// newOrchestrator wires the splitter, transcriber, and limits into an
// orchestrator with progress lines on stderr.
func newOrchestrator(env *Env, ffmpegPath string, limits audio.Limits, apiKey string) (*transcribe.Orchestrator, error) {
	splitter, err := env.SplitterFactory.NewSplitter(ffmpegPath, limits)
	if err != nil {
		return nil, err
	}

	transcriber := env.TranscriberFactory.NewTranscriber(apiKey)

	return transcribe.NewOrchestrator(limits, splitter, transcriber,
		transcribe.WithProgress(func(msg string) {
			fmt.Fprintln(env.Stderr, msg)
		}),
	)
}
