package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/RobertsBatars/yt-transcribe-ai/internal/audio"
	"github.com/RobertsBatars/yt-transcribe-ai/internal/config"
	"github.com/RobertsBatars/yt-transcribe-ai/internal/download"
	"github.com/RobertsBatars/yt-transcribe-ai/internal/format"
	"github.com/RobertsBatars/yt-transcribe-ai/internal/transcribe"
)

// BatchCmd creates the batch command.
func BatchCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <links-file>",
		Short: "Download and transcribe a list of YouTube videos",
		Long: `Download the audio of each YouTube URL in the links file (one URL per
line, # comments ignored) and transcribe it, writing one transcript
file per video named after the video title.

Assets are processed independently: a failed download or transcription
is reported and the batch moves on to the next URL. The next video's
audio is fetched while the current one transcribes; transcription
requests themselves are never issued concurrently.`,
		Example: `  yttranscribe batch links.txt
  YT_TRANSCRIBE_OUTPUT_DIR=transcripts yttranscribe batch links.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, env, args[0])
		},
	}

	return cmd
}

// fetchResult pairs a URL with its download outcome.
type fetchResult struct {
	url   string
	audio download.Audio
	err   error
}

// runBatch executes the links-file pipeline.
func runBatch(cmd *cobra.Command, env *Env, linksPath string) error {
	ctx := cmd.Context()

	// === VALIDATION (fail-fast) ===

	urls, err := readLinks(linksPath)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return fmt.Errorf("%w: %s", ErrNoURLs, linksPath)
	}

	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		return err
	}

	apiKey := env.Getenv(EnvOpenAIAPIKey)
	if apiKey == "" {
		return fmt.Errorf("%w (set it with: export %s=sk-...)", ErrAPIKeyMissing, EnvOpenAIAPIKey)
	}

	// === SETUP ===

	ffmpegPath, err := env.FFmpegResolver.Resolve()
	if err != nil {
		return err
	}

	ytdlpPath, err := env.YTDLPResolver.Resolve(env.Getenv)
	if err != nil {
		return err
	}

	workDir, err := os.MkdirTemp("", "yt-transcribe-dl-*")
	if err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	dl, err := env.DownloaderFactory.NewDownloader(ytdlpPath, cfg.Limits.BitrateKbps, workDir)
	if err != nil {
		return err
	}

	orch, err := newOrchestrator(env, ffmpegPath, cfg.Limits, apiKey)
	if err != nil {
		return err
	}

	fmt.Fprintf(env.Stderr, "Found %d URL(s) to process\n", len(urls))

	// === PIPELINE ===

	// The producer fetches audio one URL at a time; the unbuffered
	// channel keeps it at most one download ahead of the consumer, so
	// the next asset arrives while the current one transcribes without
	// piling downloads up on disk.
	fetches := make(chan fetchResult)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(fetches)
		for _, url := range urls {
			a, err := dl.Fetch(gctx, url)
			select {
			case fetches <- fetchResult{url: url, audio: a, err: err}:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	done := 0
	for res := range fetches {
		if res.err != nil {
			fmt.Fprintf(env.Stderr, "Error: %s: %v\n", res.url, res.err)
			continue
		}
		if err := processAsset(ctx, env, orch, cfg, res); err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			fmt.Fprintf(env.Stderr, "Error: %s: %v\n", res.url, err)
			continue
		}
		done++
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	fmt.Fprintf(env.Stderr, "Done: %d/%d video(s) transcribed\n", done, len(urls))
	return nil
}

// processAsset transcribes one downloaded audio file and writes its
// transcript. The downloaded file is removed whatever the outcome.
func processAsset(ctx context.Context, env *Env, orch *transcribe.Orchestrator, cfg config.Config, res fetchResult) error {
	defer func() { _ = os.Remove(res.audio.Path) }()

	asset, err := audio.StatAsset(res.audio.Path, cfg.Limits.BitrateKbps)
	if err != nil {
		return err
	}

	fmt.Fprintf(env.Stderr, "Transcribing %q (%s)...\n", res.audio.Title, format.Size(asset.Size))

	text, err := orch.Transcribe(ctx, asset)
	if err != nil {
		return err
	}

	outPath := config.ResolveOutputPath("", cfg.OutputDir,
		format.SanitizeFilename(res.audio.Title)+".txt")
	if err := writeTranscript(outPath, text); err != nil {
		return err
	}

	fmt.Fprintf(env.Stderr, "Saved: %s\n", outPath)
	return nil
}

// readLinks reads http(s) URLs from a links file, one per line.
// Blank lines and # comments are ignored.
func readLinks(path string) ([]string, error) {
	f, err := os.Open(path) // #nosec G304 -- user-specified links file
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("cannot read links file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "http://") || strings.HasPrefix(line, "https://") {
			urls = append(urls, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read links file: %w", err)
	}

	return urls, nil
}
