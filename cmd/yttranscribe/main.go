package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/RobertsBatars/yt-transcribe-ai/internal/audio"
	"github.com/RobertsBatars/yt-transcribe-ai/internal/cli"
	"github.com/RobertsBatars/yt-transcribe-ai/internal/config"
	"github.com/RobertsBatars/yt-transcribe-ai/internal/download"
	"github.com/RobertsBatars/yt-transcribe-ai/internal/ffmpeg"
	"github.com/RobertsBatars/yt-transcribe-ai/internal/transcribe"
)

// Injected at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// Exit codes.
const (
	ExitOK            = 0
	ExitGeneral       = 1
	ExitUsage         = 2
	ExitSetup         = 3
	ExitValidation    = 4
	ExitTranscription = 5
	ExitInterrupt     = 130
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	// Context with signal cancellation.
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	env := cli.DefaultEnv()

	rootCmd := &cobra.Command{
		Use:     "yttranscribe",
		Short:   "Transcribe local audio files and YouTube videos",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		// Silence Cobra's default error/usage printing; we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.AddCommand(cli.TranscribeCmd(env))
	rootCmd.AddCommand(cli.BatchCmd(env))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps errors to exit codes.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	// Interrupt.
	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}

	// Usage errors: Cobra flag/arg parsing errors.
	if isCobraUsageError(err) {
		return ExitUsage
	}

	// Setup errors: missing binaries or credentials.
	if errors.Is(err, ffmpeg.ErrNotFound) || errors.Is(err, download.ErrYTDLPNotFound) ||
		errors.Is(err, cli.ErrAPIKeyMissing) {
		return ExitSetup
	}

	// Validation errors: bad input or configuration.
	if errors.Is(err, cli.ErrFileNotFound) || errors.Is(err, cli.ErrUnsupportedFormat) ||
		errors.Is(err, cli.ErrOutputExists) || errors.Is(err, cli.ErrNoURLs) ||
		errors.Is(err, audio.ErrFileNotFound) || errors.Is(err, audio.ErrInvalidLimits) ||
		errors.Is(err, audio.ErrPlanInvalid) || errors.Is(err, config.ErrInvalidValue) {
		return ExitValidation
	}

	// Transcription errors: the pipeline itself failed.
	if errors.Is(err, audio.ErrLoadFailed) || errors.Is(err, audio.ErrExportFailed) ||
		errors.Is(err, audio.ErrChunkTooLarge) || errors.Is(err, download.ErrDownloadFailed) ||
		errors.Is(err, transcribe.ErrRateLimit) || errors.Is(err, transcribe.ErrQuotaExceeded) ||
		errors.Is(err, transcribe.ErrTimeout) || errors.Is(err, transcribe.ErrAuthFailed) ||
		errors.Is(err, transcribe.ErrBadRequest) {
		return ExitTranscription
	}

	return ExitGeneral
}

// cobraUsageErrorPatterns contains error message substrings that indicate
// Cobra usage errors. Cobra doesn't expose typed errors, so string
// matching is the only reliable approach; these patterns are stable
// across Cobra versions (tested with v1.8+).
var cobraUsageErrorPatterns = []string{
	"required flag",
	"unknown flag",
	"unknown shorthand",
	"flag needs an argument",
	"invalid argument",
	"accepts ",
	"requires at least",
	"requires at most",
}

// isCobraUsageError checks if an error is a Cobra usage/parsing error.
func isCobraUsageError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
