// Package download fetches a video's audio track as MP3 via yt-dlp.
package download

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// EnvYTDLPPath overrides binary resolution when set.
const EnvYTDLPPath = "YTDLP_PATH"

// fallbackTitle is used when yt-dlp reports no usable title.
const fallbackTitle = "untitled_video"

// Resolve finds yt-dlp: YTDLP_PATH first (error if set but invalid),
// then the system PATH.
func Resolve(getenv func(string) string) (string, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	if envPath := getenv(EnvYTDLPPath); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("%w: %s is set to %q but no binary exists there",
				ErrYTDLPNotFound, EnvYTDLPPath, envPath)
		}
		return envPath, nil
	}

	if path, err := exec.LookPath("yt-dlp"); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("%w: install it with `pip install yt-dlp` or set %s",
		ErrYTDLPNotFound, EnvYTDLPPath)
}

// Audio is a fetched audio track: the MP3 on disk plus the video title
// the transcript file will be named after. The caller owns the file.
type Audio struct {
	Path  string
	Title string
}

// Downloader fetches YouTube audio as MP3 at a fixed bitrate. The
// bitrate must match the one the chunk planner assumes, or the size
// math downstream is void.
type Downloader struct {
	ytdlpPath   string
	bitrateKbps int
	workDir     string

	// Injectable dependencies (defaults to OS implementations).
	cmd     commandRunner
	statter fileStatter
	newID   func() string
}

// DownloaderOption configures a Downloader.
type DownloaderOption func(*Downloader)

// WithCommandRunner sets the command runner.
func WithCommandRunner(r commandRunner) DownloaderOption {
	return func(d *Downloader) { d.cmd = r }
}

// WithFileStatter sets the file statter.
func WithFileStatter(s fileStatter) DownloaderOption {
	return func(d *Downloader) { d.statter = s }
}

// WithIDFunc sets the work-filename generator (for deterministic tests).
func WithIDFunc(fn func() string) DownloaderOption {
	return func(d *Downloader) { d.newID = fn }
}

// NewDownloader creates a Downloader writing into workDir.
func NewDownloader(ytdlpPath string, bitrateKbps int, workDir string, opts ...DownloaderOption) (*Downloader, error) {
	if ytdlpPath == "" {
		return nil, fmt.Errorf("ytdlpPath cannot be empty: %w", ErrYTDLPNotFound)
	}
	if bitrateKbps <= 0 {
		return nil, fmt.Errorf("bitrate must be positive, got %d", bitrateKbps)
	}

	d := &Downloader{
		ytdlpPath:   ytdlpPath,
		bitrateKbps: bitrateKbps,
		workDir:     workDir,
		cmd:         osCommandRunner{},
		statter:     osFileStatter{},
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Fetch downloads the audio track of url as MP3. Work files are named
// by a fresh unique ID, not the video title, so identically-titled
// videos never collide; the title is returned for the caller to name
// the transcript after.
func (d *Downloader) Fetch(ctx context.Context, url string) (Audio, error) {
	title, err := d.probeTitle(ctx, url)
	if err != nil {
		return Audio{}, err
	}

	id := d.newID()
	outTemplate := filepath.Join(d.workDir, id+".%(ext)s")
	args := []string{
		"--no-playlist",
		"-x",
		"--audio-format", "mp3",
		"--audio-quality", fmt.Sprintf("%dK", d.bitrateKbps),
		"-o", outTemplate,
		url,
	}

	output, err := d.cmd.CombinedOutput(ctx, d.ytdlpPath, args)
	if err != nil {
		return Audio{}, fmt.Errorf("%w: %s: %v\nOutput: %s", ErrDownloadFailed, url, err, string(output))
	}

	// yt-dlp converts to MP3 after extraction, so the final path is known.
	audioPath := filepath.Join(d.workDir, id+".mp3")
	if _, err := d.statter.Stat(audioPath); err != nil {
		return Audio{}, fmt.Errorf("%w: %s: expected %s was not created", ErrDownloadFailed, url, audioPath)
	}

	return Audio{Path: audioPath, Title: title}, nil
}

// probeTitle fetches the video title without downloading.
func (d *Downloader) probeTitle(ctx context.Context, url string) (string, error) {
	args := []string{
		"--no-playlist",
		"--skip-download",
		"--print", "title",
		url,
	}

	output, err := d.cmd.CombinedOutput(ctx, d.ytdlpPath, args)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v\nOutput: %s", ErrDownloadFailed, url, err, string(output))
	}

	title := firstNonEmptyLine(string(output))
	if title == "" {
		title = fallbackTitle
	}
	return title, nil
}

// firstNonEmptyLine returns the first non-blank line of s, trimmed.
func firstNonEmptyLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
