package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/RobertsBatars/yt-transcribe-ai/internal/ffmpeg"
	"github.com/RobertsBatars/yt-transcribe-ai/internal/format"
)

// Compile-time interface implementation check.
var _ Splitter = (*FFmpegSplitter)(nil)

// scratchPrefix marks per-run scratch directories so cleanup can verify
// it is deleting a directory this package created.
const scratchPrefix = "yt-transcribe-"

// Splitter materializes an asset as an ordered sequence of
// bounded-duration chunk files. The returned chunks share one scratch
// directory; the caller removes it via CleanupChunks after use.
type Splitter interface {
	Split(ctx context.Context, asset Asset, chunkDuration time.Duration) ([]Chunk, error)
}

// FFmpegSplitter cuts an asset into consecutive, non-overlapping
// intervals of the planned duration (the final interval may be
// shorter), re-encoding each chunk at the assumed bitrate so the
// planner's byte budget holds.
type FFmpegSplitter struct {
	ffmpegPath string
	limits     Limits

	// Injectable dependencies (defaults to OS implementations).
	cmd     commandRunner
	tempDir tempDirCreator
	files   fileRemover
	statter fileStatter
}

// SplitterOption configures an FFmpegSplitter.
type SplitterOption func(*FFmpegSplitter)

// WithCommandRunner sets the command runner.
func WithCommandRunner(r commandRunner) SplitterOption {
	return func(s *FFmpegSplitter) { s.cmd = r }
}

// WithTempDirCreator sets the temp directory creator.
func WithTempDirCreator(t tempDirCreator) SplitterOption {
	return func(s *FFmpegSplitter) { s.tempDir = t }
}

// WithFileRemover sets the file remover.
func WithFileRemover(f fileRemover) SplitterOption {
	return func(s *FFmpegSplitter) { s.files = f }
}

// WithFileStatter sets the file statter.
func WithFileStatter(st fileStatter) SplitterOption {
	return func(s *FFmpegSplitter) { s.statter = st }
}

// NewFFmpegSplitter creates a splitter bound to an FFmpeg binary and an
// explicit set of limits.
func NewFFmpegSplitter(ffmpegPath string, limits Limits, opts ...SplitterOption) (*FFmpegSplitter, error) {
	if ffmpegPath == "" {
		return nil, fmt.Errorf("ffmpegPath cannot be empty: %w", ffmpeg.ErrNotFound)
	}
	if err := limits.Validate(); err != nil {
		return nil, err
	}

	s := &FFmpegSplitter{
		ffmpegPath: ffmpegPath,
		limits:     limits,
		cmd:        osCommandRunner{},
		tempDir:    osTempDirCreator{},
		files:      osFileRemover{},
		statter:    osFileStatter{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Split partitions the asset into chunks of at most chunkDuration.
// Every exported chunk is verified to be strictly below the hard limit;
// a violation aborts the whole operation. On any error the scratch
// directory is removed before returning, so partially split state never
// leaks to the caller.
func (s *FFmpegSplitter) Split(ctx context.Context, asset Asset, chunkDuration time.Duration) ([]Chunk, error) {
	total, err := s.probeDuration(ctx, asset.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadFailed, asset.Path, err)
	}

	scratch, err := s.tempDir.MkdirTemp("", scratchPattern(asset.Path))
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}

	var chunks []Chunk
	for i := 0; ; i++ {
		start := time.Duration(i) * chunkDuration
		if start >= total {
			break
		}
		end := min(start+chunkDuration, total)

		chunkPath := filepath.Join(scratch, fmt.Sprintf("chunk_%03d.mp3", i))
		if err := s.exportChunk(ctx, asset.Path, chunkPath, start, end); err != nil {
			_ = s.files.RemoveAll(scratch) // best-effort; original error takes precedence
			return nil, err
		}

		info, err := s.statter.Stat(chunkPath)
		if err != nil {
			_ = s.files.RemoveAll(scratch)
			return nil, fmt.Errorf("%w: cannot stat %s: %v", ErrExportFailed, chunkPath, err)
		}
		if info.Size() >= s.limits.HardLimitBytes {
			_ = s.files.RemoveAll(scratch)
			return nil, fmt.Errorf("%w: %s is %s (limit %s)",
				ErrChunkTooLarge, filepath.Base(chunkPath),
				format.Size(info.Size()), format.Size(s.limits.HardLimitBytes))
		}

		chunks = append(chunks, Chunk{
			Path:  chunkPath,
			Index: i,
			Start: start,
			End:   end,
		})

		if end >= total {
			break
		}
	}

	return chunks, nil
}

// scratchPattern returns the MkdirTemp pattern for an asset's scratch
// directory, scoped to the asset name so concurrent runs over different
// assets never collide.
func scratchPattern(assetPath string) string {
	base := strings.TrimSuffix(filepath.Base(assetPath), filepath.Ext(assetPath))
	return scratchPrefix + format.SanitizeFilename(base) + "-*"
}

// exportChunk extracts [start, end) from srcPath into chunkPath,
// re-encoded at the assumed constant bitrate. Planning and export must
// use the same bitrate or the byte-budget guarantee is void.
func (s *FFmpegSplitter) exportChunk(ctx context.Context, srcPath, chunkPath string, start, end time.Duration) error {
	args := []string{
		"-y",
		"-i", srcPath,
		"-ss", formatFFmpegTime(start),
		"-to", formatFFmpegTime(end),
		"-vn",
		"-c:a", "libmp3lame",
		"-b:a", fmt.Sprintf("%dk", s.limits.BitrateKbps),
		chunkPath,
	}

	output, err := s.cmd.CombinedOutput(ctx, s.ffmpegPath, args)
	if err != nil {
		return fmt.Errorf("%w: %s: %v\nOutput: %s",
			ErrExportFailed, filepath.Base(chunkPath), err, string(output))
	}
	return nil
}

// probeDuration returns the duration of an audio file using ffmpeg.
func (s *FFmpegSplitter) probeDuration(ctx context.Context, audioPath string) (time.Duration, error) {
	// Decode to the null muxer; ffmpeg prints stream info including
	// duration on stderr. Exit status is non-zero in some setups even
	// when the info is printed, so try parsing regardless.
	args := []string{
		"-i", audioPath,
		"-f", "null", "-",
	}
	output, err := s.cmd.CombinedOutput(ctx, s.ffmpegPath, args)
	if err != nil && len(output) == 0 {
		return 0, err
	}

	return parseFFmpegDuration(string(output))
}

// Duration line patterns in FFmpeg stderr:
//
//	Duration: 00:05:23.45
//	time=00:05:23.45 (progress lines; the last one is the final time)
var (
	durationRe = regexp.MustCompile(`Duration:\s*(\d+):(\d+):(\d+)\.(\d+)`)
	timeRe     = regexp.MustCompile(`time=(\d+):(\d+):(\d+)\.(\d+)`)
)

// parseFFmpegDuration extracts the source duration from FFmpeg output.
func parseFFmpegDuration(output string) (time.Duration, error) {
	if m := durationRe.FindStringSubmatch(output); m != nil {
		return parseClock(m[1], m[2], m[3], m[4]), nil
	}

	// Fall back to the last progress timestamp.
	all := timeRe.FindAllStringSubmatch(output, -1)
	if len(all) > 0 {
		m := all[len(all)-1]
		return parseClock(m[1], m[2], m[3], m[4]), nil
	}

	return 0, fmt.Errorf("no duration in ffmpeg output")
}

// parseClock converts HH, MM, SS and a fractional-second component of
// arbitrary precision to a Duration.
func parseClock(hours, minutes, seconds, fractional string) time.Duration {
	h, _ := strconv.Atoi(hours)
	m, _ := strconv.Atoi(minutes)
	sec, _ := strconv.Atoi(seconds)

	// Normalize the fractional part to milliseconds.
	frac, _ := strconv.Atoi(fractional)
	for n := len(fractional); n < 3; n++ {
		frac *= 10
	}
	for n := len(fractional); n > 3; n-- {
		frac /= 10
	}

	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(sec)*time.Second +
		time.Duration(frac)*time.Millisecond
}

// formatFFmpegTime formats a duration for FFmpeg -ss/-to arguments.
func formatFFmpegTime(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := d.Seconds() - float64(h*3600+m*60)
	return fmt.Sprintf("%02d:%02d:%06.3f", h, m, s)
}

// CleanupChunks removes the chunk files and their scratch directory.
// Safe to call with chunks whose files are already gone.
func CleanupChunks(chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	// All chunks of a run live in the same scratch directory.
	scratch := filepath.Dir(chunks[0].Path)

	// Refuse to remove directories this package did not create; fall
	// back to removing the individual files.
	if !strings.Contains(filepath.Base(scratch), scratchPrefix) {
		for _, c := range chunks {
			_ = os.Remove(c.Path) // best-effort; files may already be gone
		}
		return nil
	}

	return os.RemoveAll(scratch)
}
