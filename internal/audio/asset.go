// Package audio models audio assets and splits the ones that exceed
// the transcription service's payload limit into ordered,
// bounded-duration chunks.
package audio

import (
	"fmt"
	"os"
	"time"

	"github.com/RobertsBatars/yt-transcribe-ai/internal/format"
)

// Asset identifies a single audio file to transcribe. The bitrate is an
// assumption about the encoding, shared by all duration math; it must
// match the bitrate chunks are exported at or the per-chunk byte budget
// does not hold. Immutable once constructed.
type Asset struct {
	Path        string // Absolute or working-directory-relative path.
	Size        int64  // On-disk size in bytes.
	BitrateKbps int    // Assumed constant bitrate in kilobits/second.
}

// StatAsset builds an Asset from a file on disk.
func StatAsset(path string, bitrateKbps int) (Asset, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Asset{}, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return Asset{}, fmt.Errorf("cannot stat %s: %w", path, err)
	}
	return Asset{Path: path, Size: info.Size(), BitrateKbps: bitrateKbps}, nil
}

// Chunk is one ordered segment of an Asset, backed by a temporary file.
// Chunks belong to the orchestration run that created them and are
// deleted before the run returns, on success and failure alike.
type Chunk struct {
	Path  string        // Path to the exported chunk file.
	Index int           // Zero-based position in the source audio.
	Start time.Duration // Start timestamp in the source audio.
	End   time.Duration // End timestamp in the source audio.
}

// Duration returns the length of this chunk.
func (c Chunk) Duration() time.Duration {
	return c.End - c.Start
}

// String returns a human-readable representation for progress output.
func (c Chunk) String() string {
	return fmt.Sprintf("chunk %d: %s-%s",
		c.Index,
		format.Duration(c.Start),
		format.Duration(c.End))
}
