package audio

import (
	"fmt"
	"time"
)

// Default size and encoding assumptions for the OpenAI Whisper API.
const (
	// DefaultHardLimitBytes is the maximum payload the API accepts.
	DefaultHardLimitBytes = 25 * 1024 * 1024

	// DefaultSafeChunkBytes is the per-chunk byte budget, deliberately
	// below the hard limit to absorb encoding variance.
	DefaultSafeChunkBytes = 24 * 1024 * 1024

	// DefaultBitrateKbps matches the MP3 bitrate yt-dlp extracts at.
	DefaultBitrateKbps = 192

	// DefaultSafetyMargin is the fractional discount applied to the
	// computed maximum chunk duration.
	DefaultSafetyMargin = 0.05

	// DefaultMinChunkDuration is the smallest chunk worth exporting.
	// Plans at or below this are rejected.
	DefaultMinChunkDuration = time.Second
)

// directSendFraction of the hard limit is the threshold below which an
// asset is sent in a single request. A file nominally under the limit
// may still be rejected upstream, so the margin errs toward splitting.
const directSendFraction = 0.98

// Limits carries the size thresholds and encoding assumptions shared by
// planning and splitting. Threaded explicitly into constructors so runs
// with different assumptions can coexist.
type Limits struct {
	HardLimitBytes   int64         // Absolute API payload limit.
	SafeChunkBytes   int64         // Per-chunk byte budget, < HardLimitBytes.
	BitrateKbps      int           // Assumed constant bitrate.
	SafetyMargin     float64       // Fractional duration discount, [0, 1).
	MinChunkDuration time.Duration // Minimum viable chunk duration.
}

// DefaultLimits returns the Whisper API limits with standard margins.
func DefaultLimits() Limits {
	return Limits{
		HardLimitBytes:   DefaultHardLimitBytes,
		SafeChunkBytes:   DefaultSafeChunkBytes,
		BitrateKbps:      DefaultBitrateKbps,
		SafetyMargin:     DefaultSafetyMargin,
		MinChunkDuration: DefaultMinChunkDuration,
	}
}

// Validate reports whether the limits are internally consistent.
// A non-positive bitrate is not checked here: PlanChunks rejects it as
// part of the plan computation.
func (l Limits) Validate() error {
	if l.HardLimitBytes <= 0 {
		return fmt.Errorf("%w: hard limit must be positive, got %d", ErrInvalidLimits, l.HardLimitBytes)
	}
	if l.SafeChunkBytes <= 0 || l.SafeChunkBytes >= l.HardLimitBytes {
		return fmt.Errorf("%w: safety budget %d must be strictly below hard limit %d",
			ErrInvalidLimits, l.SafeChunkBytes, l.HardLimitBytes)
	}
	if l.SafetyMargin < 0 || l.SafetyMargin >= 1 {
		return fmt.Errorf("%w: safety margin %.2f must be in [0, 1)", ErrInvalidLimits, l.SafetyMargin)
	}
	if l.MinChunkDuration <= 0 {
		return fmt.Errorf("%w: minimum chunk duration must be positive, got %v",
			ErrInvalidLimits, l.MinChunkDuration)
	}
	return nil
}

// Decision classifies an asset as directly transcribable or in need of
// splitting.
type Decision int

const (
	// DecisionDirect sends the whole asset in a single request.
	DecisionDirect Decision = iota

	// DecisionSplit cuts the asset into chunks first.
	DecisionSplit
)

// String returns the decision name for progress output.
func (d Decision) String() string {
	if d == DecisionDirect {
		return "direct"
	}
	return "split"
}

// Decide classifies an asset by size. Direct only when the size is
// below 98% of the hard limit; the 2% margin is intentional and must
// not be tightened.
func Decide(sizeBytes, hardLimitBytes int64) Decision {
	if float64(sizeBytes) < float64(hardLimitBytes)*directSendFraction {
		return DecisionDirect
	}
	return DecisionSplit
}
