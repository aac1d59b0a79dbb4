package audio

import (
	"fmt"
	"time"
)

// Plan is the derived cutting scheme for one asset: how long each chunk
// may be so that, exported at the assumed bitrate, it stays within the
// per-chunk byte budget.
type Plan struct {
	ChunkDuration    time.Duration // Maximum per-chunk duration, whole milliseconds.
	ChunkBudgetBytes int64         // Implied byte budget per chunk at the assumed bitrate.
}

// PlanChunks computes a safe per-chunk duration from the byte budget
// and the assumed bitrate, discounted by the safety margin. Performs no
// I/O. Fails with ErrPlanInvalid when the bitrate yields a non-positive
// byte rate or the computed duration is at or below the viable minimum;
// in both cases splitting must not proceed.
func PlanChunks(l Limits) (Plan, error) {
	bytesPerSecond := float64(l.BitrateKbps) * 1000 / 8
	if bytesPerSecond <= 0 {
		return Plan{}, fmt.Errorf("%w: bitrate %d kbps yields non-positive byte rate",
			ErrPlanInvalid, l.BitrateKbps)
	}

	maxSeconds := float64(l.SafeChunkBytes) / bytesPerSecond * (1 - l.SafetyMargin)
	chunkDuration := time.Duration(maxSeconds*1000) * time.Millisecond

	if chunkDuration <= l.MinChunkDuration {
		return Plan{}, fmt.Errorf("%w: computed chunk duration %v is at or below the %v minimum",
			ErrPlanInvalid, chunkDuration, l.MinChunkDuration)
	}

	return Plan{
		ChunkDuration:    chunkDuration,
		ChunkBudgetBytes: int64(chunkDuration.Seconds() * bytesPerSecond),
	}, nil
}
