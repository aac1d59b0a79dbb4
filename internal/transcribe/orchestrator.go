package transcribe

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/RobertsBatars/yt-transcribe-ai/internal/audio"
)

// ProgressFunc receives human-readable progress lines. Nil suppresses
// progress output.
type ProgressFunc func(msg string)

// Orchestrator drives the split-or-direct transcription of one asset:
// it decides by size, plans and splits when needed, transcribes chunks
// strictly sequentially, joins the texts in index order, and removes
// every temporary artifact before returning, whatever the outcome.
//
// Transcription is deliberately sequential: the remote service is a
// shared rate-limited resource, so at most one request is in flight.
type Orchestrator struct {
	limits      audio.Limits
	splitter    audio.Splitter
	transcriber Transcriber
	files       fileRemover
	progress    ProgressFunc
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithProgress sets the progress callback.
func WithProgress(fn ProgressFunc) OrchestratorOption {
	return func(o *Orchestrator) { o.progress = fn }
}

// WithFileRemover sets the file remover.
func WithFileRemover(f fileRemover) OrchestratorOption {
	return func(o *Orchestrator) { o.files = f }
}

// NewOrchestrator creates an Orchestrator from its collaborators.
func NewOrchestrator(limits audio.Limits, splitter audio.Splitter, transcriber Transcriber, opts ...OrchestratorOption) (*Orchestrator, error) {
	if err := limits.Validate(); err != nil {
		return nil, err
	}
	if splitter == nil {
		return nil, fmt.Errorf("splitter cannot be nil")
	}
	if transcriber == nil {
		return nil, fmt.Errorf("transcriber cannot be nil")
	}

	o := &Orchestrator{
		limits:      limits,
		splitter:    splitter,
		transcriber: transcriber,
		files:       osFileRemover{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Transcribe produces the transcript of an asset. Success returns the
// full text; any failure returns a non-nil error and no text, never a
// partial transcript. Callers are expected to log the failure and move
// on to their next asset.
func (o *Orchestrator) Transcribe(ctx context.Context, asset audio.Asset) (string, error) {
	if audio.Decide(asset.Size, o.limits.HardLimitBytes) == audio.DecisionDirect {
		o.report(fmt.Sprintf("Transcribing %s directly", filepath.Base(asset.Path)))
		text, err := o.transcriber.Transcribe(ctx, asset.Path)
		if err != nil {
			return "", fmt.Errorf("transcribe %s: %w", filepath.Base(asset.Path), err)
		}
		return text, nil
	}

	plan, err := audio.PlanChunks(o.limits)
	if err != nil {
		return "", err
	}

	o.report(fmt.Sprintf("Splitting %s into chunks of up to %.2fs",
		filepath.Base(asset.Path), plan.ChunkDuration.Seconds()))

	chunks, err := o.splitter.Split(ctx, asset, plan.ChunkDuration)
	if err != nil {
		return "", err
	}

	// Unconditional scratch cleanup on every exit path. Chunk files
	// are removed one by one during collection; this catches the rest
	// (remaining chunks after a fail-fast abort) and the directory.
	defer func() {
		_ = audio.CleanupChunks(chunks)
	}()

	texts, err := o.collect(ctx, chunks)
	if err != nil {
		return "", err
	}

	return strings.Join(texts, " "), nil
}

// collect folds over the chunks in index order, short-circuiting on the
// first transcription failure: no further chunks are submitted and
// already-collected texts are discarded. Each chunk file is deleted as
// soon as its transcription attempt resolves, success or failure, to
// bound peak disk usage.
func (o *Orchestrator) collect(ctx context.Context, chunks []audio.Chunk) ([]string, error) {
	texts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		o.report(fmt.Sprintf("Transcribing %s (%d/%d)", chunk, chunk.Index+1, len(chunks)))

		text, err := o.transcriber.Transcribe(ctx, chunk.Path)
		if rmErr := o.files.Remove(chunk.Path); rmErr != nil {
			o.report(fmt.Sprintf("Warning: could not delete %s: %v", chunk.Path, rmErr))
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", chunk, err)
		}

		texts = append(texts, text)
	}
	return texts, nil
}

// report emits a progress line if a callback is set.
func (o *Orchestrator) report(msg string) {
	if o.progress != nil {
		o.progress(msg)
	}
}
