package audio

import "errors"

// ErrFileNotFound indicates the specified input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrInvalidLimits indicates the size/encoding assumptions are inconsistent.
var ErrInvalidLimits = errors.New("invalid limits")

// ErrPlanInvalid indicates the chunk-duration computation degenerated
// (non-positive bitrate or a chunk shorter than the viable minimum).
var ErrPlanInvalid = errors.New("invalid chunk plan")

// ErrLoadFailed indicates the source asset could not be read or decoded.
var ErrLoadFailed = errors.New("cannot load source audio")

// ErrExportFailed indicates FFmpeg failed to write a chunk file.
var ErrExportFailed = errors.New("chunk export failed")

// ErrChunkTooLarge indicates an exported chunk still meets or exceeds
// the hard service limit.
var ErrChunkTooLarge = errors.New("chunk exceeds hard size limit")
