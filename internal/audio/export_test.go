package audio

// Export internal functions for testing.
// This file is only compiled during tests (suffix _test.go).

// ParseFFmpegDuration exports parseFFmpegDuration for testing.
var ParseFFmpegDuration = parseFFmpegDuration

// ParseClock exports parseClock for testing.
var ParseClock = parseClock

// FormatFFmpegTime exports formatFFmpegTime for testing.
var FormatFFmpegTime = formatFFmpegTime

// ScratchPattern exports scratchPattern for testing.
var ScratchPattern = scratchPattern

// --- Splitter dependency injection exports ---

// CommandRunner exports commandRunner interface for testing.
type CommandRunner = commandRunner

// TempDirCreator exports tempDirCreator interface for testing.
type TempDirCreator = tempDirCreator

// FileRemover exports fileRemover interface for testing.
type FileRemover = fileRemover

// FileStatter exports fileStatter interface for testing.
type FileStatter = fileStatter
