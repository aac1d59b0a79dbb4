// Package format provides small display and filename helpers shared by
// the CLI and domain packages.
package format

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Duration formats a duration as HH:MM:SS or MM:SS.
func Duration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// Size formats a size in bytes for human display.
// Uses MB for sizes >= 1MB, KB otherwise.
func Size(bytes int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
	)
	if bytes >= mb {
		return fmt.Sprintf("%.2f MB", float64(bytes)/mb)
	}
	if bytes >= kb {
		return fmt.Sprintf("%d KB", bytes/kb)
	}
	return fmt.Sprintf("%d bytes", bytes)
}

var (
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	underscoreRuns       = regexp.MustCompile(`_+`)
)

// SanitizeFilename turns an arbitrary string (typically a video title)
// into a safe base filename. Characters that are invalid on common
// filesystems become underscores, runs of underscores collapse, and
// leading/trailing underscores and spaces are trimmed. Returns
// "untitled" when nothing usable remains.
func SanitizeFilename(name string) string {
	name = invalidFilenameChars.ReplaceAllString(name, "_")
	name = underscoreRuns.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_ ")
	if name == "" {
		return "untitled"
	}
	return name
}
