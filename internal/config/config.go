// Package config loads user configuration from a key=value file with
// environment variable fallbacks, and turns it into the explicit
// limits value the planner and splitter are constructed with.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/RobertsBatars/yt-transcribe-ai/internal/audio"
)

// Config keys.
const (
	KeyOutputDir    = "output-dir"
	KeyBitrateKbps  = "bitrate-kbps"
	KeySafetyMargin = "safety-margin"
)

// Environment variable fallbacks.
const (
	EnvOutputDir    = "YT_TRANSCRIBE_OUTPUT_DIR"
	EnvBitrateKbps  = "YT_TRANSCRIBE_BITRATE_KBPS"
	EnvSafetyMargin = "YT_TRANSCRIBE_SAFETY_MARGIN"
)

// ErrInvalidValue indicates a config value could not be parsed.
var ErrInvalidValue = errors.New("invalid config value")

// Config holds user configuration loaded from
// ~/.config/yt-transcribe/config plus environment fallbacks.
type Config struct {
	// OutputDir is where transcript files are written. Empty means the
	// working directory.
	OutputDir string

	// Limits are the size and encoding assumptions for chunking,
	// defaults overridden by config values.
	Limits audio.Limits
}

// dir returns the configuration directory path.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/yt-transcribe.
func dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "yt-transcribe"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "yt-transcribe"), nil
}

// path returns the full path to the config file.
func path() (string, error) {
	d, err := dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "config"), nil
}

// Load reads the configuration file and environment variables.
// Precedence: config file values, then environment fallbacks, then
// defaults. A missing file is not an error.
func Load() (Config, error) {
	cfg := Config{Limits: audio.DefaultLimits()}

	p, err := path()
	if err != nil {
		return cfg, err
	}

	data, err := parseFile(p)
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		data = map[string]string{}
	}

	// Environment fallbacks apply only where the file is silent.
	fallback(data, KeyOutputDir, EnvOutputDir)
	fallback(data, KeyBitrateKbps, EnvBitrateKbps)
	fallback(data, KeySafetyMargin, EnvSafetyMargin)

	cfg.OutputDir = data[KeyOutputDir]

	if v, ok := data[KeyBitrateKbps]; ok {
		kbps, err := strconv.Atoi(v)
		if err != nil || kbps <= 0 {
			return cfg, fmt.Errorf("%w: %s=%q must be a positive integer", ErrInvalidValue, KeyBitrateKbps, v)
		}
		cfg.Limits.BitrateKbps = kbps
	}

	if v, ok := data[KeySafetyMargin]; ok {
		margin, err := strconv.ParseFloat(v, 64)
		if err != nil || margin < 0 || margin >= 1 {
			return cfg, fmt.Errorf("%w: %s=%q must be a fraction in [0, 1)", ErrInvalidValue, KeySafetyMargin, v)
		}
		cfg.Limits.SafetyMargin = margin
	}

	return cfg, nil
}

// fallback fills data[key] from an environment variable when unset.
func fallback(data map[string]string, key, env string) {
	if _, ok := data[key]; ok {
		return
	}
	if v := os.Getenv(env); v != "" {
		data[key] = v
	}
}

// parseFile reads a key=value config file.
// Format: one key=value per line, # comments, empty lines ignored.
func parseFile(p string) (map[string]string, error) {
	f, err := os.Open(p) // #nosec G304 -- config path is constructed from home dir
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	data := make(map[string]string)
	scanner := bufio.NewScanner(f)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid syntax at line %d: %q", lineNum, line)
		}

		data[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return data, nil
}

// ResolveOutputPath resolves the final transcript path:
//  1. If explicit is absolute, use it as-is.
//  2. If explicit is relative and outputDir is set, join them.
//  3. If explicit is empty, join outputDir with defaultName.
func ResolveOutputPath(explicit, outputDir, defaultName string) string {
	if explicit != "" {
		if filepath.IsAbs(explicit) || outputDir == "" {
			return explicit
		}
		return filepath.Join(outputDir, explicit)
	}
	if outputDir == "" {
		return defaultName
	}
	return filepath.Join(outputDir, defaultName)
}
