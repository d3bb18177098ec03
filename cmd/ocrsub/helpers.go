package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"ocrsub/internal/config"
	"ocrsub/internal/extract"
	"ocrsub/internal/frames"
)

// defaultOutputPath swaps the input extension for .srt.
func defaultOutputPath(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + ".srt"
}

func resolvePath(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("path is required")
	}
	return config.ExpandPath(value)
}

// parseStreamDuration accepts Go durations ("95s", "1m35s") and clock values
// ("0:01:35.5").
func parseStreamDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if d, err := time.ParseDuration(value); err == nil {
		if d < 0 {
			return 0, fmt.Errorf("duration %q is negative", value)
		}
		return d, nil
	}
	d, err := frames.ParseClock(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: use 1m35s or H:MM:SS", value)
	}
	return d, nil
}

// recognitionLabel summarizes the options a recognizer-backed source is built with.
func recognitionLabel(cfg *config.Config) string {
	opts := extract.SourceOptionsFromConfig(cfg, nil)
	r := opts.Region
	return fmt.Sprintf("stride %d, region top=%.2f bottom=%.2f left=%.2f right=%.2f", opts.Stride, r.Top, r.Bottom, r.Left, r.Right)
}

// recognitionOverrides names the recognition sections changed from their
// defaults. Frame files already hold sampled, cropped readings, so extract
// cannot apply them.
func recognitionOverrides(cfg *config.Config) []string {
	defaults := config.Default()
	want := extract.SourceOptionsFromConfig(&defaults, nil)
	got := extract.SourceOptionsFromConfig(cfg, nil)
	var names []string
	if got.Stride != want.Stride {
		names = append(names, "sampling")
	}
	if got.Region != want.Region {
		names = append(names, "region")
	}
	return names
}
