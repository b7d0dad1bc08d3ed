package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Toma-bot/twitchtoYt/internal/config"
)

// addDetectionFlags registers the segmentation tunables shared by the
// detect and split commands.
func addDetectionFlags(cmd *cobra.Command) {
	def := config.Default()

	cmd.Flags().
		Float64("interval", def.SamplingIntervalSeconds, "Sampling interval in seconds")
	cmd.Flags().
		String("region", formatRegion(def.ClockRegion), "Clock region as x,y,w,h fractions of the frame")
	cmd.Flags().
		Float64("max-jump", def.MaxJumpSeconds, "Max clock deviation from expected advance before a reading is dropped")
	cmd.Flags().
		Int("max-gap", def.MaxGapSamples, "Longest run of unreadable samples bridged by interpolation")
	cmd.Flags().
		Float64("min-segment", def.MinSegmentSeconds, "Discard segments shorter than this many seconds")
	cmd.Flags().
		Float64("merge-gap", def.MinGapToMergeSeconds, "Merge adjacent segments separated by less than this many seconds")
	cmd.Flags().
		Int("reset-max", def.ResetMaxElapsedSeconds, "Largest clock value treated as the start of a new match")
	cmd.Flags().
		Duration("ocr-timeout", def.OCRTimeout, "Per-frame OCR timeout")
	cmd.Flags().
		Int("concurrency", def.Concurrency, "Number of parallel OCR workers")
}

// detectionConfig builds the run configuration from the environment
// and the command's flags.
func detectionConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Load()

	cfg.SamplingIntervalSeconds, _ = cmd.Flags().GetFloat64("interval")
	cfg.MaxJumpSeconds, _ = cmd.Flags().GetFloat64("max-jump")
	cfg.MaxGapSamples, _ = cmd.Flags().GetInt("max-gap")
	cfg.MinSegmentSeconds, _ = cmd.Flags().GetFloat64("min-segment")
	cfg.MinGapToMergeSeconds, _ = cmd.Flags().GetFloat64("merge-gap")
	cfg.ResetMaxElapsedSeconds, _ = cmd.Flags().GetInt("reset-max")
	cfg.OCRTimeout, _ = cmd.Flags().GetDuration("ocr-timeout")
	cfg.Concurrency, _ = cmd.Flags().GetInt("concurrency")

	regionStr, _ := cmd.Flags().GetString("region")
	region, err := parseRegion(regionStr)
	if err != nil {
		return config.Config{}, err
	}
	cfg.ClockRegion = region

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// parseRegion decodes "x,y,w,h" fractions into a Rect.
func parseRegion(s string) (config.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return config.Rect{}, fmt.Errorf("region must be x,y,w,h, got %q", s)
	}

	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return config.Rect{}, fmt.Errorf("invalid region component %q: %w", p, err)
		}
		vals[i] = v
	}

	r := config.Rect{X: vals[0], Y: vals[1], W: vals[2], H: vals[3]}
	if err := r.Validate(); err != nil {
		return config.Rect{}, err
	}
	return r, nil
}

func formatRegion(r config.Rect) string {
	return fmt.Sprintf("%.2f,%.2f,%.2f,%.2f", r.X, r.Y, r.W, r.H)
}

// formatTimestamp renders seconds as HH:MM:SS for segment listings.
func formatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
