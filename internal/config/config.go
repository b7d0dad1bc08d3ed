package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Rect is a rectangular region expressed as fractions of the frame
// size, so the same clock region works across resolutions.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// holds all tunables of the segmentation pipeline
type Config struct {
	// SamplingIntervalSeconds is the spacing between sampled frames.
	SamplingIntervalSeconds float64

	// ClockRegion is the area of the frame searched for the in-game clock.
	ClockRegion Rect

	// MaxJumpSeconds bounds how far a decoded clock value may deviate
	// from the expected advance before it is dropped as an outlier.
	MaxJumpSeconds float64

	// MaxGapSamples is the longest run of unreadable or dropped samples
	// that is bridged by interpolation instead of ending the segment.
	MaxGapSamples int

	// MinSegmentSeconds discards detected segments shorter than this.
	MinSegmentSeconds float64

	// MinGapToMergeSeconds merges adjacent segments separated by less
	// than this (momentary HUD occlusion across a hard break).
	MinGapToMergeSeconds float64

	// ResetMaxElapsedSeconds is the largest clock value still treated as
	// the start of a new match when the clock drops.
	ResetMaxElapsedSeconds int

	// OCRTimeout bounds a single OCR invocation. A frame that times out
	// is counted as unreadable, not fatal.
	OCRTimeout time.Duration

	// Concurrency is the OCR worker pool size.
	Concurrency int

	// Binary overrides, usually populated from the environment.
	FFmpegPath    string
	FFprobePath   string
	TesseractPath string
}

// Default returns the tuning used for League of Legends VODs with the
// clock in the top-right HUD.
func Default() Config {
	return Config{
		SamplingIntervalSeconds: 3.0,
		ClockRegion:             Rect{X: 0.68, Y: 0.00, W: 0.32, H: 0.22},
		MaxJumpSeconds:          10,
		MaxGapSamples:           10,
		MinSegmentSeconds:       120,
		MinGapToMergeSeconds:    90,
		ResetMaxElapsedSeconds:  120,
		OCRTimeout:              10 * time.Second,
		Concurrency:             4,
	}
}

// Load returns the default configuration with binary paths taken from
// the environment. A .env file in the working directory is honored if
// present.
func Load() Config {
	_ = godotenv.Load()

	cfg := Default()
	cfg.FFmpegPath = os.Getenv("FFMPEG_BIN")
	cfg.FFprobePath = os.Getenv("FFPROBE_BIN")
	cfg.TesseractPath = os.Getenv("TESSERACT_CMD")
	return cfg
}

func (c Config) Validate() error {
	if c.SamplingIntervalSeconds <= 0 {
		return fmt.Errorf("sampling interval must be > 0, got %v", c.SamplingIntervalSeconds)
	}
	if err := c.ClockRegion.Validate(); err != nil {
		return fmt.Errorf("clock region: %w", err)
	}
	if c.MaxJumpSeconds <= 0 {
		return fmt.Errorf("max jump must be > 0, got %v", c.MaxJumpSeconds)
	}
	if c.MaxGapSamples < 0 {
		return fmt.Errorf("max gap samples must be >= 0, got %d", c.MaxGapSamples)
	}
	if c.MinSegmentSeconds < 0 {
		return fmt.Errorf("min segment must be >= 0, got %v", c.MinSegmentSeconds)
	}
	if c.MinGapToMergeSeconds < 0 {
		return fmt.Errorf("merge gap must be >= 0, got %v", c.MinGapToMergeSeconds)
	}
	if c.ResetMaxElapsedSeconds < 0 {
		return fmt.Errorf("reset threshold must be >= 0, got %d", c.ResetMaxElapsedSeconds)
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be > 0, got %d", c.Concurrency)
	}
	return nil
}

func (r Rect) Validate() error {
	if r.W <= 0 || r.H <= 0 {
		return fmt.Errorf("width and height must be > 0")
	}
	if r.X < 0 || r.Y < 0 || r.X+r.W > 1 || r.Y+r.H > 1 {
		return fmt.Errorf("region must lie within the frame (fractions in [0,1])")
	}
	return nil
}
