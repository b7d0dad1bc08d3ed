package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Toma-bot/twitchtoYt/internal/clock"
	"github.com/Toma-bot/twitchtoYt/internal/config"
	"github.com/Toma-bot/twitchtoYt/internal/ocr"
	"github.com/Toma-bot/twitchtoYt/internal/pipeline"
	"github.com/Toma-bot/twitchtoYt/internal/segment"
	"github.com/Toma-bot/twitchtoYt/internal/video"
)

var detectCmd = &cobra.Command{
	Use:   "detect [video_file]",
	Short: "Detect match segments in a VOD without cutting it",
	Long: `Detect scans the video at a fixed sampling interval, OCRs the in-game
clock region of each sampled frame, and prints the inferred match
segments.

Examples:
  twitchtoyt detect vod.mp4
  twitchtoyt detect vod.mp4 --interval 2 --min-segment 300
  twitchtoyt detect vod.mp4 --json -o segments.json`,
	Args: cobra.ExactArgs(1),
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)

	addDetectionFlags(detectCmd)
	detectCmd.Flags().Bool("json", false, "Write the full result as JSON")
}

func runDetect(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := detectionConfig(cmd)
	if err != nil {
		return err
	}

	res, err := detect(ctx, args[0], cfg)
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		outputPath, _ := cmd.Flags().GetString("output")
		return writeResultJSON(res, outputPath)
	}

	printSegments(res)
	return nil
}

// detect runs the full segmentation pipeline over one video.
func detect(ctx context.Context, videoPath string, cfg config.Config) (*segment.Result, error) {
	engine, err := ocr.NewTesseract(cfg.TesseractPath)
	if err != nil {
		return nil, err
	}

	src, err := video.Open(ctx, videoPath, video.Binaries{
		FFmpeg:  cfg.FFmpegPath,
		FFprobe: cfg.FFprobePath,
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("Analyzing video",
		"input", videoPath,
		"duration", formatTimestamp(src.Duration),
		"interval", cfg.SamplingIntervalSeconds,
		"concurrency", cfg.Concurrency,
	)

	sampler, err := video.NewSampler(src, cfg.SamplingIntervalSeconds)
	if err != nil {
		return nil, err
	}
	reader := clock.NewReader(engine, cfg.ClockRegion, cfg.OCRTimeout, cfg.FFmpegPath)

	p := pipeline.New(cfg, sampler, reader, logger)
	return p.RunWithDuration(ctx, src.Duration)
}

func printSegments(res *segment.Result) {
	if len(res.Segments) == 0 {
		fmt.Println("No matches detected.")
		return
	}

	fmt.Printf("%d match(es) found:\n", len(res.Segments))
	for i, s := range res.Segments {
		fmt.Printf("  Game %d: %s -> %s (~%s)\n",
			i+1,
			formatTimestamp(s.Start),
			formatTimestamp(s.End),
			formatTimestamp(s.Duration()),
		)
	}
	fmt.Printf("Samples: %d, unreadable: %d, outliers: %d, bridged: %d\n",
		res.Diagnostics.TotalSamples,
		res.Diagnostics.Unreadable,
		res.Diagnostics.Outliers,
		res.Diagnostics.Bridged,
	)
}

func writeResultJSON(res *segment.Result, path string) error {
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	b = append(b, '\n')

	if path == "" {
		_, err = os.Stdout.Write(b)
		return err
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}
