package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Toma-bot/twitchtoYt/internal/cut"
)

var splitCmd = &cobra.Command{
	Use:   "split [video_file]",
	Short: "Detect match segments and cut them into one file per match",
	Long: `Split runs detection and then cuts every detected match into its own
file (Game_01.mp4, Game_02.mp4, ...) together with a manifest.json
describing the run.

By default segments are cut with stream copy, which is fast but snaps
to keyframes. Use --reencode for frame-accurate boundaries.

Examples:
  twitchtoyt split vod.mp4
  twitchtoyt split vod.mp4 -o exports/streamer_2026-08-20
  twitchtoyt split vod.mp4 --reencode --min-segment 300`,
	Args: cobra.ExactArgs(1),
	RunE: runSplit,
}

func init() {
	rootCmd.AddCommand(splitCmd)

	addDetectionFlags(splitCmd)
	splitCmd.Flags().Bool("reencode", false, "Re-encode clips instead of stream copy")
}

func runSplit(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	inputPath := args[0]

	cfg, err := detectionConfig(cmd)
	if err != nil {
		return err
	}

	outDir, _ := cmd.Flags().GetString("output")
	if outDir == "" {
		base := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
		outDir = base + "_games"
	}

	res, err := detect(ctx, inputPath, cfg)
	if err != nil {
		return err
	}
	if len(res.Segments) == 0 {
		fmt.Println("No matches detected, nothing to cut.")
		return nil
	}
	printSegments(res)

	reencode, _ := cmd.Flags().GetBool("reencode")

	runID := uuid.NewString()
	logger.Infow("Cutting segments",
		"run_id", runID,
		"output_dir", outDir,
		"reencode", reencode,
	)

	clips, err := cut.Export(ctx, inputPath, res.Segments, outDir, cut.Options{
		Reencode:   reencode,
		FFmpegPath: cfg.FFmpegPath,
	})
	if err != nil {
		return err
	}

	manifest := cut.Manifest{
		RunID:     runID,
		Input:     inputPath,
		CreatedAt: time.Now().UTC(),
		Clips:     clips,
	}
	if err := writeManifest(manifest, filepath.Join(outDir, "manifest.json")); err != nil {
		return err
	}

	fmt.Printf("%d clip(s) written to %s\n", len(clips), outDir)
	return nil
}

func writeManifest(m cut.Manifest, path string) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, append(b, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
