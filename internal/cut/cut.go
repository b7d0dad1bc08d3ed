package cut

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/Toma-bot/twitchtoYt/internal/ffmpeg"
	"github.com/Toma-bot/twitchtoYt/internal/segment"
)

// Options controls how segments are exported.
type Options struct {
	// Reencode trades speed for frame-accurate cuts. The default stream
	// copy snaps to the nearest keyframe.
	Reencode bool

	// FFmpegPath overrides the ffmpeg binary; empty falls back to the
	// environment and PATH.
	FFmpegPath string
}

// Clip records one exported file.
type Clip struct {
	File        string  `json:"file"`
	StartSec    float64 `json:"start_sec"`
	EndSec      float64 `json:"end_sec"`
	DurationSec float64 `json:"duration_sec"`
}

// Manifest describes one export run.
type Manifest struct {
	RunID     string    `json:"run_id"`
	Input     string    `json:"input"`
	CreatedAt time.Time `json:"created_at"`
	Clips     []Clip    `json:"clips"`
}

// Export cuts each segment of the input video into outDir as
// Game_NN.mp4 and returns the written clips in segment order.
func Export(ctx context.Context, inputPath string, segments []segment.Segment, outDir string, opts Options) ([]Clip, error) {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("input file not found: %s", inputPath)
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	ffmpegPath := opts.FFmpegPath
	if ffmpegPath == "" {
		p, err := ffmpegbin.FFmpegPath()
		if err != nil {
			return nil, err
		}
		ffmpegPath = p
	}

	clips := make([]Clip, 0, len(segments))
	for i, seg := range segments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		outPath := filepath.Join(outDir, ClipName(i))

		err := cutStream(inputPath, outPath, seg, opts).
			SetFfmpegPath(ffmpegPath).
			Silent(true).
			Run()
		if err != nil {
			return nil, fmt.Errorf("failed to cut segment %d: %w", i+1, err)
		}

		clips = append(clips, Clip{
			File:        outPath,
			StartSec:    seg.Start,
			EndSec:      seg.End,
			DurationSec: seg.Duration(),
		})
	}

	return clips, nil
}

// cutStream assembles the ffmpeg invocation for one segment. Seeking
// is input-side so stream copy jumps straight to the segment instead
// of demuxing the whole VOD up to it.
func cutStream(inputPath, outPath string, seg segment.Segment, opts Options) *ffmpeg.Stream {
	kwargs := ffmpeg.KwArgs{}
	if opts.Reencode {
		kwargs["c:v"] = "libx264"
		kwargs["preset"] = "veryfast"
		kwargs["crf"] = 20
		kwargs["c:a"] = "aac"
		kwargs["b:a"] = "160k"
	} else {
		kwargs["c"] = "copy"
	}

	return ffmpeg.Input(inputPath, ffmpeg.KwArgs{"ss": seg.Start, "to": seg.End}).
		Output(outPath, kwargs).
		OverWriteOutput()
}

// ClipName returns the output file name for the i-th segment.
func ClipName(i int) string {
	return fmt.Sprintf("Game_%02d.mp4", i+1)
}
