package video

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/Toma-bot/twitchtoYt/internal/ffmpeg"
)

// ErrSourceUnavailable marks a video that cannot be opened or decoded.
// It is fatal for the run; the caller may retry the whole run.
var ErrSourceUnavailable = errors.New("video source unavailable")

// Source is an opened video file. Immutable once probed.
type Source struct {
	Path      string
	Duration  float64 // seconds
	FrameRate float64
	Width     int
	Height    int

	ffmpegPath string
}

// Sample is one still frame taken from the source.
type Sample struct {
	Index     int
	Timestamp float64 // seconds from the start of the source
	Image     []byte  // PNG
}

// JSON output from ffprobe
type probeOutput struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Binaries overrides the ffmpeg tool pair used for probing and frame
// extraction. Empty fields fall back to the environment and PATH.
type Binaries struct {
	FFmpeg  string
	FFprobe string
}

// Open probes the video file and returns an immutable Source.
func Open(ctx context.Context, path string, bins Binaries) (*Source, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSourceUnavailable, path)
	}

	ffprobePath := bins.FFprobe
	if ffprobePath == "" {
		p, err := ffmpegbin.FFprobePath()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
		}
		ffprobePath = p
	}

	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: ffprobe failed: %v", ErrSourceUnavailable, err)
	}

	var probe probeOutput
	if err := json.Unmarshal(out.Bytes(), &probe); err != nil {
		return nil, fmt.Errorf("%w: parse ffprobe output: %v", ErrSourceUnavailable, err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(probe.Format.Duration), 64)
	if err != nil || duration <= 0 {
		return nil, fmt.Errorf("%w: no duration in %s", ErrSourceUnavailable, path)
	}

	src := &Source{Path: path, Duration: duration}
	for _, s := range probe.Streams {
		if s.CodecType != "video" {
			continue
		}
		src.Width = s.Width
		src.Height = s.Height
		src.FrameRate = parseFrameRate(s.RFrameRate)
		break
	}

	src.ffmpegPath = bins.FFmpeg
	if src.ffmpegPath == "" {
		if p, err := ffmpegbin.FFmpegPath(); err == nil {
			src.ffmpegPath = p
		}
	}

	return src, nil
}

// parses ffprobe rational frame rates like "30000/1001"
func parseFrameRate(r string) float64 {
	parts := strings.SplitN(r, "/", 2)
	if len(parts) != 2 {
		if v, err := strconv.ParseFloat(r, 64); err == nil {
			return v
		}
		return 0
	}
	num, err1 := strconv.ParseFloat(parts[0], 64)
	den, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil || den == 0 {
		return 0
	}
	return num / den
}

// ExtractFrame decodes the single frame nearest to ts as PNG bytes.
func (s *Source) ExtractFrame(ctx context.Context, ts float64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	stream := ffmpeg.Input(s.Path, ffmpeg.KwArgs{"ss": ts}).
		Output("pipe:", ffmpeg.KwArgs{
			"vframes": 1,
			"format":  "image2",
			"vcodec":  "png",
		}).
		WithOutput(&buf).
		Silent(true)
	if s.ffmpegPath != "" {
		stream = stream.SetFfmpegPath(s.ffmpegPath)
	}

	if err := stream.Run(); err != nil {
		return nil, fmt.Errorf("%w: extract frame at %.3fs: %v", ErrSourceUnavailable, ts, err)
	}
	if buf.Len() == 0 {
		return nil, fmt.Errorf("%w: empty frame at %.3fs", ErrSourceUnavailable, ts)
	}
	return buf.Bytes(), nil
}

// Sampler produces frames at a fixed interval covering [0, duration).
// It is lazy, finite, and restartable via Reset.
type Sampler struct {
	src      *Source
	interval float64
	next     int
}

func NewSampler(src *Source, intervalSeconds float64) (*Sampler, error) {
	if intervalSeconds <= 0 {
		return nil, fmt.Errorf("sampling interval must be > 0, got %v", intervalSeconds)
	}
	return &Sampler{src: src, interval: intervalSeconds}, nil
}

// Next returns the next sample in increasing timestamp order, or nil
// once the source is exhausted.
func (sp *Sampler) Next(ctx context.Context) (*Sample, error) {
	ts := float64(sp.next) * sp.interval
	if ts >= sp.src.Duration {
		return nil, nil
	}

	img, err := sp.src.ExtractFrame(ctx, ts)
	if err != nil {
		return nil, err
	}

	smp := &Sample{Index: sp.next, Timestamp: ts, Image: img}
	sp.next++
	return smp, nil
}

// Reset restarts the sequence at timestamp 0.
func (sp *Sampler) Reset() {
	sp.next = 0
}
