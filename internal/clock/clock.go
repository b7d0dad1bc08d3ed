package clock

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/Toma-bot/twitchtoYt/internal/config"
	ffmpegbin "github.com/Toma-bot/twitchtoYt/internal/ffmpeg"
	"github.com/Toma-bot/twitchtoYt/internal/ocr"
	"github.com/Toma-bot/twitchtoYt/internal/segment"
	"github.com/Toma-bot/twitchtoYt/internal/video"
)

// clock grammar: MM:SS with an optional leading hour component
var clockRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)

// Reader decodes the on-screen match clock from sampled frames.
type Reader struct {
	engine  ocr.Engine
	region  config.Rect
	timeout time.Duration

	ffmpegPath string
	preprocess func(image []byte) ([]byte, error)
}

// NewReader builds a clock reader over the given OCR engine. region is
// the clock area as fractions of the frame; timeout bounds each OCR
// call (a timed-out frame is unreadable, not fatal). ffmpegPath
// overrides the ffmpeg binary used for preprocessing; empty falls back
// to the environment and PATH.
func NewReader(engine ocr.Engine, region config.Rect, timeout time.Duration, ffmpegPath string) *Reader {
	r := &Reader{engine: engine, region: region, timeout: timeout, ffmpegPath: ffmpegPath}
	if r.ffmpegPath == "" {
		if p, err := ffmpegbin.FFmpegPath(); err == nil {
			r.ffmpegPath = p
		}
	}
	r.preprocess = r.cropClock
	return r
}

// Read decodes one sample into a Reading. Unreadable frames are an
// expected outcome and never produce an error.
func (r *Reader) Read(ctx context.Context, s video.Sample) segment.Reading {
	reading := segment.Reading{Index: s.Index, Timestamp: s.Timestamp}

	crop, err := r.preprocess(s.Image)
	if err != nil {
		return reading
	}

	ocrCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ocrCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	res, err := r.engine.Recognize(ocrCtx, crop)
	if err != nil {
		return reading
	}

	elapsed, ok := parseClock(res.Text)
	if !ok {
		return reading
	}

	reading.Elapsed = elapsed
	reading.Valid = true
	reading.Confidence = clampConfidence(res.Confidence)
	return reading
}

// cropClock crops the clock region, upscales it 2x, and converts to
// grayscale. All of it runs in a single ffmpeg pass over the PNG.
func (r *Reader) cropClock(image []byte) ([]byte, error) {
	cropExpr := fmt.Sprintf("iw*%.4f:ih*%.4f:iw*%.4f:ih*%.4f",
		r.region.W, r.region.H, r.region.X, r.region.Y)

	var out bytes.Buffer
	stream := ffmpeg.Input("pipe:", ffmpeg.KwArgs{"format": "png_pipe"}).
		Filter("crop", ffmpeg.Args{cropExpr}).
		Filter("scale", ffmpeg.Args{"iw*2:ih*2"}).
		Filter("format", ffmpeg.Args{"gray"}).
		Output("pipe:", ffmpeg.KwArgs{
			"vframes": 1,
			"format":  "image2",
			"vcodec":  "png",
		}).
		WithInput(bytes.NewReader(image)).
		WithOutput(&out).
		Silent(true)
	if r.ffmpegPath != "" {
		stream = stream.SetFfmpegPath(r.ffmpegPath)
	}

	if err := stream.Run(); err != nil {
		return nil, fmt.Errorf("preprocess clock region: %w", err)
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("preprocess clock region: empty output")
	}
	return out.Bytes(), nil
}

// parseClock decodes OCR text against the clock grammar, returning the
// elapsed in-game seconds. OCR often misreads the colon as ';' or '|',
// so those separators are normalized first.
func parseClock(text string) (int, bool) {
	s := strings.Map(func(c rune) rune {
		switch c {
		case ';', '|':
			return ':'
		case ' ', '\t':
			return -1
		}
		return c
	}, strings.TrimSpace(text))

	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}

	first, _ := strconv.Atoi(m[1])
	second, _ := strconv.Atoi(m[2])

	if m[3] == "" {
		// MM:SS
		if first >= 60 || second >= 60 {
			return 0, false
		}
		return first*60 + second, true
	}

	// H:MM:SS
	third, _ := strconv.Atoi(m[3])
	if second >= 60 || third >= 60 {
		return 0, false
	}
	return first*3600 + second*60 + third, true
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
