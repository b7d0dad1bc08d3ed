package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Toma-bot/twitchtoYt/internal/config"
	"github.com/Toma-bot/twitchtoYt/internal/logging"
	"github.com/Toma-bot/twitchtoYt/internal/segment"
	"github.com/Toma-bot/twitchtoYt/internal/video"
)

// Sampler yields frames in increasing timestamp order. Next returns
// nil once the source is exhausted; Reset restarts at 0.
type Sampler interface {
	Next(ctx context.Context) (*video.Sample, error)
	Reset()
}

// ClockReader decodes one sample into a Reading. It may block on the
// external OCR call, so the pipeline fans it out over a worker pool.
type ClockReader interface {
	Read(ctx context.Context, s video.Sample) segment.Reading
}

// Pipeline runs sampler -> clock reader -> filter -> builder for one
// video. Each instance owns its buffers exclusively; independent
// pipelines may run concurrently.
type Pipeline struct {
	cfg     config.Config
	sampler Sampler
	reader  ClockReader
	log     *logging.Logger
}

func New(cfg config.Config, sampler Sampler, reader ClockReader, log *logging.Logger) *Pipeline {
	if log == nil {
		log = logging.Nop()
	}
	return &Pipeline{cfg: cfg, sampler: sampler, reader: reader, log: log}
}

// Run processes the whole video and returns the segment list plus
// diagnostics. A fatal error yields no partial result; rerunning with
// the same video and configuration yields an identical result.
func (p *Pipeline) Run(ctx context.Context) (*segment.Result, error) {
	return p.run(ctx, 0)
}

// RunWithDuration is Run with the source duration supplied so the
// final segment can be clamped to it.
func (p *Pipeline) RunWithDuration(ctx context.Context, sourceDuration float64) (*segment.Result, error) {
	return p.run(ctx, sourceDuration)
}

func (p *Pipeline) run(ctx context.Context, sourceDuration float64) (*segment.Result, error) {
	if err := p.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	readings, err := p.collectReadings(ctx)
	if err != nil {
		return nil, err
	}

	// the filter is order-dependent; re-join worker output by index
	sort.Slice(readings, func(i, j int) bool {
		return readings[i].Index < readings[j].Index
	})

	filter := &segment.Filter{
		MaxJumpSeconds:         p.cfg.MaxJumpSeconds,
		MaxGapSamples:          p.cfg.MaxGapSamples,
		ResetMaxElapsedSeconds: p.cfg.ResetMaxElapsedSeconds,
	}
	cleaned, stats := filter.Apply(readings, p.cfg.SamplingIntervalSeconds)

	builder := &segment.Builder{
		Interval:             p.cfg.SamplingIntervalSeconds,
		MinSegmentSeconds:    p.cfg.MinSegmentSeconds,
		MinGapToMergeSeconds: p.cfg.MinGapToMergeSeconds,
		SourceDuration:       sourceDuration,
	}
	segments := builder.Build(cleaned)

	res := &segment.Result{
		Segments: segments,
		Diagnostics: segment.Diagnostics{
			TotalSamples:   len(readings),
			Unreadable:     stats.Unreadable,
			Outliers:       stats.Outliers,
			Bridged:        stats.Bridged,
			MeanConfidence: meanConfidence(readings),
		},
	}

	p.log.Infow("segmentation complete",
		"segments", len(res.Segments),
		"samples", res.Diagnostics.TotalSamples,
		"unreadable", res.Diagnostics.Unreadable,
		"outliers", res.Diagnostics.Outliers,
		"bridged", res.Diagnostics.Bridged,
	)

	return res, nil
}

// collectReadings drains the sampler through a bounded OCR worker
// pool. Samples are small in count but heavy in pixels, so the work
// channel stays shallow to bound in-flight frames.
func (p *Pipeline) collectReadings(ctx context.Context) ([]segment.Reading, error) {
	p.sampler.Reset()

	concurrency := p.cfg.Concurrency
	workCh := make(chan video.Sample, concurrency)
	resCh := make(chan segment.Reading, concurrency*2)
	errCh := make(chan error, 1)

	go func() {
		defer close(workCh)
		for {
			smp, err := p.sampler.Next(ctx)
			if err != nil {
				select {
				case errCh <- err:
				default:
				}
				return
			}
			if smp == nil {
				return
			}
			select {
			case workCh <- *smp:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Go(func() {
			for smp := range workCh {
				resCh <- p.reader.Read(ctx, smp)
			}
		})
	}

	go func() {
		wg.Wait()
		close(resCh)
	}()

	var readings []segment.Reading
	for r := range resCh {
		readings = append(readings, r)
	}

	select {
	case err := <-errCh:
		return nil, err
	default:
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return readings, nil
}

func meanConfidence(readings []segment.Reading) float64 {
	var sum float64
	var n int
	for _, r := range readings {
		if r.Valid {
			sum += r.Confidence
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
