package pipeline

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/Toma-bot/twitchtoYt/internal/config"
	"github.com/Toma-bot/twitchtoYt/internal/segment"
	"github.com/Toma-bot/twitchtoYt/internal/video"
)

// fakeSampler yields synthetic samples on a fixed interval grid.
type fakeSampler struct {
	count    int
	interval float64
	pos      int
	failAt   int // -1 disables
}

func newFakeSampler(count int, interval float64) *fakeSampler {
	return &fakeSampler{count: count, interval: interval, failAt: -1}
}

func (f *fakeSampler) Next(ctx context.Context) (*video.Sample, error) {
	if f.failAt >= 0 && f.pos == f.failAt {
		return nil, video.ErrSourceUnavailable
	}
	if f.pos >= f.count {
		return nil, nil
	}
	s := &video.Sample{Index: f.pos, Timestamp: float64(f.pos) * f.interval}
	f.pos++
	return s, nil
}

func (f *fakeSampler) Reset() { f.pos = 0 }

// fakeReader decodes samples from a fixed elapsed table; negative
// values mark unreadable frames.
type fakeReader struct {
	elapsed []int
}

func (f *fakeReader) Read(_ context.Context, s video.Sample) segment.Reading {
	r := segment.Reading{Index: s.Index, Timestamp: s.Timestamp}
	if s.Index < len(f.elapsed) && f.elapsed[s.Index] >= 0 {
		r.Elapsed = f.elapsed[s.Index]
		r.Valid = true
		r.Confidence = 0.9
	}
	return r
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.SamplingIntervalSeconds = 1
	cfg.MaxJumpSeconds = 10
	cfg.MaxGapSamples = 2
	cfg.MinSegmentSeconds = 3
	cfg.MinGapToMergeSeconds = 0
	cfg.ResetMaxElapsedSeconds = 120
	cfg.Concurrency = 3
	return cfg
}

func TestPipelineWorkedExample(t *testing.T) {
	elapsed := []int{10, 11, -1, -1, 13, 14, 400, 2, 3, 4}
	p := New(testConfig(), newFakeSampler(len(elapsed), 1), &fakeReader{elapsed: elapsed}, nil)

	res, err := p.RunWithDuration(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d: %+v", len(res.Segments), res.Segments)
	}
	if res.Segments[0].Start != 0 || res.Segments[0].End != 6 {
		t.Errorf("first segment [%v,%v), want [0,6)", res.Segments[0].Start, res.Segments[0].End)
	}
	if res.Segments[1].Start != 7 || res.Segments[1].End != 10 {
		t.Errorf("second segment [%v,%v), want [7,10)", res.Segments[1].Start, res.Segments[1].End)
	}

	d := res.Diagnostics
	if d.TotalSamples != 10 || d.Unreadable != 2 || d.Outliers != 1 || d.Bridged != 2 {
		t.Errorf("unexpected diagnostics: %+v", d)
	}
	if math.Abs(d.MeanConfidence-0.9) > 1e-9 {
		t.Errorf("mean confidence = %v, want 0.9", d.MeanConfidence)
	}
}

func TestPipelineIsDeterministic(t *testing.T) {
	elapsed := []int{5, 6, 7, -1, 9, 10, 11, 12, -1, -1, -1, -1, 200, 201, 202, 203, 3, 4, 5, 6}

	results := make([]*segment.Result, 2)
	for i := range results {
		p := New(testConfig(), newFakeSampler(len(elapsed), 1), &fakeReader{elapsed: elapsed}, nil)
		res, err := p.Run(context.Background())
		if err != nil {
			t.Fatalf("run %d: unexpected error: %v", i, err)
		}
		results[i] = res
	}

	if !reflect.DeepEqual(results[0], results[1]) {
		t.Fatalf("results differ between runs:\n%+v\n%+v", results[0], results[1])
	}
}

func TestPipelineResetBoundary(t *testing.T) {
	// clock drops from 1800 to 5 mid-stream
	elapsed := make([]int, 20)
	for i := 0; i < 10; i++ {
		elapsed[i] = 1791 + i
	}
	for i := 10; i < 20; i++ {
		elapsed[i] = 5 + (i - 10)
	}

	p := New(testConfig(), newFakeSampler(len(elapsed), 1), &fakeReader{elapsed: elapsed}, nil)
	res, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Segments) != 2 {
		t.Fatalf("expected a boundary at the reset, got %d segments", len(res.Segments))
	}
	if res.Segments[1].Start != 10 {
		t.Errorf("second segment starts at %v, want 10", res.Segments[1].Start)
	}
}

func TestPipelineFatalSamplerError(t *testing.T) {
	sampler := newFakeSampler(10, 1)
	sampler.failAt = 4

	p := New(testConfig(), sampler, &fakeReader{elapsed: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}}, nil)
	res, err := p.Run(context.Background())

	if !errors.Is(err, video.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
	if res != nil {
		t.Fatalf("expected no partial result, got %+v", res)
	}
}

func TestPipelineRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.SamplingIntervalSeconds = 0

	p := New(cfg, newFakeSampler(1, 1), &fakeReader{elapsed: []int{1}}, nil)
	if _, err := p.Run(context.Background()); err == nil {
		t.Fatal("expected configuration error")
	}
}
