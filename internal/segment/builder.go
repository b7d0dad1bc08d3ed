package segment

// Builder groups a cleaned reading sequence into match segments.
//
// Per video it runs a small state machine: IDLE until the first cleaned
// reading opens a candidate, IN_SEGMENT while readings extend it, back
// to IDLE when a reset or a hard break closes it, and DONE at end of
// stream (closing any open candidate).
type Builder struct {
	// Interval is the sampling interval in seconds. Each reading covers
	// [ts, ts+interval), so a segment ends one interval after its last
	// reading. A timestamp step larger than 1.5x the interval can only
	// be an unbridged gap and is treated as a hard break.
	Interval float64

	// MinSegmentSeconds discards shorter segments as noise.
	MinSegmentSeconds float64

	// MinGapToMergeSeconds merges break-separated neighbors closer than
	// this. Reset-opened segments never merge into their predecessor.
	MinGapToMergeSeconds float64

	// SourceDuration clamps the final segment end when > 0.
	SourceDuration float64
}

type builderState int

const (
	stateIdle builderState = iota
	stateInSegment
	stateDone
)

// candidate is an open or closed segment plus how it was opened.
type candidate struct {
	seg   Segment
	reset bool
}

// Build returns the final sorted, non-overlapping segment list.
func (b *Builder) Build(cleaned []CleanReading) []Segment {
	var (
		state  = stateIdle
		cands  []candidate
		cur    candidate
		prevTs float64
	)

	for _, r := range cleaned {
		if state == stateIdle {
			cur = b.open(r)
			prevTs = r.Timestamp
			state = stateInSegment
			continue
		}

		hardBreak := r.Timestamp-prevTs > b.Interval*1.5
		if r.Reset || hardBreak {
			cands = append(cands, cur)
			cur = b.open(r)
		} else {
			cur.seg.End = b.clamp(r.Timestamp + b.Interval)
			cur.seg.ElapsedEnd = r.Elapsed
		}
		prevTs = r.Timestamp
	}

	// end of stream: the open candidate, if any, is emitted and the
	// machine is terminally done.
	if state == stateInSegment {
		cands = append(cands, cur)
	}

	return b.finalize(cands)
}

func (b *Builder) open(r CleanReading) candidate {
	return candidate{
		seg: Segment{
			Start:        r.Timestamp,
			End:          b.clamp(r.Timestamp + b.Interval),
			ElapsedStart: r.Elapsed,
			ElapsedEnd:   r.Elapsed,
		},
		reset: r.Reset,
	}
}

func (b *Builder) clamp(ts float64) float64 {
	if b.SourceDuration > 0 && ts > b.SourceDuration {
		return b.SourceDuration
	}
	return ts
}

// finalize discards segments below the minimum duration, then merges
// adjacent survivors separated by less than the merge gap.
func (b *Builder) finalize(cands []candidate) []Segment {
	kept := cands[:0]
	for _, c := range cands {
		if c.seg.Duration() >= b.MinSegmentSeconds {
			kept = append(kept, c)
		}
	}

	var out []Segment
	for _, c := range kept {
		if len(out) > 0 && !c.reset && c.seg.Start-out[len(out)-1].End < b.MinGapToMergeSeconds {
			last := &out[len(out)-1]
			last.End = c.seg.End
			last.ElapsedEnd = c.seg.ElapsedEnd
			continue
		}
		out = append(out, c.seg)
	}
	return out
}
