package segment

import "math"

// Filter cleans a raw reading stream: it drops OCR outliers, bridges
// short gaps by linear interpolation, and flags clock resets. The
// logic is order-dependent; readings must arrive in timestamp order.
type Filter struct {
	// MaxJumpSeconds is the tolerance between the decoded clock advance
	// and the wall-clock advance since the last accepted reading.
	MaxJumpSeconds float64

	// MaxGapSamples is the longest run of unreadable or dropped samples
	// bridged by interpolation. Longer runs are left as a hard break.
	MaxGapSamples int

	// ResetMaxElapsedSeconds is the largest clock value accepted as the
	// start of a new match when the clock drops.
	ResetMaxElapsedSeconds int
}

// FilterStats counts what the filter did to the raw stream.
type FilterStats struct {
	Unreadable int
	Outliers   int
	Bridged    int
}

// Apply converts raw readings into a cleaned sequence. interval is the
// sampling interval in seconds, used to place interpolated readings on
// the sample grid.
func (f *Filter) Apply(readings []Reading, interval float64) ([]CleanReading, FilterStats) {
	var (
		out         []CleanReading
		stats       FilterStats
		lastTs      float64
		lastElapsed float64
		haveLast    bool
		pendingGap  int // samples skipped since the last accepted reading
	)

	for _, r := range readings {
		if !r.Valid {
			stats.Unreadable++
			if haveLast {
				pendingGap++
			}
			continue
		}

		elapsed := float64(r.Elapsed)

		if !haveLast || pendingGap > f.MaxGapSamples {
			// First reading, or first readable one after a hard break:
			// accept unconditionally and re-anchor.
			out = append(out, CleanReading{Timestamp: r.Timestamp, Elapsed: elapsed})
			lastTs, lastElapsed, haveLast = r.Timestamp, elapsed, true
			pendingGap = 0
			continue
		}

		delta := elapsed - lastElapsed
		wall := r.Timestamp - lastTs

		switch {
		case math.Abs(delta-wall) <= f.MaxJumpSeconds:
			if pendingGap > 0 {
				out = append(out, f.bridge(lastTs, lastElapsed, r.Timestamp, elapsed, pendingGap, interval)...)
				stats.Bridged += pendingGap
			}
			out = append(out, CleanReading{Timestamp: r.Timestamp, Elapsed: elapsed})

		case delta < 0 && r.Elapsed <= f.ResetMaxElapsedSeconds:
			// Clock dropped to a small value: a new match started. The
			// gap, if any, belongs to neither match and is not bridged.
			out = append(out, CleanReading{Timestamp: r.Timestamp, Elapsed: elapsed, Reset: true})

		default:
			stats.Outliers++
			pendingGap++
			continue
		}

		lastTs, lastElapsed = r.Timestamp, elapsed
		pendingGap = 0
	}

	return out, stats
}

// bridge emits interpolated readings at each missed sample timestamp
// between two accepted readings.
func (f *Filter) bridge(fromTs, fromElapsed, toTs, toElapsed float64, gap int, interval float64) []CleanReading {
	span := toTs - fromTs
	if span <= 0 {
		return nil
	}

	filled := make([]CleanReading, 0, gap)
	for k := 1; k <= gap; k++ {
		ts := fromTs + float64(k)*interval
		if ts >= toTs {
			break
		}
		frac := (ts - fromTs) / span
		filled = append(filled, CleanReading{
			Timestamp: ts,
			Elapsed:   fromElapsed + frac*(toElapsed-fromElapsed),
		})
	}
	return filled
}
