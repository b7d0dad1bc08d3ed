package segment

// Reading is the decoded clock value for one sampled frame. A frame
// whose clock could not be decoded is a valid, expected outcome and is
// carried as Valid=false rather than an error.
type Reading struct {
	Index      int
	Timestamp  float64 // seconds into the source video
	Elapsed    int     // in-game clock, seconds; meaningful only when Valid
	Valid      bool
	Confidence float64 // [0,1]
}

// CleanReading is a filtered reading: no invalid values, no illegal
// jumps. Elapsed may be fractional where a short gap was bridged by
// interpolation. Reset marks the first reading of a new match.
type CleanReading struct {
	Timestamp float64
	Elapsed   float64
	Reset     bool
}

// Segment is a contiguous source-video time range believed to hold one
// match. Start < End always; lists of segments are sorted by Start and
// pairwise non-overlapping.
type Segment struct {
	Start        float64 `json:"start_sec"`
	End          float64 `json:"end_sec"`
	ElapsedStart float64 `json:"elapsed_start_sec"`
	ElapsedEnd   float64 `json:"elapsed_end_sec"`
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// Diagnostics summarizes one pipeline run.
type Diagnostics struct {
	TotalSamples   int     `json:"total_samples"`
	Unreadable     int     `json:"unreadable"`
	Outliers       int     `json:"outliers"`
	Bridged        int     `json:"bridged"`
	MeanConfidence float64 `json:"mean_confidence"`
}

// Result is the final output of a segmentation run.
type Result struct {
	Segments    []Segment   `json:"segments"`
	Diagnostics Diagnostics `json:"diagnostics"`
}
