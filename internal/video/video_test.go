package video

import "testing"

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"30/1", 30},
		{"60/1", 60},
		{"30000/1001", 29.97002997002997},
		{"25", 25},
		{"0/0", 0},
		{"", 0},
		{"abc", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseFrameRate(tt.in); got != tt.want {
				t.Errorf("parseFrameRate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewSamplerRejectsBadInterval(t *testing.T) {
	src := &Source{Path: "test.mp4", Duration: 60}

	for _, interval := range []float64{0, -1} {
		if _, err := NewSampler(src, interval); err == nil {
			t.Errorf("expected error for interval %v", interval)
		}
	}
}

func TestSamplerCoversHalfOpenRange(t *testing.T) {
	src := &Source{Path: "test.mp4", Duration: 10}
	sp, err := NewSampler(src, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// timestamps 0, 3, 6, 9 fall inside [0, 10); 12 does not
	want := []float64{0, 3, 6, 9}
	for i, w := range want {
		ts := float64(sp.next) * sp.interval
		if ts != w {
			t.Fatalf("sample %d at %v, want %v", i, ts, w)
		}
		sp.next++
	}
	if ts := float64(sp.next) * sp.interval; ts < src.Duration {
		t.Fatalf("expected exhaustion after %d samples", len(want))
	}

	sp.Reset()
	if sp.next != 0 {
		t.Fatal("Reset did not restart the sequence")
	}
}
