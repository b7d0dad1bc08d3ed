package cut

import (
	"slices"
	"testing"

	"github.com/Toma-bot/twitchtoYt/internal/segment"
)

func TestCutStreamSeeksInputSide(t *testing.T) {
	seg := segment.Segment{Start: 3600, End: 5400}

	for _, tt := range []struct {
		name string
		opts Options
		want []string
	}{
		{"stream copy", Options{}, []string{"-c", "copy"}},
		{"reencode", Options{Reencode: true}, []string{"-c:v", "libx264", "-c:a", "aac"}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			args := cutStream("vod.mp4", "Game_01.mp4", seg, tt.opts).GetArgs()

			ss := slices.Index(args, "-ss")
			to := slices.Index(args, "-to")
			in := slices.Index(args, "-i")
			if ss == -1 || to == -1 || in == -1 {
				t.Fatalf("missing seek or input flags in %v", args)
			}
			if ss > in || to > in {
				t.Errorf("seek flags must precede -i, got %v", args)
			}

			for _, w := range tt.want {
				if !slices.Contains(args, w) {
					t.Errorf("args %v missing %q", args, w)
				}
			}
		})
	}
}

func TestClipName(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{0, "Game_01.mp4"},
		{1, "Game_02.mp4"},
		{9, "Game_10.mp4"},
		{99, "Game_100.mp4"},
	}

	for _, tt := range tests {
		if got := ClipName(tt.index); got != tt.want {
			t.Errorf("ClipName(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}
}
