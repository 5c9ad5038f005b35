package workers

import (
	"runtime"
	"testing"
)

func TestCount(t *testing.T) {
	available := runtime.GOMAXPROCS(0)

	tests := []struct {
		name       string
		multiplier float64
		limit      int
		want       int
	}{
		{"OnePerCPU", 1.0, 0, available},
		{"AtLeastOne", 0.0, 0, 1},
		{"Limited", 1.0, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Count(tt.multiplier, tt.limit); got != tt.want {
				t.Errorf("Count(%v, %d) = %d, want %d", tt.multiplier, tt.limit, got, tt.want)
			}
		})
	}
}

func TestCountOverride(t *testing.T) {
	t.Setenv("FFMPEG_THREADS", "3")

	if got := Count(1.0, 0); got != 3 {
		t.Errorf("Count() = %d with FFMPEG_THREADS=3, want 3", got)
	}

	// Override still respects the cap
	if got := Count(1.0, 2); got != 2 {
		t.Errorf("Count() = %d with FFMPEG_THREADS=3 and limit 2, want 2", got)
	}
}

func TestCountInvalidOverride(t *testing.T) {
	t.Setenv("FFMPEG_THREADS", "not-a-number")

	available := runtime.GOMAXPROCS(0)
	if got := Count(1.0, 0); got != available {
		t.Errorf("Count() = %d with invalid override, want %d", got, available)
	}
}

func TestForEncode(t *testing.T) {
	if got := ForEncode(2); got < 1 || got > 2 {
		t.Errorf("ForEncode(2) = %d, want between 1 and 2", got)
	}
}
