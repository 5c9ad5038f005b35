package workers

import (
	"os"
	"runtime"
	"strconv"
)

// Count returns a thread count scaled from the available CPUs.
// It respects container CPU limits via GOMAXPROCS (Go 1.19+).
//
// The limit parameter caps the count to prevent resource exhaustion.
// Use 0 for no limit.
//
// Can be overridden with the FFMPEG_THREADS environment variable.
func Count(multiplier float64, limit int) int {
	if override := os.Getenv("FFMPEG_THREADS"); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			if limit > 0 && count > limit {
				return limit
			}
			return count
		}
	}

	available := runtime.GOMAXPROCS(0)

	count := int(float64(available) * multiplier)

	if count < 1 {
		count = 1
	}
	if limit > 0 && count > limit {
		count = limit
	}

	return count
}

// ForEncode returns the thread count for CPU-bound encoding (1 per CPU).
// The limit parameter caps the maximum number of threads.
func ForEncode(limit int) int {
	return Count(1.0, limit)
}
