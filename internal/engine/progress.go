package engine

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"
)

// forwardProgress reads FFmpeg's -progress key=value stream and reports
// integer percent values against the expected output window. Values are
// clamped to [0,100]; the final "progress=end" record reports 100.
func forwardProgress(r io.Reader, window time.Duration, report func(int)) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		pct, ok := parseProgressLine(scanner.Text(), window)
		if ok && report != nil {
			report(pct)
		}
	}
}

// parseProgressLine parses a single key=value line from the progress
// stream. It returns the percent and whether the line carried one.
func parseProgressLine(line string, window time.Duration) (int, bool) {
	key, value, found := strings.Cut(strings.TrimSpace(line), "=")
	if !found {
		return 0, false
	}
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)

	switch key {
	case "out_time_us":
		us, err := strconv.ParseInt(value, 10, 64)
		if err != nil || us < 0 {
			return 0, false
		}
		return progressPercent(us, window), true

	case "out_time_ms":
		// Despite the name, ffmpeg reports this key in microseconds too.
		ms, err := strconv.ParseInt(value, 10, 64)
		if err != nil || ms < 0 {
			return 0, false
		}
		return progressPercent(ms, window), true

	case "progress":
		if value == "end" {
			return 100, true
		}
		return 0, false

	default:
		return 0, false
	}
}

// progressPercent maps elapsed output microseconds to a percent of the
// expected window, clamped to [0,100].
func progressPercent(outTimeUs int64, window time.Duration) int {
	if window <= 0 {
		return 0
	}
	pct := int(outTimeUs * 100 / window.Microseconds())
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
