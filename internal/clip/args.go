package clip

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"autocut/internal/mediatypes"
)

// minClipSeconds is the floor for the trim window. A zero or negative
// -t value makes ffmpeg fail or emit an empty file.
const minClipSeconds = 0.001

// Strategy selects how the trimmed segment is encoded.
type Strategy int

const (
	// CopyTrim re-packages all tracks without re-encoding. Fast and
	// lossless, but cannot change frame geometry.
	CopyTrim Strategy = iota
	// ReframeEncode re-encodes video with a centered 9:16 crop.
	ReframeEncode
)

// String returns the strategy name.
func (s Strategy) String() string {
	switch s {
	case CopyTrim:
		return "copy"
	case ReframeEncode:
		return "reframe"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// StrategyFor decides the encoding strategy for a media kind and
// reframe flag. Reframing only applies to video; audio always stream
// copies.
func StrategyFor(kind mediatypes.Kind, vertical bool) Strategy {
	if vertical && kind == mediatypes.KindVideo {
		return ReframeEncode
	}
	return CopyTrim
}

// Request describes one export operation against the engine's working
// filesystem.
type Request struct {
	InputName  string
	OutputName string
	// Start and End are marker positions in seconds into the source.
	Start float64
	End   float64
	Kind  mediatypes.Kind
	// Vertical requests a 9:16 reframe; effective only for video.
	Vertical bool
	// SourceWidth and SourceHeight are the probed dimensions; required
	// for the reframe path.
	SourceWidth  int
	SourceHeight int
	// Threads caps the encoder thread count. Zero leaves it to ffmpeg.
	Threads int
}

// Window returns the clamped clip duration.
func (r Request) Window() time.Duration {
	return time.Duration(clampWindow(r.Start, r.End) * float64(time.Second))
}

func clampWindow(start, end float64) float64 {
	return math.Max(minClipSeconds, end-start)
}

// CropSize computes the centered 9:16 crop target for a source frame.
// The height is the binding constraint: it is rounded down to an even
// number and the width derived from it, rounded to even. Sources
// already narrower than 9:16 are clamped to their own (even) width
// rather than padded.
func CropSize(srcWidth, srcHeight int) (width, height int) {
	height = srcHeight - srcHeight%2

	width = int(math.Round(float64(height) * 9.0 / 16.0))
	if width%2 != 0 {
		width--
	}

	maxWidth := srcWidth - srcWidth%2
	if maxWidth > 0 && width > maxWidth {
		width = maxWidth
	}

	return width, height
}

// BuildArgs constructs the ordered FFmpeg argument list for a request.
// It is a pure function: the same request always yields the same list.
func BuildArgs(req Request) []string {
	window := clampWindow(req.Start, req.End)

	args := []string{
		"-i", req.InputName,
		"-ss", formatSeconds(req.Start),
		"-t", formatSeconds(window),
		// Normalize timestamps so the output starts at zero regardless
		// of the seek point.
		"-avoid_negative_ts", "make_zero",
	}

	switch StrategyFor(req.Kind, req.Vertical) {
	case ReframeEncode:
		cropW, cropH := CropSize(req.SourceWidth, req.SourceHeight)
		args = append(args,
			"-vf", fmt.Sprintf("crop=%d:%d", cropW, cropH),
			"-c:v", "libx264",
			"-preset", "ultrafast",
			"-c:a", "aac",
		)
		if req.Threads > 0 {
			args = append(args, "-threads", strconv.Itoa(req.Threads))
		}

	case CopyTrim:
		if req.Kind == mediatypes.KindAudio {
			args = append(args, "-vn")
		}
		args = append(args, "-c", "copy")
	}

	args = append(args, "-y", req.OutputName)
	return args
}

// formatSeconds renders a second count without trailing zeros.
func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
