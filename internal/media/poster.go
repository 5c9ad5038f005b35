package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"os/exec"
	"strconv"

	"autocut/internal/logging"

	_ "image/png"

	"github.com/disintegration/imaging"
)

const (
	// DefaultMaxWidth bounds the longer poster dimension.
	DefaultMaxWidth = 640

	jpegQuality = 85
)

// PosterGenerator extracts poster frames with ffmpeg.
type PosterGenerator struct {
	ffmpegPath string
	maxWidth   int
}

// NewPosterGenerator returns a generator using the given ffmpeg
// binary. An empty path falls back to PATH lookup, a zero maxWidth to
// DefaultMaxWidth.
func NewPosterGenerator(ffmpegPath string, maxWidth int) *PosterGenerator {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	return &PosterGenerator{ffmpegPath: ffmpegPath, maxWidth: maxWidth}
}

// Poster extracts one frame at roughly the given offset in seconds and
// returns it as a JPEG no wider than maxWidth. When seeking fails, for
// example because the offset lies beyond the end of the file, it
// retries from the start of the stream.
func (p *PosterGenerator) Poster(ctx context.Context, filePath string, at float64) ([]byte, error) {
	if at < 0 {
		at = 0
	}

	img, err := p.extractFrame(ctx, filePath, at)
	if err != nil && at > 0 {
		logging.Debug("poster seek to %.3fs failed for %s: %v, retrying from start", at, filePath, err)
		img, err = p.extractFrame(ctx, filePath, 0)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to extract poster frame: %w", err)
	}

	if img.Bounds().Dx() > p.maxWidth {
		img = imaging.Resize(img, p.maxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode poster: %w", err)
	}
	return buf.Bytes(), nil
}

func (p *PosterGenerator) extractFrame(ctx context.Context, filePath string, at float64) (image.Image, error) {
	args := []string{"-hide_banner", "-nostdin"}
	if at > 0 {
		args = append(args, "-ss", strconv.FormatFloat(at, 'f', -1, 64))
	}
	args = append(args,
		"-i", filePath,
		"-vframes", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)

	cmd := exec.CommandContext(ctx, p.ffmpegPath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %v, stderr: %s", err, stderr.String())
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg produced no frame for %s", filePath)
	}

	img, _, err := image.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}
	return img, nil
}
