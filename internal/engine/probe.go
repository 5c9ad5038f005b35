package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"autocut/internal/mediatypes"
)

// MediaInfo describes a probed media file.
type MediaInfo struct {
	Duration float64         `json:"duration"`
	Width    int             `json:"width"`
	Height   int             `json:"height"`
	Codec    string          `json:"codec"`
	Kind     mediatypes.Kind `json:"kind"`
}

type probeOutput struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		CodecName string `json:"codec_name"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe extracts duration, dimensions, codec, and kind from a media
// file using ffprobe. An empty ffprobePath resolves from PATH.
func Probe(ctx context.Context, ffprobePath, filePath string) (*MediaInfo, error) {
	if ffprobePath == "" {
		resolved, err := exec.LookPath("ffprobe")
		if err != nil {
			return nil, fmt.Errorf("resolve ffprobe binary: %w", err)
		}
		ffprobePath = resolved
	}

	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		filePath,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe error: %w - %s", err, strings.TrimSpace(stderr.String()))
	}

	var out probeOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}

	info := &MediaInfo{}
	if out.Format.Duration != "" {
		if d, err := strconv.ParseFloat(out.Format.Duration, 64); err == nil {
			info.Duration = d
		}
	}

	hasAudio := false
	for _, stream := range out.Streams {
		switch stream.CodecType {
		case "video":
			// Some audio files carry an attached picture as a video
			// stream; a real video stream has dimensions.
			if stream.Width > 0 && stream.Height > 0 && info.Width == 0 {
				info.Width = stream.Width
				info.Height = stream.Height
				info.Codec = stream.CodecName
			}
		case "audio":
			hasAudio = true
			if info.Codec == "" {
				info.Codec = stream.CodecName
			}
		}
	}

	switch {
	case info.Width > 0:
		info.Kind = mediatypes.KindVideo
	case hasAudio:
		info.Kind = mediatypes.KindAudio
	default:
		return nil, fmt.Errorf("no audio or video streams in %s", filePath)
	}

	return info, nil
}

// Probe probes a file inside the engine's working filesystem.
func (h *Handle) Probe(ctx context.Context, name string) (*MediaInfo, error) {
	return Probe(ctx, h.ffprobePath, h.path(name))
}
