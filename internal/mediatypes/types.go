package mediatypes

import (
	"path/filepath"
	"strings"
)

// Kind represents the broad class of a media source.
type Kind string

const (
	// KindAudio represents an audio-only source.
	KindAudio Kind = "audio"
	// KindVideo represents a source with a video track.
	KindVideo Kind = "video"
	// KindUnknown represents a source that could not be classified.
	KindUnknown Kind = "unknown"
)

// AudioExtensions maps file extensions to whether they are supported audio formats.
var AudioExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
	".aac":  true,
	".ogg":  true,
	".oga":  true,
	".flac": true,
	".wma":  true,
	".opus": true,
}

// VideoExtensions maps file extensions to whether they are supported video formats.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".avi":  true,
	".mov":  true,
	".wmv":  true,
	".flv":  true,
	".webm": true,
	".m4v":  true,
	".mpeg": true,
	".mpg":  true,
	".3gp":  true,
	".ts":   true,
}

// KindFromMIME classifies a source by its declared MIME type.
func KindFromMIME(mimeType string) Kind {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	switch {
	case strings.HasPrefix(mimeType, "audio/"):
		return KindAudio
	case strings.HasPrefix(mimeType, "video/"):
		return KindVideo
	default:
		return KindUnknown
	}
}

// KindFromName classifies a source by its file extension.
func KindFromName(name string) Kind {
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case AudioExtensions[ext]:
		return KindAudio
	case VideoExtensions[ext]:
		return KindVideo
	default:
		return KindUnknown
	}
}

// Classify determines the kind of a source from its MIME type, falling
// back to the filename when the MIME type is missing or unrecognized.
func Classify(mimeType, name string) Kind {
	if k := KindFromMIME(mimeType); k != KindUnknown {
		return k
	}
	return KindFromName(name)
}

// audioContainers maps probed audio codecs to a container that can
// carry the stream without re-encoding.
var audioContainers = map[string]struct{ ext, mime string }{
	"mp3":    {"mp3", "audio/mpeg"},
	"aac":    {"m4a", "audio/mp4"},
	"alac":   {"m4a", "audio/mp4"},
	"vorbis": {"ogg", "audio/ogg"},
	"opus":   {"ogg", "audio/ogg"},
	"flac":   {"flac", "audio/flac"},
	"wmav1":  {"wma", "audio/x-ms-wma"},
	"wmav2":  {"wma", "audio/x-ms-wma"},
}

// OutputFormat returns the container extension and MIME type for an
// exported clip. Audio clips are stream copied, so the container has
// to match the probed source codec; video always packages as MP4.
func OutputFormat(k Kind, codec string) (ext, mime string) {
	if k != KindAudio {
		return "mp4", "video/mp4"
	}
	codec = strings.ToLower(strings.TrimSpace(codec))
	if strings.HasPrefix(codec, "pcm_") {
		return "wav", "audio/wav"
	}
	if c, ok := audioContainers[codec]; ok {
		return c.ext, c.mime
	}
	return "mp3", "audio/mpeg"
}
