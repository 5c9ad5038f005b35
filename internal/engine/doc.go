// Package engine manages the in-process media transcoding engine used
// for clip exports.
//
// It provides:
//   - Lazy, cached initialization of the FFmpeg engine (binary
//     resolution, verification, private working filesystem)
//   - Execution of encode operations with live progress reporting
//   - A virtual file bridge for moving input and output bytes in and
//     out of the engine's working filesystem
//   - Media metadata extraction via ffprobe (duration, dimensions,
//     codec, kind)
//
// FFmpeg and ffprobe must be installed and available in the system
// PATH, or configured with explicit paths.
package engine
