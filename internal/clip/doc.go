// Package clip builds the FFmpeg argument list for a trim/export
// operation.
//
// Two encoding strategies exist: a lossless stream copy for plain
// trims, and a re-encode with a centered 9:16 crop when a vertical
// reframe is requested for video. The strategy is a pure function of
// the media kind and the reframe flag, and argument construction is
// fully deterministic.
package clip
