// Package media generates poster frames from video files. A poster is
// a single frame extracted near a requested timestamp, resized to a
// bounded width, and encoded as JPEG.
package media
