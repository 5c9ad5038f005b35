// Package workers computes CPU-aware thread counts for encoding work.
//
// The engine passes the computed count to FFmpeg's -threads flag on the
// re-encode path so a single export cannot saturate every core of the
// host. Container CPU limits are respected via GOMAXPROCS.
package workers
