// Package export orchestrates the clip export pipeline.
//
// One export runs as a sequential state machine:
//
//	idle → initializing → writing → encoding → reading → packaging → done
//
// with a terminal failed state reachable from any non-idle state. The
// orchestrator validates the request, ensures the engine is loaded,
// moves input bytes through the virtual file bridge, executes the built
// argument list, and packages the output bytes for download. Progress
// is tracked as a monotonically non-decreasing percent within each
// export. Only one export may be in flight at a time; there is no
// mid-flight cancellation beyond the request context and no automatic
// retry.
package export
