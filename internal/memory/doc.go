// Package memory configures Go's soft memory limit from container
// metadata. The export engine shells out to ffmpeg, so the Go heap has
// to leave headroom for encoder processes sharing the same cgroup.
//
// Configuration is read from the environment at startup:
//
//   - GOMEMLIMIT takes precedence and is honored by the runtime directly.
//   - MEMORY_LIMIT sets the container memory limit in bytes, typically
//     injected via the Kubernetes Downward API.
//   - MEMORY_RATIO sets the fraction of MEMORY_LIMIT given to the Go
//     heap (default 0.80).
package memory
