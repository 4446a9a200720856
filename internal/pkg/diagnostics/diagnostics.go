// Package diagnostics gathers advisory process telemetry around a pipeline
// cycle. Everything here is best-effort: a failed probe logs a warning and
// reports a negative value, it never aborts the cycle.
package diagnostics

import (
	"log/slog"
	"os"
	"runtime"
)

// Snapshot is one advisory reading of process resources.
type Snapshot struct {
	HeapAllocMB float64
	HeapObjects uint64
	Goroutines  int
	OpenFDs     int
}

// Collect reads the current resource snapshot. OpenFDs is -1 where the
// descriptor table cannot be inspected (non-Linux, restricted /proc).
func Collect(logger *slog.Logger) Snapshot {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	snap := Snapshot{
		HeapAllocMB: float64(ms.HeapAlloc) / (1024 * 1024),
		HeapObjects: ms.HeapObjects,
		Goroutines:  runtime.NumGoroutine(),
		OpenFDs:     countOpenFDs(logger),
	}
	return snap
}

// Log emits one snapshot under the given label ("pre_cycle", "post_cycle").
func Log(logger *slog.Logger, label string, snap Snapshot) {
	logger.Info("Resource diagnostics",
		"phase", label,
		"heap_alloc_mb", snap.HeapAllocMB,
		"heap_objects", snap.HeapObjects,
		"goroutines", snap.Goroutines,
		"open_fds", snap.OpenFDs,
	)
}

func countOpenFDs(logger *slog.Logger) int {
	entries, err := os.ReadDir("/proc/self/fd")
	if err != nil {
		logger.Warn("Could not check file descriptors", "error", err)
		return -1
	}
	return len(entries)
}
