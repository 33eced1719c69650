// Package stats reads process heap statistics for the CLI's --stats output.
package stats

import (
	"fmt"
	"runtime"
)

// Heap is a point-in-time snapshot of allocator activity.
type Heap struct {
	AllocBytes      uint64
	TotalAllocBytes uint64
	HeapObjects     uint64
	NumGC           uint32
}

// ReadHeap snapshots the runtime's memory statistics.
func ReadHeap() Heap {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return Heap{
		AllocBytes:      m.Alloc,
		TotalAllocBytes: m.TotalAlloc,
		HeapObjects:     m.HeapObjects,
		NumGC:           m.NumGC,
	}
}

func (h Heap) String() string {
	return fmt.Sprintf("heap: %.1f MiB live, %.1f MiB allocated, %d objects, %d GC cycles",
		float64(h.AllocBytes)/(1<<20), float64(h.TotalAllocBytes)/(1<<20), h.HeapObjects, h.NumGC)
}
