package position

import "sync/atomic"

// lastID is shared by every run in the process so that ids stay unique when
// stores from concurrent runs are merged.
var lastID atomic.Uint64

// NextID returns the next process-wide position id. Ids start at 1.
func NextID() uint64 {
	return lastID.Add(1)
}
