package passthrough

import (
	"sync"
	"time"
)

// maxDecodeHistory is the number of submitted timestamps remembered for
// matching decoded output back to pending input. It only needs to exceed
// the decoder's maximum reorder distance; being larger doesn't hurt much.
const maxDecodeHistory = 32

// timestampWindow is a bounded FIFO of recently submitted timestamps. The
// platform decode path is asynchronous and may emit results late or out of
// order; output whose timestamp has aged out of the window is stale (for
// example a frame resurrected after a reset) and must be dropped, not
// forwarded.
type timestampWindow struct {
	mu       sync.Mutex
	entries  []time.Duration
	capacity int
}

func newTimestampWindow(capacity int) *timestampWindow {
	return &timestampWindow{
		entries:  make([]time.Duration, 0, capacity),
		capacity: capacity,
	}
}

// Record remembers ts, evicting the oldest entries to stay within capacity.
func (w *timestampWindow) Record(ts time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for len(w.entries) >= w.capacity {
		w.entries = w.entries[1:]
	}
	w.entries = append(w.entries, ts)
}

// Contains reports whether ts is still within the window.
func (w *timestampWindow) Contains(ts time.Duration) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, e := range w.entries {
		if e == ts {
			return true
		}
	}
	return false
}

// Clear forgets all recorded timestamps.
func (w *timestampWindow) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries = w.entries[:0]
}

// Len returns the number of remembered timestamps.
func (w *timestampWindow) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entries)
}
