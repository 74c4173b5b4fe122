package passthrough

import "sync"

// maxPendingFrames is the capacity of the pending frame queue. Overflowing
// it means the media runner is severely behind; the whole queue is dropped
// so the session can catch up from the next key frame.
const maxPendingFrames = 8

// frameQueue is the bounded FIFO between the caller context (producer) and
// the media runner (single consumer). It is the only state shared between
// the two contexts; the lock is held only for enqueue and drain-swap, never
// across decode work.
type frameQueue struct {
	mu       sync.Mutex
	frames   []*encodedFrame
	capacity int
}

func newFrameQueue(capacity int) *frameQueue {
	return &frameQueue{
		frames:   make([]*encodedFrame, 0, capacity),
		capacity: capacity,
	}
}

// TryEnqueue appends frame and reports whether it was accepted. On overflow
// the queue empties itself entirely, not just the oldest entry: partial
// eviction would leave the consumer mid-GOP with its reference frames gone.
// The caller is responsible for re-entering key-frame seeking.
func (q *frameQueue) TryEnqueue(frame *encodedFrame) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.frames) >= q.capacity {
		q.frames = q.frames[:0]
		return false
	}
	q.frames = append(q.frames, frame)
	return true
}

// DrainAll detaches and returns every queued frame in FIFO order. The swap
// happens under the lock; the returned slice is processed without it, so a
// slow platform feed never blocks the producer.
func (q *frameQueue) DrainAll() []*encodedFrame {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.frames) == 0 {
		return nil
	}
	drained := q.frames
	q.frames = make([]*encodedFrame, 0, q.capacity)
	return drained
}

// Clear discards all queued frames.
func (q *frameQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.frames = q.frames[:0]
}

// Len returns the number of queued frames.
func (q *frameQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.frames)
}
