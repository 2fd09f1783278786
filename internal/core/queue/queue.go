package queue

import (
	"container/heap"
	"sync"
	"time"
)

// Queue is the multi-producer single-consumer buffer of pending updates.
// Producers enqueue through per-system Writer handles; the engine is the only
// reader. Ordering is priority-then-FIFO: higher Priority drains first, ties
// break by arrival sequence. Enqueue never blocks beyond the internal lock.
type Queue struct {
	mu      sync.Mutex
	items   updateHeap
	nextSeq uint64
}

func New() *Queue {
	return &Queue{items: make(updateHeap, 0, 64)}
}

// Enqueue stamps the arrival sequence and makes the update visible to the
// reader. Updates without an enqueue timestamp get one here.
func (q *Queue) Enqueue(u *Update) {
	q.mu.Lock()
	defer q.mu.Unlock()
	u.seq = q.nextSeq
	q.nextSeq++
	if u.EnqueuedAt.IsZero() {
		u.EnqueuedAt = time.Now()
	}
	heap.Push(&q.items, u)
}

// Dequeue removes and returns the next update in priority/FIFO order.
// The second return is false when the queue is empty.
func (q *Queue) Dequeue() (*Update, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	return heap.Pop(&q.items).(*Update), true
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *Queue) IsEmpty() bool {
	return q.Len() == 0
}

// Clear drops all pending updates and returns how many were dropped. This is
// the only path by which queued updates are discarded without processing.
func (q *Queue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.items)
	q.items = q.items[:0]
	return n
}

// Writer returns a write-only handle for the named producer. Every update
// enqueued through the handle carries the producer name as its Source. The
// handle exposes no read or dequeue access.
func (q *Queue) Writer(source string) *Writer {
	return &Writer{q: q, source: source}
}

// Writer is a producer-scoped write-only capability onto a Queue.
type Writer struct {
	q      *Queue
	source string
}

func (w *Writer) Source() string { return w.source }

// Enqueue stamps the update with the writer's producer name and submits it.
func (w *Writer) Enqueue(u *Update) {
	u.Source = w.source
	w.q.Enqueue(u)
}

// Emit is shorthand for enqueueing a plain update of the given type.
func (w *Writer) Emit(t UpdateType, payload any) {
	w.Enqueue(NewUpdate(t, payload))
}

// updateHeap orders by descending Priority, then ascending arrival sequence.
type updateHeap []*Update

func (h updateHeap) Len() int { return len(h) }

func (h updateHeap) Less(i, j int) bool {
	if h[i].Priority != h[j].Priority {
		return h[i].Priority > h[j].Priority
	}
	return h[i].seq < h[j].seq
}

func (h updateHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *updateHeap) Push(x any) {
	*h = append(*h, x.(*Update))
}

func (h *updateHeap) Pop() any {
	old := *h
	n := len(old)
	u := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return u
}
