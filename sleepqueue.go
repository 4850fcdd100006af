package kschedule

import "container/heap"

// sleepQueue is the blocked-on-tick-countdown queue: a min-heap keyed by
// absolute wake tick (container/heap), rather than an unsorted linear scan.
//
// Every sleeper whose wake tick has arrived on a given tick is woken, not
// just the first one found — ties at the same wake tick all fire together.
type sleepQueue struct {
	h sleepHeap
}

func newSleepQueue() *sleepQueue {
	return &sleepQueue{h: make(sleepHeap, 0)}
}

// add inserts t into the queue to wake at wakeTick. t.ticksWait must already
// be set to the remaining countdown (> 0).
func (q *sleepQueue) add(t *Thread, wakeTick uint64) {
	t.wakeTick = wakeTick
	heap.Push(&q.h, t)
}

// remove detaches t from the queue if it is a member. No scheduler path
// calls it: Wait has no early wakeup, so sleepers leave only by expiry.
func (q *sleepQueue) remove(t *Thread) {
	if t.sleepIndex >= 0 && t.sleepIndex < len(q.h) && q.h[t.sleepIndex] == t {
		heap.Remove(&q.h, t.sleepIndex)
	}
}

// wakeExpired pops every thread whose wakeTick has arrived by now and
// invokes onWake for each, in increasing wake-tick order. Threads woken on
// the same tick are delivered in heap order, not insertion order.
func (q *sleepQueue) wakeExpired(now uint64, onWake func(*Thread)) {
	for len(q.h) > 0 && q.h[0].wakeTick <= now {
		t := heap.Pop(&q.h).(*Thread)
		t.ticksWait = 0
		onWake(t)
	}
}

func (q *sleepQueue) len() int { return len(q.h) }

// sleepHeap implements heap.Interface over *Thread, ordered by wakeTick.
type sleepHeap []*Thread

func (h sleepHeap) Len() int            { return len(h) }
func (h sleepHeap) Less(i, j int) bool  { return h[i].wakeTick < h[j].wakeTick }
func (h sleepHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].sleepIndex = i
	h[j].sleepIndex = j
}

func (h *sleepHeap) Push(x any) {
	t := x.(*Thread)
	t.sleepIndex = len(*h)
	*h = append(*h, t)
}

func (h *sleepHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.sleepIndex = -1
	*h = old[:n-1]
	return t
}
