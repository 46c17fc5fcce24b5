package calculation

import "sync/atomic"

// dequeEmpty is the sentinel returned by Pop/Steal when no task is
// available, distinct from a task word because a zero-start-zero-count
// task is never enqueued.
const dequeEmpty uint32 = 0

// stealAbort signals a contended steal that the caller should retry
// against a different victim.
const stealAbort = ^uint32(0)

// Deque is one worker's bounded circular buffer of encoded tasks, accessed
// per the Chase-Lev work-stealing protocol: the owner pushes and pops at
// the tail (LIFO, cache-warm); thieves steal at the head (FIFO, distant
// work). head and tail live in the SharedBuffer so their addresses are
// stable for the buffer's whole lifetime.
type Deque struct {
	slots []uint32 // capacity must be a power of two
	mask  uint32
	head  *atomic.Uint32
	tail  *atomic.Uint32
}

// NewDeque allocates a deque with the given capacity, which must be a
// power of two so index wrapping can use a bitmask.
func NewDeque(capacity int, head, tail *atomic.Uint32) *Deque {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		panic("deque capacity must be a positive power of two")
	}
	return &Deque{
		slots: make([]uint32, capacity),
		mask:  uint32(capacity - 1),
		head:  head,
		tail:  tail,
	}
}

// Push is the owner-only push: if the deque is full, it fails rather than
// growing (the driver sizes each deque to its known initial task count up
// front, so growth is never needed on the hot path).
func (d *Deque) Push(task uint32) bool {
	tail := d.tail.Load()
	head := d.head.Load()
	if tail-head >= uint32(len(d.slots)) {
		return false
	}
	d.slots[tail&d.mask] = task
	d.tail.Store(tail + 1) // release-store
	return true
}

// Pop is the owner-only pop: decrement the tail, fence against the head,
// then resolve whether the slot is still ours, empty, or contested with a
// thief taking the last item.
func (d *Deque) Pop() uint32 {
	tail := d.tail.Load()
	if tail == 0 {
		return dequeEmpty
	}
	newTail := tail - 1
	d.tail.Store(newTail)

	head := d.head.Load() // full fence via the preceding store/load pair

	if head > newTail {
		// Empty, or a concurrent steal already took the last item.
		d.tail.Store(tail)
		return dequeEmpty
	}

	slot := d.slots[newTail&d.mask]

	if head == newTail {
		// Last item contested with a thief.
		if d.head.CompareAndSwap(newTail, newTail+1) {
			d.tail.Store(newTail + 1)
			return slot
		}
		d.tail.Store(newTail + 1)
		return dequeEmpty
	}

	// head < newTail: uncontested.
	return slot
}

// Steal is the thief-only operation: read the head slot, then try to claim
// it with a CAS on the head pointer. It returns dequeEmpty if the deque was
// observed empty, stealAbort if a concurrent claim raced it (the owner's
// Pop or another thief's Steal), or the task word on success — callers
// distinguish the two failure cases by comparing against stealAbort and
// should retry a different victim on abort.
func (d *Deque) Steal() uint32 {
	head := d.head.Load()
	tail := d.tail.Load()
	if head >= tail {
		return dequeEmpty
	}
	slot := d.slots[head&d.mask]
	if d.head.CompareAndSwap(head, head+1) {
		return slot
	}
	return stealAbort
}

// Len reports the deque's current occupancy, for diagnostics and tests;
// it is not used on the hot path.
func (d *Deque) Len() int {
	tail := d.tail.Load()
	head := d.head.Load()
	if tail < head {
		return 0
	}
	return int(tail - head)
}
