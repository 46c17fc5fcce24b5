package calculation

import (
	"math/rand"

	"github.com/rpgo/valuation-engine/internal/domain"
)

// Scheduler owns one Deque per worker and implements the work-stealing
// worker loop: pop from the owner's own deque; on empty, steal from a
// random peer; terminate once every peer has been observed empty twice in
// a row (empty-pass counter > 2*W).
type Scheduler struct {
	deques []*Deque
}

// NewScheduler wires one Deque per worker against the given SharedBuffer's
// control words.
func NewScheduler(buf *SharedBuffer, capacity int) *Scheduler {
	deques := make([]*Deque, buf.numWorkers)
	for w := 0; w < buf.numWorkers; w++ {
		deques[w] = NewDeque(capacity, buf.DequeHead(w), buf.DequeTail(w))
	}
	return &Scheduler{deques: deques}
}

// Partition splits [0, scenarioCount) into chunkSize-sized tasks and
// distributes them round-robin across worker deques so every owner starts
// with local work. chunkSize must not exceed domain.MaxTaskSpan+1.
func Partition(scenarioCount, chunkSize, numWorkers int) ([]domain.Task, []int, error) {
	if chunkSize <= 0 || chunkSize > domain.MaxTaskSpan+1 {
		return nil, nil, domain.NewCapacityExceeded("chunk_size %d out of range [1,%d]", chunkSize, domain.MaxTaskSpan+1)
	}
	if scenarioCount < 0 {
		return nil, nil, domain.NewInvalidInput("scenario_count must be non-negative, got %d", scenarioCount)
	}

	var tasks []domain.Task
	var owners []int
	worker := 0
	for start := 0; start < scenarioCount; start += chunkSize {
		count := chunkSize
		if start+count > scenarioCount {
			count = scenarioCount - start
		}
		if start > domain.MaxTaskSpan {
			return nil, nil, domain.NewCapacityExceeded("scenario_count %d exceeds task encoding capacity", scenarioCount)
		}
		task := domain.Task{Start: uint16(start), Count: uint16(count)}
		if err := task.Validate(); err != nil {
			return nil, nil, domain.NewCapacityExceeded("%v", err)
		}
		tasks = append(tasks, task)
		owners = append(owners, worker%numWorkers)
		worker++
	}
	return tasks, owners, nil
}

// Seed pushes every task onto its assigned owner's deque.
func (s *Scheduler) Seed(tasks []domain.Task, owners []int) error {
	for i, t := range tasks {
		if !s.deques[owners[i]].Push(t.Encode()) {
			return domain.NewResourceExhausted("deque for worker %d is full (capacity exceeded)", owners[i])
		}
	}
	return nil
}

// Deque returns the deque owned by a given worker.
func (s *Scheduler) Deque(worker int) *Deque { return s.deques[worker] }

// NumWorkers reports how many deques the scheduler manages.
func (s *Scheduler) NumWorkers() int { return len(s.deques) }

// TaskHandler processes one task (a contiguous scenario range) for the
// calling worker.
type TaskHandler func(task domain.Task) error

// RunWorker executes the work-stealing loop for a single worker: pop
// local, else steal from a random peer, terminating once every peer has
// been observed empty across more than 2*W consecutive passes. isTerminated is
// polled at every task boundary for cooperative cancellation/failure
// propagation.
func RunWorker(s *Scheduler, self int, isTerminated func() bool, handle TaskHandler) error {
	numWorkers := s.NumWorkers()
	emptyPasses := 0
	emptyThreshold := 2 * numWorkers
	victimRand := rand.New(rand.NewSource(int64(self)*2654435761 + 1)) //nolint:gosec // scheduling jitter only, not a security-sensitive use

	own := s.Deque(self)

	for {
		if isTerminated() {
			return nil
		}

		if word := own.Pop(); word != dequeEmpty {
			emptyPasses = 0
			if err := handle(domain.DecodeTask(word)); err != nil {
				return err
			}
			if isTerminated() {
				return nil
			}
			continue
		}

		stole, word := stealFromRandomPeer(s, self, victimRand)
		if stole {
			emptyPasses = 0
			if err := handle(domain.DecodeTask(word)); err != nil {
				return err
			}
			if isTerminated() {
				return nil
			}
			continue
		}

		emptyPasses++
		if emptyPasses > emptyThreshold {
			return nil
		}
	}
}

// stealFromRandomPeer tries every other worker once, in a random order,
// moving on to the next victim on a contended abort rather than retrying
// the same one. It reports whether a task was obtained.
func stealFromRandomPeer(s *Scheduler, self int, r *rand.Rand) (bool, uint32) {
	numWorkers := s.NumWorkers()
	if numWorkers <= 1 {
		return false, 0
	}

	order := r.Perm(numWorkers)
	for _, victim := range order {
		if victim == self {
			continue
		}
		word := s.Deque(victim).Steal()
		if word == stealAbort {
			// Contended claim; move on to a different victim rather
			// than spin on this one.
			continue
		}
		if word == dequeEmpty {
			continue // this victim is empty, move to the next
		}
		return true, word
	}
	return false, 0
}
