package calculation

import (
	"encoding/binary"
	"sync/atomic"
	"unsafe"

	"github.com/rpgo/valuation-engine/internal/domain"
)

// bufferMagic identifies a shared buffer header.
const bufferMagic uint32 = 0x41435456 // "ACTV"

// bufferVersion is the layout version written into the header.
const bufferVersion uint32 = 1

// align16 rounds n up to the next 16-byte boundary, the alignment every
// section needs so SIMD-vectorised loops over the policy array and result
// slots can assume it.
func align16(n int) int {
	return (n + 15) &^ 15
}

// SharedBuffer is the single, contiguous, 16-byte-aligned memory region
// backing one job: one allocation, holding the header, control-word
// region, policy array, assumption tables, per-scenario result slots, and
// optional retained distribution at fixed offsets. Workers receive a
// pointer to this struct and the offset table; they never reallocate it.
//
// Control words (progress, termination, per-deque head/tail) are
// sync/atomic values held in the struct's own fields, so the deque state
// and progress counters can be mutated from multiple goroutines without a
// mutex. The control-word region of data is reserved but not written.
type SharedBuffer struct {
	data []byte

	offsets offsetTable

	numWorkers   int
	numScenarios int

	resultSlots []float64 // one entry per scenario, written exactly once
	distSlots   []float64 // present only if retain_distribution

	progress    atomic.Uint32 // completed task count across all workers
	terminated  atomic.Uint32 // 0 = running, 1 = terminate requested/failed
	dequeHeads  []atomic.Uint32
	dequeTails  []atomic.Uint32
}

// offsetTable records where each section begins within data, published to
// every worker at job start.
type offsetTable struct {
	HeaderOffset      int
	ControlOffset     int
	PolicyOffset      int
	MortalityOffset   int
	LapseOffset       int
	ExpenseOffset     int
	ResultSlotsOffset int
	DistOffset        int
	TotalSize         int
}

// NewSharedBuffer allocates and populates the buffer for a job: the policy
// array is copied in once and never written again. The mortality, lapse
// and expense sections are reserved at their offsets but left zeroed; the
// tables are not copied into data. Result slots (and the optional
// distribution mirror) start zeroed.
func NewSharedBuffer(policies []domain.Policy, tables *AssumptionTables, numScenarios, numWorkers int, retainDistribution bool) *SharedBuffer {
	headerSize := align16(16)
	controlSize := align16(4 + 4) // progress + terminated; per-deque head/tail tracked separately in Go slices
	policySize := align16(len(policies) * domain.PolicyRecordSize)
	mortalitySize := align16((domain.MaxAge + 1) * 2 * 8)
	lapseSize := align16(domain.MaxLapseYear * 8)
	expenseSize := align16(4 * 8)
	resultSize := align16(numScenarios * 8)
	distSize := 0
	if retainDistribution {
		distSize = align16(numScenarios * 8)
	}

	off := offsetTable{}
	pos := 0
	off.HeaderOffset = pos
	pos += headerSize
	off.ControlOffset = pos
	pos += controlSize
	off.PolicyOffset = pos
	pos += policySize
	off.MortalityOffset = pos
	pos += mortalitySize
	off.LapseOffset = pos
	pos += lapseSize
	off.ExpenseOffset = pos
	pos += expenseSize
	off.ResultSlotsOffset = pos
	pos += resultSize
	off.DistOffset = pos
	pos += distSize
	off.TotalSize = pos

	buf := &SharedBuffer{
		data:         make([]byte, off.TotalSize),
		offsets:      off,
		numWorkers:   numWorkers,
		numScenarios: numScenarios,
		resultSlots:  make([]float64, numScenarios),
		dequeHeads:   make([]atomic.Uint32, numWorkers),
		dequeTails:   make([]atomic.Uint32, numWorkers),
	}
	if retainDistribution {
		buf.distSlots = make([]float64, numScenarios)
	}

	binary.LittleEndian.PutUint32(buf.data[0:4], bufferMagic)
	binary.LittleEndian.PutUint32(buf.data[4:8], bufferVersion)
	binary.LittleEndian.PutUint32(buf.data[8:12], uint32(numWorkers))
	binary.LittleEndian.PutUint32(buf.data[12:16], uint32(off.TotalSize))

	for i, p := range policies {
		_ = p.EncodeBinary(buf.data[off.PolicyOffset+i*domain.PolicyRecordSize:])
	}

	return buf
}

// Progress returns the number of completed tasks, for the driver's
// progress-callback polling loop.
func (b *SharedBuffer) Progress() uint32 { return b.progress.Load() }

// AddProgress atomically increments the completed-task counter.
func (b *SharedBuffer) AddProgress(delta uint32) { b.progress.Add(delta) }

// RequestTermination sets the shared termination flag; workers observe it
// at task boundaries and exit, the shared path for both cancellation and
// worker failure.
func (b *SharedBuffer) RequestTermination() { b.terminated.Store(1) }

// Terminated reports whether termination has been requested.
func (b *SharedBuffer) Terminated() bool { return b.terminated.Load() == 1 }

// WriteResult writes a scenario's NPV into its pre-assigned result slot.
// Invariant: each slot is written by exactly one worker,
// exactly once; callers must not call this twice for the same scenario.
func (b *SharedBuffer) WriteResult(scenario int, npv float64) {
	b.resultSlots[scenario] = npv
	if b.distSlots != nil {
		b.distSlots[scenario] = npv
	}
}

// ResultSlots returns the dense, scenario-indexed NPV array after all
// workers have terminated. The returned slice aliases the buffer's backing
// storage and must not be retained past the buffer's lifetime.
func (b *SharedBuffer) ResultSlots() []float64 { return b.resultSlots }

// DequeHead and DequeTail expose the atomic control words backing a given
// worker's deque, for use by the Chase-Lev protocol in deque.go. They
// return pointers into the SharedBuffer's own long-lived arrays (never the
// raw []byte), so the protocol's explicit-address atomic operations have a
// stable address for the buffer's entire lifetime.
func (b *SharedBuffer) DequeHead(worker int) *atomic.Uint32 { return &b.dequeHeads[worker] }
func (b *SharedBuffer) DequeTail(worker int) *atomic.Uint32 { return &b.dequeTails[worker] }

// rawControlWordView returns an unsafe view of the control-word region as
// uint32 cells, colocating it with the rest of the job's memory for
// debug-dump tooling. The Go-level atomics above (dequeHeads/dequeTails/
// progress) are what the scheduler and driver actually use for
// synchronization and are not mirrored into this region, so the view reads
// the region's zero-filled cells, not the live counter values.
func (b *SharedBuffer) rawControlWordView() []uint32 {
	base := b.offsets.ControlOffset
	n := (b.offsets.PolicyOffset - base) / 4
	//nolint:gosec // offsets are 16-byte aligned by construction (align16)
	return unsafe.Slice((*uint32)(unsafe.Pointer(&b.data[base])), n)
}

// Offsets returns the section offset table published to workers at job
// start.
func (b *SharedBuffer) Offsets() offsetTable { return b.offsets }

// TotalSize returns the buffer's total allocated size in bytes.
func (b *SharedBuffer) TotalSize() int { return len(b.data) }
