package calculation

import (
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rpgo/valuation-engine/internal/domain"
)

// defaultChunkSize, minWorkers and maxWorkers implement the option bounds
// and defaults for a valuation run.
const (
	defaultChunkSize             = 32
	minWorkers                   = 1
	maxWorkers                   = 64
	defaultProgressIntervalTasks = 8
)

// CancellationToken is polled cooperatively at task boundaries so a run can
// be aborted mid-flight without any worker holding a lock.
type CancellationToken interface {
	Cancelled() bool
}

// ProgressCallback receives the job's completion percentage.
type ProgressCallback func(percent int)

// Options configures one run_valuation call.
type Options struct {
	WorkerCount                 int
	ChunkSize                   int
	RetainDistribution          bool
	ReproducibleMode            bool
	ProgressReportIntervalTasks int
	CancellationToken           CancellationToken
	ProgressCallback            ProgressCallback
}

// withDefaults fills in the default for zero-valued numeric options:
// worker_count = hardware concurrency clamped to [1,64] (a non-zero value is
// clamped to the same range); chunk_size = 32;
// progress_report_interval_tasks = 8. It leaves ReproducibleMode as given,
// and the zero value false differs from the default true, so NewOptions
// should be used rather than a bare Options{} literal.
func (o Options) withDefaults() Options {
	if o.WorkerCount == 0 {
		o.WorkerCount = clampInt(runtime.NumCPU(), minWorkers, maxWorkers)
	} else {
		o.WorkerCount = clampInt(o.WorkerCount, minWorkers, maxWorkers)
	}
	if o.ChunkSize == 0 {
		o.ChunkSize = defaultChunkSize
	}
	if o.ProgressReportIntervalTasks == 0 {
		o.ProgressReportIntervalTasks = defaultProgressIntervalTasks
	}
	return o
}

// NewOptions returns the intended defaults (reproducible_mode = true among
// them), ready for field-by-field override.
func NewOptions() Options {
	return Options{
		WorkerCount:                 clampInt(runtime.NumCPU(), minWorkers, maxWorkers),
		ChunkSize:                   defaultChunkSize,
		RetainDistribution:          false,
		ReproducibleMode:            true,
		ProgressReportIntervalTasks: defaultProgressIntervalTasks,
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ValuationDriver orchestrates one end-to-end valuation run.
type ValuationDriver struct {
	Logger Logger
}

// NewValuationDriver constructs a driver with a no-op logger; call
// SetLogger to attach a concrete implementation (e.g. the zerolog adapter
// wired by the CLI).
func NewValuationDriver() *ValuationDriver {
	return &ValuationDriver{Logger: NopLogger{}}
}

// SetLogger attaches a logger, falling back to NopLogger on nil.
func (d *ValuationDriver) SetLogger(l Logger) {
	if l == nil {
		l = NopLogger{}
	}
	d.Logger = l
}

// RunValuation validates a job, allocates the shared buffer, partitions
// scenarios into tasks, runs the work-stealing workers, and assembles the
// aggregate result.
func (d *ValuationDriver) RunValuation(
	policies []domain.Policy,
	tables *AssumptionTables,
	scenarioParams domain.ScenarioParams,
	multipliers domain.Multipliers,
	masterSeed uint64,
	scenarioCount int,
	opts Options,
) (*domain.AggregateResult, error) {
	start := time.Now()
	opts = opts.withDefaults()
	runID := uuid.NewString()

	d.Logger.Infof("valuation run %s starting: policies=%d scenarios=%d workers=%d chunk=%d reproducible=%v",
		runID, len(policies), scenarioCount, opts.WorkerCount, opts.ChunkSize, opts.ReproducibleMode)

	if err := validateJob(policies, tables, scenarioParams, multipliers, scenarioCount); err != nil {
		return nil, err
	}

	maxTerm := 0
	for _, p := range policies {
		if int(p.Term) > maxTerm {
			maxTerm = int(p.Term)
		}
	}

	buf := NewSharedBuffer(policies, tables, scenarioCount, opts.WorkerCount, opts.RetainDistribution)

	tasks, owners, err := Partition(scenarioCount, opts.ChunkSize, opts.WorkerCount)
	if err != nil {
		return nil, err
	}
	capacity := nextPowerOfTwo(len(tasks)/opts.WorkerCount + 2)
	scheduler := NewScheduler(buf, capacity)
	if err := scheduler.Seed(tasks, owners); err != nil {
		return nil, err
	}

	totalTasks := len(tasks)
	var firstErr error
	var errMu sync.Mutex
	recordErr := func(err error) {
		errMu.Lock()
		defer errMu.Unlock()
		if firstErr == nil {
			firstErr = err
			buf.RequestTermination()
		}
	}

	isTerminated := func() bool {
		if buf.Terminated() {
			return true
		}
		if opts.CancellationToken != nil && opts.CancellationToken.Cancelled() {
			buf.RequestTermination()
			return true
		}
		return false
	}

	var wg sync.WaitGroup

	// Each worker batches its completed-task count and flushes it into the
	// shared progress counter every ProgressReportIntervalTasks tasks,
	// rather than contending on the atomic on every single task.
	for w := 0; w < opts.WorkerCount; w++ {
		worker := w
		wg.Add(1)
		// Worker 0 runs the exact same loop as every other worker; the
		// driver goroutine does not itself execute tasks.
		go func() {
			defer wg.Done()
			sinceFlush := 0
			err := RunWorker(scheduler, worker, isTerminated, func(task domain.Task) error {
				for s := int(task.Start); s < int(task.Start)+int(task.Count); s++ {
					path := GenerateScenarioPath(scenarioParams, masterSeed, s, maxTerm)
					npv, err := ProjectPortfolio(policies, tables, path, multipliers, s)
					if err != nil {
						return err
					}
					buf.WriteResult(s, npv)
				}
				sinceFlush++
				if sinceFlush >= opts.ProgressReportIntervalTasks {
					buf.AddProgress(uint32(sinceFlush))
					sinceFlush = 0
				}
				return nil
			})
			if sinceFlush > 0 {
				buf.AddProgress(uint32(sinceFlush))
			}
			if err != nil {
				recordErr(err)
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	d.pollProgress(buf, totalTasks, opts, isTerminated, done)
	<-done

	if opts.CancellationToken != nil && opts.CancellationToken.Cancelled() {
		return nil, domain.NewCancelled()
	}
	if firstErr != nil {
		return nil, firstErr
	}

	result := Aggregate(buf.ResultSlots(), opts.RetainDistribution)
	result.RunID = runID
	result.ExecutionTime = time.Since(start)
	result.WorkerCount = opts.WorkerCount
	result.ChunkSize = opts.ChunkSize
	result.ReproducibleMode = opts.ReproducibleMode

	d.Logger.Infof("valuation run %s complete in %s: mean=%.4f stddev=%.4f cte95=%.4f",
		runID, result.ExecutionTime, result.Mean, result.StdDev, result.CTE95)

	return &result, nil
}

// pollProgress invokes opts.ProgressCallback from the driver goroutine
// (never from a worker,) until the job finishes or is
// terminated.
func (d *ValuationDriver) pollProgress(buf *SharedBuffer, totalTasks int, opts Options, isTerminated func() bool, done <-chan struct{}) {
	if opts.ProgressCallback == nil || totalTasks == 0 {
		return
	}
	ticker := time.NewTicker(2 * time.Millisecond)
	defer ticker.Stop()
	lastPercent := -1
	for {
		select {
		case <-done:
			opts.ProgressCallback(100)
			return
		case <-ticker.C:
			completed := buf.Progress()
			percent := int(100 * float64(completed) / float64(totalTasks))
			if percent > 100 {
				percent = 100
			}
			if percent != lastPercent {
				opts.ProgressCallback(percent)
				lastPercent = percent
			}
			if isTerminated() {
				return
			}
		}
	}
}

func validateJob(policies []domain.Policy, tables *AssumptionTables, params domain.ScenarioParams, mult domain.Multipliers, scenarioCount int) error {
	if len(policies) == 0 {
		return domain.NewInvalidInput("portfolio must contain at least one policy")
	}
	if scenarioCount <= 0 {
		return domain.NewInvalidInput("scenario_count must be positive, got %d", scenarioCount)
	}
	if scenarioCount > domain.MaxTaskSpan+1 {
		return domain.NewCapacityExceeded("scenario_count %d exceeds the hard limit of %d implied by the task encoding", scenarioCount, domain.MaxTaskSpan+1)
	}
	if tables == nil || tables.Mortality == nil || tables.Lapse == nil {
		return domain.NewInvalidInput("assumption tables must be fully populated")
	}
	if err := tables.Expense.Validate(); err != nil {
		return domain.NewInvalidInput("%v", err)
	}
	if err := params.Validate(); err != nil {
		return domain.NewInvalidInput("%v", err)
	}
	if err := mult.Validate(); err != nil {
		return domain.NewInvalidInput("%v", err)
	}
	for _, p := range policies {
		if err := p.Validate(); err != nil {
			return domain.NewInvalidInput("%v", err)
		}
	}
	return nil
}

func nextPowerOfTwo(n int) int {
	if n < 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
