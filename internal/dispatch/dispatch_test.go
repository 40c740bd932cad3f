package dispatch

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"walksat/internal/task"
	"walksat/internal/transport"
)

// countingTask records every item it produces and every result it
// consumes so tests can check the dispatcher's delivery properties:
// one Consume per produced item, no concurrent Consume calls, and (in
// sequential mode) Consume order matching Produce order.
type countingTask struct {
	task.DefaultHooks

	items []int

	mu        sync.Mutex
	inConsume bool
	consumed  []int
	applyErrs map[int]string // item -> error message, if Apply should fail for it
}

func newCountingTask(n int) *countingTask {
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	return &countingTask{items: items}
}

func (c *countingTask) Setup(transport.Comm)       {}
func (c *countingTask) Finalize()                  {}
func (c *countingTask) SetupWorker(transport.Comm) {}
func (c *countingTask) FinalizeWorker()            {}

func (c *countingTask) Produce() <-chan any {
	out := make(chan any)
	go func() {
		defer close(out)
		for _, it := range c.items {
			out <- it
		}
	}()
	return out
}

func (c *countingTask) Apply(item any) (any, error) {
	n := item.(int)
	if msg, bad := c.applyErrs[n]; bad {
		return nil, fmt.Errorf("%s", msg)
	}
	return n * n, nil
}

func (c *countingTask) Consume(result any) {
	c.mu.Lock()
	if c.inConsume {
		c.mu.Unlock()
		panic("Consume called concurrently with itself")
	}
	c.inConsume = true
	c.mu.Unlock()

	c.consumed = append(c.consumed, result.(int))

	c.mu.Lock()
	c.inConsume = false
	c.mu.Unlock()
}

func runWorkers(comms []transport.Comm, t task.Task) {
	for r := 1; r < len(comms); r++ {
		go RunWorker(t, comms[r])
	}
}

func TestSequentialPreservesProduceOrder(t *testing.T) {
	comms := transport.NewLocalGroup(1, 1)
	ct := newCountingTask(10)

	if err := Run(ct, comms[0]); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(ct.consumed) != 10 {
		t.Fatalf("expected 10 results, got %d", len(ct.consumed))
	}
	for i, v := range ct.consumed {
		if v != i*i {
			t.Fatalf("result %d: expected %d, got %d", i, i*i, v)
		}
	}
}

func TestDistributedEveryItemConsumedExactlyOnce(t *testing.T) {
	const workers = 3
	const items = 25

	comms := transport.NewLocalGroup(workers+1, workers)
	ct := newCountingTask(items)

	// Each worker runs its own Task instance: only the master's Task
	// accumulates Consume results, but every worker still needs
	// Apply, so give each a private copy backed by the same logic.
	for r := 1; r <= workers; r++ {
		go func(comm transport.Comm) {
			worker := newCountingTask(0)
			RunWorker(worker, comm)
		}(comms[r])
	}

	if err := Run(ct, comms[0]); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(ct.consumed) != items {
		t.Fatalf("expected %d results, got %d", items, len(ct.consumed))
	}
	seen := make(map[int]bool, items)
	for _, v := range ct.consumed {
		root := 0
		for root*root != v {
			root++
			if root > items+1 {
				t.Fatalf("unexpected result %d", v)
			}
		}
		if seen[root] {
			t.Fatalf("item %d consumed more than once", root)
		}
		seen[root] = true
	}
	for i := 0; i < items; i++ {
		if !seen[i] {
			t.Fatalf("item %d never consumed", i)
		}
	}
}

func TestDistributedWorkersShutDownCleanly(t *testing.T) {
	const workers = 4
	comms := transport.NewLocalGroup(workers+1, workers)
	ct := newCountingTask(8)

	var wg sync.WaitGroup
	for r := 1; r <= workers; r++ {
		wg.Add(1)
		go func(comm transport.Comm) {
			defer wg.Done()
			RunWorker(newCountingTask(0), comm)
		}(comms[r])
	}

	if err := Run(ct, comms[0]); err != nil {
		t.Fatalf("Run: %v", err)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("workers did not shut down after Run returned")
	}
}

func TestDistributedWorkerApplyErrorSurfaces(t *testing.T) {
	const workers = 2
	comms := transport.NewLocalGroup(workers+1, workers)
	ct := newCountingTask(6)
	ct.applyErrs = map[int]string{3: "boom"}

	for r := 1; r <= workers; r++ {
		go func(comm transport.Comm) {
			worker := newCountingTask(0)
			worker.applyErrs = map[int]string{3: "boom"}
			RunWorker(worker, comm)
		}(comms[r])
	}

	err := Run(ct, comms[0])
	if err == nil {
		t.Fatalf("expected an error from the failing Apply call")
	}

	if len(ct.consumed) != 5 {
		t.Fatalf("expected the other 5 results to still be consumed, got %d", len(ct.consumed))
	}
}

func TestRunRequiresMasterRank(t *testing.T) {
	comms := transport.NewLocalGroup(2, 1)
	ct := newCountingTask(1)
	if err := Run(ct, comms[1]); err == nil {
		t.Fatalf("expected an error calling Run on a non-master rank")
	}
}

func TestDistributedThreeWorkersFourItemsEach(t *testing.T) {
	// Three workers, four countingTask items per worker: the master must
	// consume exactly one result per produced item.
	const workers = 3
	const trialsPerWorker = 4
	const total = workers * trialsPerWorker

	comms := transport.NewLocalGroup(workers+1, workers)
	ct := newCountingTask(total)

	for r := 1; r <= workers; r++ {
		go func(comm transport.Comm) {
			RunWorker(newCountingTask(0), comm)
		}(comms[r])
	}

	if err := Run(ct, comms[0]); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(ct.consumed) != total {
		t.Fatalf("expected %d results, got %d", total, len(ct.consumed))
	}
}

// TestDispatchWalkSATTaskUsesPerRankSeedSequences runs the production
// task.WalkSATTask through the real master pipeline with several
// workers (run with -race) and checks that every trial's seed lies on
// one of the worker ranks' rank+1000, stride-(size-1) sequences and
// that no seed repeats. This is the regression test for the shared-WalkSATTask
// race: cmd/walksat and internal/httpapi must start each RunWorker
// goroutine against its own WorkerClone, exactly as this test does,
// or SetupWorker's rank-derived counters get stomped by concurrent
// goroutines.
func TestDispatchWalkSATTaskUsesPerRankSeedSequences(t *testing.T) {
	const workers = 4
	const trialsPerWorker = 5

	master := &task.WalkSATTask{
		Clauses:         [][]int{{1, 2}, {-1, 2}, {1, -2}},
		TrialsPerWorker: trialsPerWorker,
	}

	comms := transport.NewLocalGroup(workers+1, workers)
	for r := 1; r <= workers; r++ {
		go RunWorker(master.WorkerClone(), comms[r])
	}

	if err := Run(master, comms[0]); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(master.Results) != workers*trialsPerWorker {
		t.Fatalf("expected %d results, got %d", workers*trialsPerWorker, len(master.Results))
	}

	step := int64(workers)
	seenByRank := make(map[int64]bool)
	for _, r := range master.Results {
		rank := (r.Seed - 1000) % step
		if rank < 0 || rank >= step {
			t.Fatalf("seed %d does not belong to any rank's rank+1000 stride-%d sequence", r.Seed, step)
		}
		if seenByRank[r.Seed] {
			t.Fatalf("seed %d was produced more than once", r.Seed)
		}
		seenByRank[r.Seed] = true
	}
	if len(seenByRank) != workers*trialsPerWorker {
		t.Fatalf("expected %d distinct seeds, got %d", workers*trialsPerWorker, len(seenByRank))
	}
}
