// Package dispatch runs a task.Task across a transport.Comm group: the
// sequential degeneracy when the group has one participant, or the
// full three-stage master pipeline plus worker loop when it has two or
// more. It is the Go rendering of the original's run_task: three
// cooperating goroutines (produce/send/recv) sharing bounded channels
// instead of the original's three threads sharing queue.Queue objects.
package dispatch

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"walksat/internal/task"
	"walksat/internal/transport"
)

// shutdown is the sentinel master->worker payload meaning "stop".
type shutdown struct{}

// workItem pairs a destination worker rank with the item assigned to
// it, traveling through the outbox channel from the produce stage to
// the send stage. sentinel marks the per-worker "no more data" signal
// produce pushes once the source is exhausted.
type workItem struct {
	rank     int
	item     any
	sentinel bool
}

// token travels through inflightTokens: a continuation token tells
// recvStage to expect exactly one more result; the single stop token
// tells it the send stage has drained and there is nothing left to
// await.
type token struct {
	stop bool
}

// applyError is what a worker sends back instead of a result when its
// Apply call fails; the master treats this as fatal to the run.
type applyError struct {
	rank int
	err  error
}

// Run drives task t to completion over comm. Size()==1 runs the
// sequential degeneracy inline on the calling goroutine; Size()>=2
// runs the full distributed master pipeline. In distributed mode, Run
// must be called on rank 0's Comm, and RunWorker must be called
// concurrently on every other rank's Comm.
func Run(t task.Task, comm transport.Comm) error {
	if comm.Size() == 1 {
		return runSequential(t, comm)
	}
	if comm.Rank() != 0 {
		return fmt.Errorf("dispatch: Run must be called with the rank-0 (master) Comm")
	}
	return runMaster(t, comm)
}

// RunWorker is the worker-side counterpart to Run for distributed
// mode: receive one message at a time, shut down on the sentinel,
// otherwise Apply it and send the result (or error) back to rank 0.
func RunWorker(t task.Task, comm transport.Comm) {
	t.SetupWorker(comm)
	for {
		_, payload, err := comm.Recv()
		if err != nil {
			log.Error().Err(err).Int("rank", comm.Rank()).Msg("worker recv failed")
			return
		}
		if _, stop := payload.(shutdown); stop {
			break
		}
		result, err := t.Apply(payload)
		if err != nil {
			if sendErr := comm.Send(0, applyError{rank: comm.Rank(), err: err}); sendErr != nil {
				log.Error().Err(sendErr).Int("rank", comm.Rank()).Msg("worker error-report send failed")
				return
			}
			continue
		}
		if err := comm.Send(0, result); err != nil {
			log.Error().Err(err).Int("rank", comm.Rank()).Msg("worker send failed")
			return
		}
	}
	t.FinalizeWorker()
}

func runSequential(t task.Task, comm transport.Comm) error {
	log.Warn().Msg("running in sequential mode: use a multi-rank Comm to run in parallel")
	t.Setup(comm)
	t.SetupWorker(comm)
	var runErr error
	for item := range t.Produce() {
		result, err := t.Apply(item)
		if err != nil {
			log.Error().Err(err).Msg("sequential apply failed")
			if runErr == nil {
				runErr = fmt.Errorf("dispatch: apply failed: %w", err)
			}
			continue
		}
		t.Consume(result)
	}
	t.FinalizeWorker()
	t.Finalize()
	return runErr
}

// runMaster implements the distributed-mode master pipeline: produce,
// send, and recv stages cooperating over three bounded channels, each
// capacity W = Size()-1, exactly as spec.md §4.6 describes.
func runMaster(t task.Task, comm transport.Comm) error {
	t.Setup(comm)

	n := comm.Size()
	w := n - 1

	free := make(chan int, w)
	outbox := make(chan workItem, w)
	tokens := make(chan token, w)

	for r := 1; r < n; r++ {
		free <- r
	}

	var runErr error
	var once sync.Once
	setErr := func(err error) {
		once.Do(func() { runErr = err })
	}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); produceStage(t, free, outbox, w) }()
	go func() { defer wg.Done(); sendStage(comm, outbox, tokens) }()
	go func() { defer wg.Done(); recvStage(t, comm, free, tokens, setErr) }()
	wg.Wait()

	for r := 1; r < n; r++ {
		if err := comm.Send(r, shutdown{}); err != nil {
			setErr(fmt.Errorf("dispatch: shutdown send to rank %d failed: %w", r, err))
		}
	}

	t.Finalize()
	return runErr
}

// produceStage iterates t.Produce(), assigning each item to a free
// worker and forwarding (rank, item) to the send stage. Once the
// source is exhausted it pushes one sentinel per worker so sendStage
// is guaranteed to see one without blocking on a full outbox.
func produceStage(t task.Task, free <-chan int, outbox chan<- workItem, workers int) {
	for item := range t.Produce() {
		rank := <-free
		outbox <- workItem{rank: rank, item: item}
	}
	for i := 0; i < workers; i++ {
		outbox <- workItem{sentinel: true}
	}
}

// sendStage pops from outbox. On a real item it transmits to the
// assigned worker and pushes a continuation token; on the first
// sentinel it pushes the single stop token and returns, leaving any
// further buffered sentinels unread (harmless: produceStage pushes
// sentinels only after its last real item, so nothing follows them).
func sendStage(comm transport.Comm, outbox <-chan workItem, tokens chan<- token) {
	for wi := range outbox {
		if wi.sentinel {
			tokens <- token{stop: true}
			return
		}
		if err := comm.Send(wi.rank, wi.item); err != nil {
			log.Error().Err(err).Int("rank", wi.rank).Msg("master send failed")
		}
		tokens <- token{}
	}
}

// recvStage pops one token per iteration. The stop token ends the
// stage; any other token means "one more result is in flight": receive
// it from whichever worker answers next, hand it to Consume (or record
// a worker error), and return that worker to the free pool.
func recvStage(t task.Task, comm transport.Comm, free chan<- int, tokens <-chan token, setErr func(error)) {
	for tok := range tokens {
		if tok.stop {
			return
		}
		source, payload, err := comm.Recv()
		if err != nil {
			setErr(fmt.Errorf("dispatch: recv failed: %w", err))
			continue
		}
		if ae, isErr := payload.(applyError); isErr {
			setErr(fmt.Errorf("dispatch: worker %d apply failed: %w", ae.rank, ae.err))
			free <- source
			continue
		}
		t.Consume(payload)
		free <- source
	}
}
