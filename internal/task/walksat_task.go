package task

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"walksat/internal/search"
	"walksat/internal/transport"
)

// WorkItem is the unit produced by WalkSATTask.Produce and consumed by
// WalkSATTask.Apply: a formula plus its weight vector (spec §6 "Work
// item format"). It carries no seed; the worker that applies it picks
// the trial seed and returns it in the Result.
type WorkItem struct {
	Clauses [][]int
	Weight  []float64
}

// Result is the unit WalkSATTask.Apply returns and WalkSATTask.Consume
// receives (spec §6 "Result format"), always carrying the seed that
// produced it.
type Result struct {
	Seed            int64
	BestUnsatWeight float64
	Assignment      []bool
	Flips           int
}

// WalkSATTask is the concrete Task that plugs the weighted WalkSAT
// engine into the dispatcher: the original main.py's MyTask translated
// into this contract, generalized to per-run trial counts instead of a
// hardcoded "1 job per worker".
type WalkSATTask struct {
	DefaultHooks

	// Clauses and Weight describe the problem. NumVariables of 0 infers
	// from Clauses.
	Clauses      [][]int
	Weight       []float64
	NumVariables int

	// TrialsPerWorker sets Produce's cardinality; 0 defaults to 4 (the
	// original's "4 * num_workers" convention, generalized per spec.md's
	// note that cardinality is Task-defined).
	TrialsPerWorker int

	// SearchConfig supplies the per-trial WalkSAT parameters. Its Seed
	// is a base offset added to each worker's rank-derived seed sequence
	// (see SetupWorker); NumVariables is replaced by the task's own.
	SearchConfig search.Config

	// RunID identifies this dispatch run for logging/metrics; assigned
	// in Setup if empty.
	RunID string

	numWorkers int
	nextSeed   int64
	seedStep   int64

	Results []Result
	Best    *Result
}

var _ Task = (*WalkSATTask)(nil)

// WorkerClone returns a fresh WalkSATTask sharing the read-only problem
// data (Clauses, Weight, NumVariables, SearchConfig, TrialsPerWorker)
// and the RunID, but none of the master-only or per-worker mutable
// state (seed counters, Results, Best): spec §4.5
// "workers are otherwise stateless across items except for
// hook-established state" and §5 "workers share nothing". Each worker
// goroutine must call SetupWorker/Apply on its own clone rather than on
// the master's instance, or the nextSeed/seedStep counters SetupWorker
// and Apply write become a shared-memory race the moment Size() >= 2.
func (w *WalkSATTask) WorkerClone() *WalkSATTask {
	return &WalkSATTask{
		Clauses:         w.Clauses,
		Weight:          w.Weight,
		NumVariables:    w.NumVariables,
		TrialsPerWorker: w.TrialsPerWorker,
		SearchConfig:    w.SearchConfig,
		RunID:           w.RunID,
	}
}

// Setup runs on the master: records the worker count Produce needs and
// assigns a run identifier.
func (w *WalkSATTask) Setup(comm transport.Comm) {
	w.numWorkers = comm.Size() - 1
	if w.numWorkers < 1 {
		w.numWorkers = 1 // sequential degeneracy: Size()==1
	}
	if w.RunID == "" {
		w.RunID = uuid.NewString()
	}
	log.Info().Str("run_id", w.RunID).Int("workers", w.numWorkers).Msg("dispatch run starting")
}

// Produce yields TrialsPerWorker*numWorkers identical work items. The
// items carry no seed: each trial's seed comes from the sequence of the
// worker that applies it (see SetupWorker and Apply).
func (w *WalkSATTask) Produce() <-chan any {
	trialsPerWorker := w.TrialsPerWorker
	if trialsPerWorker <= 0 {
		trialsPerWorker = 4
	}
	total := trialsPerWorker * w.numWorkers

	out := make(chan any)
	go func() {
		defer close(out)
		for i := 0; i < total; i++ {
			out <- WorkItem{
				Clauses: w.Clauses,
				Weight:  w.Weight,
			}
		}
	}()
	return out
}

// SetupWorker derives this worker's seed sequence from its rank, per
// the original main.py's "seed = rank + 1000; step = size-1" scheme,
// offset by SearchConfig.Seed (0 leaves the scheme unchanged).
func (w *WalkSATTask) SetupWorker(comm transport.Comm) {
	w.nextSeed = w.SearchConfig.Seed + int64(comm.Rank()) + 1000
	w.seedStep = int64(comm.Size() - 1)
	if w.seedStep < 1 {
		w.seedStep = 1
	}
}

// Apply runs one WalkSAT trial using this worker's next seed in the
// sequence established by SetupWorker, then advances that sequence.
func (w *WalkSATTask) Apply(item any) (any, error) {
	wi, ok := item.(WorkItem)
	if !ok {
		return nil, fmt.Errorf("walksat task: unexpected item type %T", item)
	}

	cfg := w.SearchConfig
	cfg.Seed = w.nextSeed
	w.nextSeed += w.seedStep
	cfg.NumVariables = w.NumVariables
	if cfg.MaxTime == 0 && cfg.MaxFlips == 0 {
		cfg.MaxTime = 5 * time.Second
	}
	// RandVarProb is taken as configured, including 0: spec.md treats
	// both 0 (pure greedy) and 1 (pure random-walk) as well-defined
	// endpoints rather than "unset".

	res, err := search.Run(wi.Clauses, wi.Weight, cfg)
	if err != nil {
		return nil, err
	}
	return Result{
		Seed:            cfg.Seed,
		BestUnsatWeight: res.BestUnsatWeight,
		Assignment:      res.BestAssignment,
		Flips:           res.Flips,
	}, nil
}

// Consume records every result and tracks the best one seen so far.
// Only ever called from the dispatcher's single recv-stage goroutine
// (or inline in sequential mode), so no locking is needed.
func (w *WalkSATTask) Consume(result any) {
	r, ok := result.(Result)
	if !ok {
		log.Error().Interface("result", result).Msg("walksat task: unexpected result type")
		return
	}
	w.Results = append(w.Results, r)
	if w.Best == nil || r.BestUnsatWeight < w.Best.BestUnsatWeight {
		best := r
		w.Best = &best
	}
}

// Finalize logs a summary of the run.
func (w *WalkSATTask) Finalize() {
	event := log.Info().Str("run_id", w.RunID).Int("trials", len(w.Results))
	if w.Best != nil {
		event = event.Float64("best_unsat_weight", w.Best.BestUnsatWeight).Bool("satisfiable", w.Best.BestUnsatWeight == 0)
	}
	event.Msg("dispatch run finished")
}

// FinalizeWorker is a no-op; WalkSATTask keeps no per-worker state that
// needs cleanup beyond the seed counters, which die with the
// goroutine.
func (w *WalkSATTask) FinalizeWorker() {}
