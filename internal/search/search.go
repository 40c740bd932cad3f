// Package search implements the WalkSAT local-search trial: a
// time-bounded loop that flips one variable at a time to reduce the
// number of unsatisfied clauses, escaping local minima with a
// random-walk step. It is modeled on the teacher's HybridSolve loop
// (select unsat clause -> compute break counts -> greedy-or-random ->
// flip -> track best) with the hardware-offload branch removed and
// weighted-unsat-sum bookkeeping added.
package search

import (
	"time"

	"walksat/internal/cnf"
	"walksat/internal/rng"
)

// Config configures one WalkSAT trial.
type Config struct {
	Seed         int64         // RNG seed.
	MaxTime      time.Duration // Wall-clock budget. Zero means MaxFlips governs instead.
	RandVarProb  float64       // Probability of a random-walk step, in [0,1].
	MaxFlips     int           // Optional flip cap; 0 means unbounded (time governs).
	NumVariables int           // Explicit variable count; 0 means infer from the formula.
}

// DefaultConfig mirrors the teacher's DefaultHybridConfig-style
// defaults, translated to the spec's option names.
func DefaultConfig() Config {
	return Config{
		MaxTime:     5 * time.Second,
		RandVarProb: 0.3,
	}
}

// Result is the outcome of one trial: the best weighted-unsat sum seen
// and the assignment that achieved it. Satisfiable is derivable as
// BestUnsatWeight == 0, but is precomputed for convenience.
type Result struct {
	BestUnsatWeight float64
	BestAssignment  []bool
	Satisfiable     bool
	Flips           int
	Seed            int64
}

// Run executes one WalkSAT trial against formula and weight (weight
// may be nil for the unweighted default of all ones) and returns the
// best assignment found within the configured budget.
func Run(clauses [][]int, weight []float64, cfg Config) (Result, error) {
	f, err := cnf.New(clauses, weight, cfg.NumVariables)
	if err != nil {
		return Result{}, err
	}
	return RunFormula(f, cfg), nil
}

// RunFormula runs a trial against an already-built Formula, letting
// callers reuse the formula (and its static index) across trials.
func RunFormula(f *cnf.Formula, cfg Config) Result {
	r := rng.New(cfg.Seed)
	tr := cnf.NewTrial(f)
	tr.Init(r)

	flips := 0
	deadline := time.Time{}
	hasDeadline := cfg.MaxTime > 0
	if hasDeadline {
		deadline = time.Now().Add(cfg.MaxTime)
	}

	for tr.UnsatCount() > 0 {
		if hasDeadline && !time.Now().Before(deadline) {
			break
		}
		if cfg.MaxFlips > 0 && flips >= cfg.MaxFlips {
			break
		}

		c := tr.UnsatClauseAt(r.UniformInt(tr.UnsatCount()))
		clauseLits := f.Clauses[c]

		var v int
		if cfg.RandVarProb > 0 && r.UniformReal() < cfg.RandVarProb {
			lit := clauseLits[r.UniformInt(len(clauseLits))]
			v = abs(lit)
		} else {
			v = pickGreedyVar(tr, clauseLits, r)
		}

		tr.Flip(v)
		flips++
	}

	best := tr.BestAssignment()
	return Result{
		BestUnsatWeight: tr.BestUnsatWeight(),
		BestAssignment:  best,
		Satisfiable:     tr.BestUnsatWeight() == 0,
		Flips:           flips,
		Seed:            cfg.Seed,
	}
}

// pickGreedyVar returns the variable in clauseLits with the minimum
// (weighted) break count, breaking ties uniformly at random.
func pickGreedyVar(tr *cnf.Trial, clauseLits []int, r *rng.Source) int {
	bestVars := make([]int, 0, len(clauseLits))
	minBreak := -1.0
	for _, lit := range clauseLits {
		v := abs(lit)
		bc := tr.BreakCount(v)
		switch {
		case minBreak < 0 || bc < minBreak:
			minBreak = bc
			bestVars = bestVars[:0]
			bestVars = append(bestVars, v)
		case bc == minBreak:
			bestVars = append(bestVars, v)
		}
	}
	if len(bestVars) == 1 {
		return bestVars[0]
	}
	return bestVars[r.UniformInt(len(bestVars))]
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
