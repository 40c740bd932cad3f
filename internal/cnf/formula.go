// Package cnf holds the CNF formula model: clauses, literals, the
// variable-to-clause index, and the mutable per-trial assignment state
// the search engine maintains incrementally on every flip.
package cnf

import (
	"errors"
	"fmt"

	"walksat/internal/rng"
)

// ErrWeightLengthMismatch is returned when a supplied weight vector's
// length does not match the number of clauses.
var ErrWeightLengthMismatch = errors.New("cnf: weight vector length does not match clause count")

// ErrZeroLiteral is returned when a clause contains a literal of 0,
// which is not a valid variable reference.
var ErrZeroLiteral = errors.New("cnf: clause contains literal 0")

// VarClauseRef is one entry of the variable-to-clause index: clause c
// contains a literal of this variable, true if it appears positively.
type VarClauseRef struct {
	Clause   int
	Positive bool
}

// Formula is the normalized, read-only CNF problem: clauses with empty
// clauses dropped, a weight per clause, and a static variable index.
type Formula struct {
	Clauses      [][]int
	Weight       []float64
	NumVars      int
	varToClauses [][]VarClauseRef // indexed by variable id (1..NumVars), entry 0 unused
}

// New builds a Formula from raw clauses and an optional weight vector.
// numVariables of 0 means "infer from the formula" (max |literal|).
// Empty clauses are dropped per spec. A nil weight vector defaults to
// all ones.
func New(clauses [][]int, weight []float64, numVariables int) (*Formula, error) {
	nonEmpty := make([][]int, 0, len(clauses))
	keptWeight := make([]float64, 0, len(clauses))
	haveWeight := weight != nil
	if haveWeight && len(weight) != len(clauses) {
		return nil, fmt.Errorf("%w: got %d weights for %d clauses", ErrWeightLengthMismatch, len(weight), len(clauses))
	}

	maxVar := 0
	for i, cl := range clauses {
		if len(cl) == 0 {
			continue
		}
		// Drop duplicate literals so sat_count reflects distinct true
		// literals; a clause with "x" repeated must behave exactly
		// like one with the duplicate removed.
		seen := make(map[int]struct{}, len(cl))
		deduped := make([]int, 0, len(cl))
		for _, lit := range cl {
			if lit == 0 {
				return nil, fmt.Errorf("%w (clause %d)", ErrZeroLiteral, i)
			}
			if v := abs(lit); v > maxVar {
				maxVar = v
			}
			if _, dup := seen[lit]; dup {
				continue
			}
			seen[lit] = struct{}{}
			deduped = append(deduped, lit)
		}
		nonEmpty = append(nonEmpty, deduped)
		if haveWeight {
			keptWeight = append(keptWeight, weight[i])
		} else {
			keptWeight = append(keptWeight, 1.0)
		}
	}

	if numVariables > 0 {
		maxVar = numVariables
	}

	f := &Formula{
		Clauses:      nonEmpty,
		Weight:       keptWeight,
		NumVars:      maxVar,
		varToClauses: make([][]VarClauseRef, maxVar+1),
	}
	for c, cl := range nonEmpty {
		for _, lit := range cl {
			v := abs(lit)
			f.varToClauses[v] = append(f.varToClauses[v], VarClauseRef{Clause: c, Positive: lit > 0})
		}
	}
	return f, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// ClausesForVar returns the static index of clauses containing v
// (either polarity).
func (f *Formula) ClausesForVar(v int) []VarClauseRef {
	return f.varToClauses[v]
}

// Trial is the mutable per-trial state: the current assignment and the
// incrementally-maintained satisfy-count / unsat-set / unsat-weight
// bookkeeping, plus the best assignment observed so far. It is created
// fresh at trial start and discarded at trial end.
type Trial struct {
	formula *Formula

	assignment []bool // 1-indexed; entry 0 unused
	satCount   []int  // per clause: number of true literals

	unsatSet []int // clause indices currently unsatisfied
	unsatPos []int // clause index -> position in unsatSet, or -1

	unsatWeight float64

	bestAssignment  []bool
	bestUnsatWeight float64
}

// NewTrial allocates a Trial for formula. Call Init before use.
func NewTrial(f *Formula) *Trial {
	return &Trial{
		formula:    f,
		assignment: make([]bool, f.NumVars+1),
		satCount:   make([]int, len(f.Clauses)),
		unsatPos:   make([]int, len(f.Clauses)),
	}
}

// Init assigns every variable uniformly at random and computes
// satCount, unsatSet, and unsatWeight from scratch.
func (t *Trial) Init(r *rng.Source) {
	for v := 1; v <= t.formula.NumVars; v++ {
		t.assignment[v] = r.UniformInt(2) == 1
	}
	t.unsatSet = t.unsatSet[:0]
	t.unsatWeight = 0
	for c, cl := range t.formula.Clauses {
		n := 0
		for _, lit := range cl {
			if t.literalTrue(lit) {
				n++
			}
		}
		t.satCount[c] = n
		if n == 0 {
			t.unsatPos[c] = len(t.unsatSet)
			t.unsatSet = append(t.unsatSet, c)
			t.unsatWeight += t.formula.Weight[c]
		} else {
			t.unsatPos[c] = -1
		}
	}
	t.bestAssignment = append([]bool(nil), t.assignment...)
	t.bestUnsatWeight = t.unsatWeight
}

func (t *Trial) literalTrue(lit int) bool {
	v := abs(lit)
	val := t.assignment[v]
	if lit < 0 {
		return !val
	}
	return val
}

// Assignment returns the current (live) assignment. Callers must not
// retain the slice across a Flip.
func (t *Trial) Assignment() []bool { return t.assignment }

// UnsatWeight returns the weighted sum over currently unsatisfied
// clauses.
func (t *Trial) UnsatWeight() float64 { return t.unsatWeight }

// UnsatCount returns the number of currently unsatisfied clauses.
func (t *Trial) UnsatCount() int { return len(t.unsatSet) }

// UnsatClauseAt returns the clause index stored at position i of the
// unsat set (0 <= i < UnsatCount()).
func (t *Trial) UnsatClauseAt(i int) int { return t.unsatSet[i] }

// BestUnsatWeight returns the best (lowest) weighted unsat sum observed
// so far this trial.
func (t *Trial) BestUnsatWeight() float64 { return t.bestUnsatWeight }

// BestAssignment returns a copy of the best assignment observed so far
// (1-indexed, entry 0 unused), length NumVars+1.
func (t *Trial) BestAssignment() []bool {
	return append([]bool(nil), t.bestAssignment...)
}

// Flip toggles variable v and updates satCount/unsatSet/unsatWeight for
// exactly the clauses in varToClauses[v], then updates best-so-far if
// this improved the objective.
func (t *Trial) Flip(v int) {
	t.assignment[v] = !t.assignment[v]
	for _, ref := range t.formula.ClausesForVar(v) {
		c := ref.Clause
		wasSat := t.satCount[c] > 0
		if ref.Positive == t.assignment[v] {
			t.satCount[c]++
		} else {
			t.satCount[c]--
		}
		nowSat := t.satCount[c] > 0
		switch {
		case wasSat && !nowSat:
			t.markUnsat(c)
		case !wasSat && nowSat:
			t.markSat(c)
		}
	}
	if t.unsatWeight < t.bestUnsatWeight {
		copy(t.bestAssignment, t.assignment)
		t.bestUnsatWeight = t.unsatWeight
	}
}

func (t *Trial) markUnsat(c int) {
	t.unsatPos[c] = len(t.unsatSet)
	t.unsatSet = append(t.unsatSet, c)
	t.unsatWeight += t.formula.Weight[c]
}

func (t *Trial) markSat(c int) {
	pos := t.unsatPos[c]
	last := len(t.unsatSet) - 1
	movedClause := t.unsatSet[last]
	t.unsatSet[pos] = movedClause
	t.unsatPos[movedClause] = pos
	t.unsatSet = t.unsatSet[:last]
	t.unsatPos[c] = -1
	t.unsatWeight -= t.formula.Weight[c]
}

// BreakCount returns the weighted sum of clause weights that are
// currently satisfied but would become unsatisfied if v were flipped:
// clauses where v's literal is the sole true literal.
func (t *Trial) BreakCount(v int) float64 {
	var total float64
	for _, ref := range t.formula.ClausesForVar(v) {
		c := ref.Clause
		if t.satCount[c] == 1 {
			lit := v
			if !ref.Positive {
				lit = -v
			}
			if t.literalTrue(lit) {
				total += t.formula.Weight[c]
			}
		}
	}
	return total
}
