// Package dimacs reads CNF and weighted-CNF formulas in the DIMACS
// text format into the (clauses, weights, numVariables) triple that
// internal/cnf.New consumes. Adapted from the teacher's
// api/walksat/client.go ParseDIMACS, generalized to also accept the
// "wcnf" weighted variant and to read from an io.Reader instead of a
// filename so it can serve both the CLI and the HTTP API.
package dimacs

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrMalformed wraps any parse failure so callers can distinguish
// "bad input" from other errors with errors.Is.
var ErrMalformed = fmt.Errorf("dimacs: malformed input")

// Result is the parsed formula plus any per-clause weights and the
// variable count declared on the problem line, if any.
type Result struct {
	Clauses  [][]int
	Weights  []float64 // nil for a plain "cnf" problem line
	NumVars  int        // 0 if the input has no problem line
	weighted bool       // true if the source used "p wcnf"
}

// Parse reads a DIMACS "cnf" or "wcnf" formula from r.
//
// A "cnf" problem line ("p cnf <vars> <clauses>") produces clauses
// with no weights. A "wcnf" problem line ("p wcnf <vars> <clauses>
// [top]") expects each clause's first token to be its weight,
// matching the standard weighted-DIMACS convention; the optional
// trailing "top" field, used elsewhere to mark hard clauses, is
// accepted but ignored since this solver has no hard/soft distinction.
// Comment lines ('c') are allowed anywhere, and the problem line is
// optional, mirroring the non-standard leniency of the teacher's own
// parser and of the retrieved pack's other DIMACS reader.
func Parse(r io.Reader) (Result, error) {
	var res Result
	var declaredClauses int
	haveProblemLine := false

	var clause []int
	var weight float64
	haveWeight := false

	s := bufio.NewScanner(r)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || line[0] == 'c' {
			continue
		}
		if line[0] == 'p' {
			if haveProblemLine {
				return Result{}, fmt.Errorf("%w: multiple problem lines", ErrMalformed)
			}
			if len(res.Clauses) > 0 {
				return Result{}, fmt.Errorf("%w: problem line appears after clauses", ErrMalformed)
			}
			fields := strings.Fields(line)
			if len(fields) < 4 {
				return Result{}, fmt.Errorf("%w: malformed problem line %q", ErrMalformed, line)
			}
			switch fields[1] {
			case "cnf":
				res.weighted = false
			case "wcnf":
				res.weighted = true
			default:
				return Result{}, fmt.Errorf("%w: unsupported format %q", ErrMalformed, fields[1])
			}
			numVars, err := strconv.Atoi(fields[2])
			if err != nil {
				return Result{}, fmt.Errorf("%w: bad variable count: %v", ErrMalformed, err)
			}
			nc, err := strconv.Atoi(fields[3])
			if err != nil {
				return Result{}, fmt.Errorf("%w: bad clause count: %v", ErrMalformed, err)
			}
			res.NumVars = numVars
			declaredClauses = nc
			haveProblemLine = true
			continue
		}

		for _, field := range strings.Fields(line) {
			if res.weighted && !haveWeight {
				w, err := strconv.ParseFloat(field, 64)
				if err != nil {
					return Result{}, fmt.Errorf("%w: bad clause weight %q: %v", ErrMalformed, field, err)
				}
				weight = w
				haveWeight = true
				continue
			}
			n, err := strconv.Atoi(field)
			if err != nil {
				return Result{}, fmt.Errorf("%w: bad literal %q: %v", ErrMalformed, field, err)
			}
			if n == 0 {
				res.Clauses = append(res.Clauses, clause)
				if res.weighted {
					res.Weights = append(res.Weights, weight)
				}
				clause = nil
				haveWeight = false
				continue
			}
			clause = append(clause, n)
		}
	}
	if err := s.Err(); err != nil {
		return Result{}, fmt.Errorf("dimacs: read: %w", err)
	}
	if len(clause) > 0 {
		return Result{}, fmt.Errorf("%w: trailing clause not terminated by 0", ErrMalformed)
	}

	if haveProblemLine && declaredClauses != len(res.Clauses) {
		return Result{}, fmt.Errorf("%w: problem line declares %d clauses, found %d", ErrMalformed, declaredClauses, len(res.Clauses))
	}
	return res, nil
}
