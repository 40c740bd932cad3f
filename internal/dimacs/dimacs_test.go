package dimacs

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestParsePlainCNF(t *testing.T) {
	in := `
c a small example
p cnf 4 3
1 3 -4 0
4 0
2 -3 0
`
	got, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	want := [][]int{{1, 3, -4}, {4}, {2, -3}}
	if diff := cmp.Diff(got.Clauses, want, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("Clauses (-got, +want):\n%s", diff)
	}
	if got.Weights != nil {
		t.Fatalf("expected nil Weights for a plain cnf problem, got %v", got.Weights)
	}
	if got.NumVars != 4 {
		t.Fatalf("expected NumVars 4, got %d", got.NumVars)
	}
}

func TestParseWeightedCNF(t *testing.T) {
	in := `
c weighted example
p wcnf 2 2
3 1 2 0
1.5 -1 0
`
	got, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	wantClauses := [][]int{{1, 2}, {-1}}
	if diff := cmp.Diff(got.Clauses, wantClauses, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("Clauses (-got, +want):\n%s", diff)
	}
	wantWeights := []float64{3, 1.5}
	if diff := cmp.Diff(got.Weights, wantWeights, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("Weights (-got, +want):\n%s", diff)
	}
}

func TestParseNoProblemLine(t *testing.T) {
	in := "1 2 0\n-2 0\n"
	got, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	want := [][]int{{1, 2}, {-2}}
	if diff := cmp.Diff(got.Clauses, want); diff != "" {
		t.Fatalf("Clauses (-got, +want):\n%s", diff)
	}
	if got.NumVars != 0 {
		t.Fatalf("expected NumVars 0 with no problem line, got %d", got.NumVars)
	}
}

func TestParseEmptyClausesPreserved(t *testing.T) {
	in := `
p cnf 3 5
1 3 0 0 -3 0
0 -2 -1 0
`
	got, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	want := [][]int{{1, 3}, {}, {-3}, {}, {-2, -1}}
	if diff := cmp.Diff(got.Clauses, want, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("Clauses (-got, +want):\n%s", diff)
	}
}

func TestParseRejectsUnterminatedClause(t *testing.T) {
	in := "p cnf 1 1\n1"
	if _, err := Parse(strings.NewReader(in)); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestParseRejectsClauseCountMismatch(t *testing.T) {
	in := "p cnf 1 2\n1 0\n"
	if _, err := Parse(strings.NewReader(in)); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestParseRejectsUnsupportedFormat(t *testing.T) {
	in := "p cnfx 1 1\n1 0\n"
	if _, err := Parse(strings.NewReader(in)); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestParseRejectsMultipleProblemLines(t *testing.T) {
	in := "p cnf 1 1\np cnf 1 1\n1 0\n"
	if _, err := Parse(strings.NewReader(in)); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestParseRejectsBadWeight(t *testing.T) {
	in := "p wcnf 1 1\nnotanumber 1 0\n"
	if _, err := Parse(strings.NewReader(in)); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestParseCommentsAnywhere(t *testing.T) {
	in := "p cnf 2 1\nc a stray comment mid-file\n1 2 0\n"
	got, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	want := [][]int{{1, 2}}
	if diff := cmp.Diff(got.Clauses, want); diff != "" {
		t.Fatalf("Clauses (-got, +want):\n%s", diff)
	}
}
