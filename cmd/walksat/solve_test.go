package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSolveCommandOnSatisfiableFormula(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sat.cnf")
	const cnf = "p cnf 3 2\n1 2 3 0\n-1 -2 0\n"
	if err := os.WriteFile(path, []byte(cnf), 0644); err != nil {
		t.Fatal(err)
	}

	rootCmd.SetArgs([]string{
		"solve", path,
		"--workers", "2",
		"--trials-per-worker", "1",
		"--max-time", "1s",
	})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
}

func TestSolveCommandRejectsMissingFile(t *testing.T) {
	rootCmd.SetArgs([]string{"solve", filepath.Join(t.TempDir(), "missing.cnf")})
	if err := rootCmd.Execute(); err == nil {
		t.Fatalf("expected an error for a missing DIMACS file")
	}
}
