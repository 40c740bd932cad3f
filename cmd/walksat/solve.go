package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"walksat/internal/config"
	"walksat/internal/dimacs"
	"walksat/internal/dispatch"
	"walksat/internal/report"
	"walksat/internal/search"
	"walksat/internal/task"
	"walksat/internal/transport"
)

var solveCmd = &cobra.Command{
	Use:   "solve <dimacs-file>",
	Args:  cobra.ExactArgs(1),
	Short: "Solve a DIMACS CNF (or weighted wcnf) formula",
	RunE:  runSolve,
}

func init() {
	solveCmd.Flags().Int("workers", 0, "number of worker goroutines (default from config, else 4)")
	solveCmd.Flags().Duration("max-time", 0, "per-trial time budget (default from config, else 5s)")
	solveCmd.Flags().Float64("rand-prob", 0, "probability of a random-walk flip (default from config, else 0.3)")
	solveCmd.Flags().Int64("seed", 0, "base seed added to each worker's rank-derived seed sequence")
	solveCmd.Flags().Int("trials-per-worker", 0, "trials each worker runs (default from config, else 4)")
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	report.InitLogger(cfg.Logging)

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("walksat solve: %w", err)
	}
	defer f.Close()

	parsed, err := dimacs.Parse(f)
	if err != nil {
		return fmt.Errorf("walksat solve: %w", err)
	}

	workers, _ := cmd.Flags().GetInt("workers")
	if workers <= 0 {
		workers = cfg.Dispatch.Workers
	}
	trialsPerWorker, _ := cmd.Flags().GetInt("trials-per-worker")
	if trialsPerWorker <= 0 {
		trialsPerWorker = cfg.Dispatch.TrialsPerWorker
	}
	maxTime, _ := cmd.Flags().GetDuration("max-time")
	if maxTime <= 0 {
		maxTime = cfg.Search.MaxTime
	}
	randProb, _ := cmd.Flags().GetFloat64("rand-prob")
	if !cmd.Flags().Changed("rand-prob") {
		randProb = cfg.Search.RandVarProb
	}
	seed, _ := cmd.Flags().GetInt64("seed")

	t := &task.WalkSATTask{
		Clauses:         parsed.Clauses,
		Weight:          parsed.Weights,
		NumVariables:    parsed.NumVars,
		TrialsPerWorker: trialsPerWorker,
		SearchConfig: search.Config{
			Seed:        seed,
			MaxTime:     maxTime,
			RandVarProb: randProb,
		},
	}

	start := time.Now()
	if err := runLocal(t, workers); err != nil {
		return fmt.Errorf("walksat solve: %w", err)
	}
	log.Info().Dur("elapsed", time.Since(start)).Msg("solve finished")

	report.PrintTrialSummary(os.Stdout, t.Results, t.Best)
	return nil
}

// runLocal runs t over an in-process transport group of size
// workers+1, starting one RunWorker goroutine per worker rank and the
// master pipeline on rank 0. Each worker goroutine gets its own
// WorkerClone so SetupWorker's rank-derived seed sequence is private to
// that rank instead of racing on the master's WalkSATTask.
func runLocal(t *task.WalkSATTask, workers int) error {
	if workers < 1 {
		workers = 1
	}
	comms := transport.NewLocalGroup(workers+1, workers)
	for r := 1; r <= workers; r++ {
		go dispatch.RunWorker(t.WorkerClone(), comms[r])
	}
	return dispatch.Run(t, comms[0])
}
