// Command walksat runs the weighted WalkSAT solver, either as a
// one-shot CLI solve over a DIMACS file or as an HTTP service, in
// imitation of the teacher's cmd/-rooted cobra wiring (adapted from
// jhkimqd-chaos-utils's cmd/chaos-runner, the only cobra precedent in
// the retrieved pack).
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "walksat",
	Short: "Weighted WalkSAT solver with a master/worker dispatcher",
	Long: `walksat runs a weighted local-search SAT solver (WalkSAT) across a pool
of in-process workers coordinated by a master/worker dispatcher, and can
serve the same solver over HTTP.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose (debug-level) logging")

	rootCmd.AddCommand(solveCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
